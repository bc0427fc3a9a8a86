package db

import (
	"context"
	"strings"

	"aufgussplan/internal/models"

	"github.com/uptrace/bun"
)

// ---------------- MITARBEITER ----------------

func (d *DB) ListMitarbeiter(ctx context.Context) ([]models.Mitarbeiter, error) {
	rows := []models.Mitarbeiter{}
	err := d.Bun.NewSelect().Model(&rows).Order("name", "id").Scan(ctx)
	return rows, err
}

func (d *DB) GetMitarbeiter(ctx context.Context, id int64) (*models.Mitarbeiter, error) {
	var m models.Mitarbeiter
	if err := d.Bun.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, err
	}
	return &m, nil
}

func (d *DB) CreateMitarbeiter(ctx context.Context, m *models.Mitarbeiter) error {
	_, err := d.Bun.NewInsert().Model(m).Exec(ctx)
	return err
}

func (d *DB) UpdateMitarbeiter(ctx context.Context, m *models.Mitarbeiter) error {
	_, err := d.Bun.NewUpdate().Model(m).Column("name", "position", "aktiv").WherePK().Exec(ctx)
	return err
}

func (d *DB) DeleteMitarbeiter(ctx context.Context, id int64) (bool, error) {
	return d.detachAndDelete(ctx, (*models.Mitarbeiter)(nil), "mitarbeiter_id", id)
}

// ---------------- DUFTMITTEL / SAUNEN / NAMEN ----------------

func (d *DB) ListDuftmittel(ctx context.Context) ([]models.Duftmittel, error) {
	rows := []models.Duftmittel{}
	err := d.Bun.NewSelect().Model(&rows).Order("name", "id").Scan(ctx)
	return rows, err
}

func (d *DB) ListSaunen(ctx context.Context) ([]models.Sauna, error) {
	rows := []models.Sauna{}
	err := d.Bun.NewSelect().Model(&rows).Order("name", "id").Scan(ctx)
	return rows, err
}

func (d *DB) ListAufgussNamen(ctx context.Context) ([]models.AufgussName, error) {
	rows := []models.AufgussName{}
	err := d.Bun.NewSelect().Model(&rows).Order("name", "id").Scan(ctx)
	return rows, err
}

func (d *DB) GetDuftmittel(ctx context.Context, id int64) (*models.Duftmittel, error) {
	var row models.Duftmittel
	if err := d.Bun.NewSelect().Model(&row).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetSauna(ctx context.Context, id int64) (*models.Sauna, error) {
	var row models.Sauna
	if err := d.Bun.NewSelect().Model(&row).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) DeleteDuftmittel(ctx context.Context, id int64) (bool, error) {
	return d.detachAndDelete(ctx, (*models.Duftmittel)(nil), "duftmittel_id", id)
}

func (d *DB) DeleteSauna(ctx context.Context, id int64) (bool, error) {
	return d.detachAndDelete(ctx, (*models.Sauna)(nil), "sauna_id", id)
}

// ReferenceExists checks that id names a row of the given model's table.
func (d *DB) ReferenceExists(ctx context.Context, model interface{}, id int64) (bool, error) {
	return d.Bun.NewSelect().Model(model).Where("id = ?", id).Exists(ctx)
}

// FindOrCreateMitarbeiter returns the id of the staff member with this name,
// creating an active one when none exists.
func (d *DB) FindOrCreateMitarbeiter(ctx context.Context, name string) (int64, error) {
	return d.findOrCreate(ctx, &models.Mitarbeiter{Name: name, Aktiv: true}, name)
}

func (d *DB) FindOrCreateDuftmittel(ctx context.Context, name string) (int64, error) {
	return d.findOrCreate(ctx, &models.Duftmittel{Name: name}, name)
}

func (d *DB) FindOrCreateSauna(ctx context.Context, name string) (int64, error) {
	return d.findOrCreate(ctx, &models.Sauna{Name: name}, name)
}

func (d *DB) FindOrCreateAufgussName(ctx context.Context, name string) (int64, error) {
	return d.findOrCreate(ctx, &models.AufgussName{Name: name}, name)
}

func (d *DB) findOrCreate(ctx context.Context, model interface{}, name string) (int64, error) {
	name = strings.TrimSpace(name)

	var id int64
	err := d.Bun.NewSelect().
		Model(model).
		Column("id").
		Where("name = ?", name).
		Order("id").
		Limit(1).
		Scan(ctx, &id)
	if err == nil {
		return id, nil
	}
	if !IsNotFound(err) {
		return 0, err
	}

	if _, err := d.Bun.NewInsert().Model(model).Exec(ctx); err != nil {
		return 0, err
	}
	return modelID(model), nil
}

func modelID(model interface{}) int64 {
	switch m := model.(type) {
	case *models.Mitarbeiter:
		return m.ID
	case *models.Duftmittel:
		return m.ID
	case *models.Sauna:
		return m.ID
	case *models.AufgussName:
		return m.ID
	}
	return 0
}

// SetBild stores an uploaded image path on a staff member or sauna.
func (d *DB) SetBild(ctx context.Context, model interface{}, id int64, path string) error {
	_, err := d.Bun.NewUpdate().
		Model(model).
		Set("bild = ?", path).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// UpdateColumn writes a single column of model, addressed by primary key.
// column is always one of the fixed names of an editable field.
func (d *DB) UpdateColumn(ctx context.Context, model interface{}, column string) error {
	_, err := d.Bun.NewUpdate().Model(model).Column(column).WherePK().Exec(ctx)
	return err
}

func (d *DB) detachAndDelete(ctx context.Context, model interface{}, fkColumn string, id int64) (bool, error) {
	var deleted bool
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*models.Aufguss)(nil)).
			Set("? = NULL", bun.Ident(fkColumn)).
			Where("? = ?", bun.Ident(fkColumn), id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model(model).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		deleted = n > 0
		return err
	})
	return deleted, err
}
