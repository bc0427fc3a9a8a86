package db

import (
	"context"
	"database/sql"
	"errors"

	"aufgussplan/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// AufgussFilter narrows ListAufguesse. PlanID wins over Datum.
type AufgussFilter struct {
	Datum  string
	PlanID *int64
}

func (d *DB) detailQuery(rows interface{}) *bun.SelectQuery {
	return d.Bun.NewSelect().
		Model(rows).
		ColumnExpr("a.*").
		ColumnExpr("p.name AS plan_name").
		ColumnExpr("an.name AS aufguss_name").
		ColumnExpr("d.name AS duftmittel_name").
		ColumnExpr("s.name AS sauna_name").
		ColumnExpr("s.bild AS sauna_bild").
		ColumnExpr("m.name AS mitarbeiter_name").
		ColumnExpr("m.bild AS mitarbeiter_bild").
		Join("LEFT JOIN plaene AS p ON p.id = a.plan_id").
		Join("LEFT JOIN aufguss_namen AS an ON an.id = a.aufguss_name_id").
		Join("LEFT JOIN duftmittel AS d ON d.id = a.duftmittel_id").
		Join("LEFT JOIN saunen AS s ON s.id = a.sauna_id").
		Join("LEFT JOIN mitarbeiter AS m ON m.id = a.mitarbeiter_id")
}

// ListAufguesse returns sessions with their reference names, ordered by date
// and start time.
func (d *DB) ListAufguesse(ctx context.Context, filter AufgussFilter) ([]models.AufgussDetail, error) {
	rows := []models.AufgussDetail{}
	q := d.detailQuery(&rows)
	switch {
	case filter.PlanID != nil:
		q = q.Where("a.plan_id = ?", *filter.PlanID)
	case filter.Datum != "":
		q = q.Where("a.datum = ?", filter.Datum)
	}
	err := q.OrderExpr("a.datum ASC, a.zeit_anfang ASC, a.id ASC").Scan(ctx)
	return rows, err
}

func (d *DB) GetAufgussDetail(ctx context.Context, id int64) (*models.AufgussDetail, error) {
	var row models.AufgussDetail
	err := d.detailQuery(&row).Where("a.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetAufguss(ctx context.Context, id int64) (*models.Aufguss, error) {
	var aufguss models.Aufguss
	err := d.Bun.NewSelect().
		Model(&aufguss).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &aufguss, nil
}

func (d *DB) AufgussExists(ctx context.Context, id int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Aufguss)(nil)).
		Where("id = ?", id).
		Exists(ctx)
}

func (d *DB) CreateAufguss(ctx context.Context, aufguss *models.Aufguss) error {
	_, err := d.Bun.NewInsert().Model(aufguss).ExcludeColumn("erstellt_am").Exec(ctx)
	return err
}

func (d *DB) UpdateAufguss(ctx context.Context, aufguss *models.Aufguss) error {
	_, err := d.Bun.NewUpdate().
		Model(aufguss).
		Column("name", "datum", "zeit", "zeit_anfang", "zeit_ende", "staerke",
			"plan_id", "duftmittel_id", "sauna_id", "mitarbeiter_id", "aufguss_name_id").
		WherePK().
		Exec(ctx)
	return err
}

// DeleteAufguss reports whether a row was removed.
func (d *DB) DeleteAufguss(ctx context.Context, id int64) (bool, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Aufguss)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
