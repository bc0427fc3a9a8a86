package database

import (
	"context"
	"fmt"

	"aufgussplan/internal/models"

	"github.com/uptrace/bun"
)

var schemaModels = []interface{}{
	(*models.Plan)(nil),
	(*models.Mitarbeiter)(nil),
	(*models.Duftmittel)(nil),
	(*models.Sauna)(nil),
	(*models.AufgussName)(nil),
	(*models.Aufguss)(nil),
	(*models.Statistik)(nil),
	(*models.StatistikLog)(nil),
}

// CreateSchema creates every table from the bun models. Production MySQL is
// managed by the migrations package; this is for SQLite and local setups.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range schemaModels {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}
