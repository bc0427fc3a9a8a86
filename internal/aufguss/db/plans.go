package db

import (
	"context"

	"aufgussplan/internal/models"

	"github.com/uptrace/bun"
)

func (d *DB) ListPlans(ctx context.Context) ([]models.Plan, error) {
	plans := []models.Plan{}
	err := d.Bun.NewSelect().
		Model(&plans).
		Order("name", "id").
		Scan(ctx)
	return plans, err
}

func (d *DB) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	var plan models.Plan
	err := d.Bun.NewSelect().
		Model(&plan).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// PlanIDs lists every known plan id; the statistics filter intersects with it.
func (d *DB) PlanIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := d.Bun.NewSelect().
		Model((*models.Plan)(nil)).
		Column("id").
		Order("id").
		Scan(ctx, &ids)
	return ids, err
}

func (d *DB) CreatePlan(ctx context.Context, plan *models.Plan) error {
	_, err := d.Bun.NewInsert().Model(plan).ExcludeColumn("erstellt_am").Exec(ctx)
	return err
}

// DeletePlan detaches the plan's sessions and removes it in one transaction.
func (d *DB) DeletePlan(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*models.Aufguss)(nil)).
			Set("plan_id = NULL").
			Where("plan_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*models.Plan)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		deleted = n > 0
		return err
	})
	return deleted, err
}

func (d *DB) UpdatePlanAd(ctx context.Context, plan *models.Plan) error {
	_, err := d.Bun.NewUpdate().
		Model(plan).
		Column("werbung_media", "werbung_media_typ", "werbung_media_name",
			"werbung_interval_minuten", "werbung_dauer_sekunden", "werbung_aktiv").
		WherePK().
		Exec(ctx)
	return err
}
