package statistics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"aufgussplan/internal/database"
	"aufgussplan/internal/models"

	"github.com/uptrace/bun"
)

// Dimension is a grouping column of the fact table.
type Dimension string

const (
	Overall    Dimension = "gesamt"
	ByScent    Dimension = "duftmittel"
	BySauna    Dimension = "sauna"
	ByName     Dimension = "aufguss_name"
	ByStrength Dimension = "staerke"
)

// Dimensions lists the breakdowns in display order.
var Dimensions = []Dimension{ByScent, BySauna, ByName, ByStrength}

func (d Dimension) column() string {
	switch d {
	case ByScent:
		return "duftmittel_id"
	case BySauna:
		return "sauna_id"
	case ByName:
		return "aufguss_name_id"
	case ByStrength:
		return "staerke"
	}
	return ""
}

func (d Dimension) Title() string {
	switch d {
	case ByScent:
		return "Nach Duftmittel"
	case BySauna:
		return "Nach Sauna"
	case ByName:
		return "Nach Aufguss"
	case ByStrength:
		return "Nach Stärke"
	}
	return "Gesamt"
}

// GroupedCount is one row of a grouped fact query. Dim is invalid for the
// NULL bucket and for the overall dimension.
type GroupedCount struct {
	Period string        `bun:"period"`
	Dim    sql.NullInt64 `bun:"dim"`
	Total  int           `bun:"total"`
}

type DB struct {
	Bun *bun.DB
}

// periodExpr returns the dialect specific SQL producing PeriodKey for st.datum.
func periodExpr(db bun.IDB, g Granularity) string {
	if database.IsMySQL(db) {
		switch g {
		case Week:
			return "DATE_FORMAT(st.datum, '%x-W%v')"
		case Month:
			return "DATE_FORMAT(st.datum, '%Y-%m')"
		case Year:
			return "DATE_FORMAT(st.datum, '%Y')"
		}
		return "DATE_FORMAT(st.datum, '%Y-%m-%d')"
	}

	switch g {
	case Week:
		thursday := "date(st.datum, '-3 days', 'weekday 4')"
		return "printf('%s-W%02d', strftime('%Y', " + thursday + "), " +
			"(CAST(strftime('%j', " + thursday + ") AS INTEGER) - 1) / 7 + 1)"
	case Month:
		return "strftime('%Y-%m', st.datum)"
	case Year:
		return "strftime('%Y', st.datum)"
	}
	return "strftime('%Y-%m-%d', st.datum)"
}

// CountByPeriod sums anzahl per period, and per dimension value unless dim
// is Overall, for facts dated from..to inclusive.
func (d *DB) CountByPeriod(ctx context.Context, g Granularity, dim Dimension, from, to string, plans []int64) ([]GroupedCount, error) {
	q := d.Bun.NewSelect().
		TableExpr("statistik AS st").
		ColumnExpr(periodExpr(d.Bun, g) + " AS period").
		ColumnExpr("SUM(st.anzahl) AS total").
		Where("st.datum >= ?", from).
		Where("st.datum <= ?", to)

	if col := dim.column(); col != "" {
		q = q.ColumnExpr("st.? AS dim", bun.Ident(col)).GroupExpr("period, dim")
	} else {
		q = q.ColumnExpr("NULL AS dim").GroupExpr("period")
	}
	if len(plans) > 0 {
		q = q.Where("st.plan_id IN (?)", bun.In(plans))
	}

	var rows []GroupedCount
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("count %s by %s: %w", dim, g, err)
	}
	return rows, nil
}

// FirstYear returns the year of the oldest fact, or 0 when there is none.
func (d *DB) FirstYear(ctx context.Context, plans []int64) (int, error) {
	q := d.Bun.NewSelect().
		TableExpr("statistik AS st").
		ColumnExpr("MIN(st.datum)")
	if len(plans) > 0 {
		q = q.Where("st.plan_id IN (?)", bun.In(plans))
	}

	var first sql.NullString
	if err := q.Scan(ctx, &first); err != nil {
		return 0, fmt.Errorf("first statistik year: %w", err)
	}
	if !first.Valid || len(first.String) < 4 {
		return 0, nil
	}
	year, err := strconv.Atoi(first.String[:4])
	if err != nil {
		return 0, fmt.Errorf("parse statistik year %q: %w", first.String, err)
	}
	return year, nil
}

func (d *DB) PlanIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := d.Bun.NewSelect().Model((*models.Plan)(nil)).Column("id").Order("id").Scan(ctx, &ids)
	return ids, err
}

// DimensionLabels maps ids of the dimension's reference table to names.
func (d *DB) DimensionLabels(ctx context.Context, dim Dimension) (map[int64]string, error) {
	var table string
	switch dim {
	case ByScent:
		table = "duftmittel"
	case BySauna:
		table = "saunen"
	case ByName:
		table = "aufguss_namen"
	default:
		return map[int64]string{}, nil
	}

	var rows []struct {
		ID   int64  `bun:"id"`
		Name string `bun:"name"`
	}
	if err := d.Bun.NewSelect().TableExpr("?", bun.Ident(table)).Column("id", "name").Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("labels for %s: %w", dim, err)
	}
	labels := make(map[int64]string, len(rows))
	for _, r := range rows {
		labels[r.ID] = r.Name
	}
	return labels, nil
}

// AufgussFacts loads the dimensions a session contributes to the fact table.
func (d *DB) AufgussFacts(ctx context.Context, id int64) (*models.Aufguss, error) {
	var a models.Aufguss
	err := d.Bun.NewSelect().
		Model(&a).
		Column("id", "datum", "aufguss_name_id", "duftmittel_id", "sauna_id", "plan_id", "staerke").
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load aufguss %d: %w", id, err)
	}
	return &a, nil
}

// RecordOnce logs the session for datum and increments the matching fact
// row, all in one transaction. It reports false when the session was
// already logged that day.
func (d *DB) RecordOnce(ctx context.Context, a *models.Aufguss, datum string) (bool, error) {
	var logged bool
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		insertIgnore := "INSERT OR IGNORE"
		if database.IsMySQL(tx) {
			insertIgnore = "INSERT IGNORE"
		}
		res, err := tx.ExecContext(ctx, insertIgnore+" INTO statistik_log (aufguss_id, datum) VALUES (?, ?)", a.ID, datum)
		if err != nil {
			return fmt.Errorf("insert statistik_log: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		logged = true

		op := database.NullSafeEq(tx)
		var existing models.Statistik
		err = tx.NewSelect().
			Model(&existing).
			Column("id").
			Where("datum = ?", datum).
			Where("aufguss_name_id "+op+" ?", a.AufgussNameID).
			Where("duftmittel_id "+op+" ?", a.DuftmittelID).
			Where("sauna_id "+op+" ?", a.SaunaID).
			Where("plan_id "+op+" ?", a.PlanID).
			Where("staerke "+op+" ?", a.Staerke).
			Limit(1).
			Scan(ctx)

		switch {
		case err == nil:
			_, err = tx.NewUpdate().
				Model((*models.Statistik)(nil)).
				Set("anzahl = anzahl + 1").
				Where("id = ?", existing.ID).
				Exec(ctx)
			return err
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.NewInsert().Model(&models.Statistik{
				Datum:         datum,
				AufgussNameID: a.AufgussNameID,
				DuftmittelID:  a.DuftmittelID,
				SaunaID:       a.SaunaID,
				PlanID:        a.PlanID,
				Staerke:       a.Staerke,
				Anzahl:        1,
			}).Exec(ctx)
			return err
		default:
			return fmt.Errorf("match statistik row: %w", err)
		}
	})
	return logged, err
}

// Anzahl returns the sum of counts recorded for a date.
func (d *DB) Anzahl(ctx context.Context, datum string) (int, error) {
	var total sql.NullInt64
	err := d.Bun.NewSelect().
		Model((*models.Statistik)(nil)).
		ColumnExpr("SUM(anzahl)").
		Where("datum = ?", datum).
		Scan(ctx, &total)
	return int(total.Int64), err
}
