package statistics

import (
	"context"
	"testing"
	"time"

	"aufgussplan/internal/database/dbtest"
	"aufgussplan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 { return &v }
func iptr(v int) *int    { return &v }

func newStatsDB(t *testing.T) *DB {
	return &DB{Bun: dbtest.New(t)}
}

func insertAufguss(t *testing.T, d *DB, a *models.Aufguss) *models.Aufguss {
	t.Helper()
	_, err := d.Bun.NewInsert().Model(a).ExcludeColumn("erstellt_am").Exec(context.Background())
	require.NoError(t, err)
	return a
}

func insertFact(t *testing.T, d *DB, f *models.Statistik) {
	t.Helper()
	_, err := d.Bun.NewInsert().Model(f).Exec(context.Background())
	require.NoError(t, err)
}

func TestRecordOnceGuardsDoubleLog(t *testing.T) {
	d := newStatsDB(t)
	ctx := context.Background()
	a := insertAufguss(t, d, &models.Aufguss{Datum: "2024-01-10", ZeitAnfang: "10:00:00", DuftmittelID: i64(3)})

	logged, err := d.RecordOnce(ctx, a, "2024-01-10")
	require.NoError(t, err)
	assert.True(t, logged)

	logged, err = d.RecordOnce(ctx, a, "2024-01-10")
	require.NoError(t, err)
	assert.False(t, logged)

	total, err := d.Anzahl(ctx, "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestRecordOnceMatchesNullDimensions(t *testing.T) {
	d := newStatsDB(t)
	ctx := context.Background()
	first := insertAufguss(t, d, &models.Aufguss{Datum: "2024-01-10", ZeitAnfang: "10:00:00", SaunaID: i64(2)})
	second := insertAufguss(t, d, &models.Aufguss{Datum: "2024-01-10", ZeitAnfang: "12:00:00", SaunaID: i64(2)})

	for _, a := range []*models.Aufguss{first, second} {
		logged, err := d.RecordOnce(ctx, a, "2024-01-10")
		require.NoError(t, err)
		assert.True(t, logged)
	}

	var facts []models.Statistik
	require.NoError(t, d.Bun.NewSelect().Model(&facts).Scan(ctx))
	require.Len(t, facts, 1)
	assert.Equal(t, 2, facts[0].Anzahl)
	assert.Nil(t, facts[0].Staerke)
	assert.Nil(t, facts[0].DuftmittelID)
}

func TestRecordOnceSeparatesDistinctDimensions(t *testing.T) {
	d := newStatsDB(t)
	ctx := context.Background()
	weak := insertAufguss(t, d, &models.Aufguss{Datum: "2024-01-10", ZeitAnfang: "10:00:00", Staerke: iptr(2)})
	none := insertAufguss(t, d, &models.Aufguss{Datum: "2024-01-10", ZeitAnfang: "11:00:00"})

	_, err := d.RecordOnce(ctx, weak, "2024-01-10")
	require.NoError(t, err)
	_, err = d.RecordOnce(ctx, none, "2024-01-10")
	require.NoError(t, err)

	count, err := d.Bun.NewSelect().Model((*models.Statistik)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAufgussFactsNotFound(t *testing.T) {
	d := newStatsDB(t)
	_, err := d.AufgussFacts(context.Background(), 999)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCountByPeriodWeekKeysMatchGo(t *testing.T) {
	d := newStatsDB(t)
	ctx := context.Background()
	dates := []string{"2021-01-03", "2021-01-04", "2024-12-30", "2024-03-14", "2020-12-31"}
	for _, datum := range dates {
		insertFact(t, d, &models.Statistik{Datum: datum, Anzahl: 1})
	}

	rows, err := d.CountByPeriod(ctx, Week, Overall, "2020-01-01", "2025-12-31", nil)
	require.NoError(t, err)

	got := map[string]int{}
	for _, r := range rows {
		got[r.Period] += r.Total
	}
	want := map[string]int{}
	for _, datum := range dates {
		tm, err := time.Parse("2006-01-02", datum)
		require.NoError(t, err)
		want[PeriodKey(Week, tm)]++
	}
	assert.Equal(t, want, got)
}

func TestCountByPeriodGroupsDimensionAndFiltersPlans(t *testing.T) {
	d := newStatsDB(t)
	ctx := context.Background()
	insertFact(t, d, &models.Statistik{Datum: "2024-01-10", DuftmittelID: i64(1), PlanID: i64(1), Anzahl: 2})
	insertFact(t, d, &models.Statistik{Datum: "2024-01-10", DuftmittelID: i64(1), PlanID: i64(2), Anzahl: 3})
	insertFact(t, d, &models.Statistik{Datum: "2024-01-11", PlanID: i64(1), Anzahl: 4})
	insertFact(t, d, &models.Statistik{Datum: "2023-12-01", DuftmittelID: i64(1), PlanID: i64(1), Anzahl: 9})

	rows, err := d.CountByPeriod(ctx, Day, ByScent, "2024-01-04", "2024-01-11", []int64{1})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byKey := map[string]GroupedCount{}
	for _, r := range rows {
		byKey[r.Period] = r
	}
	assert.Equal(t, 2, byKey["2024-01-10"].Total)
	assert.Equal(t, int64(1), byKey["2024-01-10"].Dim.Int64)
	assert.Equal(t, 4, byKey["2024-01-11"].Total)
	assert.False(t, byKey["2024-01-11"].Dim.Valid)
}

func TestFirstYear(t *testing.T) {
	d := newStatsDB(t)
	ctx := context.Background()

	year, err := d.FirstYear(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, year)

	insertFact(t, d, &models.Statistik{Datum: "2022-05-01", PlanID: i64(2), Anzahl: 1})
	insertFact(t, d, &models.Statistik{Datum: "2023-05-01", PlanID: i64(1), Anzahl: 1})

	year, err = d.FirstYear(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2022, year)

	year, err = d.FirstYear(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, 2023, year)
}
