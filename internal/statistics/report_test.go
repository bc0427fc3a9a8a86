package statistics

import (
	"context"
	"testing"
	"time"

	"aufgussplan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAggregator(t *testing.T, d *DB, cache ReportCache) *Aggregator {
	agg := NewAggregator(d, cache, time.UTC, nil)
	agg.Now = fixedNow
	return agg
}

func seedPlans(t *testing.T, d *DB, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := d.Bun.NewInsert().Model(&models.Plan{Name: name}).
			ExcludeColumn("erstellt_am", "werbung_interval_minuten", "werbung_dauer_sekunden", "werbung_aktiv").
			Exec(context.Background())
		require.NoError(t, err)
	}
}

func windowFor(t *testing.T, r *Report, g Granularity) WindowReport {
	t.Helper()
	for _, w := range r.Windows {
		if w.Granularity == g {
			return w
		}
	}
	t.Fatalf("window %s missing", g)
	return WindowReport{}
}

func breakdownFor(t *testing.T, w WindowReport, dim Dimension) Breakdown {
	t.Helper()
	for _, b := range w.Breakdowns {
		if b.Dimension == dim {
			return b
		}
	}
	t.Fatalf("breakdown %s missing", dim)
	return Breakdown{}
}

func TestReportZeroFillsEmptyStore(t *testing.T) {
	d := newStatsDB(t)
	report, err := newAggregator(t, d, nil).Report(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-12", report.Anchor)
	require.Len(t, report.Windows, 4)

	days := windowFor(t, report, Day)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, days.Overall)
	assert.Len(t, windowFor(t, report, Year).Overall, 1)

	strength := breakdownFor(t, days, ByStrength)
	require.Len(t, strength.Series, 7)
	assert.Equal(t, "Stärke 1", strength.Series[0].Label)
	assert.Equal(t, "ohne Stärke", strength.Series[6].Label)
	assert.Equal(t, "staerke_none", strength.Series[6].Key)
	assert.Empty(t, breakdownFor(t, days, ByScent).Series)
}

func TestReportGroupsDimensions(t *testing.T) {
	d := newStatsDB(t)
	ctx := context.Background()
	_, err := d.Bun.NewInsert().Model(&models.Duftmittel{Name: "Eukalyptus"}).Exec(ctx)
	require.NoError(t, err)

	insertFact(t, d, &models.Statistik{Datum: "2024-01-12", DuftmittelID: i64(1), Staerke: iptr(3), Anzahl: 2})
	insertFact(t, d, &models.Statistik{Datum: "2024-01-10", Anzahl: 1})
	insertFact(t, d, &models.Statistik{Datum: "2022-06-01", DuftmittelID: i64(7), Anzahl: 5})

	report, err := newAggregator(t, d, nil).Report(ctx, nil)
	require.NoError(t, err)

	days := windowFor(t, report, Day)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 0, 2}, days.Overall)
	assert.Equal(t, "12.01.", days.Points()[6].Label)

	scents := breakdownFor(t, days, ByScent)
	require.Len(t, scents.Series, 2)
	assert.Equal(t, "Eukalyptus", scents.Series[0].Label)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 2}, scents.Series[0].Values)
	assert.Equal(t, "ohne Duftmittel", scents.Series[1].Label)

	strength := breakdownFor(t, days, ByStrength)
	assert.Equal(t, 2, strength.Series[2].Total())
	assert.Equal(t, 1, strength.Series[6].Total())
	assert.Zero(t, strength.Series[0].Total())

	years := windowFor(t, report, Year)
	assert.Equal(t, []string{"2022", "2023", "2024"}, years.Labels())
	assert.Equal(t, []int{5, 0, 3}, years.Overall)
	yearScents := breakdownFor(t, years, ByScent)
	assert.Equal(t, "#7", yearScents.Series[0].Label)
}

func TestReportFullPlanSelectionEqualsNoSelection(t *testing.T) {
	d := newStatsDB(t)
	ctx := context.Background()
	seedPlans(t, d, "Montag", "Dienstag")
	insertFact(t, d, &models.Statistik{Datum: "2024-01-11", PlanID: i64(1), Anzahl: 2})
	insertFact(t, d, &models.Statistik{Datum: "2024-01-11", PlanID: i64(2), Anzahl: 3})

	agg := newAggregator(t, d, nil)
	all, err := agg.Report(ctx, nil)
	require.NoError(t, err)
	full, err := agg.Report(ctx, []int64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, all, full)

	one, err := agg.Report(ctx, []int64{2, 99})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, one.PlanIDs)
	assert.Equal(t, 3, windowFor(t, one, Day).Overall[5])
}

func TestReportUsesCacheUntilInvalidated(t *testing.T) {
	d := newStatsDB(t)
	_, client := newRedis(t)
	cache := NewRedisReportCache(client, time.Minute, nil)
	agg := newAggregator(t, d, cache)
	ctx := context.Background()

	first, err := agg.Report(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Windows[0].Overall[6])

	insertFact(t, d, &models.Statistik{Datum: "2024-01-12", Anzahl: 4})

	cached, err := agg.Report(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, cached.Windows[0].Overall[6])

	cache.Invalidate(ctx)
	fresh, err := agg.Report(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.Windows[0].Overall[6])
}

// invalidatingStore logs a session through the recorder while the first
// report is still being computed.
type invalidatingStore struct {
	*DB
	during func()
}

func (s *invalidatingStore) CountByPeriod(ctx context.Context, g Granularity, dim Dimension, from, to string, plans []int64) ([]GroupedCount, error) {
	rows, err := s.DB.CountByPeriod(ctx, g, dim, from, to, plans)
	if s.during != nil {
		during := s.during
		s.during = nil
		during()
	}
	return rows, err
}

func TestReportComputedAcrossInvalidationIsNotServed(t *testing.T) {
	d := newStatsDB(t)
	_, client := newRedis(t)
	cache := NewRedisReportCache(client, time.Minute, nil)
	ctx := context.Background()

	rec := NewRecorder(d, NewLocker(client), cache, nil, time.UTC, nil)
	rec.Now = fixedNow
	a := insertAufguss(t, d, &models.Aufguss{Datum: "2024-01-12", ZeitAnfang: "09:00:00"})

	store := &invalidatingStore{DB: d}
	store.during = func() {
		res, err := rec.Log(ctx, a.ID)
		require.NoError(t, err)
		require.True(t, res.Logged)
	}
	agg := NewAggregator(store, cache, time.UTC, nil)
	agg.Now = fixedNow

	stale, err := agg.Report(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stale.Windows[0].Overall[6])

	fresh, err := agg.Report(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Windows[0].Overall[6])
}
