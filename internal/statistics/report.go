package statistics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"aufgussplan/internal/logger"
	"aufgussplan/internal/utils"
)

// Point is one labelled value of a series.
type Point struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Series is a value per period for one dimension value.
type Series struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Values []int  `json:"values"`
}

// Total sums the series.
func (s Series) Total() int {
	total := 0
	for _, v := range s.Values {
		total += v
	}
	return total
}

type Breakdown struct {
	Dimension Dimension `json:"dimension"`
	Title     string    `json:"title"`
	Series    []Series  `json:"series"`
}

type WindowReport struct {
	Granularity Granularity `json:"granularity"`
	Title       string      `json:"title"`
	Periods     []Period    `json:"periods"`
	Overall     []int       `json:"overall"`
	Breakdowns  []Breakdown `json:"breakdowns"`
}

// Labels returns the period labels of the window.
func (w WindowReport) Labels() []string {
	return Labels(w.Periods)
}

// Points pairs the overall counts with their period labels.
func (w WindowReport) Points() []Point {
	points := make([]Point, len(w.Periods))
	for i, p := range w.Periods {
		points[i] = Point{Label: p.Label, Value: w.Overall[i]}
	}
	return points
}

type Report struct {
	Anchor  string         `json:"anchor"`
	PlanIDs []int64        `json:"plan_ids"`
	Windows []WindowReport `json:"windows"`
}

type ReportStore interface {
	PlanIDs(ctx context.Context) ([]int64, error)
	FirstYear(ctx context.Context, plans []int64) (int, error)
	CountByPeriod(ctx context.Context, g Granularity, dim Dimension, from, to string, plans []int64) ([]GroupedCount, error)
	DimensionLabels(ctx context.Context, dim Dimension) (map[int64]string, error)
}

// Aggregator builds the zero-filled statistics report.
type Aggregator struct {
	DB       ReportStore
	Cache    ReportCache
	Logger   *logger.Logger
	Location *time.Location
	Now      func() time.Time
}

func NewAggregator(store ReportStore, cache ReportCache, loc *time.Location, log *logger.Logger) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{DB: store, Cache: cache, Logger: log, Location: loc, Now: time.Now}
}

// Report aggregates every window and dimension for the plan selection,
// anchored at today.
func (a *Aggregator) Report(ctx context.Context, selected []int64) (*Report, error) {
	known, err := a.DB.PlanIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load plan ids: %w", err)
	}
	plans := ResolvePlanFilter(selected, known)

	anchorDate := utils.Today(a.Now(), a.Location)
	cacheKey := anchorDate + ":" + planFilterKey(plans)
	var cacheVersion string
	if a.Cache != nil {
		cached, version, ok := a.Cache.Get(ctx, cacheKey)
		if ok {
			return cached, nil
		}
		cacheVersion = version
	}

	anchor, _ := utils.ParseDate(anchorDate, time.UTC)
	firstYear, err := a.DB.FirstYear(ctx, plans)
	if err != nil {
		return nil, err
	}

	labels := map[Dimension]map[int64]string{}
	for _, dim := range Dimensions {
		if labels[dim], err = a.DB.DimensionLabels(ctx, dim); err != nil {
			return nil, err
		}
	}

	report := &Report{Anchor: anchorDate, PlanIDs: plans}
	for _, g := range Granularities {
		w, err := a.window(ctx, g, anchor, firstYear, plans, labels)
		if err != nil {
			return nil, err
		}
		report.Windows = append(report.Windows, *w)
	}

	if a.Cache != nil {
		a.Cache.Set(ctx, cacheVersion, cacheKey, report)
	}
	return report, nil
}

func (a *Aggregator) window(ctx context.Context, g Granularity, anchor time.Time, firstYear int, plans []int64, labels map[Dimension]map[int64]string) (*WindowReport, error) {
	periods := Window(g, anchor, firstYear)
	from := periods[0].Start.Format(utils.DateLayout)
	to := anchor.Format(utils.DateLayout)

	overallRows, err := a.DB.CountByPeriod(ctx, g, Overall, from, to, plans)
	if err != nil {
		return nil, err
	}
	overall := map[string]int{}
	for _, r := range overallRows {
		overall[r.Period] += r.Total
	}

	w := &WindowReport{
		Granularity: g,
		Title:       g.Title(),
		Periods:     periods,
		Overall:     fill(periods, overall),
	}

	for _, dim := range Dimensions {
		rows, err := a.DB.CountByPeriod(ctx, g, dim, from, to, plans)
		if err != nil {
			return nil, err
		}
		w.Breakdowns = append(w.Breakdowns, Breakdown{
			Dimension: dim,
			Title:     dim.Title(),
			Series:    buildSeries(dim, periods, rows, labels[dim]),
		})
	}
	return w, nil
}

const noValue = -1

// buildSeries folds grouped rows into one zero-filled series per dimension
// value. Strength always has 1..6 plus the NULL bucket; other dimensions
// only show values that occur, NULL last.
func buildSeries(dim Dimension, periods []Period, rows []GroupedCount, names map[int64]string) []Series {
	byValue := map[int64]map[string]int{}
	for _, r := range rows {
		v := int64(noValue)
		if r.Dim.Valid {
			v = r.Dim.Int64
		}
		if byValue[v] == nil {
			byValue[v] = map[string]int{}
		}
		byValue[v][r.Period] += r.Total
	}

	var values []int64
	if dim == ByStrength {
		for s := int64(1); s <= 6; s++ {
			values = append(values, s)
		}
	} else {
		for v := range byValue {
			if v != noValue {
				values = append(values, v)
			}
		}
		sort.Slice(values, func(i, j int) bool {
			li, lj := seriesLabel(dim, values[i], names), seriesLabel(dim, values[j], names)
			if li != lj {
				return li < lj
			}
			return values[i] < values[j]
		})
	}
	if _, ok := byValue[noValue]; ok || dim == ByStrength {
		values = append(values, noValue)
	}

	series := make([]Series, 0, len(values))
	for _, v := range values {
		series = append(series, Series{
			Key:    seriesKey(dim, v),
			Label:  seriesLabel(dim, v, names),
			Values: fill(periods, byValue[v]),
		})
	}
	return series
}

func seriesKey(dim Dimension, v int64) string {
	if v == noValue {
		return fmt.Sprintf("%s_none", dim)
	}
	return fmt.Sprintf("%s_%d", dim, v)
}

func seriesLabel(dim Dimension, v int64, names map[int64]string) string {
	if v == noValue {
		switch dim {
		case ByScent:
			return "ohne Duftmittel"
		case BySauna:
			return "ohne Sauna"
		case ByName:
			return "ohne Namen"
		}
		return "ohne Stärke"
	}
	if dim == ByStrength {
		return fmt.Sprintf("Stärke %d", v)
	}
	if name, ok := names[v]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("#%d", v)
}
