package statistics_api

import (
	"fmt"
	"html/template"

	"aufgussplan/internal/charts"
	"aufgussplan/internal/statistics"
)

type chartView struct {
	ID     string
	Title  string
	SVG    template.HTML
	Totals template.HTML
	Legend template.HTML
	Table  template.HTML
}

type windowView struct {
	Title      string
	Overall    chartView
	Breakdowns []chartView
}

func chartID(g statistics.Granularity, dim statistics.Dimension) string {
	return fmt.Sprintf("%s.%s", g, dim)
}

func toSeries(in []statistics.Series) []charts.Series {
	out := make([]charts.Series, len(in))
	for i, s := range in {
		out[i] = charts.Series{Key: s.Key, Label: s.Label, Values: s.Values}
	}
	return out
}

func totals(in []statistics.Series) []charts.Point {
	points := make([]charts.Point, 0, len(in))
	for _, s := range in {
		points = append(points, charts.Point{Label: s.Label, Value: s.Total()})
	}
	return points
}

// buildViews renders every window of the report and collects the chart JSON
// keyed by "<granularity>.<dimension>".
func buildViews(report *statistics.Report) ([]windowView, map[string]charts.ChartJSON) {
	views := make([]windowView, 0, len(report.Windows))
	data := map[string]charts.ChartJSON{}

	for _, w := range report.Windows {
		labels := w.Labels()
		overallSeries := []charts.Series{{Key: string(statistics.Overall), Label: "Gesamt", Values: w.Overall}}
		points := make([]charts.Point, len(labels))
		for i, l := range labels {
			points[i] = charts.Point{Label: l, Value: w.Overall[i]}
		}

		id := chartID(w.Granularity, statistics.Overall)
		view := windowView{
			Title: w.Title,
			Overall: chartView{
				ID:    id,
				Title: "Gesamt",
				SVG:   charts.Column(points),
				Table: charts.Table("Gesamt", labels, overallSeries),
			},
		}
		data[id] = charts.PointsJSON("bar", string(statistics.Overall), "Gesamt", points)

		for _, b := range w.Breakdowns {
			series := toSeries(b.Series)
			id := chartID(w.Granularity, b.Dimension)
			svg := charts.Line(labels, series)
			kind := "line"
			if b.Dimension == statistics.ByStrength {
				svg = charts.Area(labels, series)
				kind = "area"
			}
			view.Breakdowns = append(view.Breakdowns, chartView{
				ID:     id,
				Title:  b.Title,
				SVG:    svg,
				Totals: charts.BarList(totals(b.Series)),
				Legend: charts.Legend(series),
				Table:  charts.Table(b.Title, labels, series),
			})
			data[id] = charts.SeriesJSON(kind, labels, series)
		}
		views = append(views, view)
	}
	return views, data
}
