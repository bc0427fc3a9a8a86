package statistics_api

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"aufgussplan/internal/models"
	"aufgussplan/internal/statistics"
)

//go:embed templates/statistik.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/statistik.html"))

type planOption struct {
	ID      int64
	Name    string
	Checked bool
}

type pageData struct {
	Anchor    string
	Plans     []planOption
	Filtered  bool
	Windows   []windowView
	ChartData template.JS
}

// Page renders the statistics overview with SVG charts, tables and the chart
// JSON for the client side library.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	selected := statistics.ParsePlanIDs(r.URL.Query()["plan_id"])

	plans, err := h.Plans.ListPlans(ctx)
	if err != nil {
		h.Logger.Error("STATISTIK", fmt.Sprintf("Failed to list plans: %v", err))
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	report, err := h.Reporter.Report(ctx, selected)
	if err != nil {
		h.Logger.Error("STATISTIK", fmt.Sprintf("Failed to build report: %v", err))
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	views, chartData := buildViews(report)
	raw, err := json.Marshal(chartData)
	if err != nil {
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	data := pageData{
		Anchor:    report.Anchor,
		Plans:     planOptions(plans, report.PlanIDs),
		Filtered:  len(report.PlanIDs) > 0,
		Windows:   views,
		ChartData: template.JS(raw),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		h.Logger.Error("STATISTIK", fmt.Sprintf("Failed to render page: %v", err))
	}
}

// planOptions checks every plan when no filter applies.
func planOptions(plans []models.Plan, filter []int64) []planOption {
	active := make(map[int64]bool, len(filter))
	for _, id := range filter {
		active[id] = true
	}
	options := make([]planOption, len(plans))
	for i, p := range plans {
		options[i] = planOption{ID: p.ID, Name: p.Name, Checked: len(filter) == 0 || active[p.ID]}
	}
	return options
}
