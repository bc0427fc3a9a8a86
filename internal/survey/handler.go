package survey

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"aufgussplan/internal/logger"
	"aufgussplan/internal/models"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	adminTemplate = template.Must(template.ParseFS(templateFS, "templates/umfragen.html"))
	printTemplate = template.Must(template.ParseFS(templateFS, "templates/umfrage.html"))
)

// RatingScale is the number of boxes printed per criterion.
const RatingScale = 5

type PlanLister interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

type SessionLister interface {
	ListAufguesse(ctx context.Context, datum string, planID *int64) ([]models.AufgussDetail, error)
}

type Handler struct {
	Plans    PlanLister
	Sessions SessionLister
	Criteria CriteriaStore
	Logger   *logger.Logger
}

// NewHandler wires the survey pages. criteria may be nil, in which case
// entered criteria are not remembered.
func NewHandler(plans PlanLister, sessions SessionLister, criteria CriteriaStore, log *logger.Logger) *Handler {
	return &Handler{Plans: plans, Sessions: sessions, Criteria: criteria, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/umfrage", h.Print)
	r.Post("/umfrage", h.Print)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/admin/umfragen", h.Admin)
}

type planButton struct {
	ID     int64
	Name   string
	Active bool
}

type criterionField struct {
	Key   string
	Label string
	Value string
}

type adminData struct {
	Plans    []planButton
	Selected *models.Plan
	Sessions []string
	Criteria []criterionField
}

// selectPlan picks the requested plan, falling back to the first plan when
// the id is missing or unknown.
func selectPlan(plans []models.Plan, requested int64) *models.Plan {
	for i := range plans {
		if plans[i].ID == requested {
			return &plans[i]
		}
	}
	if len(plans) > 0 {
		return &plans[0]
	}
	return nil
}

func sessionLabel(a models.AufgussDetail) string {
	switch {
	case a.AufgussName != "":
		return a.AufgussName
	case a.Name != "":
		return a.Name
	default:
		return "Aufguss"
	}
}

func (h *Handler) planSessions(ctx context.Context, planID int64) ([]models.AufgussDetail, error) {
	return h.Sessions.ListAufguesse(ctx, "", &planID)
}

// Admin renders plan selection, the plan's sessions and the criteria form.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := h.Plans.ListPlans(ctx)
	if err != nil {
		h.fail(w, "list plans", err)
		return
	}

	requested, _ := strconv.ParseInt(r.URL.Query().Get("plan_id"), 10, 64)
	selected := selectPlan(plans, requested)

	data := adminData{}
	for _, p := range plans {
		data.Plans = append(data.Plans, planButton{ID: p.ID, Name: p.Name, Active: selected != nil && p.ID == selected.ID})
	}

	var criteria Criteria
	if selected != nil {
		data.Selected = selected
		rows, err := h.planSessions(ctx, selected.ID)
		if err != nil {
			h.fail(w, "list sessions", err)
			return
		}
		for _, row := range rows {
			data.Sessions = append(data.Sessions, sessionLabel(row))
		}
		if h.Criteria != nil {
			if criteria, err = h.Criteria.Load(ctx, selected.ID); err != nil {
				h.Logger.Warn("UMFRAGE", fmt.Sprintf("Criteria for plan %d not loaded: %v", selected.ID, err))
			}
		}
	}
	for i, v := range criteria {
		data.Criteria = append(data.Criteria, criterionField{Key: Key(i), Label: fmt.Sprintf("Kriterium %d", i+1), Value: v})
	}

	h.render(w, adminTemplate, data)
}

type gridRow struct {
	Label string
	Time  string
}

type printData struct {
	PlanName string
	Rows     []gridRow
	Criteria []string
	Scale    []int
}

// Print renders the printable grid of the plan's sessions against the
// entered criteria. A POST stores the criteria for the plan; clear=1
// forgets them and sends the admin back to the form.
func (h *Handler) Print(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Ungültige Formulardaten", http.StatusBadRequest)
		return
	}

	planID, err := strconv.ParseInt(r.Form.Get("plan_id"), 10, 64)
	if err != nil || planID <= 0 {
		http.Error(w, "Plan-ID fehlt", http.StatusBadRequest)
		return
	}

	if r.Method == http.MethodPost && h.Criteria != nil {
		if r.Form.Get("clear") == "1" {
			if err := h.Criteria.Clear(ctx, planID); err != nil {
				h.Logger.Warn("UMFRAGE", fmt.Sprintf("Criteria for plan %d not cleared: %v", planID, err))
			}
			http.Redirect(w, r, fmt.Sprintf("/admin/umfragen?plan_id=%d", planID), http.StatusSeeOther)
			return
		}
	}

	criteria := ParseCriteria(r.Form)
	if r.Method == http.MethodPost && h.Criteria != nil {
		if err := h.Criteria.Save(ctx, planID, criteria); err != nil {
			h.Logger.Warn("UMFRAGE", fmt.Sprintf("Criteria for plan %d not saved: %v", planID, err))
		}
	}

	plans, err := h.Plans.ListPlans(ctx)
	if err != nil {
		h.fail(w, "list plans", err)
		return
	}
	var plan *models.Plan
	for i := range plans {
		if plans[i].ID == planID {
			plan = &plans[i]
		}
	}
	if plan == nil {
		http.Error(w, "Plan nicht gefunden", http.StatusNotFound)
		return
	}

	rows, err := h.planSessions(ctx, planID)
	if err != nil {
		h.fail(w, "list sessions", err)
		return
	}

	data := printData{PlanName: plan.Name, Criteria: criteria.Filled()}
	for i := 1; i <= RatingScale; i++ {
		data.Scale = append(data.Scale, i)
	}
	for _, row := range rows {
		start := row.ZeitAnfang
		if start == "" {
			start = row.Zeit
		}
		if len(start) > 5 {
			start = start[:5]
		}
		data.Rows = append(data.Rows, gridRow{Label: sessionLabel(row), Time: start})
	}

	h.render(w, printTemplate, data)
}

func (h *Handler) render(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.Logger.Error("UMFRAGE", fmt.Sprintf("Failed to render page: %v", err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, what string, err error) {
	h.Logger.Error("UMFRAGE", fmt.Sprintf("Failed to %s: %v", what, err))
	http.Error(w, "Interner Serverfehler", http.StatusInternalServerError)
}
