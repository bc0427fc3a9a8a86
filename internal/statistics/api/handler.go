package statistics_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"aufgussplan/internal/logger"
	"aufgussplan/internal/models"
	"aufgussplan/internal/statistics"
	"aufgussplan/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

const (
	msgInvalidID     = "aufguss_id fehlt oder ungueltig"
	msgNotFound      = "Aufguss nicht gefunden"
	msgPostOnly      = "Nur POST erlaubt"
	msgAlreadyLogged = "bereits geloggt"
	msgInternal      = "Interner Serverfehler"

	defaultRateLimit = 120
)

type Recorder interface {
	Log(ctx context.Context, aufgussID int64) (statistics.LogResult, error)
}

type Reporter interface {
	Report(ctx context.Context, selected []int64) (*statistics.Report, error)
}

type PlanLister interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// Handler serves the statistics log endpoint, the JSON report and the
// admin statistics page.
type Handler struct {
	Recorder  Recorder
	Reporter  Reporter
	Plans     PlanLister
	Logger    *logger.Logger
	RateLimit int // log requests per IP and minute
}

func NewHandler(recorder Recorder, reporter Reporter, plans PlanLister, log *logger.Logger) *Handler {
	return &Handler{
		Recorder:  recorder,
		Reporter:  reporter,
		Plans:     plans,
		Logger:    log,
		RateLimit: defaultRateLimit,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	limit := h.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	r.With(httprate.LimitByIP(limit, time.Minute)).HandleFunc("/api/statistik", h.LogAufguss)
	r.Get("/api/statistik/report", h.GetReport)
}

// RegisterAdminRoutes registers the statistics page; the caller wraps it in
// the admin session middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/admin/statistik", h.Page)
}

// LogAufguss counts one display of a session.
func (h *Handler) LogAufguss(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteJSON(w, http.StatusMethodNotAllowed, utils.ErrorResponse(msgPostOnly))
		return
	}

	id, ok := readAufgussID(w, r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(msgInvalidID))
		return
	}

	res, err := h.Recorder.Log(r.Context(), id)
	if errors.Is(err, statistics.ErrSessionNotFound) {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(msgNotFound))
		return
	}
	if err != nil {
		h.Logger.Error("STATISTIK", fmt.Sprintf("Failed to log aufguss %d: %v", id, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(msgInternal))
		return
	}

	if !res.Logged {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: msgAlreadyLogged})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true})
}

// readAufgussID accepts a JSON body or a form field; numbers may be quoted.
func readAufgussID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)

	var raw string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		raw = r.FormValue("aufguss_id")
	} else {
		var body struct {
			AufgussID json.Number `json:"aufguss_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return 0, false
		}
		raw = body.AufgussID.String()
	}

	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// GetReport returns the aggregated report plus the chart structures.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reporter.Report(r.Context(), statistics.ParsePlanIDs(r.URL.Query()["plan_id"]))
	if err != nil {
		h.Logger.Error("STATISTIK", fmt.Sprintf("Failed to build report: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(msgInternal))
		return
	}

	_, chartData := buildViews(report)
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Statistik erfolgreich abgerufen", map[string]interface{}{
		"report": report,
		"charts": chartData,
	}))
}
