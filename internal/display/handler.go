package display

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"aufgussplan/internal/logger"
	"aufgussplan/internal/models"
	"aufgussplan/internal/screens"
	"aufgussplan/internal/utils"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/display.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/display.html"))

const pollSeconds = 30

// ScreenSource resolves a screen's configuration.
type ScreenSource interface {
	Get(id int) (models.Screen, models.GlobalAd, error)
}

type TodayProvider interface {
	Today(ctx context.Context, planID *int64) (*Today, error)
}

type Handler struct {
	Service TodayProvider
	Screens ScreenSource
	Events  http.Handler
	Logger  *logger.Logger
}

func NewHandler(service TodayProvider, screenSource ScreenSource, events http.Handler, log *logger.Logger) *Handler {
	return &Handler{Service: service, Screens: screenSource, Events: events, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Page)
	r.Get("/bildschirm/{id}", h.ScreenPage)
	r.Get("/api/display/heute", h.GetToday)
	if h.Events != nil {
		r.Method(http.MethodGet, "/api/display/events", h.Events)
	}
}

// GetToday returns today's sessions with the running one marked.
func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	var planID *int64
	if raw := r.URL.Query().Get("plan_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Ungültige Plan-ID"))
			return
		}
		planID = &id
	}

	today, err := h.Service.Today(r.Context(), planID)
	if err != nil {
		h.Logger.Error("DISPLAY", fmt.Sprintf("Failed to load today's sessions: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Interner Serverfehler"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Aufgüsse erfolgreich abgerufen", today))
}

type pageConfig struct {
	ScreenID       int              `json:"screen_id,omitempty"`
	Mode           string           `json:"mode"`
	PlanID         *int64           `json:"plan_id"`
	ImagePath      *string          `json:"image_path"`
	BackgroundPath *string          `json:"background_path"`
	GlobalAd       *models.GlobalAd `json:"global_ad,omitempty"`
	PollSeconds    int              `json:"poll_seconds"`
}

type pageData struct {
	Title  string
	Config template.JS
}

// Page renders the general display, optionally narrowed by ?plan_id=.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	cfg := pageConfig{Mode: models.ScreenModePlan, PollSeconds: pollSeconds}
	if raw := r.URL.Query().Get("plan_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			cfg.PlanID = &id
		}
	}
	h.render(w, "Aufgussplan", cfg)
}

// ScreenPage renders the display for one configured screen.
func (h *Handler) ScreenPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	screen, ad, err := h.Screens.Get(id)
	if errors.Is(err, screens.ErrInvalidScreen) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.Logger.Error("DISPLAY", fmt.Sprintf("Failed to load screen %d: %v", id, err))
		http.Error(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	cfg := pageConfig{
		ScreenID:       screen.ID,
		Mode:           screen.Mode,
		PlanID:         screen.PlanID,
		ImagePath:      screen.ImagePath,
		BackgroundPath: screen.BackgroundPath,
		PollSeconds:    pollSeconds,
	}
	if ad.Path != nil {
		cfg.GlobalAd = &ad
	}
	h.render(w, fmt.Sprintf("Bildschirm %d", id), cfg)
}

func (h *Handler) render(w http.ResponseWriter, title string, cfg pageConfig) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		http.Error(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, pageData{Title: title, Config: template.JS(raw)}); err != nil {
		h.Logger.Error("DISPLAY", fmt.Sprintf("Failed to render display: %v", err))
	}
}
