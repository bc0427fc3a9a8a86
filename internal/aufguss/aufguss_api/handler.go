package aufguss_api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	aufguss "aufgussplan/internal/aufguss/service"
	"aufgussplan/internal/logger"
	"aufgussplan/internal/upload"
	"aufgussplan/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	msgInternal          = "Interner Serverfehler"
	msgMethodNotAllowed  = "HTTP-Methode nicht unterstützt"
	msgAufgussIDRequired = "Aufguss-ID ist erforderlich"
	msgAufgussIDNumeric  = "Aufguss-ID muss numerisch sein"
	msgAufgussNotFound   = "Aufguss nicht gefunden"
)

// sessionImageDirs maps multipart file fields to their upload subdirectory.
var sessionImageDirs = map[string]string{
	"mitarbeiter_bild": "mitarbeiter",
	"sauna_bild":       "saunen",
}

type Handler struct {
	Aufguesse   *aufguss.AufgussService
	Mitarbeiter *aufguss.MitarbeiterService
	Inline      *aufguss.InlineEditService
	Plans       *aufguss.PlanService
	Uploads     *upload.Store
	Logger      *logger.Logger
	validate    *validator.Validate
}

func NewHandler(
	aufguesse *aufguss.AufgussService,
	mitarbeiter *aufguss.MitarbeiterService,
	inline *aufguss.InlineEditService,
	plans *aufguss.PlanService,
	uploads *upload.Store,
	log *logger.Logger,
) *Handler {
	return &Handler{
		Aufguesse:   aufguesse,
		Mitarbeiter: mitarbeiter,
		Inline:      inline,
		Plans:       plans,
		Uploads:     uploads,
		Logger:      log,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public JSON API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/api/aufguesse", h.HandleAufguesse)
	r.HandleFunc("/api/mitarbeiter", h.HandleMitarbeiter)
	r.Get("/api/plaene", h.ListPlaene)
}

// RegisterAdminRoutes registers the admin endpoints; the caller wraps them
// in the admin session middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/admin/updates/plan-ad", h.UpdatePlanAd)
	r.Post("/admin/updates/{entity}", h.InlineEdit)
	r.Post("/admin/deletes/plan", h.DeletePlan)
	r.Post("/admin/deletes/aufguss", h.DeleteAufgussForm)
	r.Post("/admin/uploads/media", h.UploadMedia)
}

// HandleAufguesse dispatches /api/aufguesse by method.
func (h *Handler) HandleAufguesse(w http.ResponseWriter, r *http.Request) {
	rc, err := NewRequestContext(w, r)
	if err != nil {
		h.writeBodyError(w, err)
		return
	}

	ctx := r.Context()
	switch rc.Method {
	case http.MethodGet:
		h.listAufguesse(ctx, w, rc)
	case http.MethodPost:
		h.createAufguss(ctx, w, rc)
	case http.MethodPut:
		h.updateAufguss(ctx, w, rc)
	case http.MethodDelete:
		h.deleteAufguss(ctx, w, rc)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		utils.WriteJSON(w, http.StatusMethodNotAllowed, utils.ErrorResponse(msgMethodNotAllowed))
	}
}

func (h *Handler) listAufguesse(ctx context.Context, w http.ResponseWriter, rc *RequestContext) {
	var planID *int64
	if raw := rc.Query.Get("plan_id"); raw != "" {
		id, ok := aufguss.ParseID(raw)
		if !ok {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Ungültige Plan-ID"))
			return
		}
		planID = &id
	}

	rows, err := h.Aufguesse.ListAufguesse(ctx, rc.Query.Get("datum"), planID)
	if err != nil {
		h.writeServiceError(w, err, msgAufgussNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Aufgüsse erfolgreich abgerufen", map[string]interface{}{
		"aufguesse": rows,
	}))
}

func (h *Handler) createAufguss(ctx context.Context, w http.ResponseWriter, rc *RequestContext) {
	stored, err := h.storeSessionImages(rc)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	id, err := h.Aufguesse.CreateAufguss(ctx, rc.Fields)
	if err != nil {
		h.discard(stored)
		h.writeServiceError(w, err, msgAufgussNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Aufguss erfolgreich erstellt", map[string]interface{}{
		"aufguss_id": id,
	}))
}

func (h *Handler) updateAufguss(ctx context.Context, w http.ResponseWriter, rc *RequestContext) {
	id, ok := h.requireAufgussID(w, rc.ID("id"))
	if !ok {
		return
	}

	stored, err := h.storeSessionImages(rc)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}
	if err := h.Aufguesse.UpdateAufguss(ctx, id, rc.Fields); err != nil {
		h.discard(stored)
		h.writeServiceError(w, err, msgAufgussNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Aufguss erfolgreich aktualisiert", nil))
}

func (h *Handler) deleteAufguss(ctx context.Context, w http.ResponseWriter, rc *RequestContext) {
	id, ok := h.requireAufgussID(w, rc.ID("id"))
	if !ok {
		return
	}
	h.removeAufguss(ctx, w, id)
}

// DeleteAufgussForm is the admin form variant of DELETE /api/aufguesse.
func (h *Handler) DeleteAufgussForm(w http.ResponseWriter, r *http.Request) {
	rc, err := NewRequestContext(w, r)
	if err != nil {
		h.writeBodyError(w, err)
		return
	}
	raw := rc.Fields.First("aufguss_id", "id")
	if raw == "" {
		raw = rc.Query.Get("id")
	}
	id, ok := h.requireAufgussID(w, raw)
	if !ok {
		return
	}
	h.removeAufguss(r.Context(), w, id)
}

func (h *Handler) removeAufguss(ctx context.Context, w http.ResponseWriter, id int64) {
	err := h.Aufguesse.DeleteAufguss(ctx, id)
	switch {
	case errors.Is(err, aufguss.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(msgAufgussNotFound))
	case err != nil:
		h.Logger.Error("AUFGUSS", fmt.Sprintf("Failed to delete aufguss %d: %v", id, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Aufguss konnte nicht gelöscht werden"))
	default:
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Aufguss erfolgreich gelöscht", nil))
	}
}

func (h *Handler) requireAufgussID(w http.ResponseWriter, raw string) (int64, bool) {
	if raw == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(msgAufgussIDRequired))
		return 0, false
	}
	id, ok := aufguss.ParseID(raw)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(msgAufgussIDNumeric))
		return 0, false
	}
	return id, true
}

// storeSessionImages writes uploaded staff and sauna images and puts their
// stored paths into the request fields.
func (h *Handler) storeSessionImages(rc *RequestContext) ([]string, error) {
	var stored []string
	for field, dir := range sessionImageDirs {
		fh, ok := rc.Files[field]
		if !ok {
			continue
		}
		file, err := h.Uploads.Save(fh, dir)
		if err != nil {
			h.discard(stored)
			return nil, err
		}
		rc.Fields[field] = file.Path
		stored = append(stored, file.Path)
	}
	return stored, nil
}

func (h *Handler) discard(paths []string) {
	for _, p := range paths {
		if err := h.Uploads.Remove(p); err != nil {
			h.Logger.Warn("UPLOAD", fmt.Sprintf("Failed to remove %s: %v", p, err))
		}
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, notFound string) {
	if msg, ok := aufguss.IsValidation(err); ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(msg))
		return
	}
	if errors.Is(err, aufguss.ErrNotFound) {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(notFound))
		return
	}
	h.Logger.Error("API", err.Error())
	utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(msgInternal))
}

func (h *Handler) writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(upload.ErrTooLarge.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Ungültige Anfrage"))
}

func (h *Handler) writeUploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, upload.ErrTooLarge) || errors.Is(err, upload.ErrInvalidType) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}
	h.Logger.Error("UPLOAD", err.Error())
	utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(msgInternal))
}
