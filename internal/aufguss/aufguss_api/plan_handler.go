package aufguss_api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	aufguss "aufgussplan/internal/aufguss/service"
	"aufgussplan/internal/models"
	"aufgussplan/internal/upload"
	"aufgussplan/internal/utils"
)

// ListPlaene handles GET /api/plaene: every plan, or one plan with ?id=.
func (h *Handler) ListPlaene(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, ok := aufguss.ParseID(raw)
		if !ok {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Ungültige Plan-ID"))
			return
		}
		plan, err := h.Plans.GetPlan(ctx, id)
		if err != nil {
			h.writeServiceError(w, err, "Plan nicht gefunden")
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Plan erfolgreich abgerufen", map[string]interface{}{
			"plan": plan,
		}))
		return
	}

	plans, err := h.Plans.ListPlans(ctx)
	if err != nil {
		h.writeServiceError(w, err, "Plan nicht gefunden")
		return
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Pläne erfolgreich abgerufen", map[string]interface{}{
		"plaene": plans,
	}))
}

// planAdRequest is the validated part of the plan-ad form. Timing values
// stay lenient and are clamped by the service.
type planAdRequest struct {
	PlanID int64 `validate:"gt=0"`
}

// UpdatePlanAd handles the multipart plan advertisement form.
func (h *Handler) UpdatePlanAd(w http.ResponseWriter, r *http.Request) {
	rc, err := NewRequestContext(w, r)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.EditError(upload.ErrTooLarge.Error()))
			return
		}
		utils.WriteJSON(w, http.StatusBadRequest, utils.EditError("Invalid input data"))
		return
	}

	planID, _ := strconv.ParseInt(rc.Fields.Get("plan_id"), 10, 64)
	if err := h.validate.Struct(planAdRequest{PlanID: planID}); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.EditError("Ungueltige Plan-ID"))
		return
	}

	enabled := formInt(rc.Fields, "enabled")
	in := aufguss.PlanAdInput{
		PlanID:          planID,
		Enabled:         enabled != nil && *enabled != 0,
		IntervalMinutes: formInt(rc.Fields, "interval_minutes"),
		DurationSeconds: formInt(rc.Fields, "duration_seconds"),
	}

	var stored *upload.Stored
	if fh, ok := rc.Files["media"]; ok {
		stored, err = h.Uploads.Save(fh, "werbung")
		if err != nil {
			h.writePlanError(w, err)
			return
		}
		in.Media = &aufguss.MediaFile{Path: stored.Path, Type: stored.Type, Name: stored.Name}
	}

	plan, err := h.Plans.UpdatePlanAd(r.Context(), in)
	if err != nil {
		if stored != nil {
			h.discard([]string{stored.Path})
		}
		h.writePlanError(w, err)
		return
	}

	data := map[string]interface{}{
		"media_path": nullable(plan.WerbungMedia),
		"media_type": nullable(plan.WerbungMediaTyp),
		"media_name": nil,
	}
	if stored != nil {
		data["media_name"] = stored.Name
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", data))
}

// DeletePlan handles POST plan_id.
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	rc, err := NewRequestContext(w, r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.EditError("Invalid input data"))
		return
	}
	id, ok := aufguss.ParseID(rc.Fields.Get("plan_id"))
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.EditError("Ungültige Plan-ID"))
		return
	}

	if err := h.Plans.DeletePlan(r.Context(), id); err != nil {
		if errors.Is(err, aufguss.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.EditError("Plan nicht gefunden"))
			return
		}
		h.Logger.Error("PLAN", fmt.Sprintf("Failed to delete plan %d: %v", id, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.EditError("Plan konnte nicht gelöscht werden"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true})
}

// UploadMedia stores a screen image or video and returns its path.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	rc, err := NewRequestContext(w, r)
	if err != nil {
		h.writeBodyError(w, err)
		return
	}
	fh, ok := rc.Files["media"]
	if !ok {
		fh, ok = rc.Files["file"]
	}
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Keine Datei hochgeladen"))
		return
	}

	stored, err := h.Uploads.Save(fh, "bildschirme")
	if err != nil {
		h.writeUploadError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Datei hochgeladen", map[string]string{
		"path": stored.Path,
		"type": stored.Type,
	}))
}

func (h *Handler) writePlanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, upload.ErrTooLarge), errors.Is(err, upload.ErrInvalidType):
		utils.WriteJSON(w, http.StatusBadRequest, utils.EditError(err.Error()))
	case errors.Is(err, aufguss.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.EditError("Plan nicht gefunden"))
	default:
		if msg, ok := aufguss.IsValidation(err); ok {
			utils.WriteJSON(w, http.StatusBadRequest, utils.EditError(msg))
			return
		}
		h.Logger.Error("PLAN", fmt.Sprintf("Plan ad update failed: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.EditError("Fehler beim Speichern der Datei"))
	}
}

// formInt mirrors a lenient integer cast: present but unparsable is 0.
func formInt(f aufguss.Fields, key string) *int {
	if !f.Has(key) {
		return nil
	}
	n, err := strconv.Atoi(f.Get(key))
	if err != nil {
		n = 0
	}
	return &n
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
