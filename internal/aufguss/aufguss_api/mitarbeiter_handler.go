package aufguss_api

import (
	"context"
	"net/http"

	aufguss "aufgussplan/internal/aufguss/service"
	"aufgussplan/internal/utils"
)

const (
	msgMitarbeiterIDRequired = "Mitarbeiter-ID ist erforderlich"
	msgMitarbeiterNotFound   = "Mitarbeiter nicht gefunden"
)

// HandleMitarbeiter dispatches /api/mitarbeiter by method.
func (h *Handler) HandleMitarbeiter(w http.ResponseWriter, r *http.Request) {
	rc, err := NewRequestContext(w, r)
	if err != nil {
		h.writeBodyError(w, err)
		return
	}

	ctx := r.Context()
	switch rc.Method {
	case http.MethodGet:
		h.getMitarbeiter(ctx, w, rc)
	case http.MethodPost:
		m, err := h.Mitarbeiter.Create(ctx, rc.Fields)
		if err != nil {
			h.writeServiceError(w, err, msgMitarbeiterNotFound)
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Mitarbeiter erfolgreich erstellt", map[string]interface{}{
			"mitarbeiter_id": m.ID,
		}))
	case http.MethodPut:
		id, ok := h.requireMitarbeiterID(w, rc.ID("id"))
		if !ok {
			return
		}
		if _, err := h.Mitarbeiter.Update(ctx, id, rc.Fields); err != nil {
			h.writeServiceError(w, err, msgMitarbeiterNotFound)
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Mitarbeiter erfolgreich aktualisiert", nil))
	case http.MethodDelete:
		id, ok := h.requireMitarbeiterID(w, rc.ID("id"))
		if !ok {
			return
		}
		if err := h.Mitarbeiter.Delete(ctx, id); err != nil {
			h.writeServiceError(w, err, msgMitarbeiterNotFound)
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Mitarbeiter erfolgreich gelöscht", nil))
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		utils.WriteJSON(w, http.StatusMethodNotAllowed, utils.ErrorResponse(msgMethodNotAllowed))
	}
}

func (h *Handler) getMitarbeiter(ctx context.Context, w http.ResponseWriter, rc *RequestContext) {
	if raw := rc.Query.Get("id"); raw != "" {
		id, ok := h.requireMitarbeiterID(w, raw)
		if !ok {
			return
		}
		m, err := h.Mitarbeiter.Get(ctx, id)
		if err != nil {
			h.writeServiceError(w, err, msgMitarbeiterNotFound)
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Mitarbeiter erfolgreich abgerufen", map[string]interface{}{
			"mitarbeiter": m,
		}))
		return
	}

	rows, err := h.Mitarbeiter.List(ctx)
	if err != nil {
		h.writeServiceError(w, err, msgMitarbeiterNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Mitarbeiter erfolgreich abgerufen", map[string]interface{}{
		"mitarbeiter": rows,
	}))
}

func (h *Handler) requireMitarbeiterID(w http.ResponseWriter, raw string) (int64, bool) {
	id, ok := aufguss.ParseID(raw)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(msgMitarbeiterIDRequired))
		return 0, false
	}
	return id, true
}
