package aufguss_api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	aufguss "aufgussplan/internal/aufguss/service"
	"aufgussplan/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type inlineEditRequest struct {
	Entity string `validate:"oneof=duftmittel mitarbeiter sauna"`
	ID     string `validate:"required,numeric"`
	Field  string `validate:"required"`
}

// InlineEdit handles POST /admin/updates/{entity} with {id, field, value}.
func (h *Handler) InlineEdit(w http.ResponseWriter, r *http.Request) {
	rc, err := NewRequestContext(w, r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.EditError("Invalid input data"))
		return
	}

	req := inlineEditRequest{
		Entity: chi.URLParam(r, "entity"),
		ID:     rc.Fields.Get("id"),
		Field:  rc.Fields.Get("field"),
	}
	if err := h.validate.Struct(req); err != nil || !rc.Fields.Has("value") {
		if err != nil && isEntityError(err) {
			http.NotFound(w, r)
			return
		}
		utils.WriteJSON(w, http.StatusBadRequest, utils.EditError("Invalid input data"))
		return
	}
	id, _ := strconv.ParseInt(req.ID, 10, 64)

	err = h.Inline.ApplyInlineEdit(r.Context(), aufguss.Entity(req.Entity), id, req.Field, rc.Fields["value"])
	switch {
	case err == nil:
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true})
	case errors.Is(err, aufguss.ErrInvalidField):
		utils.WriteJSON(w, http.StatusBadRequest, utils.EditError("Invalid field"))
	case errors.Is(err, aufguss.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.EditError("Eintrag nicht gefunden"))
	default:
		if msg, ok := aufguss.IsValidation(err); ok {
			utils.WriteJSON(w, http.StatusBadRequest, utils.EditError(msg))
			return
		}
		h.Logger.Error("INLINE_EDIT", fmt.Sprintf("%s %d: %v", req.Entity, id, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.EditError("Update failed"))
	}
}

func isEntityError(err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() == "Entity" {
			return true
		}
	}
	return false
}
