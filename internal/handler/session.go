package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sellerdesk/onboard/internal/wizard"
)

// CreateSession handles POST /api/v1/onboarding/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.manager.Create()
	h.persistSession(r.Context(), sess)
	h.writeJSON(w, http.StatusCreated, sessionResponse(sess))
}

// GetSession handles GET /api/v1/onboarding/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, sessionResponse(sess))
}

// UpdateForm handles PATCH /api/v1/onboarding/sessions/{id}/form. The body
// is a flat map of field paths to values.
func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(fields) == 0 {
		h.writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := sess.UpdateFormData(fields); err != nil {
		switch {
		case errors.Is(err, wizard.ErrUnknownField), errors.Is(err, wizard.ErrInvalidValue):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.writeError(w, http.StatusInternalServerError, "failed to update form")
		}
		return
	}

	h.persistSession(r.Context(), sess)
	h.writeJSON(w, http.StatusOK, sessionResponse(sess))
}

// NextStep handles POST /api/v1/onboarding/sessions/{id}/next. The current
// step is validated; on failure the step stays put and every failing field is
// returned at once.
func (h *Handler) NextStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	step, errs := sess.Next()
	h.persistSession(r.Context(), sess)

	resp := StepResponse{Step: step, View: string(sess.View()), Errors: errs}
	if len(errs) > 0 {
		h.writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// PrevStep handles POST /api/v1/onboarding/sessions/{id}/back.
func (h *Handler) PrevStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	step := sess.Back()
	h.persistSession(r.Context(), sess)
	h.writeJSON(w, http.StatusOK, StepResponse{Step: step, View: string(sess.View())})
}
