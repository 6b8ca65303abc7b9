package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sellerdesk/onboard/internal/config"
	"github.com/sellerdesk/onboard/internal/model"
	"github.com/sellerdesk/onboard/internal/repository"
	"github.com/sellerdesk/onboard/internal/wizard"
)

// UploadDocument handles POST /api/v1/onboarding/sessions/{id}/documents/{slot}.
// The request is multipart/form-data with the file under the "file" field.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	slot := model.DocumentSlot(r.PathValue("slot"))
	if !slot.IsValid() {
		h.writeError(w, http.StatusBadRequest, "unknown document slot")
		return
	}

	// One extra byte over the limit is enough to detect oversized uploads
	// without buffering arbitrarily large bodies.
	if err := r.ParseMultipartForm(config.MaxDocumentBytes + 1); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, config.MaxDocumentBytes+1))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	entry, err := sess.AcceptDocument(slot, header.Filename, contentType, content)
	if err != nil {
		var intakeErr *wizard.FileIntakeError
		if errors.As(err, &intakeErr) {
			h.writeError(w, http.StatusUnprocessableEntity, intakeErr.Message)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to accept document")
		return
	}

	if h.store != nil {
		err := h.store.SaveDocument(r.Context(), repository.DocumentRow{
			SessionID:   sess.ID(),
			Slot:        entry.Slot,
			Filename:    entry.Filename,
			ContentType: entry.ContentType,
			SizeBytes:   entry.Size,
			CapturedAt:  entry.CapturedAt,
			Content:     entry.Content,
		})
		if err != nil {
			slog.Error("failed to persist document", "session_id", sess.ID(), "slot", slot, "error", err)
		}
	}
	h.persistSession(r.Context(), sess)

	h.writeJSON(w, http.StatusOK, DocumentInfo{
		Slot:        string(entry.Slot),
		Filename:    entry.Filename,
		ContentType: entry.ContentType,
		Size:        entry.Size,
		CapturedAt:  entry.CapturedAt,
	})
}

// RemoveDocument handles DELETE /api/v1/onboarding/sessions/{id}/documents/{slot}.
// Removal is unconditional.
func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	slot := model.DocumentSlot(r.PathValue("slot"))
	if !slot.IsValid() {
		h.writeError(w, http.StatusBadRequest, "unknown document slot")
		return
	}

	sess.RemoveDocument(slot)
	if h.store != nil {
		if err := h.store.DeleteDocument(r.Context(), sess.ID(), slot); err != nil {
			slog.Error("failed to delete document", "session_id", sess.ID(), "slot", slot, "error", err)
		}
	}
	h.persistSession(r.Context(), sess)

	w.WriteHeader(http.StatusNoContent)
}
