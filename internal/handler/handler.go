// Package handler exposes the onboarding wizard over HTTP.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/sellerdesk/onboard/internal/metrics"
	"github.com/sellerdesk/onboard/internal/model"
	"github.com/sellerdesk/onboard/internal/repository"
	"github.com/sellerdesk/onboard/internal/search"
	"github.com/sellerdesk/onboard/internal/wizard"
)

// sessionStore defines the persistence interface the handlers need. It is
// optional: without it sessions live only in memory.
type sessionStore interface {
	UpsertSession(ctx context.Context, row repository.SessionRow) error
	GetSession(ctx context.Context, id string) (*repository.SessionRow, error)
	SaveDocument(ctx context.Context, doc repository.DocumentRow) error
	DeleteDocument(ctx context.Context, sessionID string, slot model.DocumentSlot) error
	GetDocuments(ctx context.Context, sessionID string) ([]repository.DocumentRow, error)
}

// lookupClient defines the location-lookup interface.
type lookupClient interface {
	Countries(ctx context.Context) ([]model.Country, error)
	States(ctx context.Context, countryID string) ([]model.Region, error)
}

// Handler holds dependencies for the HTTP handlers.
type Handler struct {
	manager    *wizard.Manager
	checker    *search.Checker
	lookups    lookupClient
	store      sessionStore     // nil when no database is configured
	metrics    *metrics.Metrics // nil when metrics are disabled
	bufferPool *sync.Pool       // pool of bytes.Buffer for JSON encoding
}

// New creates a new Handler. store and m may be nil.
func New(manager *wizard.Manager, checker *search.Checker, lookups lookupClient, store sessionStore, m *metrics.Metrics) (*Handler, error) {
	if manager == nil {
		return nil, errors.New("session manager is required")
	}
	if checker == nil {
		return nil, errors.New("availability checker is required")
	}
	if lookups == nil {
		return nil, errors.New("lookup client is required")
	}
	return &Handler{
		manager: manager,
		checker: checker,
		lookups: lookups,
		store:   store,
		metrics: m,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}, nil
}

// RegisterRoutes registers all routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/onboarding/sessions", h.CreateSession)
	mux.HandleFunc("GET /api/v1/onboarding/sessions/{id}", h.GetSession)
	mux.HandleFunc("PATCH /api/v1/onboarding/sessions/{id}/form", h.UpdateForm)
	mux.HandleFunc("POST /api/v1/onboarding/sessions/{id}/next", h.NextStep)
	mux.HandleFunc("POST /api/v1/onboarding/sessions/{id}/back", h.PrevStep)
	mux.HandleFunc("POST /api/v1/onboarding/sessions/{id}/documents/{slot}", h.UploadDocument)
	mux.HandleFunc("DELETE /api/v1/onboarding/sessions/{id}/documents/{slot}", h.RemoveDocument)
	mux.HandleFunc("POST /api/v1/onboarding/sessions/{id}/submit", h.Submit)
	mux.HandleFunc("GET /api/v1/onboarding/payment/callback", h.PaymentCallback)
	mux.HandleFunc("GET /api/v1/store-name/check", h.CheckStoreName)
	mux.HandleFunc("GET /api/v1/locations/countries", h.Countries)
	mux.HandleFunc("GET /api/v1/locations/countries/{id}/states", h.States)
	mux.HandleFunc("POST /api/v1/store-description/preview", h.PreviewDescription)
	mux.HandleFunc("GET /healthz", h.Health)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	buf := h.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		h.bufferPool.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		http.Error(w, `{"error":"internal server error","code":500}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  status,
	})
}

// loadSession resolves the session from the path, falling back to persisted
// state when the session is not live in this process. Writes the error
// response itself when the session cannot be found.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "session id is required")
		return nil, false
	}

	if sess, ok := h.manager.Get(id); ok {
		return sess, true
	}

	sess, err := h.restoreSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "session not found")
		} else {
			slog.Error("failed to restore session", "session_id", id, "error", err)
			h.writeError(w, http.StatusInternalServerError, "failed to load session")
		}
		return nil, false
	}
	return sess, true
}

// restoreSession rebuilds a live session from the store.
func (h *Handler) restoreSession(ctx context.Context, id string) (*wizard.Session, error) {
	if h.store == nil {
		return nil, repository.ErrNotFound
	}

	row, err := h.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	docRows, err := h.store.GetDocuments(ctx, id)
	if err != nil {
		return nil, err
	}

	docs := make([]*model.UploadedFile, 0, len(docRows))
	for _, d := range docRows {
		docs = append(docs, &model.UploadedFile{
			Slot:        d.Slot,
			Filename:    d.Filename,
			ContentType: d.ContentType,
			Size:        d.SizeBytes,
			CapturedAt:  d.CapturedAt,
			Content:     d.Content,
		})
	}

	return h.manager.Restore(wizard.Snapshot{
		ID:          row.ID,
		CurrentStep: row.CurrentStep,
		Form:        row.Form,
		Submission:  wizard.SubmissionState(row.SubmissionState),
		SellerID:    row.SellerID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, docs)
}

// persistSession writes the session snapshot through to the store, if one is
// configured. Persistence failures are logged, not surfaced: the live
// session remains authoritative.
func (h *Handler) persistSession(ctx context.Context, sess *wizard.Session) {
	if h.store == nil {
		return
	}
	snap := sess.Snapshot()
	err := h.store.UpsertSession(ctx, repository.SessionRow{
		ID:              snap.ID,
		CurrentStep:     snap.CurrentStep,
		SubmissionState: string(snap.Submission),
		SellerID:        snap.SellerID,
		Form:            snap.Form,
		CreatedAt:       snap.CreatedAt,
		UpdatedAt:       snap.UpdatedAt,
	})
	if err != nil {
		slog.Error("failed to persist session", "session_id", snap.ID, "error", err)
	}
}
