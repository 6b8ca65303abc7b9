package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sellerdesk/onboard/internal/config"
	"github.com/sellerdesk/onboard/internal/preview"
)

// CheckStoreName handles GET /api/v1/store-name/check?name=...
func (h *Handler) CheckStoreName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if len(name) < config.MinStoreNameLength {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("store name must be at least %d characters", config.MinStoreNameLength))
		return
	}

	available, err := h.checker.Check(r.Context(), name)
	if err != nil {
		slog.Error("store-name availability check failed", "name", name, "error", err)
		h.writeError(w, http.StatusBadGateway, "availability check failed")
		return
	}

	h.writeJSON(w, http.StatusOK, AvailabilityResponse{
		StoreName: name,
		Available: available,
	})
}

// Countries handles GET /api/v1/locations/countries.
func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.lookups.Countries(r.Context())
	if err != nil {
		slog.Error("country lookup failed", "error", err)
		h.writeError(w, http.StatusBadGateway, "failed to load countries")
		return
	}
	h.writeJSON(w, http.StatusOK, countries)
}

// States handles GET /api/v1/locations/countries/{id}/states.
func (h *Handler) States(w http.ResponseWriter, r *http.Request) {
	countryID := r.PathValue("id")
	if countryID == "" {
		h.writeError(w, http.StatusBadRequest, "country id is required")
		return
	}

	states, err := h.lookups.States(r.Context(), countryID)
	if err != nil {
		slog.Error("state lookup failed", "country_id", countryID, "error", err)
		h.writeError(w, http.StatusBadGateway, "failed to load states")
		return
	}
	h.writeJSON(w, http.StatusOK, states)
}

// PreviewDescription handles POST /api/v1/store-description/preview. The body
// is {"markdown": "..."}; the response is sanitized HTML.
func (h *Handler) PreviewDescription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Markdown string `json:"markdown"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.writeJSON(w, http.StatusOK, PreviewResponse{
		HTML: preview.Render(req.Markdown),
	})
}
