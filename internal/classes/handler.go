package classes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bellacucina/platform/pkg/logging"
)

// Handler serves the public class catalog.
type Handler struct {
	catalog CatalogSource
	logger  *logging.Logger
}

// NewHandler creates a catalog handler. A nil catalog serves an empty list so
// the site stays up when the CMS is not configured.
func NewHandler(catalog CatalogSource, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{catalog: catalog, logger: logger}
}

// ListClassesResponse is the response for GET /classes.
type ListClassesResponse struct {
	Classes []Class `json:"classes"`
	Count   int     `json:"count"`
}

// ListClasses handles GET /classes.
func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeJSON(w, http.StatusOK, ListClassesResponse{Classes: []Class{}})
		return
	}

	items, err := h.catalog.ListClasses(r.Context())
	if err != nil {
		h.logger.Error("failed to list classes", "error", err)
		http.Error(w, "catalog temporarily unavailable", http.StatusServiceUnavailable)
		return
	}
	if items == nil {
		items = []Class{}
	}

	writeJSON(w, http.StatusOK, ListClassesResponse{Classes: items, Count: len(items)})
}

// GetClass handles GET /classes/{slug}.
func (h *Handler) GetClass(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		http.Error(w, "missing class slug", http.StatusBadRequest)
		return
	}
	if h.catalog == nil {
		http.Error(w, "class not found", http.StatusNotFound)
		return
	}

	class, err := h.catalog.GetClass(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			http.Error(w, "class not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch class", "error", err, "slug", slug)
		http.Error(w, "catalog temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, class)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
