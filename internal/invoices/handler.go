package invoices

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bellacucina/platform/pkg/logging"
)

// Handler exposes the back-office invoice endpoints.
type Handler struct {
	repo    Repository
	archive *ArchiveStore
	logger  *logging.Logger
}

// NewHandler creates an invoices handler. archive may be nil.
func NewHandler(repo Repository, archive *ArchiveStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, archive: archive, logger: logger}
}

// CreateInvoice handles POST /admin/invoices.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	inv, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingCustomer), errors.Is(err, ErrNoLineItems):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to create invoice", "error", err)
			http.Error(w, "failed to create invoice", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("invoice drafted", "invoice_id", inv.ID, "total_cents", inv.TotalCents)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(inv)
}

// ListInvoicesResponse is the response for listing invoices.
type ListInvoicesResponse struct {
	Invoices []*Invoice `json:"invoices"`
	Count    int        `json:"count"`
	Offset   int        `json:"offset"`
	Limit    int        `json:"limit"`
}

// ListInvoices handles GET /admin/invoices.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: 50}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	filter.Status = r.URL.Query().Get("status")

	list, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list invoices", "error", err)
		http.Error(w, "failed to list invoices", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ListInvoicesResponse{
		Invoices: list,
		Count:    len(list),
		Offset:   filter.Offset,
		Limit:    filter.Limit,
	})
}

// GetInvoice handles GET /admin/invoices/{invoiceID}.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "invoiceID")
	if id == "" {
		http.Error(w, "missing invoice id", http.StatusBadRequest)
		return
	}

	inv, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get invoice", "error", err, "invoice_id", id)
		http.Error(w, "failed to get invoice", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(inv)
}

// IssueInvoice handles POST /admin/invoices/{invoiceID}/issue. Numbering is
// assigned here; archival failure does not undo issuance.
func (h *Handler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "invoiceID")
	if id == "" {
		http.Error(w, "missing invoice id", http.StatusBadRequest)
		return
	}

	inv, err := h.repo.Issue(r.Context(), id, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvoiceNotFound):
			http.Error(w, "invoice not found", http.StatusNotFound)
		case errors.Is(err, ErrNotDraft):
			http.Error(w, "invoice already issued", http.StatusConflict)
		default:
			h.logger.Error("failed to issue invoice", "error", err, "invoice_id", id)
			http.Error(w, "failed to issue invoice", http.StatusInternalServerError)
		}
		return
	}

	if h.archive.Enabled() {
		if err := h.archive.ArchiveInvoice(r.Context(), inv); err != nil {
			h.logger.Warn("invoice archive failed", "error", err, "invoice_id", inv.ID)
		}
	}

	h.logger.Info("invoice issued", "invoice_id", inv.ID, "number", inv.Number)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(inv)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /admin/invoices/{invoiceID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "invoiceID")
	if id == "" {
		http.Error(w, "missing invoice id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	inv, err := h.repo.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvoiceNotFound):
			http.Error(w, "invoice not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidStatus):
			http.Error(w, "unknown status", http.StatusBadRequest)
		default:
			h.logger.Error("failed to update invoice", "error", err, "invoice_id", id)
			http.Error(w, "failed to update invoice", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(inv)
}
