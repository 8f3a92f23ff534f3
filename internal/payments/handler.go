package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bellacucina/platform/pkg/logging"
)

// Handler exposes the back-office deposit endpoints.
type Handler struct {
	service *Service
	repo    Repository
	logger  *logging.Logger
}

// NewHandler creates a payments handler.
func NewHandler(service *Service, repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, repo: repo, logger: logger}
}

type createLinkRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
}

// CreateDepositLink handles POST /admin/bookings/{bookingID}/deposit-link.
func (h *Handler) CreateDepositLink(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")
	if bookingID == "" {
		http.Error(w, "missing booking id", http.StatusBadRequest)
		return
	}

	var req createLinkRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	deposit, err := h.service.CreateDepositLink(r.Context(), bookingID, req.AmountCents, req.Description)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			http.Error(w, "invalid deposit amount", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create deposit link", "error", err, "booking_id", bookingID)
		http.Error(w, "failed to create deposit link", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(deposit)
}

// ListBookingDeposits handles GET /admin/bookings/{bookingID}/deposits.
func (h *Handler) ListBookingDeposits(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")
	if bookingID == "" {
		http.Error(w, "missing booking id", http.StatusBadRequest)
		return
	}

	deposits, err := h.repo.ListByBooking(r.Context(), bookingID)
	if err != nil {
		h.logger.Error("failed to list deposits", "error", err, "booking_id", bookingID)
		http.Error(w, "failed to list deposits", http.StatusInternalServerError)
		return
	}
	if deposits == nil {
		deposits = []*Deposit{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"deposits": deposits,
		"count":    len(deposits),
	})
}
