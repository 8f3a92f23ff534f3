package messaging

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bellacucina/platform/internal/leads"
	"github.com/bellacucina/platform/internal/observability/metrics"
	"github.com/bellacucina/platform/pkg/logging"
)

// Handler exposes the back-office messaging endpoints.
type Handler struct {
	store   Store
	sender  GatewaySender
	leads   leads.Repository
	from    string
	metrics *metrics.MessagingMetrics
	logger  *logging.Logger
}

// NewHandler creates a messaging handler. sender may be nil when the gateway
// is not configured; replies then return 503.
func NewHandler(store Store, sender GatewaySender, leadsRepo leads.Repository, fromNumber string, m *metrics.MessagingMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:   store,
		sender:  sender,
		leads:   leadsRepo,
		from:    NormalizeE164(fromNumber),
		metrics: m,
		logger:  logger,
	}
}

// ListThreads handles GET /admin/messages.
func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	threads, err := h.store.Threads(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list threads", "error", err)
		http.Error(w, "failed to list threads", http.StatusInternalServerError)
		return
	}
	if threads == nil {
		threads = []*Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"threads": threads,
		"count":   len(threads),
	})
}

// ListLeadMessages handles GET /admin/leads/{leadID}/messages.
func (h *Handler) ListLeadMessages(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	if leadID == "" {
		http.Error(w, "missing lead id", http.StatusBadRequest)
		return
	}

	msgs, err := h.store.ListByLead(r.Context(), leadID)
	if err != nil {
		h.logger.Error("failed to list messages", "error", err, "lead_id", leadID)
		http.Error(w, "failed to list messages", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []*Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"messages": msgs,
		"count":    len(msgs),
	})
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

// SendLeadMessage handles POST /admin/leads/{leadID}/messages.
func (h *Handler) SendLeadMessage(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	if leadID == "" {
		http.Error(w, "missing lead id", http.StatusBadRequest)
		return
	}
	if h.sender == nil {
		http.Error(w, "messaging gateway not configured", http.StatusServiceUnavailable)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		http.Error(w, "message body is empty", http.StatusBadRequest)
		return
	}

	lead, err := h.leads.GetByID(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("lead fetch failed", "error", err, "lead_id", leadID)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	to := NormalizeE164(lead.Phone)
	if to == "" {
		http.Error(w, "lead has no phone number", http.StatusBadRequest)
		return
	}

	providerID, err := h.sender.SendText(r.Context(), to, req.Body)
	if err != nil {
		h.metrics.ObserveOutbound("failed")
		h.logger.Error("outbound send failed", "error", err, "lead_id", leadID)
		http.Error(w, "failed to send message", http.StatusBadGateway)
		return
	}
	h.metrics.ObserveOutbound("sent")

	msg := &Message{
		LeadID:            leadID,
		From:              h.from,
		To:                to,
		Direction:         DirectionOutbound,
		Body:              req.Body,
		ProviderMessageID: providerID,
		Status:            StatusSent,
	}
	if err := h.store.Insert(r.Context(), msg); err != nil {
		// The message already left; surface the record loss in logs only.
		h.logger.Error("failed to store outbound message", "error", err, "lead_id", leadID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(msg)
}
