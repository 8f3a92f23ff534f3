package messaging

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bellacucina/platform/internal/leads"
	"github.com/bellacucina/platform/internal/observability/metrics"
	"github.com/bellacucina/platform/pkg/logging"
)

// WebhookHandler receives inbound message callbacks from the WhatsApp gateway.
type WebhookHandler struct {
	secret  string
	store   Store
	leads   leads.Repository
	metrics *metrics.MessagingMetrics
	logger  *logging.Logger
}

// NewWebhookHandler creates the inbound webhook handler.
func NewWebhookHandler(secret string, store Store, leadsRepo leads.Repository, m *metrics.MessagingMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{secret: secret, store: store, leads: leadsRepo, metrics: m, logger: logger}
}

type inboundPayload struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Type      string `json:"type"`
	Text      struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Handle processes POST /webhooks/whatsapp.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "ok"
	defer func() {
		h.metrics.ObserveInbound(status)
		h.metrics.ObserveWebhookLatency(status, time.Since(start).Seconds())
	}()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		status = "bad_request"
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if !verifyGatewaySignature(h.secret, payload, r.Header.Get("X-Gateway-Signature")) {
		status = "forbidden"
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var inbound inboundPayload
	if err := json.Unmarshal(payload, &inbound); err != nil {
		status = "bad_request"
		h.logger.Error("failed to decode gateway payload", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// Non-text callbacks (delivery receipts, reactions) are acknowledged
	// without creating thread entries.
	if inbound.Type != "" && inbound.Type != "text" {
		w.WriteHeader(http.StatusOK)
		return
	}

	from := NormalizeE164(inbound.From)
	if from == "" {
		status = "bad_request"
		http.Error(w, "invalid sender", http.StatusBadRequest)
		return
	}

	if seen, err := h.store.HasProviderMessage(r.Context(), inbound.MessageID); err != nil {
		status = "error"
		h.logger.Error("provider message lookup failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	} else if seen {
		status = "duplicate"
		w.WriteHeader(http.StatusOK)
		return
	}

	lead, err := h.leads.GetOrCreateByPhone(r.Context(), from, "whatsapp")
	if err != nil {
		status = "error"
		h.logger.Error("lead lookup failed", "error", err, "from", from)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	msg := &Message{
		LeadID:            lead.ID,
		From:              from,
		To:                NormalizeE164(inbound.To),
		Direction:         DirectionInbound,
		Body:              inbound.Text.Body,
		ProviderMessageID: inbound.MessageID,
		Status:            StatusReceived,
	}
	if err := h.store.Insert(r.Context(), msg); err != nil {
		status = "error"
		h.logger.Error("failed to store inbound message", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("inbound whatsapp message",
		"lead_id", lead.ID, "from", from, "provider_message_id", inbound.MessageID)
	w.WriteHeader(http.StatusOK)
}

// verifyGatewaySignature verifies the gateway's HMAC-SHA256 signature, sent
// as "sha256=<hex>" over the raw payload.
func verifyGatewaySignature(secret string, payload []byte, header string) bool {
	if secret == "" {
		return true // bypass for development
	}
	header = strings.TrimPrefix(header, "sha256=")
	if header == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(header), []byte(expected))
}
