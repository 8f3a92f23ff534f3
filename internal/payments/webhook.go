package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bellacucina/platform/internal/bookings"
	"github.com/bellacucina/platform/internal/observability/metrics"
	"github.com/bellacucina/platform/pkg/logging"
)

// BookingPromoter advances a booking once its deposit settles.
type BookingPromoter interface {
	MarkDepositPaid(ctx context.Context, id string) (*bookings.Booking, error)
}

// WebhookHandler processes payment-link provider webhooks for settled deposits.
type WebhookHandler struct {
	secret   string
	repo     Repository
	promoter BookingPromoter
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewWebhookHandler creates a handler for provider webhooks.
func NewWebhookHandler(secret string, repo Repository, promoter BookingPromoter, m *metrics.BookingMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{secret: secret, repo: repo, promoter: promoter, metrics: m, logger: logger}
}

type providerEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object struct {
			ID       string            `json:"id"`
			Status   string            `json:"status"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// Handle processes POST /webhooks/paylink.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if !verifySignature(h.secret, payload, r.Header.Get("Paylink-Signature")) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var evt providerEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		h.logger.Error("failed to decode paylink event", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if evt.ID == "" {
		http.Error(w, "missing event id", http.StatusBadRequest)
		return
	}

	// Only settled links matter; acknowledge everything else.
	if evt.Type != "payment_link.completed" {
		w.WriteHeader(http.StatusOK)
		return
	}

	deposit, err := h.repo.GetByProviderRef(r.Context(), evt.Data.Object.ID)
	if err != nil {
		if errors.Is(err, ErrDepositNotFound) {
			h.logger.Warn("webhook for unknown payment link", "provider_ref", evt.Data.Object.ID)
			w.WriteHeader(http.StatusOK)
			return
		}
		h.logger.Error("deposit lookup failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	// Idempotent: a deposit already marked succeeded is a retry.
	if deposit.Status == StatusSucceeded {
		w.WriteHeader(http.StatusOK)
		return
	}

	if _, err := h.repo.UpdateStatus(r.Context(), deposit.ID, StatusSucceeded); err != nil {
		h.logger.Error("failed to update deposit", "error", err, "deposit_id", deposit.ID)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	if h.promoter != nil {
		if _, err := h.promoter.MarkDepositPaid(r.Context(), deposit.BookingID); err != nil {
			h.logger.Error("failed to promote booking", "error", err, "booking_id", deposit.BookingID)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
	}

	h.metrics.ObserveDepositPaid()
	h.logger.Info("deposit settled",
		"deposit_id", deposit.ID, "booking_id", deposit.BookingID, "event_id", evt.ID)
	w.WriteHeader(http.StatusOK)
}

// verifySignature verifies the provider's HMAC-SHA256 signature, sent as
// "t=<unix>,v1=<hex>". The timestamp guards against replay.
func verifySignature(secret string, payload []byte, header string) bool {
	if secret == "" {
		return true // bypass for development
	}
	if header == "" {
		return false
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if abs64(time.Now().Unix()-ts) > 300 {
		return false
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return true
		}
	}
	return false
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
