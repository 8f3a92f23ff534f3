package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bellacucina/platform/internal/bookings"
	"github.com/bellacucina/platform/pkg/logging"
)

const webhookSecret = "whsec_test"

func signPayload(secret string, payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

type recordingPromoter struct {
	promoted []string
	err      error
}

func (p *recordingPromoter) MarkDepositPaid(ctx context.Context, id string) (*bookings.Booking, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.promoted = append(p.promoted, id)
	return &bookings.Booking{ID: id, Status: bookings.StatusDepositPaid}, nil
}

func completedEvent(providerRef string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "payment_link.completed",
		"created": %d,
		"data": {"object": {"id": %q, "status": "completed"}}
	}`, time.Now().Unix(), providerRef))
}

func seedDeposit(t *testing.T, repo Repository, providerRef string) *Deposit {
	t.Helper()
	deposit := &Deposit{
		BookingID:   "bk-42",
		AmountCents: 5000,
		Currency:    "eur",
		Status:      StatusPending,
		LinkURL:     "https://pay.example.com/" + providerRef,
		ProviderRef: providerRef,
	}
	if err := repo.Create(context.Background(), deposit); err != nil {
		t.Fatalf("failed to seed deposit: %v", err)
	}
	return deposit
}

func TestWebhook_SettlesDepositAndPromotesBooking(t *testing.T) {
	repo := NewInMemoryRepository()
	deposit := seedDeposit(t, repo, "pl_123")
	promoter := &recordingPromoter{}
	handler := NewWebhookHandler(webhookSecret, repo, promoter, nil, logging.Default())

	payload := completedEvent("pl_123")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paylink", bytes.NewReader(payload))
	req.Header.Set("Paylink-Signature", signPayload(webhookSecret, payload))
	w := httptest.NewRecorder()

	handler.Handle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	updated, err := repo.GetByProviderRef(context.Background(), "pl_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusSucceeded {
		t.Errorf("expected succeeded deposit, got %s", updated.Status)
	}
	if len(promoter.promoted) != 1 || promoter.promoted[0] != deposit.BookingID {
		t.Errorf("expected booking %s promoted, got %v", deposit.BookingID, promoter.promoted)
	}
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	repo := NewInMemoryRepository()
	seedDeposit(t, repo, "pl_123")
	handler := NewWebhookHandler(webhookSecret, repo, &recordingPromoter{}, nil, logging.Default())

	payload := completedEvent("pl_123")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paylink", bytes.NewReader(payload))
	req.Header.Set("Paylink-Signature", signPayload("wrong-secret", payload))
	w := httptest.NewRecorder()

	handler.Handle(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestWebhook_RetryIsIdempotent(t *testing.T) {
	repo := NewInMemoryRepository()
	seedDeposit(t, repo, "pl_123")
	promoter := &recordingPromoter{}
	handler := NewWebhookHandler(webhookSecret, repo, promoter, nil, logging.Default())

	for i := 0; i < 2; i++ {
		payload := completedEvent("pl_123")
		req := httptest.NewRequest(http.MethodPost, "/webhooks/paylink", bytes.NewReader(payload))
		req.Header.Set("Paylink-Signature", signPayload(webhookSecret, payload))
		w := httptest.NewRecorder()

		handler.Handle(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected status %d, got %d", i, http.StatusOK, w.Code)
		}
	}

	if len(promoter.promoted) != 1 {
		t.Errorf("expected one promotion across retries, got %d", len(promoter.promoted))
	}
}

func TestWebhook_UnknownProviderRefAcknowledged(t *testing.T) {
	handler := NewWebhookHandler(webhookSecret, NewInMemoryRepository(), &recordingPromoter{}, nil, logging.Default())

	payload := completedEvent("pl_unknown")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paylink", bytes.NewReader(payload))
	req.Header.Set("Paylink-Signature", signPayload(webhookSecret, payload))
	w := httptest.NewRecorder()

	handler.Handle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestWebhook_IgnoresOtherEventTypes(t *testing.T) {
	repo := NewInMemoryRepository()
	seedDeposit(t, repo, "pl_123")
	promoter := &recordingPromoter{}
	handler := NewWebhookHandler(webhookSecret, repo, promoter, nil, logging.Default())

	payload := []byte(`{"id":"evt_2","type":"payment_link.created","data":{"object":{"id":"pl_123"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paylink", bytes.NewReader(payload))
	req.Header.Set("Paylink-Signature", signPayload(webhookSecret, payload))
	w := httptest.NewRecorder()

	handler.Handle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if len(promoter.promoted) != 0 {
		t.Errorf("expected no promotion for non-completed events, got %v", promoter.promoted)
	}
}

func TestVerifySignature_StaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	ts := time.Now().Add(-10 * time.Minute).Unix()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	header := fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))

	if verifySignature(webhookSecret, payload, header) {
		t.Error("expected stale timestamp to be rejected")
	}
}
