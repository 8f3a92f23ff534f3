package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/bellacucina/platform/pkg/logging"
)

func depositRequest(method, target, bookingID string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("bookingID", bookingID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandler_CreateDepositLink(t *testing.T) {
	repo := NewInMemoryRepository()
	links := &stubLinkCreator{resp: &LinkResponse{URL: "https://pay.example.com/pl_9", ProviderRef: "pl_9"}}
	service := NewService(repo, links, 5000, logging.Default())
	handler := NewHandler(service, repo, logging.Default())

	w := httptest.NewRecorder()
	handler.CreateDepositLink(w, depositRequest(http.MethodPost, "/admin/bookings/bk-1/deposit-link", "bk-1", nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var deposit Deposit
	if err := json.NewDecoder(w.Body).Decode(&deposit); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if deposit.LinkURL != "https://pay.example.com/pl_9" {
		t.Errorf("unexpected link url %q", deposit.LinkURL)
	}
	if deposit.AmountCents != 5000 {
		t.Errorf("expected default amount, got %d", deposit.AmountCents)
	}
}

func TestHandler_ListBookingDeposits(t *testing.T) {
	repo := NewInMemoryRepository()
	seedDeposit(t, repo, "pl_1")
	handler := NewHandler(nil, repo, logging.Default())

	w := httptest.NewRecorder()
	handler.ListBookingDeposits(w, depositRequest(http.MethodGet, "/admin/bookings/bk-42/deposits", "bk-42", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("expected 1 deposit, got %d", resp.Count)
	}
}
