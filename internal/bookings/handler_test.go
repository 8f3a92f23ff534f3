package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/bellacucina/platform/pkg/logging"
)

func newTestHandler(repo Repository) *Handler {
	logger := logging.Default()
	return NewHandler(NewService(repo, nil, nil, logger), logger)
}

func TestCreateBooking_Success(t *testing.T) {
	handler := newTestHandler(NewInMemoryRepository())

	body, _ := json.Marshal(validRequest())
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateBooking(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var booking Booking
	if err := json.NewDecoder(w.Body).Decode(&booking); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if booking.Status != StatusPending {
		t.Errorf("expected pending, got %s", booking.Status)
	}
	if booking.EventDate != "2026-03-14" {
		t.Errorf("expected event date preserved, got %s", booking.EventDate)
	}
}

func TestCreateBooking_InvalidJSON(t *testing.T) {
	handler := newTestHandler(NewInMemoryRepository())

	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader("{"))
	w := httptest.NewRecorder()

	handler.CreateBooking(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateBooking_InvalidRequest(t *testing.T) {
	handler := newTestHandler(NewInMemoryRepository())

	reqBody := validRequest()
	reqBody.PartySize = 0
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateBooking(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateBooking_Conflict(t *testing.T) {
	handler := newTestHandler(&conflictRepository{})

	body, _ := json.Marshal(validRequest())
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateBooking(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestListBookings(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := newTestHandler(repo)

	for i := 0; i < 3; i++ {
		booking := validRequest()
		booking.EventDate = fmt.Sprintf("2026-03-%02d", 14+i)
		if _, err := repo.Create(context.Background(), booking); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/bookings?limit=2", nil)
	w := httptest.NewRecorder()

	handler.ListBookings(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp ListBookingsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("expected 2 bookings with limit, got %d", resp.Count)
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := newTestHandler(repo)

	created, err := repo.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := strings.NewReader(`{"status":"confirmed"}`)
	req := httptest.NewRequest(http.MethodPut, "/admin/bookings/"+created.ID+"/status", body)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("bookingID", created.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.UpdateStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var booking Booking
	if err := json.NewDecoder(w.Body).Decode(&booking); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if booking.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", booking.Status)
	}
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := newTestHandler(repo)

	created, _ := repo.Create(context.Background(), validRequest())

	body := strings.NewReader(`{"status":"teleported"}`)
	req := httptest.NewRequest(http.MethodPut, "/admin/bookings/"+created.ID+"/status", body)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("bookingID", created.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.UpdateStatus(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}
