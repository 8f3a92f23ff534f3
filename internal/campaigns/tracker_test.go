package campaigns

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/bellacucina/platform/pkg/logging"
)

func testTracker(t *testing.T, repo Repository) (*ClickTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewClickTracker(redis.NewClient(&redis.Options{Addr: mr.Addr()}), repo), mr
}

func draftCampaign(t *testing.T, repo Repository) *Campaign {
	t.Helper()
	c, err := repo.Create(context.Background(), &CreateCampaignRequest{
		Name:      "Spring pasta series",
		Subject:   "New spring classes",
		Body:      "Join us for the spring hands-on series.",
		TargetURL: "https://bellacucina.example.com/classes",
	})
	if err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}
	return c
}

func redirectRequest(code string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/c/"+code, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("code", code)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestClickTracker_TrackAndCount(t *testing.T) {
	repo := NewInMemoryRepository()
	campaign := draftCampaign(t, repo)
	tracker, _ := testTracker(t, repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := tracker.Track(ctx, campaign); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	n, err := tracker.Clicks(ctx, campaign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 clicks, got %d", n)
	}

	rows, err := repo.CountClicks(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 3 {
		t.Errorf("expected 3 click rows, got %d", rows)
	}
}

func TestClickTracker_CountSurvivesCounterLoss(t *testing.T) {
	repo := NewInMemoryRepository()
	campaign := draftCampaign(t, repo)
	tracker, mr := testTracker(t, repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := tracker.Track(ctx, campaign); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	mr.FlushAll()

	n, err := tracker.Clicks(ctx, campaign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 clicks from rows after counter loss, got %d", n)
	}

	// The counter is reprimed, so further clicks keep counting from 5.
	if err := tracker.Track(ctx, campaign); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err = tracker.Clicks(ctx, campaign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 6 {
		t.Errorf("expected 6 clicks after reprime, got %d", n)
	}
}

func TestClickTracker_WithoutRedis(t *testing.T) {
	repo := NewInMemoryRepository()
	campaign := draftCampaign(t, repo)
	tracker := NewClickTracker(nil, repo)
	ctx := context.Background()

	if err := tracker.Track(ctx, campaign); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := tracker.Clicks(ctx, campaign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 click without redis, got %d", n)
	}
}

func TestRedirect_CountsAndRedirects(t *testing.T) {
	repo := NewInMemoryRepository()
	campaign := draftCampaign(t, repo)
	tracker, _ := testTracker(t, repo)
	handler := NewRedirectHandler(repo, tracker, logging.Default())

	w := httptest.NewRecorder()
	handler.Redirect(w, redirectRequest(campaign.Code))

	if w.Code != http.StatusFound {
		t.Fatalf("expected status %d, got %d", http.StatusFound, w.Code)
	}
	if loc := w.Header().Get("Location"); loc != campaign.TargetURL {
		t.Errorf("expected redirect to %s, got %s", campaign.TargetURL, loc)
	}

	n, _ := tracker.Clicks(context.Background(), campaign)
	if n != 1 {
		t.Errorf("expected 1 recorded click, got %d", n)
	}
}

func TestRedirect_UnknownCode(t *testing.T) {
	repo := NewInMemoryRepository()
	tracker, _ := testTracker(t, repo)
	handler := NewRedirectHandler(repo, tracker, logging.Default())

	w := httptest.NewRecorder()
	handler.Redirect(w, redirectRequest("nope"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRedirect_SurvivesNilTracker(t *testing.T) {
	repo := NewInMemoryRepository()
	campaign := draftCampaign(t, repo)
	handler := NewRedirectHandler(repo, nil, logging.Default())

	w := httptest.NewRecorder()
	handler.Redirect(w, redirectRequest(campaign.Code))

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect without tracker, got %d", w.Code)
	}
}
