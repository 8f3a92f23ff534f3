package campaigns

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/bellacucina/platform/pkg/logging"
)

const clickKeyPrefix = "campaign:clicks:"

// ClickTracker records clicks as append-only rows and mirrors the count in a
// redis counter for cheap reads. The rows are the source of truth; the
// counter is reprimed from them after a flush.
type ClickTracker struct {
	client *redis.Client
	repo   Repository
}

// NewClickTracker creates a tracker. A nil client disables the hot counter;
// counts then come straight from the repository.
func NewClickTracker(client *redis.Client, repo Repository) *ClickTracker {
	return &ClickTracker{client: client, repo: repo}
}

// Track appends a click row for the campaign and bumps the hot counter.
func (t *ClickTracker) Track(ctx context.Context, c *Campaign) error {
	if t == nil || c == nil {
		return nil
	}
	if err := t.repo.RecordClick(ctx, c.ID); err != nil {
		return err
	}
	if t.client != nil {
		if err := t.client.Incr(ctx, clickKeyPrefix+c.Code).Err(); err != nil {
			return fmt.Errorf("campaigns: click incr: %w", err)
		}
	}
	return nil
}

// Clicks returns the click count for a campaign, preferring the redis counter
// and falling back to counting rows when the counter is cold.
func (t *ClickTracker) Clicks(ctx context.Context, c *Campaign) (int64, error) {
	if t == nil || c == nil {
		return 0, nil
	}
	if t.client != nil {
		n, err := t.client.Get(ctx, clickKeyPrefix+c.Code).Int64()
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, redis.Nil) {
			return 0, fmt.Errorf("campaigns: click get: %w", err)
		}
	}

	n, err := t.repo.CountClicks(ctx, c.ID)
	if err != nil {
		return 0, err
	}
	if t.client != nil && n > 0 {
		// Reprime so later INCRs continue from the durable count.
		_ = t.client.Set(ctx, clickKeyPrefix+c.Code, n, 0).Err()
	}
	return n, nil
}

// RedirectHandler resolves tracked links and records the click.
type RedirectHandler struct {
	repo    Repository
	tracker *ClickTracker
	logger  *logging.Logger
}

// NewRedirectHandler creates the public click-through handler.
func NewRedirectHandler(repo Repository, tracker *ClickTracker, logger *logging.Logger) *RedirectHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedirectHandler{repo: repo, tracker: tracker, logger: logger}
}

// Redirect handles GET /c/{code}. Counting is best effort; a tracking outage
// must never break the redirect.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.NotFound(w, r)
		return
	}

	campaign, err := h.repo.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrCampaignNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("campaign lookup failed", "error", err, "code", code)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	if err := h.tracker.Track(r.Context(), campaign); err != nil {
		h.logger.Warn("click tracking failed", "error", err, "code", code)
	}

	http.Redirect(w, r, campaign.TargetURL, http.StatusFound)
}
