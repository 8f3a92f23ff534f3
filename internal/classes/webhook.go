package classes

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/bellacucina/platform/pkg/logging"
)

// Invalidator drops cached catalog entries.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

var _ Invalidator = (*CachedCatalog)(nil)

// WebhookHandler receives republish callbacks from the CMS and flushes the
// catalog cache so the next read picks up the new content.
type WebhookHandler struct {
	cache  Invalidator
	secret string
	logger *logging.Logger
}

// NewWebhookHandler creates the CMS webhook handler. A nil cache makes the
// webhook a no-op acknowledgement.
func NewWebhookHandler(cache Invalidator, secret string, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{cache: cache, secret: secret, logger: logger}
}

// Handle processes POST /webhooks/catalog. The CMS sends its shared token in
// X-Webhook-Token; an empty configured secret skips verification for local
// development.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		token := r.Header.Get("X-Webhook-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(r.Context()); err != nil {
			h.logger.Error("catalog cache invalidation failed", "error", err)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
	}

	h.logger.Info("catalog cache invalidated by cms webhook")
	w.WriteHeader(http.StatusNoContent)
}
