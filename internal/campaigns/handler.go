package campaigns

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bellacucina/platform/pkg/logging"
)

// Handler exposes the back-office campaign endpoints.
type Handler struct {
	repo       Repository
	dispatcher *Dispatcher
	tracker    *ClickTracker
	logger     *logging.Logger
}

// NewHandler creates a campaigns handler.
func NewHandler(repo Repository, dispatcher *Dispatcher, tracker *ClickTracker, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, dispatcher: dispatcher, tracker: tracker, logger: logger}
}

// CreateCampaign handles POST /admin/campaigns.
func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	campaign, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCampaign) || errors.Is(err, ErrInvalidChannel) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create campaign", "error", err)
		http.Error(w, "failed to create campaign", http.StatusInternalServerError)
		return
	}

	h.logger.Info("campaign drafted", "campaign_id", campaign.ID, "code", campaign.Code)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(campaign)
}

// campaignView adds the live click count to a campaign.
type campaignView struct {
	*Campaign
	Clicks int64 `json:"clicks"`
}

// ListCampaigns handles GET /admin/campaigns.
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list campaigns", "error", err)
		http.Error(w, "failed to list campaigns", http.StatusInternalServerError)
		return
	}

	views := make([]campaignView, 0, len(list))
	for _, c := range list {
		clicks, err := h.tracker.Clicks(r.Context(), c)
		if err != nil {
			h.logger.Warn("click count lookup failed", "error", err, "code", c.Code)
		}
		views = append(views, campaignView{Campaign: c, Clicks: clicks})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"campaigns": views,
		"count":     len(views),
	})
}

// DispatchCampaign handles POST /admin/campaigns/{campaignID}/dispatch.
func (h *Handler) DispatchCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "campaignID")
	if id == "" {
		http.Error(w, "missing campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := h.dispatcher.Enqueue(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrCampaignNotFound):
			http.Error(w, "campaign not found", http.StatusNotFound)
		case errors.Is(err, ErrNotDraft):
			http.Error(w, "campaign already dispatched", http.StatusConflict)
		default:
			h.logger.Error("failed to dispatch campaign", "error", err, "campaign_id", id)
			http.Error(w, "failed to dispatch campaign", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(campaign)
}
