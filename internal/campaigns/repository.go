package campaigns

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository stores campaigns and their click rows.
type Repository interface {
	Create(ctx context.Context, req *CreateCampaignRequest) (*Campaign, error)
	GetByID(ctx context.Context, id string) (*Campaign, error)
	GetByCode(ctx context.Context, code string) (*Campaign, error)
	List(ctx context.Context) ([]*Campaign, error)
	UpdateStatus(ctx context.Context, id string, status string) (*Campaign, error)
	RecordClick(ctx context.Context, campaignID string) error
	CountClicks(ctx context.Context, campaignID string) (int64, error)
}

// newCode generates the short link token for tracked clicks.
func newCode() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// InMemoryRepository is an in-memory Repository for tests and offline runs.
type InMemoryRepository struct {
	mu        sync.RWMutex
	campaigns map[string]*Campaign
	clicks    map[string]int64
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		campaigns: make(map[string]*Campaign),
		clicks:    make(map[string]int64),
	}
}

// Create stores a draft campaign with a fresh tracking code.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateCampaignRequest) (*Campaign, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &Campaign{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		TargetURL: req.TargetURL,
		Channel:   req.NormalizedChannel(),
		Code:      newCode(),
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.campaigns[c.ID] = c
	r.mu.Unlock()
	return c, nil
}

// GetByID fetches a campaign.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.campaigns[id]
	if !ok {
		return nil, ErrCampaignNotFound
	}
	return c, nil
}

// GetByCode resolves a tracking code to its campaign.
func (r *InMemoryRepository) GetByCode(ctx context.Context, code string) (*Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.campaigns {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, ErrCampaignNotFound
}

// List returns all campaigns, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateStatus transitions a campaign.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status string) (*Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.campaigns[id]
	if !ok {
		return nil, ErrCampaignNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return c, nil
}

// RecordClick appends a click for the campaign.
func (r *InMemoryRepository) RecordClick(ctx context.Context, campaignID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.campaigns[campaignID]; !ok {
		return ErrCampaignNotFound
	}
	r.clicks[campaignID]++
	return nil
}

// CountClicks returns the total clicks recorded for the campaign.
func (r *InMemoryRepository) CountClicks(ctx context.Context, campaignID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clicks[campaignID], nil
}
