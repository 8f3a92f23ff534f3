package campaigns

import (
	"errors"
	"strings"
	"time"
)

// Campaign statuses.
const (
	StatusDraft  = "draft"
	StatusQueued = "queued"
	StatusSent   = "sent"
)

// Campaign channels.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

var (
	// ErrCampaignNotFound is returned when no campaign matches the lookup.
	ErrCampaignNotFound = errors.New("campaigns: campaign not found")
	// ErrInvalidCampaign is returned for campaigns missing required fields.
	ErrInvalidCampaign = errors.New("campaigns: name, subject, body and target url are required")
	// ErrInvalidChannel is returned for channels other than email or whatsapp.
	ErrInvalidChannel = errors.New("campaigns: channel must be email or whatsapp")
	// ErrNotDraft is returned when dispatching a campaign twice.
	ErrNotDraft = errors.New("campaigns: campaign already dispatched")
)

// Campaign is a promotion sent to leads over email or WhatsApp. Code is the
// short token used in tracked links (GET /c/{code}).
type Campaign struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	TargetURL string    `json:"target_url"`
	Channel   string    `json:"channel"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCampaignRequest is the payload for drafting a campaign. An empty
// channel defaults to email.
type CreateCampaignRequest struct {
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	TargetURL string `json:"target_url"`
	Channel   string `json:"channel"`
}

// Validate checks required fields.
func (r *CreateCampaignRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" ||
		strings.TrimSpace(r.Subject) == "" ||
		strings.TrimSpace(r.Body) == "" ||
		strings.TrimSpace(r.TargetURL) == "" {
		return ErrInvalidCampaign
	}
	switch r.Channel {
	case "", ChannelEmail, ChannelWhatsApp:
		return nil
	default:
		return ErrInvalidChannel
	}
}

// NormalizedChannel returns the channel with the email default applied.
func (r *CreateCampaignRequest) NormalizedChannel() string {
	if r.Channel == "" {
		return ChannelEmail
	}
	return r.Channel
}
