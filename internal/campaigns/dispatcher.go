package campaigns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bellacucina/platform/internal/leads"
	"github.com/bellacucina/platform/internal/messaging"
	"github.com/bellacucina/platform/internal/notify"
	"github.com/bellacucina/platform/internal/queue"
	"github.com/bellacucina/platform/pkg/logging"
)

var dispatchTracer = otel.Tracer("cucina.internal.campaigns")

// dispatchJob is the queue payload for a campaign send.
type dispatchJob struct {
	CampaignID string `json:"campaign_id"`
}

// Dispatcher enqueues campaign sends and drains the queue. Email campaigns
// go to every lead with an address on file, WhatsApp campaigns to every lead
// with a phone number.
type Dispatcher struct {
	repo    Repository
	leads   leads.Repository
	emailer notify.EmailSender
	texter  messaging.GatewaySender
	queue   queue.Queue
	baseURL string
	logger  *logging.Logger
}

// NewDispatcher wires the campaign dispatcher. texter may be nil; whatsapp
// campaigns then fail at dispatch time instead of silently falling back.
func NewDispatcher(repo Repository, leadsRepo leads.Repository, emailer notify.EmailSender, texter messaging.GatewaySender, q queue.Queue, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{repo: repo, leads: leadsRepo, emailer: emailer, texter: texter, queue: q, logger: logger}
}

// WithBaseURL sets the public base URL used to build tracked links.
func (d *Dispatcher) WithBaseURL(baseURL string) *Dispatcher {
	d.baseURL = strings.TrimRight(baseURL, "/")
	return d
}

// trackedLink returns the click-through URL for a campaign, or the raw target
// when no public base URL is configured.
func (d *Dispatcher) trackedLink(c *Campaign) string {
	if d.baseURL == "" {
		return c.TargetURL
	}
	return d.baseURL + "/c/" + c.Code
}

// Enqueue marks a draft campaign queued and pushes the send job.
func (d *Dispatcher) Enqueue(ctx context.Context, campaignID string) (*Campaign, error) {
	campaign, err := d.repo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != StatusDraft {
		return nil, ErrNotDraft
	}

	body, err := json.Marshal(dispatchJob{CampaignID: campaignID})
	if err != nil {
		return nil, fmt.Errorf("campaigns: encode job: %w", err)
	}
	if err := d.queue.Send(ctx, string(body)); err != nil {
		return nil, fmt.Errorf("campaigns: enqueue: %w", err)
	}

	return d.repo.UpdateStatus(ctx, campaignID, StatusQueued)
}

// Run drains the queue until ctx is cancelled. Intended to run in its own
// goroutine from main.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("campaign dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("campaign dispatcher stopped")
			return
		default:
		}

		msgs, err := d.queue.Receive(ctx, 1, 5)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			d.logger.Error("queue receive failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range msgs {
			if err := d.process(ctx, msg.Body); err != nil {
				d.logger.Error("campaign dispatch failed", "error", err)
				continue
			}
			if err := d.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				d.logger.Warn("queue delete failed", "error", err)
			}
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, body string) error {
	ctx, span := dispatchTracer.Start(ctx, "campaigns.dispatch")
	defer span.End()

	var job dispatchJob
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return fmt.Errorf("campaigns: decode job: %w", err)
	}
	span.SetAttributes(attribute.String("cucina.campaign_id", job.CampaignID))

	campaign, err := d.repo.GetByID(ctx, job.CampaignID)
	if err != nil {
		return err
	}

	recipients, err := d.leads.List(ctx, leads.ListFilter{Limit: 1000})
	if err != nil {
		return fmt.Errorf("campaigns: list recipients: %w", err)
	}

	var sent int
	switch campaign.Channel {
	case ChannelWhatsApp:
		if d.texter == nil {
			return fmt.Errorf("campaigns: no messaging gateway configured for whatsapp campaign %s", campaign.ID)
		}
		sent = d.sendWhatsApp(ctx, campaign, recipients)
	default:
		sent = d.sendEmail(ctx, campaign, recipients)
	}

	if _, err := d.repo.UpdateStatus(ctx, campaign.ID, StatusSent); err != nil {
		return err
	}

	d.logger.Info("campaign dispatched", "campaign_id", campaign.ID,
		"channel", campaign.Channel, "recipients", len(recipients), "sent", sent)
	return nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, campaign *Campaign, recipients []*leads.Lead) int {
	sent := 0
	for _, lead := range recipients {
		if lead.Email == "" {
			continue
		}
		msg := notify.EmailMessage{
			To:      lead.Email,
			ToName:  lead.Name,
			Subject: campaign.Subject,
			Body:    campaign.Body + "\n\n" + d.trackedLink(campaign),
		}
		if err := d.emailer.Send(ctx, msg); err != nil {
			d.logger.Warn("campaign email failed",
				"error", err, "campaign_id", campaign.ID, "lead_id", lead.ID)
			continue
		}
		sent++
	}
	return sent
}

func (d *Dispatcher) sendWhatsApp(ctx context.Context, campaign *Campaign, recipients []*leads.Lead) int {
	sent := 0
	for _, lead := range recipients {
		if lead.Phone == "" {
			continue
		}
		body := campaign.Body + "\n" + d.trackedLink(campaign)
		if _, err := d.texter.SendText(ctx, lead.Phone, body); err != nil {
			d.logger.Warn("campaign whatsapp send failed",
				"error", err, "campaign_id", campaign.ID, "lead_id", lead.ID)
			continue
		}
		sent++
	}
	return sent
}
