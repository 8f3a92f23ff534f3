package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bellacucina/platform/pkg/logging"
)

var paylinkTracer = otel.Tracer("cucina.internal.payments.paylink")

// LinkParams describes the payment link to create.
type LinkParams struct {
	BookingID   string
	AmountCents int64
	Currency    string
	Description string
	SuccessURL  string
}

// LinkResponse is the created payment link.
type LinkResponse struct {
	URL         string
	ProviderRef string
}

// LinkCreator creates hosted payment links for deposits.
type LinkCreator interface {
	CreateDepositLink(ctx context.Context, params LinkParams) (*LinkResponse, error)
}

// PaylinkClient talks to the hosted payment-link provider used for deposit
// collection.
type PaylinkClient struct {
	apiKey     string
	successURL string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	dryRun     bool
}

// NewPaylinkClient creates a payment-link client.
func NewPaylinkClient(baseURL, apiKey, successURL string, logger *logging.Logger) *PaylinkClient {
	if logger == nil {
		logger = logging.Default()
	}
	if baseURL == "" {
		baseURL = "https://api.paylink.example.com"
	}
	return &PaylinkClient{
		apiKey:     apiKey,
		successURL: successURL,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the provider API base URL (for testing).
func (c *PaylinkClient) WithBaseURL(baseURL string) *PaylinkClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// WithDryRun enables dry-run mode (returns fake URLs without calling the provider).
func (c *PaylinkClient) WithDryRun(enabled bool) *PaylinkClient {
	c.dryRun = enabled
	return c
}

type paylinkRequest struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	SuccessURL  string            `json:"success_url,omitempty"`
	Metadata    map[string]string `json:"metadata"`
}

type paylinkResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateDepositLink creates a hosted payment link for a booking deposit.
func (c *PaylinkClient) CreateDepositLink(ctx context.Context, params LinkParams) (*LinkResponse, error) {
	ctx, span := paylinkTracer.Start(ctx, "paylink.create_deposit_link")
	defer span.End()
	span.SetAttributes(
		attribute.String("cucina.booking_id", params.BookingID),
		attribute.Int("cucina.amount_cents", int(params.AmountCents)),
	)

	if params.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	if c.dryRun {
		fakeID := "pl_dryrun_" + uuid.New().String()[:8]
		c.logger.Info("paylink dry run: skipping link creation",
			"booking_id", params.BookingID, "amount_cents", params.AmountCents)
		return &LinkResponse{
			URL:         fmt.Sprintf("https://pay.example.com/dry-run/%s", fakeID),
			ProviderRef: fakeID,
		}, nil
	}

	currency := params.Currency
	if currency == "" {
		currency = "eur"
	}
	description := params.Description
	if strings.TrimSpace(description) == "" {
		description = "Deposit"
	}
	successURL := params.SuccessURL
	if successURL == "" {
		successURL = c.successURL
	}

	body, err := json.Marshal(paylinkRequest{
		AmountCents: params.AmountCents,
		Currency:    currency,
		Description: description,
		SuccessURL:  successURL,
		Metadata:    map[string]string{"booking_id": params.BookingID},
	})
	if err != nil {
		return nil, fmt.Errorf("payments: paylink encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment_links", strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("payments: paylink request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: paylink http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payments: paylink api status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed paylinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("payments: paylink decode: %w", err)
	}
	if parsed.URL == "" {
		return nil, fmt.Errorf("payments: paylink response missing url")
	}

	return &LinkResponse{URL: parsed.URL, ProviderRef: parsed.ID}, nil
}
