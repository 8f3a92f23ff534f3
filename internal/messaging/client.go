package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bellacucina/platform/pkg/logging"
)

var sendTracer = otel.Tracer("cucina.internal.messaging.gateway")

// GatewaySender sends outbound WhatsApp messages.
type GatewaySender interface {
	SendText(ctx context.Context, to, body string) (providerMessageID string, err error)
}

// GatewayClient posts messages through the WhatsApp Business gateway API.
type GatewayClient struct {
	apiKey     string
	fromNumber string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewGatewayClient creates a gateway client. Returns nil when no base URL is
// configured so outbound messaging degrades to disabled.
func NewGatewayClient(baseURL, apiKey, fromNumber string, logger *logging.Logger) *GatewayClient {
	if baseURL == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GatewayClient{
		apiKey:     apiKey,
		fromNumber: NormalizeE164(fromNumber),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the gateway API base URL (for testing).
func (c *GatewayClient) WithBaseURL(baseURL string) *GatewayClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// FromNumber returns the configured sender number.
func (c *GatewayClient) FromNumber() string {
	return c.fromNumber
}

type gatewaySendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

type gatewaySendResponse struct {
	MessageID string `json:"message_id"`
}

// SendText sends a plain text message.
func (c *GatewayClient) SendText(ctx context.Context, to, body string) (string, error) {
	ctx, span := sendTracer.Start(ctx, "gateway.send_text")
	defer span.End()

	to = NormalizeE164(to)
	if to == "" {
		return "", ErrInvalidPhone
	}
	if strings.TrimSpace(body) == "" {
		return "", ErrEmptyBody
	}
	span.SetAttributes(attribute.String("cucina.to", to))

	payload := gatewaySendRequest{From: c.fromNumber, To: to, Type: "text"}
	payload.Text.Body = body
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("messaging: encode send: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("messaging: gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("messaging: gateway http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("messaging: gateway status %d: %s", resp.StatusCode, string(errBody))
	}

	var parsed gatewaySendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("messaging: gateway decode: %w", err)
	}

	c.logger.Info("whatsapp message sent", "to", to, "provider_message_id", parsed.MessageID)
	return parsed.MessageID, nil
}
