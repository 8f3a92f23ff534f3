package classes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bellacucina/platform/pkg/logging"
)

// ErrClassNotFound is returned when the catalog has no published class with
// the requested slug.
var ErrClassNotFound = errors.New("classes: class not found")

// Class is a published catalog entry from the headless CMS. The platform
// never writes classes; the CMS is the source of truth.
type Class struct {
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
	Level           string `json:"level"`
	ImageURL        string `json:"image_url,omitempty"`
}

// CatalogSource returns published classes. Implemented by the CMS client and
// wrapped by the redis cache.
type CatalogSource interface {
	ListClasses(ctx context.Context) ([]Class, error)
	GetClass(ctx context.Context, slug string) (*Class, error)
}

// CMSClient reads the class catalog from the headless CMS API.
type CMSClient struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewCMSClient creates a catalog client. Returns nil when no base URL is
// configured so callers can fall back to an empty catalog.
func NewCMSClient(baseURL, apiToken string, logger *logging.Logger) *CMSClient {
	if baseURL == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CMSClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the CMS API base URL (for testing).
func (c *CMSClient) WithBaseURL(baseURL string) *CMSClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

type catalogResponse struct {
	Items []Class `json:"items"`
}

// ListClasses fetches all published classes.
func (c *CMSClient) ListClasses(ctx context.Context) ([]Class, error) {
	var parsed catalogResponse
	if err := c.get(ctx, "/api/classes?status=published", &parsed); err != nil {
		return nil, err
	}
	return parsed.Items, nil
}

// GetClass fetches a single published class by slug.
func (c *CMSClient) GetClass(ctx context.Context, slug string) (*Class, error) {
	var parsed Class
	err := c.get(ctx, "/api/classes/"+slug, &parsed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *CMSClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("classes: cms request: %w", err)
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("classes: cms http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrClassNotFound
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("classes: cms status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("classes: cms decode: %w", err)
	}
	return nil
}
