package webhook

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/almlcv/sharanga-backend-sub001/internal/config"
)

// Client delivers report summaries to an external endpoint.
type Client interface {
	PostSummary(ctx context.Context, text string) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client from the configured URL and optional token.
func NewClient(cfg config.WebhookConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &APIClient{
		httpClient: restyClient,
		url:        strings.TrimSpace(cfg.URL),
	}
}

// summaryPayload is the body posted for each summary.
type summaryPayload struct {
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// apiError represents an error payload returned by the receiving endpoint.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PostSummary posts text to the webhook.
func (c *APIClient) PostSummary(ctx context.Context, text string) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(summaryPayload{Text: text, SentAt: time.Now().UTC()}).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post report summary: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		return fmt.Errorf("webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
