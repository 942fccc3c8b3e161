package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/trendwatch/trendwatch/app/report"
)

// WebhookChannel posts the full report as JSON to each configured URL.
type WebhookChannel struct {
	httpClient *http.Client
}

func NewWebhookChannel(httpClient *http.Client) *WebhookChannel {
	return &WebhookChannel{httpClient: httpClient}
}

func (c *WebhookChannel) Type() string {
	return "webhook"
}

func (c *WebhookChannel) Render(r *report.Report) ([]byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return payload, nil
}

func (c *WebhookChannel) Deliver(ctx context.Context, payload []byte, account Account) error {
	return postJSON(ctx, c.httpClient, c.Type(), account.WebhookURL, payload)
}

// postJSON posts a JSON payload and maps any non-2xx response to a
// DeliveryError carrying the status code.
func postJSON(ctx context.Context, httpClient *http.Client, channelType, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver payload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &DeliveryError{
			ChannelType: channelType,
			StatusCode:  resp.StatusCode,
			Message:     string(body),
		}
	}

	return nil
}
