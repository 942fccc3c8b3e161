package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/trendwatch/trendwatch/app/report"
)

// FeishuChannel delivers to Feishu group robot webhooks as text messages.
type FeishuChannel struct {
	httpClient *http.Client
}

type feishuMessage struct {
	MsgType string `json:"msg_type"`
	Content struct {
		Text string `json:"text"`
	} `json:"content"`
}

func NewFeishuChannel(httpClient *http.Client) *FeishuChannel {
	return &FeishuChannel{httpClient: httpClient}
}

func (c *FeishuChannel) Type() string {
	return "feishu"
}

func (c *FeishuChannel) Render(r *report.Report) ([]byte, error) {
	var message feishuMessage
	message.MsgType = "text"
	message.Content.Text = renderText(r)

	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feishu message: %w", err)
	}
	return payload, nil
}

func (c *FeishuChannel) Deliver(ctx context.Context, payload []byte, account Account) error {
	return postJSON(ctx, c.httpClient, c.Type(), account.WebhookURL, payload)
}
