package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/trendwatch/trendwatch/app/report"
)

// WeworkChannel delivers to WeCom (企业微信) group robot webhooks.
type WeworkChannel struct {
	httpClient *http.Client
}

type weworkMessage struct {
	MsgType  string `json:"msgtype"`
	Markdown struct {
		Content string `json:"content"`
	} `json:"markdown"`
}

func NewWeworkChannel(httpClient *http.Client) *WeworkChannel {
	return &WeworkChannel{httpClient: httpClient}
}

func (c *WeworkChannel) Type() string {
	return "wework"
}

func (c *WeworkChannel) Render(r *report.Report) ([]byte, error) {
	var message weworkMessage
	message.MsgType = "markdown"
	message.Markdown.Content = renderMarkdown(r)

	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wework message: %w", err)
	}
	return payload, nil
}

func (c *WeworkChannel) Deliver(ctx context.Context, payload []byte, account Account) error {
	return postJSON(ctx, c.httpClient, c.Type(), account.WebhookURL, payload)
}
