package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/trendwatch/trendwatch/app/report"
)

// DingtalkChannel delivers to DingTalk group robot webhooks as markdown.
type DingtalkChannel struct {
	httpClient *http.Client
}

type dingtalkMessage struct {
	MsgType  string `json:"msgtype"`
	Markdown struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"markdown"`
}

func NewDingtalkChannel(httpClient *http.Client) *DingtalkChannel {
	return &DingtalkChannel{httpClient: httpClient}
}

func (c *DingtalkChannel) Type() string {
	return "dingtalk"
}

func (c *DingtalkChannel) Render(r *report.Report) ([]byte, error) {
	var message dingtalkMessage
	message.MsgType = "markdown"
	message.Markdown.Title = "热点追踪 " + r.GeneratedAt.Format("01-02 15:04")
	message.Markdown.Text = renderMarkdown(r)

	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dingtalk message: %w", err)
	}
	return payload, nil
}

func (c *DingtalkChannel) Deliver(ctx context.Context, payload []byte, account Account) error {
	return postJSON(ctx, c.httpClient, c.Type(), account.WebhookURL, payload)
}
