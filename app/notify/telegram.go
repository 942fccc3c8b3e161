package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/trendwatch/trendwatch/app/report"
)

// TelegramChannel delivers via the Telegram bot API. Accounts pair a bot
// token with a chat id.
type TelegramChannel struct {
	httpClient *http.Client
}

func NewTelegramChannel(httpClient *http.Client) *TelegramChannel {
	return &TelegramChannel{httpClient: httpClient}
}

func (c *TelegramChannel) Type() string {
	return "telegram"
}

func (c *TelegramChannel) Render(r *report.Report) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>热点追踪 %s</b>\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "模式: %s | 命中 %d / %d 条\n\n", r.Mode, len(r.Items), r.TotalItems)
	if r.Degraded {
		b.WriteString("注意: 历史数据不可用，本次全部按新上榜处理\n\n")
	}

	for i, item := range r.Items {
		marker := classificationMarker(item.Classification)
		if marker != "" {
			marker += " "
		}

		title := html.EscapeString(item.DisplayTitle)
		if len(item.URLs) > 0 {
			title = fmt.Sprintf("<a href=\"%s\">%s</a>", item.URLs[0], title)
		}

		fmt.Fprintf(&b, "%d. %s%s [%s #%d]\n", i+1, marker, title, item.PlatformID, item.Rank)
	}

	return []byte(b.String()), nil
}

func (c *TelegramChannel) Deliver(ctx context.Context, payload []byte, account Account) error {
	chatID, err := strconv.ParseInt(account.ChatID, 10, 64)
	if err != nil {
		return &DeliveryError{
			ChannelType: c.Type(),
			StatusCode:  http.StatusBadRequest,
			Message:     fmt.Sprintf("malformed chat id '%s'", account.ChatID),
		}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(account.BotToken, tgbotapi.APIEndpoint, c.httpClient)
	if err != nil {
		return c.mapError(err)
	}

	message := tgbotapi.NewMessage(chatID, string(payload))
	message.ParseMode = tgbotapi.ModeHTML
	message.DisableWebPagePreview = true

	if _, err := bot.Send(message); err != nil {
		return c.mapError(err)
	}

	return nil
}

// mapError translates bot API errors into DeliveryErrors so the engine
// can tell rate limits and server failures from credential problems.
func (c *TelegramChannel) mapError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		statusCode := apiErr.Code
		if apiErr.RetryAfter > 0 {
			statusCode = http.StatusTooManyRequests
		}
		return &DeliveryError{
			ChannelType: c.Type(),
			StatusCode:  statusCode,
			Message:     apiErr.Message,
		}
	}
	return fmt.Errorf("telegram delivery failed: %w", err)
}
