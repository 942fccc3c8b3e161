package notify

import (
	"fmt"
	"log/slog"
	"net/http"
)

// ChannelConfig is one channel declaration as configured in YAML.
type ChannelConfig struct {
	Type        string   `yaml:"type"`
	Enabled     bool     `yaml:"enabled"`
	WebhookURLs []string `yaml:"webhook_urls"`
	BotTokens   []string `yaml:"bot_tokens"`
	ChatIDs     []string `yaml:"chat_ids"`
	MaxAccounts int      `yaml:"max_accounts"`
}

const defaultMaxAccounts = 3

// BuildChannels resolves channel declarations into dispatchable channels.
// Structurally invalid declarations fail closed: they produce a single
// CONFIG_INVALID result and are never attempted.
func BuildChannels(configs []ChannelConfig, httpClient *http.Client) ([]ConfiguredChannel, []DispatchResult) {
	var channels []ConfiguredChannel
	var invalid []DispatchResult

	for _, config := range configs {
		if !config.Enabled {
			slog.Debug("Channel disabled, skipping", "channel", config.Type)
			continue
		}

		channel, accounts, err := buildChannel(config, httpClient)
		if err != nil {
			slog.Warn("Channel configuration invalid, excluded from dispatch",
				"channel", config.Type, "error", err)
			invalid = append(invalid, DispatchResult{
				ChannelType:  config.Type,
				AccountIndex: -1,
				Status:       StatusConfigInvalid,
				LastError:    err.Error(),
			})
			continue
		}

		channels = append(channels, ConfiguredChannel{Channel: channel, Accounts: accounts})
	}

	return channels, invalid
}

func buildChannel(config ChannelConfig, httpClient *http.Client) (Channel, []Account, error) {
	maxAccounts := config.MaxAccounts
	if maxAccounts <= 0 {
		maxAccounts = defaultMaxAccounts
	}

	switch config.Type {
	case "telegram":
		// Paired credential lists must co-index.
		if len(config.BotTokens) == 0 {
			return nil, nil, fmt.Errorf("telegram channel requires at least one bot token")
		}
		if len(config.BotTokens) != len(config.ChatIDs) {
			return nil, nil, fmt.Errorf("telegram channel requires matching bot_tokens and chat_ids counts, got %d and %d",
				len(config.BotTokens), len(config.ChatIDs))
		}

		accounts := make([]Account, 0, len(config.BotTokens))
		for i := range config.BotTokens {
			if i >= maxAccounts {
				break
			}
			accounts = append(accounts, Account{
				Index:    i,
				BotToken: config.BotTokens[i],
				ChatID:   config.ChatIDs[i],
			})
		}
		return NewTelegramChannel(httpClient), accounts, nil

	case "feishu", "dingtalk", "wework", "webhook":
		if len(config.WebhookURLs) == 0 {
			return nil, nil, fmt.Errorf("%s channel requires at least one webhook URL", config.Type)
		}

		accounts := make([]Account, 0, len(config.WebhookURLs))
		for i, url := range config.WebhookURLs {
			if i >= maxAccounts {
				break
			}
			accounts = append(accounts, Account{Index: i, WebhookURL: url})
		}

		var channel Channel
		switch config.Type {
		case "feishu":
			channel = NewFeishuChannel(httpClient)
		case "dingtalk":
			channel = NewDingtalkChannel(httpClient)
		case "wework":
			channel = NewWeworkChannel(httpClient)
		case "webhook":
			channel = NewWebhookChannel(httpClient)
		}
		return channel, accounts, nil

	default:
		return nil, nil, fmt.Errorf("unknown channel type '%s'", config.Type)
	}
}
