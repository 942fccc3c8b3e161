package notify

import (
	"context"

	"github.com/trendwatch/trendwatch/app/report"
)

// Account is one resolved credential set for a channel. Which fields are
// populated depends on the channel type.
type Account struct {
	Index      int
	BotToken   string
	ChatID     string
	WebhookURL string
}

// Channel is the capability interface implemented once per channel type.
// Render is deterministic per (report); the engine never branches on
// channel identity beyond this interface.
type Channel interface {
	Type() string
	Render(r *report.Report) ([]byte, error)
	Deliver(ctx context.Context, payload []byte, account Account) error
}

// ConfiguredChannel pairs a channel implementation with its validated
// accounts.
type ConfiguredChannel struct {
	Channel  Channel
	Accounts []Account
}

// Status of one delivery unit.
type Status string

const (
	StatusSuccess        Status = "SUCCESS"
	StatusRetriedSuccess Status = "RETRIED_SUCCESS"
	StatusFailed         Status = "FAILED"
	StatusConfigInvalid  Status = "CONFIG_INVALID"
)

// DispatchResult records the outcome of one (channel, account) unit.
type DispatchResult struct {
	ChannelType  string `json:"channel_type"`
	AccountIndex int    `json:"account_index"`
	Status       Status `json:"status"`
	Attempts     int    `json:"attempts"`
	LastError    string `json:"last_error,omitempty"`
}

// RunStatus summarizes a whole dispatch run.
type RunStatus string

const (
	RunAllSucceeded         RunStatus = "all_succeeded"
	RunPartialFailure       RunStatus = "partial_failure"
	RunAllFailed            RunStatus = "all_failed"
	RunNoChannelsConfigured RunStatus = "no_channels_configured"
)

// Summarize derives the overall run status from collected results.
func Summarize(results []DispatchResult) RunStatus {
	if len(results) == 0 {
		return RunNoChannelsConfigured
	}

	succeeded := 0
	failed := 0
	for _, result := range results {
		switch result.Status {
		case StatusSuccess, StatusRetriedSuccess:
			succeeded++
		default:
			failed++
		}
	}

	switch {
	case failed == 0:
		return RunAllSucceeded
	case succeeded == 0:
		return RunAllFailed
	default:
		return RunPartialFailure
	}
}
