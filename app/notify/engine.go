package notify

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/trendwatch/trendwatch/app/report"
)

// Engine fans a finalized report out to every configured channel and
// account. Delivery units are fully isolated: a failure on one never
// blocks or cancels another, and the engine always returns the complete
// result set.
type Engine struct {
	channels    []ConfiguredChannel
	invalid     []DispatchResult
	maxInFlight int
	maxRetries  int
	retryDelay  time.Duration
}

// NewEngine wires the engine over pre-validated channels. invalid carries
// the configuration-error results recorded at load time so they surface in
// the run's result set without ever being attempted.
func NewEngine(channels []ConfiguredChannel, invalid []DispatchResult, maxInFlight, maxRetries int, retryDelay time.Duration) *Engine {
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &Engine{
		channels:    channels,
		invalid:     invalid,
		maxInFlight: maxInFlight,
		maxRetries:  maxRetries,
		retryDelay:  retryDelay,
	}
}

// Run dispatches the report and collects every DispatchResult. It never
// returns an error: dispatch failures are data, not run failures.
func (e *Engine) Run(ctx context.Context, r *report.Report) ([]DispatchResult, RunStatus) {
	results := make([]DispatchResult, 0, len(e.invalid))
	results = append(results, e.invalid...)

	type unit struct {
		channel ConfiguredChannel
		payload []byte
		account Account
	}

	var units []unit
	for _, channel := range e.channels {
		payload, err := channel.Channel.Render(r)
		if err != nil {
			// A render failure affects every account of the channel.
			slog.Error("Channel render failed", "channel", channel.Channel.Type(), "error", err)
			for _, account := range channel.Accounts {
				results = append(results, DispatchResult{
					ChannelType:  channel.Channel.Type(),
					AccountIndex: account.Index,
					Status:       StatusFailed,
					LastError:    err.Error(),
				})
			}
			continue
		}

		for _, account := range channel.Accounts {
			units = append(units, unit{channel: channel, payload: payload, account: account})
		}
	}

	resultChan := make(chan DispatchResult, len(units))
	semaphore := make(chan struct{}, e.maxInFlight)

	var wg sync.WaitGroup
	for _, u := range units {
		wg.Add(1)
		go func(u unit) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			resultChan <- e.deliver(ctx, u.channel.Channel, u.payload, u.account)
		}(u)
	}

	wg.Wait()
	close(resultChan)

	for result := range resultChan {
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ChannelType != results[j].ChannelType {
			return results[i].ChannelType < results[j].ChannelType
		}
		return results[i].AccountIndex < results[j].AccountIndex
	})

	status := Summarize(results)
	slog.Info("Dispatch completed", "status", string(status), "results", len(results))

	return results, status
}

// deliver attempts one (channel, account) unit with bounded retries and
// exponential backoff on transient errors.
func (e *Engine) deliver(ctx context.Context, channel Channel, payload []byte, account Account) DispatchResult {
	result := DispatchResult{
		ChannelType:  channel.Type(),
		AccountIndex: account.Index,
	}

	for attempt := 0; ; attempt++ {
		result.Attempts = attempt + 1

		err := channel.Deliver(ctx, payload, account)
		if err == nil {
			if attempt > 0 {
				result.Status = StatusRetriedSuccess
			} else {
				result.Status = StatusSuccess
			}
			return result
		}

		result.LastError = err.Error()

		if !IsTransient(err) {
			slog.Warn("Permanent delivery failure, not retrying",
				"channel", channel.Type(), "account", account.Index, "error", err)
			result.Status = StatusFailed
			return result
		}

		if attempt >= e.maxRetries {
			result.Status = StatusFailed
			return result
		}

		delay := e.retryDelay << uint(attempt)
		slog.Warn("Transient delivery failure, retrying",
			"channel", channel.Type(), "account", account.Index,
			"attempt", attempt+1, "delay", delay.String(), "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			result.Status = StatusFailed
			result.LastError = ctx.Err().Error()
			return result
		}
	}
}
