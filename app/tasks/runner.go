package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/trendwatch/trendwatch/app/analyze"
	"github.com/trendwatch/trendwatch/app/canonical"
	"github.com/trendwatch/trendwatch/app/enrich"
	"github.com/trendwatch/trendwatch/app/match"
	"github.com/trendwatch/trendwatch/app/notify"
	"github.com/trendwatch/trendwatch/app/report"
	"github.com/trendwatch/trendwatch/app/source"
	"github.com/trendwatch/trendwatch/app/store"
	"github.com/trendwatch/trendwatch/app/trend"
)

const (
	persistMaxRetries = 3
	runTimeout        = 5 * time.Minute
)

// RunResult is the complete outcome of one pipeline run.
type RunResult struct {
	StartedAt time.Time               `json:"started_at"`
	Duration  time.Duration           `json:"duration"`
	Status    notify.RunStatus        `json:"status"`
	Report    *report.Report          `json:"report"`
	Dispatch  []notify.DispatchResult `json:"dispatch"`
}

// Stats is a lightweight view of the runner for the operational API.
type Stats struct {
	RunCount  int              `json:"run_count"`
	LastRunAt *time.Time       `json:"last_run_at,omitempty"`
	LastMode  string           `json:"last_mode,omitempty"`
	Status    notify.RunStatus `json:"last_status,omitempty"`
}

// Runner executes the full pipeline: fetch, canonicalize, match,
// classify against history, enrich, persist and dispatch. Runs are
// serialized; an overlapping trigger waits for the previous run.
type Runner struct {
	fetcher       *source.Fetcher
	canonicalizer *canonical.Canonicalizer
	matcher       *match.Matcher
	controller    *trend.Controller
	tracker       *trend.Tracker
	extractor     *enrich.Extractor
	analyzer      *analyze.Analyzer
	engine        *notify.Engine
	snapshots     store.SnapshotStore
	persistDelay  time.Duration

	runMu sync.Mutex

	mu       sync.Mutex
	last     *RunResult
	runCount int
}

func NewRunner(fetcher *source.Fetcher, canonicalizer *canonical.Canonicalizer,
	matcher *match.Matcher, controller *trend.Controller, tracker *trend.Tracker,
	extractor *enrich.Extractor, analyzer *analyze.Analyzer, engine *notify.Engine,
	snapshots store.SnapshotStore) *Runner {
	return &Runner{
		fetcher:       fetcher,
		canonicalizer: canonicalizer,
		matcher:       matcher,
		controller:    controller,
		tracker:       tracker,
		extractor:     extractor,
		analyzer:      analyzer,
		engine:        engine,
		snapshots:     snapshots,
		persistDelay:  500 * time.Millisecond,
	}
}

// Run executes one pipeline cycle and records the result.
func (r *Runner) Run(ctx context.Context) *RunResult {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	startedAt := time.Now().UTC()

	entries, sourceErrors := r.fetcher.Run(runCtx)
	items := r.canonicalizer.Run(entries)
	matches := r.matcher.Run(items)

	window := r.controller.ResolveWindow(runCtx, startedAt)
	classified, snapshotItems := r.tracker.Run(items, matches, window, startedAt)

	rep := report.Build(startedAt, r.controller.Mode(), classified, len(items), sourceErrors, window.Degraded)

	if r.extractor != nil {
		enriched := r.extractor.Run(runCtx, rep)
		if enriched > 0 {
			slog.Debug("Report enriched", "items", enriched)
		}
	}

	if r.analyzer != nil {
		if err := r.analyzer.Run(runCtx, rep); err != nil {
			slog.Warn("Briefing generation failed, continuing without summary", "error", err)
		}
	}

	if err := r.persistSnapshot(runCtx, snapshotItems, startedAt); err != nil {
		slog.Error("Failed to persist snapshot, report dispatched anyway", "error", err)
		rep.PersistFailed = true
	}

	dispatch, status := r.engine.Run(runCtx, rep)

	result := &RunResult{
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Status:    status,
		Report:    rep,
		Dispatch:  dispatch,
	}

	r.mu.Lock()
	r.last = result
	r.runCount++
	r.mu.Unlock()

	slog.Info("Run completed",
		"mode", rep.Mode,
		"duration", result.Duration,
		"total", rep.TotalItems,
		"matched", len(rep.Items),
		"source_errors", sourceErrors,
		"degraded", rep.Degraded,
		"dispatch_status", string(status))

	return result
}

// persistSnapshot writes the merged item set with bounded retries. The
// snapshot carries every canonical item of the cycle, not only the
// matched ones, so later windows can classify newly added rule groups.
func (r *Runner) persistSnapshot(ctx context.Context, items []canonical.Item, capturedAt time.Time) error {
	snapshot := &store.Snapshot{
		CapturedAt: capturedAt,
		Mode:       string(r.controller.Mode()),
		Items:      items,
	}

	var err error
	for attempt := 0; attempt < persistMaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.persistDelay << uint(attempt-1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err = r.snapshots.Put(ctx, snapshot); err == nil {
			return nil
		}
		slog.Warn("Snapshot write failed", "attempt", attempt+1, "error", err)
	}

	return err
}

// LastResult returns the most recent run result, or nil before the
// first run.
func (r *Runner) LastResult() *RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Runner) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{RunCount: r.runCount}
	if r.last != nil {
		stats.LastRunAt = &r.last.StartedAt
		stats.LastMode = r.last.Report.Mode
		stats.Status = r.last.Status
	}
	return stats
}
