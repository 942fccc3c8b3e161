package trend

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/trendwatch/trendwatch/app/store"
)

// Window is the resolved slice of history a run consults, ordered oldest
// first. Degraded is set when the store was unreachable, which callers
// must surface rather than treating as empty history.
type Window struct {
	Snapshots []store.Snapshot
	Classify  bool
	Degraded  bool
}

// Controller is the single authority for which historical window the
// tracker reads. The tracker itself is mode-agnostic.
type Controller struct {
	snapshotStore store.SnapshotStore
	mode          Mode
	location      *time.Location
}

func NewController(snapshotStore store.SnapshotStore, mode Mode, location *time.Location) *Controller {
	if location == nil {
		location = time.UTC
	}
	return &Controller{
		snapshotStore: snapshotStore,
		mode:          mode,
		location:      location,
	}
}

func (c *Controller) Mode() Mode {
	return c.mode
}

// ResolveWindow loads the history the current run should classify against.
// Store unavailability never fails the run; it yields an empty, degraded
// window instead.
func (c *Controller) ResolveWindow(ctx context.Context, now time.Time) Window {
	switch c.mode {
	case ModeCurrent:
		return Window{Classify: false}

	case ModeIncremental:
		latest, err := c.snapshotStore.GetLatest(ctx, string(c.mode), now)
		if err != nil {
			return c.degraded(err)
		}
		if latest == nil {
			return Window{Classify: true}
		}
		return Window{Snapshots: []store.Snapshot{*latest}, Classify: true}

	case ModeDaily:
		dayStart := startOfDay(now, c.location)
		snapshots, err := c.snapshotStore.GetWindow(ctx, string(c.mode), dayStart, now)
		if err != nil {
			return c.degraded(err)
		}
		// The first run of a new day has no same-day history and behaves
		// like a current-only run for classification purposes.
		return Window{Snapshots: snapshots, Classify: true}

	default:
		return Window{Classify: false}
	}
}

func (c *Controller) degraded(err error) Window {
	if errors.Is(err, store.ErrUnavailable) {
		slog.Warn("Snapshot history unavailable, degrading to NEW-only classification", "mode", c.mode, "error", err)
	} else {
		slog.Error("Snapshot history read failed, degrading to NEW-only classification", "mode", c.mode, "error", err)
	}
	return Window{Classify: true, Degraded: true}
}

func startOfDay(t time.Time, location *time.Location) time.Time {
	local := t.In(location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)
}
