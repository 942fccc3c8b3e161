package store

import (
	"context"
	"errors"
	"time"

	"github.com/trendwatch/trendwatch/app/canonical"
)

// ErrUnavailable signals that the snapshot store could not be reached.
// Callers must distinguish this from "no history": an unreachable store
// degrades classification, an empty store does not.
var ErrUnavailable = errors.New("snapshot store unavailable")

// Snapshot is one run's complete set of canonical items. Immutable once
// written; a new run always writes a new snapshot.
type Snapshot struct {
	CapturedAt time.Time        `json:"captured_at"`
	Mode       string           `json:"mode"`
	Items      []canonical.Item `json:"items"`
}

// SnapshotStore is the adapter over the external snapshot storage.
//
// Reads after a Put from a different process may miss the just-written
// snapshot; callers must not assume read-after-write consistency.
type SnapshotStore interface {
	GetLatest(ctx context.Context, mode string, before time.Time) (*Snapshot, error)
	GetWindow(ctx context.Context, mode string, start, end time.Time) ([]Snapshot, error)
	Put(ctx context.Context, snapshot *Snapshot) error
	Close() error
}
