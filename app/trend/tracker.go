package trend

import (
	"time"

	"github.com/trendwatch/trendwatch/app/canonical"
	"github.com/trendwatch/trendwatch/app/match"
	"github.com/trendwatch/trendwatch/app/store"
)

// Tracker classifies matched items against a resolved history window and
// maintains per-item rank history. It holds no cross-run state of its own;
// everything it needs arrives in the window.
type Tracker struct {
	historyLimit   int // max rank observations kept per item
	persistentRuns int // consecutive snapshots for PERSISTENT_TREND
	rankTolerance  int // rank delta still counted as CONTINUING
}

func NewTracker(historyLimit, persistentRuns, rankTolerance int) *Tracker {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	if persistentRuns <= 0 {
		persistentRuns = 3
	}
	if rankTolerance < 0 {
		rankTolerance = 0
	}
	return &Tracker{
		historyLimit:   historyLimit,
		persistentRuns: persistentRuns,
		rankTolerance:  rankTolerance,
	}
}

// Run classifies the matched items and returns them alongside the full
// item set with merged rank histories, ready to persist as the new
// snapshot. A degraded window classifies everything as NEW.
func (t *Tracker) Run(items []canonical.Item, matches []match.Match, window Window, capturedAt time.Time) ([]Classified, []canonical.Item) {
	history := buildHistoryIndex(window.Snapshots)

	// Merge history into every current item so the persisted snapshot
	// carries rank trajectories, not just the matched subset.
	merged := make([]canonical.Item, len(items))
	mergedByID := make(map[string]canonical.Item, len(items))
	for i, item := range items {
		m := t.mergeHistory(item, history, capturedAt)
		merged[i] = m
		mergedByID[item.ID] = m
	}

	classified := make([]Classified, 0, len(matches))
	for _, mt := range matches {
		if item, ok := mergedByID[mt.Item.ID]; ok {
			mt.Item = item
		}

		c := Classified{Match: mt}
		if window.Classify {
			c.Classification, c.PreviousRank = t.classify(mt.Item, history, window.Degraded)
			c.PersistentTrend = t.isPersistent(mt.Item.ID, window.Snapshots)
		}
		classified = append(classified, c)
	}

	return classified, merged
}

func (t *Tracker) classify(item canonical.Item, history *historyIndex, degraded bool) (Classification, int) {
	if degraded {
		return ClassificationNew, 0
	}

	prev, seen := history.lookup(item.ID)
	if !seen {
		return ClassificationNew, 0
	}

	delta := item.Rank - prev.rank
	switch {
	case delta < -t.rankTolerance:
		return ClassificationRising, prev.rank
	case delta > t.rankTolerance:
		return ClassificationFalling, prev.rank
	default:
		return ClassificationContinuing, prev.rank
	}
}

// isPersistent reports sustained presence: the item appeared in each of the
// persistentRuns-1 most recent historical snapshots (the current run counts
// as one).
func (t *Tracker) isPersistent(itemID string, snapshots []store.Snapshot) bool {
	needed := t.persistentRuns - 1
	if needed <= 0 {
		return true
	}
	if len(snapshots) < needed {
		return false
	}

	for i := 0; i < needed; i++ {
		snapshot := snapshots[len(snapshots)-1-i]
		if !snapshotContains(snapshot, itemID) {
			return false
		}
	}
	return true
}

func (t *Tracker) mergeHistory(item canonical.Item, history *historyIndex, capturedAt time.Time) canonical.Item {
	if prev, seen := history.lookup(item.ID); seen {
		item.FirstSeenAt = prev.firstSeenAt
		item.RankHistory = append([]canonical.RankPoint(nil), prev.rankHistory...)
	}

	item.RankHistory = append(item.RankHistory, canonical.RankPoint{At: capturedAt, Rank: item.Rank})
	if excess := len(item.RankHistory) - t.historyLimit; excess > 0 {
		item.RankHistory = item.RankHistory[excess:]
	}
	item.LastSeenAt = capturedAt

	return item
}

type historyEntry struct {
	rank        int
	firstSeenAt time.Time
	rankHistory []canonical.RankPoint
}

type historyIndex struct {
	entries map[string]historyEntry
}

// buildHistoryIndex folds a window (ordered oldest first) into a per-item
// view: the most recent rank wins, the earliest first-seen time is kept,
// and rank histories are taken from the latest snapshot carrying the item.
func buildHistoryIndex(snapshots []store.Snapshot) *historyIndex {
	index := &historyIndex{entries: make(map[string]historyEntry)}

	for _, snapshot := range snapshots {
		for _, item := range snapshot.Items {
			entry, ok := index.entries[item.ID]
			if !ok {
				index.entries[item.ID] = historyEntry{
					rank:        item.Rank,
					firstSeenAt: item.FirstSeenAt,
					rankHistory: item.RankHistory,
				}
				continue
			}

			entry.rank = item.Rank
			if len(item.RankHistory) >= len(entry.rankHistory) {
				entry.rankHistory = item.RankHistory
			}
			if item.FirstSeenAt.Before(entry.firstSeenAt) {
				entry.firstSeenAt = item.FirstSeenAt
			}
			index.entries[item.ID] = entry
		}
	}

	return index
}

func (h *historyIndex) lookup(itemID string) (historyEntry, bool) {
	entry, ok := h.entries[itemID]
	return entry, ok
}

func snapshotContains(snapshot store.Snapshot, itemID string) bool {
	for _, item := range snapshot.Items {
		if item.ID == itemID {
			return true
		}
	}
	return false
}
