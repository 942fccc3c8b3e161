package store

import (
	"context"
	"testing"
	"time"

	"github.com/trendwatch/trendwatch/app/canonical"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func testSnapshot(mode string, capturedAt time.Time, titles ...string) *Snapshot {
	items := make([]canonical.Item, 0, len(titles))
	for i, title := range titles {
		items = append(items, canonical.Item{
			ID:           title,
			PlatformID:   "test",
			DisplayTitle: title,
			Rank:         i + 1,
		})
	}
	return &Snapshot{CapturedAt: capturedAt, Mode: mode, Items: items}
}

func TestSQLiteStore_PutAndGetLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := s.Put(ctx, testSnapshot("daily", base, "first")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, testSnapshot("daily", base.Add(time.Hour), "second")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	latest, err := s.GetLatest(ctx, "daily", base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if latest == nil {
		t.Fatal("Expected a snapshot, got nil")
	}
	if len(latest.Items) != 1 || latest.Items[0].DisplayTitle != "second" {
		t.Errorf("Expected the most recent snapshot, got %+v", latest.Items)
	}

	// A cutoff before the second write returns the first snapshot.
	earlier, err := s.GetLatest(ctx, "daily", base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if earlier == nil || earlier.Items[0].DisplayTitle != "first" {
		t.Errorf("Expected the first snapshot before cutoff, got %+v", earlier)
	}
}

func TestSQLiteStore_GetLatest_NoHistory(t *testing.T) {
	s := newTestStore(t)

	latest, err := s.GetLatest(context.Background(), "daily", time.Now())
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if latest != nil {
		t.Errorf("Expected nil for empty store, got %+v", latest)
	}
}

func TestSQLiteStore_GetWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		snap := testSnapshot("daily", base.Add(time.Duration(i)*time.Hour), "run")
		if err := s.Put(ctx, snap); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	window, err := s.GetWindow(ctx, "daily", base.Add(time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("GetWindow failed: %v", err)
	}
	if len(window) != 2 {
		t.Fatalf("Expected 2 snapshots in window, got %d", len(window))
	}
	if !window[0].CapturedAt.Before(window[1].CapturedAt) {
		t.Errorf("Expected snapshots ordered by capture time")
	}
}

func TestSQLiteStore_ModeIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := s.Put(ctx, testSnapshot("incremental", now, "inc")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	latest, err := s.GetLatest(ctx, "daily", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if latest != nil {
		t.Errorf("Snapshots written under one mode must not appear for another")
	}
}
