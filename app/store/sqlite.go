package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var _ SnapshotStore = (*SQLiteStore)(nil)

// SQLiteStore persists snapshots to a local sqlite database. Intended for
// single-host deployments and development; stateless deployments should
// use the redis backend instead.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetLatest(ctx context.Context, mode string, before time.Time) (*Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots
		WHERE mode = ? AND captured_at <= ?
		ORDER BY captured_at DESC
		LIMIT 1
	`, mode, before.UnixNano()).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query latest snapshot: %v", ErrUnavailable, err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return &snapshot, nil
}

func (s *SQLiteStore) GetWindow(ctx context.Context, mode string, start, end time.Time) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM snapshots
		WHERE mode = ? AND captured_at >= ? AND captured_at <= ?
		ORDER BY captured_at ASC
	`, mode, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query snapshot window: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		var snapshot Snapshot
		if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating snapshot rows: %v", ErrUnavailable, err)
	}

	return snapshots, nil
}

func (s *SQLiteStore) Put(ctx context.Context, snapshot *Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (mode, captured_at, payload)
		VALUES (?, ?, ?)
	`, snapshot.Mode, snapshot.CapturedAt.UnixNano(), string(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to write snapshot: %v", ErrUnavailable, err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
