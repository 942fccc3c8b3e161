package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ SnapshotStore = (*RedisStore)(nil)

// RedisStore keeps snapshots as JSON values with a per-mode sorted-set
// index scored by capture time, which makes range and latest-before
// queries a single index call.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisStore(addr, password string, db int, retention time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, retention: retention}, nil
}

func (s *RedisStore) GetLatest(ctx context.Context, mode string, before time.Time) (*Snapshot, error) {
	keys, err := s.client.ZRevRangeByScore(ctx, indexKey(mode), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(before.UnixNano(), 10),
		Count: 1,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query snapshot index: %v", ErrUnavailable, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	data, err := s.client.Get(ctx, keys[0]).Result()
	if err == redis.Nil {
		// Index entry outlived its value (expired); treat as no history.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get snapshot %s: %v", ErrUnavailable, keys[0], err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", keys[0], err)
	}

	return &snapshot, nil
}

func (s *RedisStore) GetWindow(ctx context.Context, mode string, start, end time.Time) ([]Snapshot, error) {
	keys, err := s.client.ZRangeByScore(ctx, indexKey(mode), &redis.ZRangeBy{
		Min: strconv.FormatInt(start.UnixNano(), 10),
		Max: strconv.FormatInt(end.UnixNano(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query snapshot index: %v", ErrUnavailable, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get snapshots: %v", ErrUnavailable, err)
	}

	snapshots := make([]Snapshot, 0, len(values))
	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			continue // expired value still referenced by the index
		}
		var snapshot Snapshot
		if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %s: %w", keys[i], err)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func (s *RedisStore) Put(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := snapshotKey(snapshot.Mode, snapshot.CapturedAt)
	score := float64(snapshot.CapturedAt.UnixNano())

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, s.retention)
	pipe.ZAdd(ctx, indexKey(snapshot.Mode), redis.Z{Score: score, Member: key})
	if s.retention > 0 {
		cutoff := time.Now().Add(-s.retention).UnixNano()
		pipe.ZRemRangeByScore(ctx, indexKey(snapshot.Mode), "-inf", strconv.FormatInt(cutoff, 10))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to write snapshot: %v", ErrUnavailable, err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func snapshotKey(mode string, capturedAt time.Time) string {
	return fmt.Sprintf("snapshot:%s:%d", mode, capturedAt.UnixNano())
}

func indexKey(mode string) string {
	return fmt.Sprintf("snapshots:%s", mode)
}
