package source

import (
	"context"
	"time"
)

// Entry is one ranked title as fetched from a platform, before
// canonicalization. Entries are transient and consumed once per cycle.
type Entry struct {
	PlatformID string
	Title      string
	Rank       int
	URL        string
	FetchedAt  time.Time
}

// Source fetches the current ranked title list for one platform.
type Source interface {
	PlatformID() string
	Fetch(ctx context.Context) ([]Entry, error)
}

const (
	TypeHotlist = "hotlist"
	TypeRSS     = "rss"
)

// Config describes one configured platform source.
type Config struct {
	ID      string `yaml:"id"`
	Type    string `yaml:"type"` // "rss" or "hotlist"
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
	Timeout int    `yaml:"timeout"` // seconds
	Limit   int    `yaml:"limit"`   // max entries taken from this source
}

func (c *Config) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c *Config) GetLimit() int {
	if c.Limit <= 0 {
		return 50
	}
	return c.Limit
}
