package canonical

import (
	"time"
)

// Item is the deduplicated, identity-stable representation of one story on
// one platform. Its ID is stable across runs: two raw entries map to the
// same Item exactly when their normalized titles and platform match.
type Item struct {
	ID           string      `json:"id"`
	PlatformID   string      `json:"platform_id"`
	DisplayTitle string      `json:"display_title"`
	Rank         int         `json:"rank"`
	URLs         []string    `json:"urls,omitempty"`
	FirstSeenAt  time.Time   `json:"first_seen_at"`
	LastSeenAt   time.Time   `json:"last_seen_at"`
	RankHistory  []RankPoint `json:"rank_history,omitempty"`
}

// RankPoint is one observation of an item's rank.
type RankPoint struct {
	At   time.Time `json:"at"`
	Rank int       `json:"rank"`
}
