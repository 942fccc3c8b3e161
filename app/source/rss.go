package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSSource treats an RSS/Atom feed as a ranked list: item order in the
// feed is taken as the rank order.
type RSSSource struct {
	config       *Config
	httpClient   *http.Client
	gofeedParser *gofeed.Parser
	userAgent    string
}

func NewRSSSource(config *Config, httpClient *http.Client, userAgent string) *RSSSource {
	return &RSSSource{
		config:       config,
		httpClient:   httpClient,
		gofeedParser: gofeed.NewParser(),
		userAgent:    userAgent,
	}
}

func (s *RSSSource) PlatformID() string {
	return s.config.ID
}

func (s *RSSSource) Fetch(ctx context.Context) ([]Entry, error) {
	data, err := fetchURL(ctx, s.httpClient, s.config.URL, s.userAgent, s.config.GetTimeout())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := s.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	now := time.Now().UTC()
	limit := s.config.GetLimit()

	entries := make([]Entry, 0, len(feed.Items))
	for i, item := range feed.Items {
		if i >= limit {
			break
		}
		if item.Title == "" {
			continue
		}
		entries = append(entries, Entry{
			PlatformID: s.config.ID,
			Title:      item.Title,
			Rank:       i + 1,
			URL:        item.Link,
			FetchedAt:  now,
		})
	}

	return entries, nil
}
