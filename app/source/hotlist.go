package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HotlistSource fetches a newsnow-style hot list endpoint returning a JSON
// document with a ranked item array.
type HotlistSource struct {
	config     *Config
	httpClient *http.Client
	userAgent  string
}

type hotlistResponse struct {
	Status string        `json:"status"`
	Items  []hotlistItem `json:"items"`
}

type hotlistItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Extra struct {
		Rank int `json:"rank"`
	} `json:"extra"`
}

func NewHotlistSource(config *Config, httpClient *http.Client, userAgent string) *HotlistSource {
	return &HotlistSource{
		config:     config,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (s *HotlistSource) PlatformID() string {
	return s.config.ID
}

func (s *HotlistSource) Fetch(ctx context.Context) ([]Entry, error) {
	data, err := fetchURL(ctx, s.httpClient, s.config.URL, s.userAgent, s.config.GetTimeout())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hot list: %w", err)
	}

	var response hotlistResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse hot list response: %w", err)
	}

	now := time.Now().UTC()
	limit := s.config.GetLimit()

	entries := make([]Entry, 0, len(response.Items))
	for i, item := range response.Items {
		if i >= limit {
			break
		}
		if item.Title == "" {
			continue
		}

		// Most endpoints return items already ordered; an explicit rank in
		// the payload wins when present.
		rank := i + 1
		if item.Extra.Rank > 0 {
			rank = item.Extra.Rank
		}

		entries = append(entries, Entry{
			PlatformID: s.config.ID,
			Title:      item.Title,
			Rank:       rank,
			URL:        item.URL,
			FetchedAt:  now,
		})
	}

	return entries, nil
}
