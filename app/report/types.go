package report

import (
	"time"

	"github.com/trendwatch/trendwatch/app/canonical"
	"github.com/trendwatch/trendwatch/app/trend"
)

// Report is the finalized, immutable result of one run, handed to the
// dispatch engine and any external renderer.
type Report struct {
	GeneratedAt   time.Time `json:"generated_at"`
	Mode          string    `json:"mode"`
	Degraded      bool      `json:"degraded"`
	PersistFailed bool      `json:"persist_failed,omitempty"`
	SourceErrors  int       `json:"source_errors,omitempty"`
	TotalItems    int       `json:"total_items"`
	Summary       string    `json:"summary,omitempty"`
	Items         []Item    `json:"items"`
}

// Item is one matched item with its attributions and classification.
type Item struct {
	canonical.Item
	Groups          []string             `json:"groups,omitempty"`
	Classification  trend.Classification `json:"classification,omitempty"`
	PreviousRank    int                  `json:"previous_rank,omitempty"`
	PersistentTrend bool                 `json:"persistent_trend,omitempty"`
	Excerpt         string               `json:"excerpt,omitempty"`
}

// Build assembles the report from the run's classified matches.
func Build(generatedAt time.Time, mode trend.Mode, classified []trend.Classified, totalItems, sourceErrors int, degraded bool) *Report {
	items := make([]Item, 0, len(classified))
	for _, c := range classified {
		items = append(items, Item{
			Item:            c.Item,
			Groups:          c.Groups,
			Classification:  c.Classification,
			PreviousRank:    c.PreviousRank,
			PersistentTrend: c.PersistentTrend,
		})
	}

	return &Report{
		GeneratedAt:  generatedAt,
		Mode:         string(mode),
		Degraded:     degraded,
		SourceErrors: sourceErrors,
		TotalItems:   totalItems,
		Items:        items,
	}
}

// NewItems returns the items classified NEW, up to limit.
func (r *Report) NewItems(limit int) []*Item {
	var items []*Item
	for i := range r.Items {
		if r.Items[i].Classification != trend.ClassificationNew {
			continue
		}
		items = append(items, &r.Items[i])
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items
}
