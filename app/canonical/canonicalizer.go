package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/trendwatch/trendwatch/app/source"
)

// DefaultPunctuation covers the ASCII and CJK punctuation stripped from
// titles before hashing. Override via the canonicalizer constructor.
const DefaultPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" +
	"！？。，、；：“”‘’（）【】《》〈〉「」『』—…·～￥"

type Canonicalizer struct {
	punctuation map[rune]bool
	caser       cases.Caser
}

func NewCanonicalizer(punctuation string) *Canonicalizer {
	if punctuation == "" {
		punctuation = DefaultPunctuation
	}

	set := make(map[rune]bool, len(punctuation))
	for _, r := range punctuation {
		set[r] = true
	}

	return &Canonicalizer{
		punctuation: set,
		caser:       cases.Lower(language.Und),
	}
}

// Run deduplicates one fetch cycle's entries into canonical items. Entries
// sharing an identity are merged: the best (lowest) rank wins and source
// URLs are unioned. Output order follows the best rank of each item.
func (c *Canonicalizer) Run(entries []source.Entry) []Item {
	byID := make(map[string]*Item)
	var order []string

	for _, entry := range entries {
		id := c.ItemID(entry.PlatformID, entry.Title)

		existing, ok := byID[id]
		if !ok {
			item := &Item{
				ID:           id,
				PlatformID:   entry.PlatformID,
				DisplayTitle: strings.TrimSpace(entry.Title),
				Rank:         entry.Rank,
				FirstSeenAt:  entry.FetchedAt,
				LastSeenAt:   entry.FetchedAt,
			}
			if entry.URL != "" {
				item.URLs = []string{entry.URL}
			}
			byID[id] = item
			order = append(order, id)
			continue
		}

		if entry.Rank < existing.Rank {
			existing.Rank = entry.Rank
			existing.DisplayTitle = strings.TrimSpace(entry.Title)
		}
		if entry.FetchedAt.After(existing.LastSeenAt) {
			existing.LastSeenAt = entry.FetchedAt
		}
		if entry.URL != "" && !containsString(existing.URLs, entry.URL) {
			existing.URLs = append(existing.URLs, entry.URL)
		}
	}

	items := make([]Item, 0, len(order))
	for _, id := range order {
		items = append(items, *byID[id])
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Rank < items[j].Rank
	})

	return items
}

// ItemID returns the stable identity hash for a title on a platform.
func (c *Canonicalizer) ItemID(platformID, title string) string {
	content := platformID + "|" + c.Normalize(title)
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// Normalize folds a title to its comparable form: NFKC, half-width,
// lowercase, punctuation stripped, whitespace collapsed. Normalizing an
// already-normalized title is a no-op.
func (c *Canonicalizer) Normalize(title string) string {
	s := norm.NFKC.String(title)
	s = width.Narrow.String(s)
	s = c.caser.String(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if c.punctuation[r] {
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '　' {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteRune(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}

	return b.String()
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
