package canonical

import (
	"testing"
	"time"

	"github.com/trendwatch/trendwatch/app/source"
)

func TestCanonicalizer_Normalize(t *testing.T) {
	c := NewCanonicalizer("")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "Breaking News", "breaking news"},
		{"trim and collapse", "  too   many\tspaces  ", "too many spaces"},
		{"punctuation stripped", "Hello, World!", "hello world"},
		{"cjk punctuation stripped", "突发：重要新闻！", "突发重要新闻"},
		{"fullwidth folded", "ＡＩ芯片", "ai芯片"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCanonicalizer_NormalizeIdempotent(t *testing.T) {
	c := NewCanonicalizer("")

	titles := []string{
		"Breaking News: Important Update!",
		"ＡＩ芯片突破，行业震动",
		"  spaced   out  ",
		"plain",
	}

	for _, title := range titles {
		once := c.Normalize(title)
		twice := c.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", title, once, twice)
		}
		if c.ItemID("p", once) != c.ItemID("p", title) {
			t.Errorf("ItemID unstable under normalization for %q", title)
		}
	}
}

func TestCanonicalizer_ItemIDStability(t *testing.T) {
	c := NewCanonicalizer("")

	// Same story, different punctuation/casing/width variants.
	a := c.ItemID("weibo", "AI芯片突破！")
	b := c.ItemID("weibo", "ai芯片突破")
	if a != b {
		t.Errorf("variants of the same title should share an ID")
	}

	// Same title on different platforms is a different item.
	other := c.ItemID("zhihu", "AI芯片突破！")
	if a == other {
		t.Errorf("same title on different platforms must not share an ID")
	}
}

func TestCanonicalizer_Run_MergesDuplicates(t *testing.T) {
	c := NewCanonicalizer("")
	now := time.Now().UTC()

	entries := []source.Entry{
		{PlatformID: "weibo", Title: "AI芯片突破", Rank: 5, URL: "https://a.example/1", FetchedAt: now},
		{PlatformID: "weibo", Title: "Other Story", Rank: 2, URL: "https://a.example/2", FetchedAt: now},
		{PlatformID: "weibo", Title: "AI芯片突破！", Rank: 3, URL: "https://b.example/1", FetchedAt: now},
	}

	items := c.Run(entries)

	if len(items) != 2 {
		t.Fatalf("Expected 2 items after merge, got %d", len(items))
	}

	// Output is ordered by best rank.
	if items[0].DisplayTitle != "Other Story" {
		t.Errorf("Expected best-ranked item first, got %q", items[0].DisplayTitle)
	}

	merged := items[1]
	if merged.Rank != 3 {
		t.Errorf("Expected merged item to keep best rank 3, got %d", merged.Rank)
	}
	if len(merged.URLs) != 2 {
		t.Errorf("Expected merged item to union URLs, got %v", merged.URLs)
	}
}

func TestCanonicalizer_Run_Empty(t *testing.T) {
	c := NewCanonicalizer("")
	items := c.Run(nil)
	if len(items) != 0 {
		t.Errorf("Expected no items, got %d", len(items))
	}
}
