package match

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/trendwatch/trendwatch/app/canonical"
)

func item(id, title string) canonical.Item {
	return canonical.Item{ID: id, PlatformID: "test", DisplayTitle: title}
}

func TestMatcher_IncludeExclude(t *testing.T) {
	groups := []Group{
		{Label: "ai", Includes: []string{"AI"}, Excludes: []string{"AI耳机"}},
	}
	matcher := NewMatcher(groups, false)

	items := []canonical.Item{
		item("1", "AI芯片突破"),
		item("2", "新款AI耳机发布"),
		item("3", "体育新闻"),
	}

	matches := matcher.Run(items)

	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Item.ID != "1" {
		t.Errorf("Expected item 1 to match, got %s", matches[0].Item.ID)
	}
	if len(matches[0].Groups) != 1 || matches[0].Groups[0] != "ai" {
		t.Errorf("Expected attribution to group 'ai', got %v", matches[0].Groups)
	}
}

func TestMatcher_CaseInsensitive(t *testing.T) {
	groups := []Group{
		{Label: "tech", Includes: []string{"chip"}},
	}
	matcher := NewMatcher(groups, false)

	matches := matcher.Run([]canonical.Item{item("1", "New CHIP breakthrough")})
	if len(matches) != 1 {
		t.Fatalf("Expected case-insensitive match, got %d matches", len(matches))
	}
}

func TestMatcher_MultipleGroupAttribution(t *testing.T) {
	groups := []Group{
		{Label: "ai", Includes: []string{"AI"}, Weight: 2},
		{Label: "hardware", Includes: []string{"芯片"}, Weight: 5},
	}
	matcher := NewMatcher(groups, false)

	matches := matcher.Run([]canonical.Item{item("1", "AI芯片突破")})

	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if len(matches[0].Groups) != 2 {
		t.Errorf("Expected attribution to both groups, got %v", matches[0].Groups)
	}
	if matches[0].Weight != 5 {
		t.Errorf("Expected highest group weight 5, got %d", matches[0].Weight)
	}
}

func TestMatcher_MatchAllMode(t *testing.T) {
	groups := []Group{
		{Label: "ai", Includes: []string{"AI"}},
	}

	items := []canonical.Item{
		item("1", "AI芯片突破"),
		item("2", "体育新闻"),
	}

	strict := NewMatcher(groups, false).Run(items)
	if len(strict) != 1 {
		t.Errorf("Expected 1 match without match-all, got %d", len(strict))
	}

	all := NewMatcher(groups, true).Run(items)
	if len(all) != 2 {
		t.Fatalf("Expected 2 matches with match-all, got %d", len(all))
	}
	if len(all[1].Groups) != 0 {
		t.Errorf("Unmatched item in match-all mode should carry no attribution, got %v", all[1].Groups)
	}
}

func TestMatcher_OrderIndependent(t *testing.T) {
	groups := []Group{
		{Label: "a", Includes: []string{"alpha"}, Excludes: []string{"noise"}},
		{Label: "b", Includes: []string{"beta", "alpha"}},
		{Label: "c", Includes: []string{"gamma"}, Excludes: []string{"beta"}},
		{Label: "d", Includes: []string{"delta"}},
	}

	items := []canonical.Item{
		item("1", "alpha story"),
		item("2", "beta gamma mix"),
		item("3", "noise alpha"),
		item("4", "delta gamma"),
		item("5", "nothing here"),
	}

	baseline := snapshotMatches(NewMatcher(groups, false).Run(items))

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]Group, len(groups))
		copy(shuffled, groups)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := snapshotMatches(NewMatcher(shuffled, false).Run(items))
		if !reflect.DeepEqual(baseline, got) {
			t.Fatalf("Rule order changed the result:\nbaseline %v\ngot      %v", baseline, got)
		}
	}
}

// snapshotMatches reduces matches to a canonical comparable form.
func snapshotMatches(matches []Match) map[string][]string {
	result := make(map[string][]string)
	for _, m := range matches {
		labels := make([]string, len(m.Groups))
		copy(labels, m.Groups)
		sort.Strings(labels)
		result[m.Item.ID] = labels
	}
	return result
}
