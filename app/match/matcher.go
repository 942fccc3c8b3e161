package match

import (
	"strings"

	"github.com/trendwatch/trendwatch/app/canonical"
)

// Group is one keyword rule group. An item matches a group when its title
// contains at least one include term and none of the exclude terms,
// case-insensitively.
type Group struct {
	Label    string   `yaml:"label"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	Weight   int      `yaml:"weight"`
}

// Match is a canonical item together with every group that matched it.
type Match struct {
	Item   canonical.Item
	Groups []string
	Weight int
}

type Matcher struct {
	groups   []Group
	matchAll bool
}

// NewMatcher builds a matcher over the rule groups. With matchAll set,
// items matching no group pass through with an empty attribution instead
// of being dropped.
func NewMatcher(groups []Group, matchAll bool) *Matcher {
	return &Matcher{groups: groups, matchAll: matchAll}
}

// Run evaluates every item against every group. Evaluation is independent
// per group: an item carries all matching group labels, and the result is
// identical regardless of group order.
func (m *Matcher) Run(items []canonical.Item) []Match {
	matches := make([]Match, 0, len(items))

	for _, item := range items {
		var labels []string
		weight := 0

		for _, group := range m.groups {
			if m.groupMatches(item.DisplayTitle, group) {
				labels = append(labels, group.Label)
				if group.Weight > weight {
					weight = group.Weight
				}
			}
		}

		if len(labels) == 0 && !m.matchAll {
			continue
		}

		matches = append(matches, Match{Item: item, Groups: labels, Weight: weight})
	}

	return matches
}

func (m *Matcher) groupMatches(title string, group Group) bool {
	lowered := strings.ToLower(title)

	for _, exclude := range group.Excludes {
		if strings.Contains(lowered, strings.ToLower(exclude)) {
			return false
		}
	}

	for _, include := range group.Includes {
		if strings.Contains(lowered, strings.ToLower(include)) {
			return true
		}
	}

	return false
}
