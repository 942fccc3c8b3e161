package trend

import (
	"fmt"

	"github.com/trendwatch/trendwatch/app/match"
)

// Mode selects which historical window a run consults and persists.
type Mode string

const (
	// ModeCurrent ignores history entirely; items are listed as-is.
	ModeCurrent Mode = "current"
	// ModeIncremental compares against the single most recent snapshot.
	ModeIncremental Mode = "incremental"
	// ModeDaily aggregates every snapshot since the start of the current
	// calendar day in the configured timezone.
	ModeDaily Mode = "daily"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCurrent, ModeIncremental, ModeDaily:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown report mode '%s' (expected current, incremental or daily)", s)
	}
}

// Classification of one matched item relative to the consulted history.
type Classification string

const (
	ClassificationNone       Classification = ""
	ClassificationNew        Classification = "NEW"
	ClassificationContinuing Classification = "CONTINUING"
	ClassificationRising     Classification = "RISING"
	ClassificationFalling    Classification = "FALLING"
)

// Classified is one matched item with its trend classification.
type Classified struct {
	match.Match
	Classification  Classification
	PreviousRank    int // 0 when the item has no prior observation
	PersistentTrend bool
}
