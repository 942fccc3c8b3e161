package config

import (
	"github.com/trendwatch/trendwatch/app/match"
	"github.com/trendwatch/trendwatch/app/notify"
	"github.com/trendwatch/trendwatch/app/source"
)

// Config is the full file-backed configuration for one run: which
// platforms to poll, which keyword groups to match, and where to send
// the report. Loaded once per run and immutable afterwards.
type Config struct {
	Sources  []*source.Config
	Groups   []match.Group
	Channels []notify.ChannelConfig
}

type sourcesFile struct {
	Sources []*source.Config `yaml:"sources"`
}

type rulesFile struct {
	Groups []match.Group `yaml:"groups"`
}

type channelsFile struct {
	Channels []notify.ChannelConfig `yaml:"channels"`
}
