package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/trendwatch/trendwatch/app/source"
)

// Loader reads sources.yml, rules.yml and channels.yml from the
// configuration directory.
type Loader struct {
	configDir string
}

// NewLoader creates a new configuration loader
func NewLoader(configDir string) *Loader {
	return &Loader{configDir: configDir}
}

// Load reads and validates the full configuration. sources.yml and
// rules.yml are required; a missing channels.yml means the run has no
// notification targets and only logs its report.
func (l *Loader) Load() (*Config, error) {
	config := &Config{}

	var sources sourcesFile
	if err := l.loadFile("sources.yml", &sources, true); err != nil {
		return nil, err
	}
	config.Sources = sources.Sources

	var rules rulesFile
	if err := l.loadFile("rules.yml", &rules, true); err != nil {
		return nil, err
	}
	config.Groups = rules.Groups

	var channels channelsFile
	if err := l.loadFile("channels.yml", &channels, false); err != nil {
		return nil, err
	}
	config.Channels = channels.Channels

	if err := l.validate(config); err != nil {
		return nil, err
	}

	slog.Info("Configuration loaded", "dir", l.configDir,
		"sources", len(config.Sources), "groups", len(config.Groups), "channels", len(config.Channels))

	return config, nil
}

// loadFile loads a single YAML configuration file
func (l *Loader) loadFile(name string, out interface{}, required bool) error {
	path := filepath.Join(l.configDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			slog.Warn("Optional configuration file missing", "file", path)
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

// validate validates the configuration
func (l *Loader) validate(config *Config) error {
	if len(config.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	seen := make(map[string]bool)
	for i, src := range config.Sources {
		if src.ID == "" {
			return fmt.Errorf("source at index %d: id is required", i)
		}
		if seen[src.ID] {
			return fmt.Errorf("duplicate source id: %s", src.ID)
		}
		seen[src.ID] = true

		switch src.Type {
		case source.TypeHotlist, source.TypeRSS:
		default:
			return fmt.Errorf("source %s: unknown type: %s", src.ID, src.Type)
		}
		if src.URL == "" {
			return fmt.Errorf("source %s: url is required", src.ID)
		}
	}

	for i, group := range config.Groups {
		if group.Label == "" {
			return fmt.Errorf("group at index %d: label is required", i)
		}
		if len(group.Includes) == 0 {
			return fmt.Errorf("group %s: at least one include keyword is required", group.Label)
		}
	}

	// Channel declarations are validated per channel at dispatch setup so
	// one bad entry cannot take down the rest.
	return nil
}
