package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Report configuration
	Mode           string `long:"mode" env:"REPORT_MODE" default:"daily" description:"Report mode: current, incremental or daily"`
	Timezone       string `long:"timezone" env:"TZ" default:"Asia/Shanghai" description:"Timezone for day boundaries and timestamps"`
	MatchAll       bool   `long:"match-all" env:"MATCH_ALL" description:"Pass every item through unfiltered instead of dropping unmatched items"`
	HistoryLimit   int    `long:"history-limit" env:"HISTORY_LIMIT" default:"50" description:"Maximum rank observations kept per item"`
	PersistentRuns int    `long:"persistent-runs" env:"PERSISTENT_RUNS" default:"3" description:"Consecutive snapshots required for the persistent-trend flag"`
	RankTolerance  int    `long:"rank-tolerance" env:"RANK_TOLERANCE" default:"0" description:"Rank delta still counted as continuing"`

	// Snapshot store configuration
	StoreBackend  string `long:"store-backend" env:"STORE_BACKEND" default:"sqlite" description:"Snapshot store backend: redis or sqlite"`
	RedisAddr     string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address for the redis store backend"`
	RedisPassword string `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password (optional)"`
	RedisDB       int    `long:"redis-db" env:"REDIS_DB" default:"0" description:"Redis database number"`
	SQLitePath    string `long:"sqlite-path" env:"SQLITE_PATH" default:"./trendwatch.db" description:"Database path for the sqlite store backend"`
	RetentionDays int    `long:"retention-days" env:"RETENTION_DAYS" default:"7" description:"Snapshot retention in days (redis backend)"`

	// Application configuration
	ConfigDir    string `long:"config-dir" env:"CONFIG_DIR" default:"./config" description:"Directory containing sources.yml, rules.yml and channels.yml"`
	Schedule     string `long:"schedule" env:"SCHEDULE" default:"*/30 * * * *" description:"Cron expression for scheduled runs"`
	Once         bool   `long:"once" env:"RUN_ONCE" description:"Run a single cycle and exit (no scheduler, no HTTP server)"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the trigger endpoint (optional)"`

	// Fetch configuration
	FetchRate float64 `long:"fetch-rate" env:"FETCH_RATE" default:"2" description:"Maximum source fetch requests per second"`

	// Enrichment configuration
	EnrichEnabled bool `long:"enrich" env:"ENRICH_ENABLED" description:"Fetch article excerpts for newly-surfaced items"`
	EnrichItems   int  `long:"enrich-items" env:"ENRICH_ITEMS" default:"5" description:"Maximum items enriched per run"`
	ExcerptLength int  `long:"excerpt-length" env:"EXCERPT_LENGTH" default:"200" description:"Excerpt length in characters"`

	// Briefing configuration
	LLMBaseURL  string `long:"llm-base-url" env:"LLM_API_BASE_URL" description:"OpenAI-compatible API base URL for report briefings (optional)"`
	LLMAPIKey   string `long:"llm-api-key" env:"LLM_API_KEY" description:"API key for the briefing endpoint"`
	LLMModel    string `long:"llm-model" env:"LLM_MODEL_NAME" default:"gpt-4o-mini" description:"Model name for report briefings"`
	LLMMaxItems int    `long:"llm-max-items" env:"LLM_MAX_ITEMS" default:"20" description:"Maximum matched items included in the briefing prompt"`

	// Dispatch configuration
	DispatchMaxInFlight int `long:"dispatch-max-in-flight" env:"DISPATCH_MAX_IN_FLIGHT" default:"4" description:"Maximum concurrent delivery attempts"`
	DispatchMaxRetries  int `long:"dispatch-max-retries" env:"DISPATCH_MAX_RETRIES" default:"3" description:"Retry budget per delivery unit for transient failures"`
	DispatchRetryDelay  int `long:"dispatch-retry-delay" env:"DISPATCH_RETRY_DELAY" default:"1" description:"Base retry delay in seconds (doubles per attempt)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"TrendWatch/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Mode:                raw.Mode,
		Timezone:            raw.Timezone,
		MatchAll:            raw.MatchAll,
		HistoryLimit:        raw.HistoryLimit,
		PersistentRuns:      raw.PersistentRuns,
		RankTolerance:       raw.RankTolerance,
		StoreBackend:        raw.StoreBackend,
		RedisAddr:           raw.RedisAddr,
		RedisPassword:       raw.RedisPassword,
		RedisDB:             raw.RedisDB,
		SQLitePath:          raw.SQLitePath,
		RetentionDays:       raw.RetentionDays,
		ConfigDir:           raw.ConfigDir,
		Schedule:            raw.Schedule,
		Once:                raw.Once,
		Port:                raw.Port,
		APIAccessKey:        raw.APIAccessKey,
		FetchRate:           raw.FetchRate,
		EnrichEnabled:       raw.EnrichEnabled,
		EnrichItems:         raw.EnrichItems,
		ExcerptLength:       raw.ExcerptLength,
		LLMBaseURL:          raw.LLMBaseURL,
		LLMAPIKey:           raw.LLMAPIKey,
		LLMModel:            raw.LLMModel,
		LLMMaxItems:         raw.LLMMaxItems,
		DispatchMaxInFlight: raw.DispatchMaxInFlight,
		DispatchMaxRetries:  raw.DispatchMaxRetries,
		DispatchRetryDelay:  raw.DispatchRetryDelay,
		UserAgent:           raw.UserAgent,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Cfg) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
