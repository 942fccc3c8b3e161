package cfg

type Cfg struct {
	// Report configuration
	Mode           string
	Timezone       string
	MatchAll       bool
	HistoryLimit   int
	PersistentRuns int
	RankTolerance  int

	// Snapshot store configuration
	StoreBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SQLitePath    string
	RetentionDays int

	// Application configuration
	ConfigDir    string
	Schedule     string
	Once         bool
	Port         string
	APIAccessKey string

	// Fetch configuration
	FetchRate float64

	// Enrichment configuration
	EnrichEnabled bool
	EnrichItems   int
	ExcerptLength int

	// Briefing configuration
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string
	LLMMaxItems int

	// Dispatch configuration
	DispatchMaxInFlight int
	DispatchMaxRetries  int
	DispatchRetryDelay  int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
