package cfg

type Cfg struct {
	// Storage configuration
	DBPath    string
	TopicsDir string
	RedisAddr string

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string
	FeedPoolSize      int
	RelatedLimit      int
	AutoSummarize     bool

	// Analysis service
	AnalyzerURL      string
	AnalyzerAPIKey   string
	AnalyzerModel    string
	AnalysisCacheTTL int
	SearchURL        string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
