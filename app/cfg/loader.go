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
	// Storage configuration
	DBPath    string `long:"db-path" env:"DB_PATH" default:"./news-comb.db" description:"Path to the SQLite database file"`
	TopicsDir string `long:"topics-dir" env:"TOPICS_DIR" default:"./topics" description:"Directory containing topic configuration files"`
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the analysis cache (optional)"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://news.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for topic processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	FeedPoolSize      int    `long:"feed-pool-size" env:"FEED_POOL_SIZE" default:"200" description:"Number of recent articles considered when ranking a feed"`
	RelatedLimit      int    `long:"related-limit" env:"RELATED_LIMIT" default:"20" description:"Maximum number of related articles returned"`
	AutoSummarize     bool   `long:"auto-summarize" env:"AUTO_SUMMARIZE" description:"Generate summaries for new articles in the background"`

	// Analysis service
	AnalyzerURL      string `long:"analyzer-url" env:"ANALYZER_URL" default:"https://api.anthropic.com/v1/messages" description:"Messages API endpoint used for entity extraction and summaries"`
	AnalyzerAPIKey   string `long:"analyzer-api-key" env:"ANALYZER_API_KEY" description:"API key for the analysis service (analysis disabled when empty)"`
	AnalyzerModel    string `long:"analyzer-model" env:"ANALYZER_MODEL" default:"claude-sonnet-4-20250514" description:"Model name sent to the analysis service"`
	AnalysisCacheTTL int    `long:"analysis-cache-ttl" env:"ANALYSIS_CACHE_TTL" default:"86400" description:"Analysis cache TTL in seconds"`
	SearchURL        string `long:"search-url" env:"SEARCH_URL" default:"https://news.google.com/rss/search" description:"RSS search endpoint used to find related coverage"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"News Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps and reading streaks (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return load(nil)
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, err
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		TopicsDir:         raw.TopicsDir,
		RedisAddr:         raw.RedisAddr,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		FeedPoolSize:      raw.FeedPoolSize,
		RelatedLimit:      raw.RelatedLimit,
		AutoSummarize:     raw.AutoSummarize,
		AnalyzerURL:       raw.AnalyzerURL,
		AnalyzerAPIKey:    raw.AnalyzerAPIKey,
		AnalyzerModel:     raw.AnalyzerModel,
		AnalysisCacheTTL:  raw.AnalysisCacheTTL,
		SearchURL:         raw.SearchURL,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(raw *rawCfg) error {
	positiveFields := map[string]int{
		"worker count":       raw.WorkerCount,
		"scheduler interval": raw.SchedulerInterval,
		"feed pool size":     raw.FeedPoolSize,
		"related limit":      raw.RelatedLimit,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if raw.AnalysisCacheTTL < 0 {
		return fmt.Errorf("analysis cache TTL must be non-negative")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
