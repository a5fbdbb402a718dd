package feed

import (
	"time"
)

// Feed processing types

type Metadata struct {
	Title           string
	Link            string
	Description     string
	ImageURL        string
	Language        string
	FeedPublishedAt *time.Time
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	ImageURL    string
	PublishedAt time.Time
	Authors     []string
	Categories  []string

	IsFiltered   bool
	FilterReason string
}

// Article is the unit the ranking and matching code works with. Fetched
// articles are never mutated; Match is only set on copies produced by the
// related-coverage matcher.
type Article struct {
	ID          string       `json:"id"`
	Topic       string       `json:"topic"`
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	Summary     string       `json:"summary"`
	AISummary   string       `json:"ai_summary,omitempty"`
	Source      string       `json:"source"`
	URL         string       `json:"url"`
	ImageURL    string       `json:"image_url,omitempty"`
	PublishedAt time.Time    `json:"published_at"`
	ReadTime    int          `json:"read_time"`
	Match       *MatchResult `json:"match,omitempty"`
}

type MatchResult struct {
	Score   int      `json:"score"`
	Matches []string `json:"matches"`
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Title    string         `yaml:"title"`
	Feeds    []string       `yaml:"feeds"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxItems        int  `yaml:"max_items"`        // per source feed
	Timeout         int  `yaml:"timeout"`          // seconds
	ExtractContent  bool `yaml:"extract_content"`
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
