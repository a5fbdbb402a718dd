package api

import (
	"context"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/personalize"
	"github.com/lysyi3m/news-comb/app/related"
	"github.com/lysyi3m/news-comb/app/tasks"
)

type GeneratorInterface interface {
	Run(title, path string, articles []feed.Article) (string, error)
}

type AnalyzerInterface interface {
	Analyze(ctx context.Context, article feed.Article) related.Analysis
}

type SearcherInterface interface {
	Search(ctx context.Context, query string) []feed.Article
}

type HealthChecker interface {
	Health(ctx context.Context) map[string]any
}

var _ GeneratorInterface = (*feed.Generator)(nil)

// Dependencies wires the handler to the rest of the application. Analyzer,
// Searcher and Cache may be nil.
type Dependencies struct {
	Registry     *personalize.Registry
	Ranker       *personalize.Ranker
	Matcher      *related.Matcher
	Analyzer     AnalyzerInterface
	Searcher     SearcherInterface
	Generator    GeneratorInterface
	ArticleRepo  database.ArticleRepository
	TopicRepo    database.TopicRepository
	Catalog      *feed.TopicCatalog
	Scheduler    tasks.TaskSchedulerInterface
	Cache        HealthChecker
	FeedPoolSize int
	Version      string
}

type Handler struct {
	registry     *personalize.Registry
	ranker       *personalize.Ranker
	matcher      *related.Matcher
	analyzer     AnalyzerInterface
	searcher     SearcherInterface
	generator    GeneratorInterface
	articleRepo  database.ArticleRepository
	topicRepo    database.TopicRepository
	catalog      *feed.TopicCatalog
	scheduler    tasks.TaskSchedulerInterface
	cache        HealthChecker
	feedPoolSize int
	version      string
}

type interestsRequest struct {
	Topics []string `json:"topics" binding:"required"`
}

type swipeRequest struct {
	ArticleID string `json:"article_id" binding:"required"`
	Action    string `json:"action" binding:"required"`
}

type profileResponse struct {
	ID        string               `json:"id"`
	Onboarded bool                 `json:"onboarded"`
	Profile   *personalize.Profile `json:"profile"`
	Stats     personalize.Stats    `json:"stats"`
	History   int                  `json:"historyLength"`
}

type relatedResponse struct {
	ArticleID string           `json:"article_id"`
	Analysis  related.Analysis `json:"analysis"`
	Articles  []feed.Article   `json:"articles"`
	Fallback  bool             `json:"fallback"`
}
