package database

import (
	"time"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/personalize"
)

type TopicRepository interface {
	GetTopic(name string) (*Topic, error)
	GetTopicCount() (int, error)

	UpsertTopic(name, title string, feedCount int) error
	UpdateFetchTimes(name string, fetchedAt, nextFetch time.Time) error
}

type ArticleRepository interface {
	GetArticle(id string) (*feed.Article, error)
	GetArticlesByIDs(ids []string) ([]feed.Article, error)
	GetRecentArticles(limit int) ([]feed.Article, error)
	GetArticlesByTopic(topic string, limit int) ([]feed.Article, error)
	GetArticleCount() (int, error)

	UpsertArticle(article feed.Article) error

	GetArticlesForExtraction(topic string, limit int) ([]ArticleForExtraction, error)
	UpdateExtractionStatus(id, status, errorMsg string) error
	UpdateExtractedBody(id, body string) error

	GetArticlesWithoutSummary(limit int) ([]ArticleForSummary, error)
	UpdateAISummary(id, summary string) error
}

var (
	_ TopicRepository   = (*TopicStore)(nil)
	_ ArticleRepository = (*ArticleStore)(nil)
	_ personalize.Store = (*KVStore)(nil)
)
