package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/feed"
)

// MockTopicRepository keeps topics in memory
type MockTopicRepository struct {
	mu     sync.Mutex
	topics map[string]*database.Topic
	err    error
}

func NewMockTopicRepository() *MockTopicRepository {
	return &MockTopicRepository{topics: make(map[string]*database.Topic)}
}

func (m *MockTopicRepository) GetTopic(name string) (*database.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.topics[name], nil
}

func (m *MockTopicRepository) GetTopicCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.topics), nil
}

func (m *MockTopicRepository) UpsertTopic(name, title string, feedCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.topics[name] = &database.Topic{Name: name, Title: title, FeedCount: feedCount}
	return nil
}

func (m *MockTopicRepository) UpdateFetchTimes(name string, fetchedAt, nextFetch time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	topic, ok := m.topics[name]
	if !ok {
		return fmt.Errorf("topic %s: %w", name, database.ErrNotFound)
	}
	topic.LastFetchedAt = &fetchedAt
	topic.NextFetchAt = &nextFetch
	return nil
}

// MockArticleRepository records writes made by tasks
type MockArticleRepository struct {
	mu                sync.Mutex
	articles          map[string]feed.Article
	forExtraction     []database.ArticleForExtraction
	withoutSummary    []database.ArticleForSummary
	extractedBodies   map[string]string
	extractionStatus  map[string]string
	summaries         map[string]string
	requestedTopic    string
	requestedMaxItems int
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		articles:         make(map[string]feed.Article),
		extractedBodies:  make(map[string]string),
		extractionStatus: make(map[string]string),
		summaries:        make(map[string]string),
	}
}

func (m *MockArticleRepository) GetArticle(id string) (*feed.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	article, ok := m.articles[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &article, nil
}

func (m *MockArticleRepository) GetArticlesByIDs(ids []string) ([]feed.Article, error) {
	return nil, nil
}

func (m *MockArticleRepository) GetRecentArticles(limit int) ([]feed.Article, error) {
	return nil, nil
}

func (m *MockArticleRepository) GetArticlesByTopic(topic string, limit int) ([]feed.Article, error) {
	return nil, nil
}

func (m *MockArticleRepository) GetArticleCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.articles), nil
}

func (m *MockArticleRepository) UpsertArticle(article feed.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[article.ID] = article
	return nil
}

func (m *MockArticleRepository) GetArticlesForExtraction(topic string, limit int) ([]database.ArticleForExtraction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestedTopic = topic
	m.requestedMaxItems = limit
	return m.forExtraction, nil
}

func (m *MockArticleRepository) UpdateExtractionStatus(id, status, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extractionStatus[id] = status
	return nil
}

func (m *MockArticleRepository) UpdateExtractedBody(id, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extractedBodies[id] = body
	m.extractionStatus[id] = database.ExtractionSuccess
	return nil
}

func (m *MockArticleRepository) GetArticlesWithoutSummary(limit int) ([]database.ArticleForSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.withoutSummary) > limit {
		return m.withoutSummary[:limit], nil
	}
	return m.withoutSummary, nil
}

func (m *MockArticleRepository) UpdateAISummary(id, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[id] = summary
	return nil
}

var (
	_ database.TopicRepository   = (*MockTopicRepository)(nil)
	_ database.ArticleRepository = (*MockArticleRepository)(nil)
)
