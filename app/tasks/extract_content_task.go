package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/feed"
)

// ExtractContentTask replaces short feed bodies with the readable text of the
// linked page.
type ExtractContentTask struct {
	Task
	TopicConfig      *feed.Config
	httpClient       *http.Client
	contentExtractor *feed.ContentExtractor
	articleRepo      database.ArticleRepository
	userAgent        string
}

func NewExtractContentTask(topicConfig *feed.Config, httpClient *http.Client, contentExtractor *feed.ContentExtractor,
	articleRepo database.ArticleRepository, userAgent string) *ExtractContentTask {
	return &ExtractContentTask{
		Task:             NewTask(TaskTypeExtractContent, topicConfig.Name),
		TopicConfig:      topicConfig,
		httpClient:       httpClient,
		contentExtractor: contentExtractor,
		articleRepo:      articleRepo,
		userAgent:        userAgent,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}

	if !t.TopicConfig.Settings.ExtractContent {
		slog.Debug("Content extraction disabled for topic", "topic", t.Topic)
		return nil
	}

	articles, err := t.articleRepo.GetArticlesForExtraction(t.Topic, t.TopicConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to get articles for content extraction: %w", err)
	}

	if len(articles) == 0 {
		slog.Debug("No articles need content extraction", "topic", t.Topic)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, article := range articles {
		if err := checkCanceled(ctx); err != nil {
			return err
		}

		if err := t.extractArticle(ctx, article); err != nil {
			slog.Error("Failed to extract content for article", "article", article.ID, "url", article.URL, "error", err)
			errorCount++

			if err := t.articleRepo.UpdateExtractionStatus(article.ID, database.ExtractionFailed, err.Error()); err != nil {
				slog.Error("Failed to update content extraction status", "article", article.ID, "error", err)
			}
			continue
		}

		successCount++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"topic", t.Topic,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractArticle(ctx context.Context, article database.ArticleForExtraction) error {
	timeout := time.Duration(t.TopicConfig.Settings.Timeout) * time.Second

	data, contentType, err := fetchURL(ctx, t.httpClient, article.URL, t.userAgent, timeout)
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return fmt.Errorf("content type is not HTML: %s", contentType)
	}

	body, err := t.contentExtractor.Run(data, article.URL)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	if err := t.articleRepo.UpdateExtractedBody(article.ID, body); err != nil {
		return fmt.Errorf("failed to store extracted body: %w", err)
	}

	slog.Debug("Content extracted successfully", "article", article.ID, "url", article.URL, "content_length", len(body))
	return nil
}
