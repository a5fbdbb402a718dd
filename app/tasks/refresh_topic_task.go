package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/feed"
)

// RefreshTopicTask fetches every source feed of a topic and stores the items
// that pass the topic filters as articles.
type RefreshTopicTask struct {
	Task
	TopicConfig *feed.Config
	httpClient  *http.Client
	parser      *feed.Parser
	filterer    *feed.Filterer
	topicRepo   database.TopicRepository
	articleRepo database.ArticleRepository
	userAgent   string
}

func NewRefreshTopicTask(topicConfig *feed.Config, httpClient *http.Client, parser *feed.Parser, filterer *feed.Filterer,
	topicRepo database.TopicRepository, articleRepo database.ArticleRepository, userAgent string) *RefreshTopicTask {
	return &RefreshTopicTask{
		Task:        NewTask(TaskTypeRefreshTopic, topicConfig.Name),
		TopicConfig: topicConfig,
		httpClient:  httpClient,
		parser:      parser,
		filterer:    filterer,
		topicRepo:   topicRepo,
		articleRepo: articleRepo,
		userAgent:   userAgent,
	}
}

func (t *RefreshTopicTask) Execute(ctx context.Context) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}

	if !t.TopicConfig.Settings.Enabled {
		slog.Debug("Topic disabled, skipping", "topic", t.Topic)
		return nil
	}

	var errs []error
	totalCount := 0
	filteredCount := 0
	storedCount := 0

	for _, feedURL := range t.TopicConfig.Feeds {
		if err := checkCanceled(ctx); err != nil {
			return err
		}

		total, filtered, stored, err := t.refreshFeed(ctx, feedURL)
		if err != nil {
			slog.Warn("Failed to refresh source feed", "topic", t.Topic, "url", feedURL, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", feedURL, err))
			continue
		}

		totalCount += total
		filteredCount += filtered
		storedCount += stored
	}

	if len(errs) == len(t.TopicConfig.Feeds) && len(errs) > 0 {
		return fmt.Errorf("all source feeds failed: %w", errors.Join(errs...))
	}

	now := time.Now().UTC()
	nextFetch := now.Add(time.Duration(t.TopicConfig.Settings.RefreshInterval) * time.Second)
	if err := t.topicRepo.UpdateFetchTimes(t.Topic, now, nextFetch); err != nil {
		return fmt.Errorf("failed to update fetch times: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"topic", t.Topic,
		"duration", t.GetDuration(),
		"total", totalCount,
		"filtered", filteredCount,
		"stored", storedCount,
		"failed_feeds", len(errs))

	return nil
}

func (t *RefreshTopicTask) refreshFeed(ctx context.Context, feedURL string) (int, int, int, error) {
	timeout := time.Duration(t.TopicConfig.Settings.Timeout) * time.Second

	data, _, err := fetchURL(ctx, t.httpClient, feedURL, t.userAgent, timeout)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to fetch feed: %w", err)
	}

	metadata, items, err := t.parser.Run(data)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to parse feed: %w", err)
	}

	if maxItems := t.TopicConfig.Settings.MaxItems; maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}

	items = t.filterer.Run(items, t.TopicConfig)
	visible := t.filterer.Visible(items)

	for _, item := range visible {
		if item.Link == "" && item.GUID == "" {
			continue
		}

		article := feed.NewArticle(t.Topic, metadata.Title, item)
		if err := t.articleRepo.UpsertArticle(article); err != nil {
			return 0, 0, 0, fmt.Errorf("failed to store article: %w", err)
		}
	}

	return len(items), len(items) - len(visible), len(visible), nil
}
