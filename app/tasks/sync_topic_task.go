package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/feed"
)

// SyncTopicTask registers a catalog topic in the database so its fetch
// schedule can be tracked.
type SyncTopicTask struct {
	Task
	TopicConfig *feed.Config
	topicRepo   database.TopicRepository
}

func NewSyncTopicTask(topicConfig *feed.Config, topicRepo database.TopicRepository) *SyncTopicTask {
	return &SyncTopicTask{
		Task:        NewTask(TaskTypeSyncTopic, topicConfig.Name),
		TopicConfig: topicConfig,
		topicRepo:   topicRepo,
	}
}

func (t *SyncTopicTask) Execute(ctx context.Context) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}

	err := t.topicRepo.UpsertTopic(t.TopicConfig.Name, t.TopicConfig.Title, len(t.TopicConfig.Feeds))
	if err != nil {
		return fmt.Errorf("failed to sync topic to database: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"topic", t.Topic,
		"feeds", len(t.TopicConfig.Feeds),
		"duration", t.GetDuration())

	return nil
}
