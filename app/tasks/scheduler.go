package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lysyi3m/news-comb/app/cfg"
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/feed"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	taskQueueSize      = 300
	taskTimeout        = 5 * time.Minute
	maxRetryDelay      = 30 * time.Second
	summarizeBatchSize = 10
)

type Scheduler struct {
	topicRepo        database.TopicRepository
	articleRepo      database.ArticleRepository
	catalog          *feed.TopicCatalog
	httpClient       *http.Client
	parser           *feed.Parser
	filterer         *feed.Filterer
	contentExtractor *feed.ContentExtractor
	summarizer       Summarizer
	userAgent        string
	interval         time.Duration
	workerCount      int
	autoSummarize    bool
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	taskQueue        chan TaskInterface
}

func NewScheduler(catalog *feed.TopicCatalog, topicRepo database.TopicRepository, articleRepo database.ArticleRepository,
	httpClient *http.Client, parser *feed.Parser, filterer *feed.Filterer, contentExtractor *feed.ContentExtractor,
	summarizer Summarizer) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		topicRepo:        topicRepo,
		articleRepo:      articleRepo,
		catalog:          catalog,
		httpClient:       httpClient,
		parser:           parser,
		filterer:         filterer,
		contentExtractor: contentExtractor,
		summarizer:       summarizer,
		userAgent:        cfg.UserAgent,
		interval:         time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:      cfg.WorkerCount,
		autoSummarize:    cfg.AutoSummarize,
		ctx:              ctx,
		cancel:           cancel,
		taskQueue:        make(chan TaskInterface, taskQueueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// RefreshTopics queues an immediate refresh of every enabled topic and
// returns how many were queued.
func (s *Scheduler) RefreshTopics() int {
	queued := 0
	for _, topicConfig := range s.catalog.GetEnabledTopics() {
		if err := s.EnqueueTask(s.newRefreshTask(topicConfig)); err != nil {
			slog.Warn("Failed to enqueue RefreshTopicTask", "topic", topicConfig.Name, "error", err)
			continue
		}
		queued++
	}
	return queued
}

func (s *Scheduler) newRefreshTask(topicConfig *feed.Config) *RefreshTopicTask {
	return NewRefreshTopicTask(topicConfig, s.httpClient, s.parser, s.filterer, s.topicRepo, s.articleRepo, s.userAgent)
}

func (s *Scheduler) enqueueStartupTasks() {
	topics := s.catalog.GetTopics()
	if len(topics) == 0 {
		slog.Debug("No topic configurations found")
		return
	}

	slog.Debug("Processing topic configurations", "count", len(topics))

	for _, topicConfig := range topics {
		// Registration runs inline so the refresh below can record its fetch times.
		syncTask := NewSyncTopicTask(topicConfig, s.topicRepo)
		syncTask.Start()
		if err := syncTask.Execute(s.ctx); err != nil {
			slog.Error("Failed to sync topic", "topic", topicConfig.Name, "error", err)
			continue
		}

		if !topicConfig.Settings.Enabled {
			slog.Debug("Topic disabled, skipping RefreshTopicTask", "topic", topicConfig.Name)
			continue
		}

		if err := s.EnqueueTask(s.newRefreshTask(topicConfig)); err != nil {
			slog.Warn("Failed to enqueue RefreshTopicTask", "topic", topicConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	topics := s.catalog.GetEnabledTopics()
	if len(topics) == 0 {
		slog.Debug("No enabled topic configurations found")
		return
	}

	slog.Debug("Processing enabled topic configurations for task scheduling", "count", len(topics))

	for _, topicConfig := range topics {
		topic, err := s.topicRepo.GetTopic(topicConfig.Name)
		if err != nil {
			slog.Warn("Failed to get topic from database, skipping", "topic", topicConfig.Name, "error", err)
			continue
		}
		if topic == nil {
			slog.Warn("Topic not found in database, skipping", "topic", topicConfig.Name)
			continue
		}

		now := time.Now().UTC()
		if topic.NextFetchAt != nil && topic.NextFetchAt.After(now) {
			slog.Debug("Topic not due for refresh yet", "topic", topicConfig.Name, "next_fetch_at", topic.NextFetchAt)
		} else if err := s.EnqueueTask(s.newRefreshTask(topicConfig)); err != nil {
			slog.Warn("Failed to enqueue RefreshTopicTask", "topic", topicConfig.Name, "error", err)
		}

		if topicConfig.Settings.ExtractContent {
			extractTask := NewExtractContentTask(topicConfig, s.httpClient, s.contentExtractor, s.articleRepo, s.userAgent)
			if err := s.EnqueueTask(extractTask); err != nil {
				slog.Warn("Failed to enqueue ExtractContentTask", "topic", topicConfig.Name, "error", err)
			}
		}
	}

	if s.autoSummarize && s.summarizer != nil {
		if err := s.EnqueueTask(NewSummarizeTask(summarizeBatchSize, s.summarizer, s.articleRepo)); err != nil {
			slog.Warn("Failed to enqueue SummarizeTask", "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "topic", task.GetTopic(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := retryBackoff(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "topic", task.GetTopic(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-time.After(retryDelay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}

// retryBackoff doubles from one second per attempt, capped at 30 seconds.
func retryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	if retryCount > 6 {
		return maxRetryDelay
	}
	return min(time.Duration(1<<uint(retryCount-1))*time.Second, maxRetryDelay)
}
