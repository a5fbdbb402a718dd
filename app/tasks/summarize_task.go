package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-comb/app/database"
)

type Summarizer interface {
	Summarize(ctx context.Context, title, body string) string
}

// SummarizeTask fills in generated summaries for the newest articles that
// have none.
type SummarizeTask struct {
	Task
	batchSize   int
	summarizer  Summarizer
	articleRepo database.ArticleRepository
}

func NewSummarizeTask(batchSize int, summarizer Summarizer, articleRepo database.ArticleRepository) *SummarizeTask {
	return &SummarizeTask{
		Task:        NewTask(TaskTypeSummarize, ""),
		batchSize:   batchSize,
		summarizer:  summarizer,
		articleRepo: articleRepo,
	}
}

func (t *SummarizeTask) Execute(ctx context.Context) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}

	articles, err := t.articleRepo.GetArticlesWithoutSummary(t.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get articles without summary: %w", err)
	}

	summarized := 0
	for _, article := range articles {
		if err := checkCanceled(ctx); err != nil {
			return err
		}

		summary := t.summarizer.Summarize(ctx, article.Title, article.Body)
		if summary == "" {
			continue
		}

		if err := t.articleRepo.UpdateAISummary(article.ID, summary); err != nil {
			return fmt.Errorf("failed to store summary: %w", err)
		}
		summarized++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"summarized", summarized)

	return nil
}
