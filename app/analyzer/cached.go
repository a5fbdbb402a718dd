package analyzer

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-comb/app/cache"
	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/related"
)

type Analyzer interface {
	Analyze(ctx context.Context, article feed.Article) related.Analysis
}

// CachedAnalyzer memoizes successful analyses in Redis. Cache errors are
// logged and the wrapped analyzer is used directly.
type CachedAnalyzer struct {
	analyzer Analyzer
	cache    *cache.Cache
	ttl      time.Duration
}

func NewCachedAnalyzer(analyzer Analyzer, c *cache.Cache, ttl time.Duration) *CachedAnalyzer {
	return &CachedAnalyzer{analyzer: analyzer, cache: c, ttl: ttl}
}

func (a *CachedAnalyzer) Analyze(ctx context.Context, article feed.Article) related.Analysis {
	key := cache.AnalysisKey(article.ID)

	var cached related.Analysis
	found, err := a.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		slog.Warn("Analysis cache read failed", "article", article.ID, "error", err)
	} else if found {
		slog.Debug("Analysis cache hit", "article", article.ID)
		return cached
	}

	analysis := a.analyzer.Analyze(ctx, article)
	if analysis.Kind == related.Unavailable {
		return analysis
	}

	if err := a.cache.Set(ctx, key, analysis, a.ttl); err != nil {
		slog.Warn("Analysis cache write failed", "article", article.ID, "error", err)
	}

	return analysis
}
