package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-comb/app/cache"
)

const searchCacheTTL = 15 * time.Minute

// CachedSearcher keeps non-empty news-search results in Redis for a short
// while so repeated related lookups do not hit the search endpoint.
type CachedSearcher struct {
	searcher *Searcher
	cache    *cache.Cache
}

func NewCachedSearcher(searcher *Searcher, c *cache.Cache) *CachedSearcher {
	return &CachedSearcher{searcher: searcher, cache: c}
}

func (s *CachedSearcher) Search(ctx context.Context, query string) []Article {
	key := cache.SearchKey(query)

	var cached []Article
	found, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		slog.Warn("Search cache read failed", "query", query, "error", err)
	} else if found {
		return cached
	}

	articles := s.searcher.Search(ctx, query)
	if len(articles) == 0 {
		return articles
	}

	if err := s.cache.Set(ctx, key, articles, searchCacheTTL); err != nil {
		slog.Warn("Search cache write failed", "query", query, "error", err)
	}

	return articles
}
