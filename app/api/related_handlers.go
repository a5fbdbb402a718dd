package api

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/related"
)

// GetRelated finds coverage of the same event as the given article: the seed
// is analyzed, a news search runs on the analysis query, and the search
// results together with the local pool go through the matcher.
func (h *Handler) GetRelated(c *gin.Context) {
	if _, ok := h.loadSession(c); !ok {
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	seed, err := h.articleRepo.GetArticle(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "article", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	analysis := related.UnavailableAnalysis()
	if h.analyzer != nil {
		analysis = h.analyzer.Analyze(ctx, *seed)
	}

	query := analysis.Query()
	if analysis.IsEmpty() {
		query = related.FallbackAnalysis(seed.Title).Query()
	}

	var searchResults []feed.Article
	if h.searcher != nil {
		searchResults = h.searcher.Search(ctx, query)
	}

	pool, err := h.articleRepo.GetRecentArticles(h.feedPoolSize)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	candidates := slices.Concat(searchResults, pool)
	matches := h.matcher.FindRelated(*seed, analysis, candidates)

	response := relatedResponse{
		ArticleID: seed.ID,
		Analysis:  analysis,
		Articles:  matches,
	}

	if len(matches) == 0 && analysis.Kind == related.Unavailable && len(searchResults) == 0 {
		fallback, err := h.sameTopic(*seed)
		if err != nil {
			slog.Error("Database error", "operation", "get_topic_articles", "topic", seed.Topic, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		response.Articles = fallback
		response.Fallback = true
	}

	if response.Articles == nil {
		response.Articles = []feed.Article{}
	}

	slog.Debug("Related coverage resolved",
		"article", seed.ID,
		"kind", analysis.Kind.String(),
		"query", query,
		"search_results", len(searchResults),
		"matches", len(response.Articles),
		"fallback", response.Fallback)

	c.JSON(http.StatusOK, response)
}

func (h *Handler) sameTopic(seed feed.Article) ([]feed.Article, error) {
	articles, err := h.articleRepo.GetArticlesByTopic(seed.Topic, related.DefaultLimit+1)
	if err != nil {
		return nil, err
	}

	result := make([]feed.Article, 0, len(articles))
	for _, article := range articles {
		if article.ID == seed.ID {
			continue
		}
		result = append(result, article)
		if len(result) == related.DefaultLimit {
			break
		}
	}
	return result, nil
}
