package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/personalize"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// GetFeed returns the unread part of the article pool, best first.
func (h *Handler) GetFeed(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	limit := defaultFeedLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxFeedLimit)
	}

	pool, err := h.articleRepo.GetRecentArticles(h.feedPoolSize)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	profile, _, _ := session.Snapshot()

	unread := make([]feed.Article, 0, len(pool))
	for _, article := range pool {
		if !profile.IsRead(article.ID) {
			unread = append(unread, article)
		}
	}

	ranked := h.ranker.Rank(unread, profile)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	c.Header("X-Feed-Items", strconv.Itoa(len(ranked)))
	c.JSON(http.StatusOK, gin.H{
		"articles": presentArticles(ranked, profile),
		"total":    len(ranked),
		"unread":   len(unread),
	})
}

// ReloadFeed queues a refresh of every topic and lets previously skipped
// articles show up again.
func (h *Handler) ReloadFeed(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	queued := h.scheduler.RefreshTopics()
	cleared := session.ClearRead(c.Request.Context())

	slog.Info("Feed reload requested", "profile", session.ID(), "queued_topics", queued, "cleared", cleared)

	c.JSON(http.StatusAccepted, gin.H{
		"queued_topics": queued,
		"cleared":       cleared,
	})
}

func (h *Handler) GetSaved(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	profile, _, _ := session.Snapshot()

	articles, err := h.articleRepo.GetArticlesByIDs(profile.Saved)
	if err != nil {
		slog.Error("Database error", "operation", "get_saved_articles", "profile", session.ID(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": presentArticles(articles, profile),
		"total":    len(articles),
	})
}

func (h *Handler) GetSavedRSS(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	profile, _, _ := session.Snapshot()

	articles, err := h.articleRepo.GetArticlesByIDs(profile.Saved)
	if err != nil {
		slog.Error("Database error", "operation", "get_saved_articles", "profile", session.ID(), "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run("Saved articles", c.Request.URL.Path, presentArticles(articles, profile))
	if err != nil {
		slog.Error("RSS generation error", "profile", session.ID(), "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(articles)))
	c.String(http.StatusOK, rss)
}

// presentArticles hides generated summaries unless the profile asked for them.
func presentArticles(articles []feed.Article, profile *personalize.Profile) []feed.Article {
	if profile.Settings.AutoSummarize {
		return articles
	}

	presented := make([]feed.Article, len(articles))
	for i, article := range articles {
		article.AISummary = ""
		presented[i] = article
	}
	return presented
}
