package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-comb/app/personalize"
)

func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		registry:     deps.Registry,
		ranker:       deps.Ranker,
		matcher:      deps.Matcher,
		analyzer:     deps.Analyzer,
		searcher:     deps.Searcher,
		generator:    deps.Generator,
		articleRepo:  deps.ArticleRepo,
		topicRepo:    deps.TopicRepo,
		catalog:      deps.Catalog,
		scheduler:    deps.Scheduler,
		cache:        deps.Cache,
		feedPoolSize: deps.FeedPoolSize,
		version:      deps.Version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"topics":    h.catalog.GetTopicCount(),
	}

	if articleCount, err := h.articleRepo.GetArticleCount(); err == nil {
		health["articles"] = articleCount
	} else {
		slog.Error("Database error", "operation", "count_articles", "error", err)
		health["status"] = "degraded"
	}

	if topicCount, err := h.topicRepo.GetTopicCount(); err == nil {
		health["registered_topics"] = topicCount
	}

	if h.cache != nil {
		health["cache"] = h.cache.Health(c.Request.Context())
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "News Comb",
		"version":     h.version,
		"description": "Personalized news feed with swipe feedback and related-coverage matching",
		"topics":      topicNames(h),
		"endpoints": gin.H{
			"health":   "/health",
			"profiles": "/api/profiles",
			"feed":     "/api/profiles/<id>/feed",
			"swipes":   "/api/profiles/<id>/swipes",
			"related":  "/api/profiles/<id>/articles/<article_id>/related",
			"saved":    "/api/profiles/<id>/saved.rss",
		},
	})
}

func topicNames(h *Handler) []string {
	topics := h.catalog.GetEnabledTopics()
	names := make([]string, 0, len(topics))
	for _, topic := range topics {
		names = append(names, topic.Name)
	}
	return names
}

// loadSession resolves the :profile parameter, writing the error response
// itself when the profile cannot be used.
func (h *Handler) loadSession(c *gin.Context) (*personalize.Session, bool) {
	id := c.Param("profile")

	session, err := h.registry.Get(c.Request.Context(), id)
	if errors.Is(err, personalize.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return nil, false
	}
	if err != nil {
		slog.Error("Failed to load profile", "profile", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return nil, false
	}

	return session, true
}

func profileOf(session *personalize.Session) profileResponse {
	profile, stats, onboarded := session.Snapshot()
	return profileResponse{
		ID:        session.ID(),
		Onboarded: onboarded,
		Profile:   profile,
		Stats:     stats,
		History:   session.HistoryLen(),
	}
}
