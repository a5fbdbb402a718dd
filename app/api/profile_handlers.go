package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/personalize"
)

func (h *Handler) CreateProfile(c *gin.Context) {
	session := h.registry.Create(c.Request.Context())

	slog.Info("Profile created", "profile", session.ID())

	c.JSON(http.StatusCreated, profileOf(session))
}

func (h *Handler) GetProfile(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, profileOf(session))
}

func (h *Handler) DeleteProfile(c *gin.Context) {
	id := c.Param("profile")

	err := h.registry.Delete(c.Request.Context(), id)
	if errors.Is(err, personalize.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if err != nil {
		slog.Error("Failed to delete profile", "profile", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete profile"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) SetInterests(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	var req interestsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Topics) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one topic is required"})
		return
	}

	for _, topic := range req.Topics {
		if !h.catalog.HasTopic(strings.ToLower(strings.TrimSpace(topic))) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown topic", "topic": topic})
			return
		}
	}

	interests := session.SetInterests(c.Request.Context(), req.Topics)

	c.JSON(http.StatusOK, gin.H{
		"interests": interests,
		"profile":   profileOf(session),
	})
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	var patch personalize.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings payload"})
		return
	}

	settings := session.UpdateSettings(c.Request.Context(), patch)

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *Handler) CommitSwipe(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id and action are required"})
		return
	}

	article, err := h.articleRepo.GetArticle(req.ArticleID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "article", req.ArticleID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	outcome, err := session.Commit(c.Request.Context(), *article, personalize.Action(req.Action))
	if errors.Is(err, personalize.ErrUnknownAction) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action", "action": req.Action})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h *Handler) UndoSwipe(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	entry, undone := session.Undo(c.Request.Context())
	if !undone {
		c.JSON(http.StatusOK, gin.H{"undone": false, "historyLength": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"undone":        true,
		"article_id":    entry.Article.ID,
		"action":        entry.Action,
		"historyLength": session.HistoryLen(),
	})
}

func (h *Handler) GetInsights(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, session.Insights())
}
