package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doit-app/challenge-arena-go/internal/metrics"
	"github.com/doit-app/challenge-arena-go/internal/service"
)

// TopicHandler serves the daily topic rotation.
type TopicHandler struct {
	topics *service.TopicService
}

// NewTopicHandler creates a new TopicHandler instance.
func NewTopicHandler(topics *service.TopicService) *TopicHandler {
	return &TopicHandler{topics: topics}
}

// List returns today's topics, triggering an asynchronous regeneration when
// the rotation date has rolled over.
func (h *TopicHandler) List(c *gin.Context) {
	topics := h.topics.DailyTopics(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"topics":       topics,
		"ai_generated": h.topics.AIGenerated(),
		"selected":     h.topics.SelectedHashtag(),
	})
}

// Trending returns the top three topics by submission count.
func (h *TopicHandler) Trending(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"topics": h.topics.TrendingTopics()})
}

// Regenerate forces a synchronous rotation. With ?force_ai=true a failed AI
// generation leaves the current list untouched instead of falling back.
func (h *TopicHandler) Regenerate(c *gin.Context) {
	forceAI := c.Query("force_ai") == "true"

	ok := h.topics.Regenerate(c.Request.Context(), forceAI)
	if !ok {
		respondError(c, http.StatusBadGateway, "Topic generation is unavailable")
		return
	}

	source := "fallback"
	if h.topics.AIGenerated() {
		source = "ai"
	}
	metrics.TopicRotations.WithLabelValues(source).Inc()

	c.JSON(http.StatusOK, gin.H{
		"topics":       h.topics.DailyTopics(c.Request.Context()),
		"ai_generated": h.topics.AIGenerated(),
	})
}

type selectHashtagRequest struct {
	HashtagID string `json:"hashtag_id" binding:"required,max=64"`
}

// Select marks a hashtag as the active filter.
func (h *TopicHandler) Select(c *gin.Context) {
	var req selectHashtagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if _, ok := h.topics.TopicByID(req.HashtagID); !ok {
		respondError(c, http.StatusNotFound, "Unknown hashtag")
		return
	}

	h.topics.SelectHashtag(req.HashtagID)
	c.JSON(http.StatusOK, gin.H{"selected": req.HashtagID})
}

// ClearSelection removes the active hashtag filter.
func (h *TopicHandler) ClearSelection(c *gin.Context) {
	h.topics.ClearSelection()
	c.Status(http.StatusNoContent)
}
