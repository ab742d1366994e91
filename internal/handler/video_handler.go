package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doit-app/challenge-arena-go/internal/metrics"
	"github.com/doit-app/challenge-arena-go/internal/middleware"
	"github.com/doit-app/challenge-arena-go/internal/models"
	"github.com/doit-app/challenge-arena-go/internal/service"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

const defaultTopLimit = 10

// VideoHandler serves the submission catalog.
type VideoHandler struct {
	catalog  *service.Catalog
	topics   *service.TopicService
	identity *service.IdentityService
}

// NewVideoHandler creates a new VideoHandler instance.
func NewVideoHandler(catalog *service.Catalog, topics *service.TopicService, identity *service.IdentityService) *VideoHandler {
	return &VideoHandler{
		catalog:  catalog,
		topics:   topics,
		identity: identity,
	}
}

// List returns the catalog, optionally filtered by hashtag. The read is
// served from the in-memory snapshot; a stale snapshot triggers a refresh
// first.
func (h *VideoHandler) List(c *gin.Context) {
	if err := h.catalog.Fetch(c.Request.Context(), false); err != nil {
		respondServiceError(c, err)
		return
	}

	var videos []models.Video
	if hashtag := c.Query("hashtag"); hashtag != "" {
		videos = h.catalog.ByHashtag(hashtag)
	} else {
		videos = h.catalog.All()
	}

	h.syncTopicCounts()

	c.JSON(http.StatusOK, gin.H{"videos": videos, "count": len(videos)})
}

// Top returns the highest-scoring submissions.
func (h *VideoHandler) Top(c *gin.Context) {
	limit := defaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(c, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	c.JSON(http.StatusOK, gin.H{"videos": h.catalog.Top(limit, c.Query("hashtag"))})
}

// Get returns one video by id.
func (h *VideoHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid video id")
		return
	}

	video, ok := h.catalog.ByID(id)
	if !ok {
		respondError(c, http.StatusNotFound, "Video not found")
		return
	}

	c.JSON(http.StatusOK, video)
}

// Create submits a video under the authenticated user and records the
// challenge participation.
func (h *VideoHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	var req models.AddVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	video, err := h.catalog.Add(c.Request.Context(), userID, req.VideoURL, req.ThumbnailURL, req.HashtagID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.topics.IncrementVideoCount(req.HashtagID)
	h.identity.AddParticipation(c.Request.Context(), userID)
	metrics.VideosSubmitted.Inc()

	logger.Log.Info("video submitted",
		zap.String("video_id", video.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("hashtag_id", req.HashtagID),
	)

	c.JSON(http.StatusCreated, video)
}

// Delete removes a submission. Only the owner may delete it.
func (h *VideoHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid video id")
		return
	}

	video, found := h.catalog.ByID(id)
	if found && video.UserID != userID {
		respondError(c, http.StatusForbidden, "Only the owner can delete a video")
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Upvote records an upvote from the authenticated user. Duplicate votes are
// silent no-ops, so the response is always the current state of the video.
func (h *VideoHandler) Upvote(c *gin.Context) {
	h.castVote(c, models.VoteUp)
}

// Downvote records a downvote from the authenticated user.
func (h *VideoHandler) Downvote(c *gin.Context) {
	h.castVote(c, models.VoteDown)
}

func (h *VideoHandler) castVote(c *gin.Context, kind models.VoteKind) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid video id")
		return
	}

	if _, found := h.catalog.ByID(id); !found {
		respondError(c, http.StatusNotFound, "Video not found")
		return
	}

	switch kind {
	case models.VoteUp:
		h.catalog.Upvote(c.Request.Context(), id, userID)
	case models.VoteDown:
		h.catalog.Downvote(c.Request.Context(), id, userID)
	}
	metrics.VotesCast.WithLabelValues(string(kind)).Inc()

	video, _ := h.catalog.ByID(id)
	c.JSON(http.StatusOK, video)
}

// AddComment appends a comment to a video.
func (h *VideoHandler) AddComment(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid video id")
		return
	}

	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	profile, err := h.identity.Profile(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	comment, err := h.catalog.AddComment(c.Request.Context(), id, req.Text, userID, profile.Username)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// syncTopicCounts pushes per-hashtag submission counts into the topic engine
// so trending stays consistent with the catalog snapshot.
func (h *VideoHandler) syncTopicCounts() {
	videos := h.catalog.All()
	refs := make([]*models.Video, len(videos))
	for i := range videos {
		refs[i] = &videos[i]
	}
	h.topics.UpdateVideoCounts(refs)
}
