package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doit-app/challenge-arena-go/internal/config"
	"github.com/doit-app/challenge-arena-go/internal/metrics"
	"github.com/doit-app/challenge-arena-go/internal/middleware"
	"github.com/doit-app/challenge-arena-go/internal/models"
	"github.com/doit-app/challenge-arena-go/internal/service"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

// ArenaHandler hosts one swipe-vote session per authenticated user and
// applies the side effects of each vote: video counters, arena points to the
// owner, XP to the voter.
type ArenaHandler struct {
	sessions *service.ArenaManager
	catalog  *service.Catalog
	topics   *service.TopicService
	identity *service.IdentityService
	arenaCfg *config.ArenaConfig
}

// NewArenaHandler creates a new ArenaHandler instance.
func NewArenaHandler(sessions *service.ArenaManager, catalog *service.Catalog, topics *service.TopicService, identity *service.IdentityService, arenaCfg *config.ArenaConfig) *ArenaHandler {
	return &ArenaHandler{
		sessions: sessions,
		catalog:  catalog,
		topics:   topics,
		identity: identity,
		arenaCfg: arenaCfg,
	}
}

// CreateSession seeds the user's arena session from the catalog, excluding
// videos the user already voted on and their own submissions. Without an
// explicit hashtag the currently selected one applies.
func (h *ArenaHandler) CreateSession(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	var req models.ArenaSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.catalog.Fetch(c.Request.Context(), false); err != nil {
		respondServiceError(c, err)
		return
	}

	// Hydrate the voted set from the store so a cold cache cannot seed
	// the session with videos the user already voted on.
	if err := h.catalog.FetchUserVotes(c.Request.Context(), userID); err != nil {
		logger.Log.Warn("voted history load failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	hashtag := req.HashtagID
	if hashtag == "" {
		hashtag = h.topics.SelectedHashtag()
	}

	videos := h.catalog.UnvotedByHashtag(c.Request.Context(), userID, hashtag)
	if len(videos) == 0 {
		respondError(c, http.StatusNotFound, "No videos left to vote on")
		return
	}

	session := h.sessions.Session(userID)
	session.Initialize(videos)
	metrics.ArenaSessions.Inc()

	logger.Log.Info("arena session seeded",
		zap.String("user_id", userID.String()),
		zap.String("hashtag_id", hashtag),
		zap.Int("videos", len(videos)),
	)

	c.JSON(http.StatusCreated, h.state(session))
}

// GetSession reports the session position and tallies.
func (h *ArenaHandler) GetSession(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	session := h.sessions.Session(userID)
	if session.Len() == 0 {
		respondError(c, http.StatusNotFound, "No active arena session")
		return
	}

	c.JSON(http.StatusOK, h.state(session))
}

// Vote casts a vote on the current video and advances the cursor. A vote on
// an exhausted session is a no-op.
func (h *ArenaHandler) Vote(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	var req models.ArenaVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	session := h.sessions.Session(userID)
	if session.Len() == 0 {
		respondError(c, http.StatusNotFound, "No active arena session")
		return
	}

	var (
		event service.VoteEvent
		voted bool
	)
	if req.Direction == string(models.VoteUp) {
		event, voted = session.Upvote()
	} else {
		event, voted = session.Downvote()
	}

	if voted {
		h.applyVote(c, userID, event)
	}

	c.JSON(http.StatusOK, h.state(session))
}

// Next skips the current video.
func (h *ArenaHandler) Next(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	session := h.sessions.Session(userID)
	session.Next()
	c.JSON(http.StatusOK, h.state(session))
}

// Prev steps back to the previous video.
func (h *ArenaHandler) Prev(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	session := h.sessions.Session(userID)
	session.Prev()
	c.JSON(http.StatusOK, h.state(session))
}

// DeleteSession drops the user's session.
func (h *ArenaHandler) DeleteSession(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	h.sessions.Drop(userID)
	c.Status(http.StatusNoContent)
}

// applyVote drives the engagement side effects of a cast vote. Each is
// best-effort; the session state already advanced and is not rolled back.
func (h *ArenaHandler) applyVote(c *gin.Context, userID uuid.UUID, event service.VoteEvent) {
	ctx := c.Request.Context()

	switch event.Kind {
	case models.VoteUp:
		h.catalog.Upvote(ctx, event.Video.ID, userID)
		h.catalog.AddArenaPoints(ctx, event.Video.ID, h.arenaCfg.PointsPerUpvote)
		h.identity.AddArenaPoints(ctx, event.Video.UserID, h.arenaCfg.PointsPerUpvote)
	case models.VoteDown:
		h.catalog.Downvote(ctx, event.Video.ID, userID)
	}

	h.identity.AddXP(ctx, userID, h.arenaCfg.XPPerVote)
	metrics.VotesCast.WithLabelValues(string(event.Kind)).Inc()
}

func (h *ArenaHandler) state(session *service.ArenaSession) models.ArenaStateResponse {
	stats := session.Stats()
	resp := models.ArenaStateResponse{
		Cursor:     session.Cursor(),
		Total:      session.Len(),
		Remaining:  session.Remaining(),
		VotesGiven: stats.VotesGiven,
		Upvotes:    stats.Upvotes,
		Downvotes:  stats.Downvotes,
		Skipped:    stats.Skipped,
	}
	if video, ok := session.CurrentVideo(); ok {
		resp.Current = &video
	}
	return resp
}
