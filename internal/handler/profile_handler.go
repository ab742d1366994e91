package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/doit-app/challenge-arena-go/internal/middleware"
	"github.com/doit-app/challenge-arena-go/internal/models"
	"github.com/doit-app/challenge-arena-go/internal/service"
)

const (
	defaultLeaderboardLimit = 20
	maxAvatarBytes          = 5 << 20
)

// ProfileHandler serves the authenticated user's profile, the leaderboard
// and the challenge of the day.
type ProfileHandler struct {
	identity  *service.IdentityService
	challenge *service.ChallengeService
}

// NewProfileHandler creates a new ProfileHandler instance.
func NewProfileHandler(identity *service.IdentityService, challenge *service.ChallengeService) *ProfileHandler {
	return &ProfileHandler{
		identity:  identity,
		challenge: challenge,
	}
}

// Get returns the authenticated user's profile with its level progress.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	profile, err := h.identity.Profile(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":  profile,
		"progress": models.ProgressForXP(profile.XP),
	})
}

// Update applies a partial profile update.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := update.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.identity.UpdateProfile(c.Request.Context(), userID, &update)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UploadAvatar stores a new avatar from a multipart form and returns the
// updated profile.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Missing session")
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Missing avatar file")
		return
	}
	defer file.Close()

	if header.Size > maxAvatarBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "Avatar exceeds the size limit")
		return
	}

	profile, err := h.identity.UploadAvatar(c.Request.Context(), userID, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Leaderboard returns the top profiles by arena points.
func (h *ProfileHandler) Leaderboard(c *gin.Context) {
	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(c, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	entries, err := h.identity.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// Challenge returns the challenge of the day with its countdown.
func (h *ProfileHandler) Challenge(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"challenge":      h.challenge.Current(),
		"time_remaining": h.challenge.TimeRemaining(),
	})
}
