package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/doit-app/challenge-arena-go/internal/middleware"
	"github.com/doit-app/challenge-arena-go/internal/models"
	"github.com/doit-app/challenge-arena-go/internal/service"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

// AuthHandler handles registration, login and session checks.
type AuthHandler struct {
	identity *service.IdentityService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(identity *service.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// SignUp registers an account and returns the session with its fresh profile.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	session, profile, err := h.identity.SignUp(c.Request.Context(), req.Email, req.Password, req.Username, req.DisplayName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	logger.Log.Info("account registered",
		zap.String("user_id", session.User.ID.String()),
		zap.String("username", profile.Username),
	)

	c.JSON(http.StatusCreated, gin.H{
		"session": session,
		"profile": profile,
	})
}

// SignIn authenticates with email and password.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	session, profile, err := h.identity.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
		"profile": profile,
	})
}

// SignOut ends the current session.
func (h *AuthHandler) SignOut(c *gin.Context) {
	h.identity.SignOut(c.Request.Context(), middleware.AccessToken(c))
	c.Status(http.StatusNoContent)
}

// Session validates the bearer token and returns the current profile.
func (h *AuthHandler) Session(c *gin.Context) {
	profile, err := h.identity.CheckSession(c.Request.Context(), middleware.AccessToken(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
