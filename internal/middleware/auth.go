// Package middleware provides gin middleware for the HTTP surface.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doit-app/challenge-arena-go/internal/auth"
	"github.com/doit-app/challenge-arena-go/internal/models"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

const (
	headerAuth   = "Authorization"
	bearerPrefix = "Bearer "

	// ContextUserID is the gin context key holding the authenticated user id.
	ContextUserID = "userID"
	// ContextAccessToken is the gin context key holding the raw bearer token.
	ContextAccessToken = "accessToken"
)

// SessionResolver resolves a bearer token to a session.
type SessionResolver interface {
	GetSession(ctx context.Context, accessToken string) (*auth.Session, error)
}

// BearerAuth validates the bearer token on each request and stores the user
// id and token in the gin context.
type BearerAuth struct {
	sessions SessionResolver
}

// NewBearerAuth creates the auth middleware.
func NewBearerAuth(sessions SessionResolver) *BearerAuth {
	return &BearerAuth{sessions: sessions}
}

// Middleware rejects requests without a valid bearer token.
func (a *BearerAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		session, err := a.sessions.GetSession(c.Request.Context(), token)
		if err != nil {
			logger.Log.Warn("session check failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abortUnauthorized(c, "Invalid or expired session")
			return
		}

		c.Set(ContextUserID, session.User.ID)
		c.Set(ContextAccessToken, token)
		c.Next()
	}
}

// UserID returns the authenticated user id set by the middleware.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// AccessToken returns the raw bearer token set by the middleware.
func AccessToken(c *gin.Context) string {
	return c.GetString(ContextAccessToken)
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader(headerAuth)
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimPrefix(header, bearerPrefix)
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Status:    http.StatusUnauthorized,
		Error:     "Unauthorized",
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
