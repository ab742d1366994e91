// Package handler provides HTTP request handlers for the application.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/doit-app/challenge-arena-go/internal/auth"
	"github.com/doit-app/challenge-arena-go/internal/db"
	"github.com/doit-app/challenge-arena-go/internal/models"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, models.ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}

// respondServiceError maps known error kinds to HTTP statuses. Auth
// collaborator errors keep their status and message so translated text
// reaches the client unchanged.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case db.IsNotFound(err):
		respondError(c, http.StatusNotFound, "Resource not found")
	case db.IsDuplicateKey(err):
		respondError(c, http.StatusConflict, "Resource already exists")
	default:
		if authErr, ok := err.(*auth.Error); ok {
			status := authErr.Status
			if status < 400 {
				status = http.StatusUnauthorized
			}
			respondError(c, status, authErr.Message)
			return
		}
		logger.Log.Error("unexpected error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
