package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doit-app/challenge-arena-go/internal/auth"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "")
}

type stubSessionResolver struct {
	session *auth.Session
	err     error
	token   string
}

func (s *stubSessionResolver) GetSession(_ context.Context, accessToken string) (*auth.Session, error) {
	s.token = accessToken
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func authedRouter(resolver SessionResolver) (*gin.Engine, *struct {
	userID uuid.UUID
	token  string
	called bool
}) {
	captured := &struct {
		userID uuid.UUID
		token  string
		called bool
	}{}

	router := gin.New()
	router.Use(NewBearerAuth(resolver).Middleware())
	router.GET("/protected", func(c *gin.Context) {
		captured.called = true
		captured.userID, _ = UserID(c)
		captured.token = AccessToken(c)
		c.Status(http.StatusNoContent)
	})
	return router, captured
}

func TestBearerAuth_ValidToken(t *testing.T) {
	userID := uuid.New()
	resolver := &stubSessionResolver{
		session: &auth.Session{
			AccessToken: "token-123",
			User:        auth.User{ID: userID, Email: "ayse@example.com"},
		},
	}
	router, captured := authedRouter(resolver)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, captured.called)
	assert.Equal(t, userID, captured.userID)
	assert.Equal(t, "token-123", captured.token)
	assert.Equal(t, "token-123", resolver.token)
}

func TestBearerAuth_MissingToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no authorization header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"bare token without scheme", "token-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, captured := authedRouter(&stubSessionResolver{})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, captured.called)
			assert.Contains(t, w.Body.String(), "Missing bearer token")
		})
	}
}

func TestBearerAuth_InvalidSession(t *testing.T) {
	resolver := &stubSessionResolver{err: errors.New("token expired")}
	router, captured := authedRouter(resolver)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, captured.called)
	assert.Contains(t, w.Body.String(), "Invalid or expired session")
}

func TestUserID_MissingFromContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	id, ok := UserID(c)

	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, id)
}

func TestCORS_SetsHeadersAndHandlesPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS("https://doit.example.com"))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://doit.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, preflight)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORS_EmptyOriginAllowsAll(t *testing.T) {
	router := gin.New()
	router.Use(CORS(""))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
