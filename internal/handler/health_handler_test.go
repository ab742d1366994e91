package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(_ context.Context) error {
	return p.err
}

func TestHealthHandler_LivenessProbe(t *testing.T) {
	handler := NewHealthHandler(&fakePinger{}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/healthz", nil)

	handler.LivenessProbe(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)
}

func TestHealthHandler_ReadinessProbe(t *testing.T) {
	tests := []struct {
		name       string
		pinger     *fakePinger
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ready",
			pinger:     &fakePinger{},
			wantStatus: http.StatusOK,
			wantBody:   `"status":"UP"`,
		},
		{
			name:       "database down",
			pinger:     &fakePinger{err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"database":"unhealthy"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.pinger, nil, nil)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/readyz", nil)

			handler.ReadinessProbe(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
