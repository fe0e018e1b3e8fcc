package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	r := gin.New()
	RegisterHealth(r, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", w.Body.String())
}

func TestReady(t *testing.T) {
	redisUp := true
	r := gin.New()
	RegisterHealth(r, map[string]Check{
		"store": Ready,
		"redis": func(context.Context) bool { return redisUp },
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Status string          `json:"status"`
		Deps   map[string]bool `json:"deps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ready", got.Status)
	assert.Equal(t, map[string]bool{"store": true, "redis": true}, got.Deps)

	redisUp = false
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "not_ready", got.Status)
	assert.False(t, got.Deps["redis"])
	assert.True(t, got.Deps["store"])
}
