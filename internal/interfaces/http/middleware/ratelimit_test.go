package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uxlens/backend/internal/infrastructure/cache"
	"github.com/uxlens/backend/internal/interfaces/http/dto"
)

type failingStore struct{}

func (s *failingStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func (s *failingStore) Close() error { return nil }

func rateLimitRouter(store cache.RateLimitStore, cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationID(), RateLimit(store, cfg))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimit_AllowsWithinLimit(t *testing.T) {
	store := cache.NewInMemoryRateLimitStore()
	defer store.Close()

	r := rateLimitRouter(store, RateLimitConfig{Limit: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	store := cache.NewInMemoryRateLimitStore()
	defer store.Close()

	r := rateLimitRouter(store, RateLimitConfig{Limit: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.StatusError, resp.Status)

	detail := resp.Data.(map[string]interface{})
	assert.Equal(t, dto.CodeRateLimited, detail["code"])
	assert.NotEmpty(t, detail["hint"])
}

func TestRateLimit_SetsHeaders(t *testing.T) {
	store := cache.NewInMemoryRateLimitStore()
	defer store.Close()

	r := rateLimitRouter(store, RateLimitConfig{Limit: 10, Window: time.Minute})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_FailsOpenOnStoreError(t *testing.T) {
	r := rateLimitRouter(&failingStore{}, RateLimitConfig{Limit: 1, Window: time.Minute})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
