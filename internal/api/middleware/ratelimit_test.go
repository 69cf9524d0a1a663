package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/adrianstroescu/saasrevive/internal/config"
)

func TestRateLimiter_AllowsWithinBucket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{RateLimitBucketSize: 3, RateLimitRefillRate: 1}
	rm := NewRateLimiterMiddleware(cfg)

	r := gin.New()
	r.Use(rm.Limit())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i)
	}
}

func TestRateLimiter_RejectsWhenExhausted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{RateLimitBucketSize: 2, RateLimitRefillRate: 0}
	rm := NewRateLimiterMiddleware(cfg)

	r := gin.New()
	r.Use(rm.Limit())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
