package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"videonet/pkg/config"
)

func newRateLimitedRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewHTTPRateLimitMiddleware(cfg))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return router
}

func get(router *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimit_DisabledPassesEverything(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = false
	router := newRateLimitedRouter(cfg)

	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, get(router, "10.0.0.1:1234"))
	}
}

func TestRateLimit_BurstThenRejects(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.HTTP.RequestsPerSecond = 1
	cfg.RateLimiting.HTTP.Burst = 3
	router := newRateLimitedRouter(cfg)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(router, "10.0.0.1:1234"))
	}
	assert.Equal(t, http.StatusTooManyRequests, get(router, "10.0.0.1:1234"))
}

func TestRateLimit_IsolatesClients(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.HTTP.RequestsPerSecond = 1
	cfg.RateLimiting.HTTP.Burst = 1
	router := newRateLimitedRouter(cfg)

	assert.Equal(t, http.StatusOK, get(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, get(router, "10.0.0.1:1234"))

	// A different client keeps its own budget.
	assert.Equal(t, http.StatusOK, get(router, "10.0.0.2:1234"))
}
