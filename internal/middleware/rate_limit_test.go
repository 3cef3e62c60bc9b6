package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func rateLimitedRouter(t *testing.T, rate int, window time.Duration) *gin.Engine {
	t.Helper()

	limiter := NewRateLimiter(rate, window)
	t.Cleanup(limiter.Stop)

	router := gin.New()
	router.Use(limiter.RateLimit())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitAllowsWithinBudget(t *testing.T) {
	router := rateLimitedRouter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1"))
	}
}

func TestRateLimitRejectsOverBudget(t *testing.T) {
	router := rateLimitedRouter(t, 2, time.Minute)

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.2"))
	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.2"))
}

func TestRateLimitTracksClientsIndependently(t *testing.T) {
	router := rateLimitedRouter(t, 1, time.Minute)

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.3"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.3"))
	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.4"))
}

func TestRateLimitWindowReset(t *testing.T) {
	router := rateLimitedRouter(t, 1, 20*time.Millisecond)

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.5"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.5"))

	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.5"))
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.allow("client-a"))
	assert.True(t, rl.allow("client-a"))
	assert.False(t, rl.allow("client-a"))
	assert.True(t, rl.allow("client-b"))
}