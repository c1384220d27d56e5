package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedApp(limiter *RateLimiter) *fiber.App {
	app := fiber.New()
	app.Post("/api/identify", limiter.Middleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	limiter := New(Config{MaxRequestsPerMinute: 3})
	defer limiter.Stop()
	app := limitedApp(limiter)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/identify", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/identify", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimiterRefills(t *testing.T) {
	limiter := New(Config{MaxRequestsPerMinute: 2, WindowDuration: 100 * time.Millisecond})
	defer limiter.Stop()

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))

	time.Sleep(120 * time.Millisecond)
	assert.True(t, limiter.allow("10.0.0.1"))
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	limiter := New(Config{MaxRequestsPerMinute: 1})
	defer limiter.Stop()

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.2"))
}
