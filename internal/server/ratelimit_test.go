package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalc/internal/config"
)

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	rl := newRateLimiter(1, 2, zerolog.Nop())
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.allow("a"))
	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"), "burst exhausted")
	assert.True(t, rl.allow("b"), "other clients have their own bucket")

	clock = clock.Add(time.Second)
	assert.True(t, rl.allow("a"), "one token refilled")
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	rl := newRateLimiter(1, 1, zerolog.Nop())
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	rl.allow("old")
	clock = clock.Add(2 * clientIdleTTL)
	rl.mu.Lock()
	rl.evictIdle(clock)
	_, kept := rl.clients["old"]
	rl.mu.Unlock()
	assert.False(t, kept)
}

func TestRateLimit_ComputeRoutes(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) {
		c.RateLimit = 0.001
		c.RateBurst = 2
	})
	h := s.Handler()
	body := `{"operation":"simplify","expression":"x + x"}`

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodPost, "/v1/evaluate", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/v1/evaluate", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Read-only routes are not limited.
	rec = do(t, h, http.MethodGet, "/v1/operations", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.RateLimit = 0 })
	assert.Nil(t, s.limiter)
	h := s.Handler()
	for i := 0; i < 50; i++ {
		rec := do(t, h, http.MethodPost, "/v1/render", `{"expression":"x"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
