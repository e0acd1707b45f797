package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, max int, enabled bool) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger, _ := logtest.NewNullLogger()
	return NewRateLimiter(client, max, time.Minute, enabled, logger), mr
}

func hit(h http.Handler, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/titles/movie/550", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 2, true)
	h := rl.Limit(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:5678"))

	// another client has its own window
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1234"))
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, true)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := rl.Limit(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1"))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, false)
	h := rl.Limit(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1"))
	}
}

func TestRateLimiterRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	logger, _ := logtest.NewNullLogger()
	rl := NewRateLimiter(client, 1, time.Minute, true, logger)

	assert.Equal(t, http.StatusInternalServerError, hit(rl.Limit(okHandler()), "10.0.0.1:1"))
}

func TestRateLimiterIdentifier(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, true)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "ip:203.0.113.7", rl.getIdentifier(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	assert.Equal(t, "ip:192.0.2.1", rl.getIdentifier(req))
}
