package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimiter is a sliding-window limiter backed by a Redis sorted set
type RateLimiter struct {
	redis       redis.Cmdable
	maxRequests int
	window      time.Duration
	enabled     bool
	now         func() time.Time
	logger      logrus.FieldLogger
}

// NewRateLimiter creates a new rate limiter. A disabled limiter lets everything through.
func NewRateLimiter(client redis.Cmdable, maxRequests int, window time.Duration, enabled bool, logger logrus.FieldLogger) *RateLimiter {
	return &RateLimiter{
		redis:       client,
		maxRequests: maxRequests,
		window:      window,
		enabled:     enabled,
		now:         time.Now,
		logger:      logger.WithField("component", "ratelimit"),
	}
}

// Limit returns a middleware that rate limits requests
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identifier := rl.getIdentifier(r)

		allowed, err := rl.checkRateLimit(r.Context(), identifier)
		if err != nil {
			rl.logger.WithField("identifier", identifier).WithError(err).Error("rate limit check failed")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Rate limit check failed"}`))
			return
		}

		if !allowed {
			rl.logger.WithField("identifier", identifier).Debug("rate limited")
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests. Please try again later."}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getIdentifier prefers the authenticated user, then the client IP
func (rl *RateLimiter) getIdentifier(r *http.Request) string {
	if userID, ok := GetUserIDFromContext(r.Context()); ok {
		return fmt.Sprintf("user:%s", userID.String())
	}

	ip := r.Header.Get("X-Forwarded-For")
	if first, _, ok := strings.Cut(ip, ","); ok {
		ip = first
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
	}
	return fmt.Sprintf("ip:%s", ip)
}

func (rl *RateLimiter) checkRateLimit(ctx context.Context, identifier string) (bool, error) {
	if !rl.enabled {
		return true, nil
	}

	key := fmt.Sprintf("ratelimit:%s", identifier)
	now := rl.now()
	windowStart := now.Add(-rl.window).UnixMilli()

	pipe := rl.redis.Pipeline()

	// Drop entries outside the window, then count what is left
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, key)

	// Every request gets its own member, even within the same millisecond
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	pipe.Expire(ctx, key, rl.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return countCmd.Val() < int64(rl.maxRequests), nil
}
