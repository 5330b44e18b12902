package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"netinfo/internal/support"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// RateLimiter applies a fixed window per client IP to the /api/ paths,
// backed by Redis so the quota holds across replicas. When Redis is down
// requests pass through with a warning rather than failing closed.
type RateLimiter struct {
	MaxRequests   int
	WindowSeconds int
}

func NewRateLimiterFromEnv() *RateLimiter {
	return &RateLimiter{
		MaxRequests:   support.GetEnvInt("RATE_LIMIT_REQUESTS", 100),
		WindowSeconds: support.GetEnvInt("RATE_LIMIT_WINDOW", 60),
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		count, ttl, err := rl.hit(r.Context(), clientIP(r))
		if err != nil {
			log.Warn("Rate limiter unavailable, letting request through", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprint(rl.MaxRequests))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprint(remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(ttl).Unix()))

		if count > rl.MaxRequests {
			w.Header().Set("Retry-After", fmt.Sprint(int(ttl.Seconds())+1))
			writeError(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// hit counts this request against the client's current window and returns
// the new count plus the time until the window resets.
func (rl *RateLimiter) hit(ctx context.Context, clientID string) (int, time.Duration, error) {
	client, err := support.GetRedisClient()
	if err != nil {
		return 0, 0, err
	}

	key := "netinfo:ratelimit:" + clientID
	window := time.Duration(rl.WindowSeconds) * time.Second

	var incr *redis.IntCmd
	_, err = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	ttl, err := client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}

	return int(incr.Val()), ttl, nil
}

// clientIP prefers the first X-Forwarded-For hop so limits follow the real
// caller behind a reverse proxy.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
