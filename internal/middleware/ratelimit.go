package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Counter increments a windowed counter and returns its new value.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter counts with INCR; the first hit of a window sets its expiry.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("redis expire %s: %w", key, err)
		}
	}
	return count, nil
}

// RateLimiter caps requests per client IP within a fixed window.
type RateLimiter struct {
	counter Counter
	limit   int64
	window  time.Duration
	prefix  string
	trusted []*net.IPNet
	log     *logrus.Logger
}

// NewRateLimiter returns nil when counter is nil or limit is zero; a nil
// limiter lets every request through. X-Forwarded-For is only read from
// peers inside trusted.
func NewRateLimiter(counter Counter, limit int, window time.Duration, prefix string, trusted []*net.IPNet, log *logrus.Logger) *RateLimiter {
	if counter == nil || limit <= 0 {
		return nil
	}
	return &RateLimiter{counter: counter, limit: int64(limit), window: window, prefix: prefix, trusted: trusted, log: log}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("ratelimit:%s:%s", rl.prefix, clientIP(r, rl.trusted))
		count, err := rl.counter.Incr(r.Context(), key, rl.window)
		if err != nil {
			// Fail open when the counter is unreachable.
			rl.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}
		if count > rl.limit {
			w.Header().Set("Retry-After", fmt.Sprint(int(rl.window.Seconds())))
			writeError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP keys requests by socket address. When the peer is a trusted
// proxy, the X-Forwarded-For chain is walked from the right and the first
// hop outside the trusted networks is used.
func clientIP(r *http.Request, trusted []*net.IPNet) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !isTrusted(peer, trusted) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if net.ParseIP(hop) == nil {
			break
		}
		if !isTrusted(hop, trusted) {
			return hop
		}
		peer = hop
	}
	return peer
}

func isTrusted(addr string, trusted []*net.IPNet) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
