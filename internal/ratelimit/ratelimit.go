// Package ratelimit caps requests per client IP with a fixed window counter kept
// in Redis.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"kycore/internal/platform/logger"
	"kycore/pkg/platform/httputil"
	"kycore/pkg/platform/middleware/metadata"
)

// Counter increments a key and starts its expiry when the key is new.
// *cache.Cache satisfies it.
type Counter interface {
	IncrAndExpire(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Result is the outcome of one check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter int
}

type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
	logger  *logger.Logger
}

// New returns a limiter allowing limit requests per window. A non-positive limit
// disables it.
func New(counter Counter, limit int, window time.Duration, log *logger.Logger) *Limiter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Limiter{counter: counter, limit: limit, window: window, logger: log}
}

// Check counts one request for ip.
func (l *Limiter) Check(ctx context.Context, ip string) (Result, error) {
	n, err := l.counter.IncrAndExpire(ctx, "ratelimit:ip:"+ip, l.window)
	if err != nil {
		return Result{}, err
	}
	remaining := l.limit - int(n)
	if remaining < 0 {
		remaining = 0
	}
	res := Result{Allowed: int(n) <= l.limit, Limit: l.limit, Remaining: remaining}
	if !res.Allowed {
		res.RetryAfter = int(l.window / time.Second)
	}
	return res, nil
}

type exceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"error_description"`
	RetryAfter int    `json:"retry_after"`
}

// Middleware rejects requests over the limit with 429. When the counter store
// fails the request goes through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := metadata.ClientIPFromRequest(r)

		res, err := l.Check(ctx, ip)
		if err != nil {
			l.logger.Warn(ctx, "rate limit check failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, exceededResponse{
				Error:      "rate_limit_exceeded",
				Message:    "too many requests, try again later",
				RetryAfter: res.RetryAfter,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
