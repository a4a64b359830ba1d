// internal/middleware/ratelimit.go
//
// Per-client token-bucket rate limiting.
//
// Context
// -------
// The intake route writes to a shared spreadsheet, so one client must not
// be able to flood it.  Each client IP owns a golang.org/x/time/rate
// limiter; limiters live in a bounded LRU so memory stays flat under a
// spray of distinct addresses.  Rejected requests get 429 with a JSON body
// in the same `{error}` shape the intake endpoint uses, plus Retry-After.
//
// Notes
// -----
//   - The limit is expressed per minute to match the config option.
//   - A limit of 0 disables the wrapper entirely.
package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/yanizio/propertysite/internal/cache"
	"github.com/yanizio/propertysite/internal/logger"
	"github.com/yanizio/propertysite/internal/metrics"
	"github.com/yanizio/propertysite/internal/requestinfo"
)

// MsgRateLimited is the client-facing 429 message.
const MsgRateLimited = "Too many requests"

// DefaultMaxClients bounds the limiter store.
const DefaultMaxClients = 10_000

// RateLimiter hands out one token bucket per client.
type RateLimiter struct {
	limit rate.Limit
	burst int
	store *cache.LRU[string, *rate.Limiter]
}

// NewRateLimiter allows perMinute requests per client with the given burst.
// maxClients ≤ 0 uses DefaultMaxClients.
func NewRateLimiter(perMinute float64, burst, maxClients int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if maxClients <= 0 {
		maxClients = DefaultMaxClients
	}
	return &RateLimiter{
		limit: rate.Limit(perMinute / 60.0),
		burst: burst,
		store: cache.New[string, *rate.Limiter](maxClients),
	}
}

// Allow consumes a token for key.
func (l *RateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	return l.store.GetOrAdd(key, func() *rate.Limiter {
		return rate.NewLimiter(l.limit, l.burst)
	})
}

// Handler wraps next.  A nil limiter or a zero limit passes through.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	if l == nil || l.limit <= 0 {
		return next
	}
	retry := strconv.Itoa(int(1/float64(l.limit)) + 1)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := requestinfo.ClientIP(r)
		if l.Allow(ip) {
			next.ServeHTTP(w, r)
			return
		}

		metrics.RateLimitedTotal.Inc()
		logger.FromContext(r.Context()).Infow("rate limit exceeded",
			"ip", ip,
			"path", r.URL.Path,
		)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", retry)
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": MsgRateLimited})
	})
}
