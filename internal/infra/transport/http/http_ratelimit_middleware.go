package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkrupp/jobboard/internal/infra/logging"
)

// ErrRateLimited is returned when a client exceeds its request rate.
var ErrRateLimited = errors.New("too many requests")

// RateLimitConfig configures per-client rate limiting.
type RateLimitConfig struct {
	// Rate is the sustained number of requests per second per client
	Rate float64 `env:"RATE" default:"1"`
	// Burst is the number of requests a client may make at once
	Burst int `env:"BURST" default:"5"`
	// IdleTTL is how long an idle client's limiter is kept
	IdleTTL time.Duration `env:"IDLE_TTL" default:"10m"`
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client IP with a token bucket each.
type RateLimiter struct {
	cfg      RateLimitConfig
	log      logging.Logger
	now      func() time.Time
	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

// NewRateLimiter creates a RateLimiter with the given configuration.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:      cfg,
		log:      logging.GetLogger("infra.transport.http.ratelimit"),
		now:      time.Now,
		limiters: make(map[string]*clientLimiter),
	}
}

// Allow reports whether the client identified by key may make a request now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	client, ok := rl.limiters[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rl.cfg.Rate), rl.cfg.Burst)}
		rl.limiters[key] = client
	}

	client.lastSeen = now

	return client.limiter.AllowN(now, 1)
}

// Cleanup drops limiters that have been idle longer than IdleTTL.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.cfg.IdleTTL)

	for key, client := range rl.limiters {
		if client.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// Run calls Cleanup every interval until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

// Middleware rejects requests from clients over their rate with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)

		if !rl.Allow(key) {
			rl.log.WarnContext(r.Context(), "rate limit exceeded",
				"client", key, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			WriteError(w, ErrRateLimited)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// MiddlewareFunc adapts Middleware for a single handler function.
func (rl *RateLimiter) MiddlewareFunc(next http.HandlerFunc) http.Handler {
	return rl.Middleware(next)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
