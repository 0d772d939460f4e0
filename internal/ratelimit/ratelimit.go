package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// ClientLimiter keeps one token bucket per client key (normally the
// request's real IP) and exposes itself as HTTP middleware.
type ClientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewClientLimiter(perSecond float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *ClientLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// Allow consumes one token for the key.
func (l *ClientLimiter) Allow(key string) bool {
	return l.limiterFor(key).Allow()
}

// Middleware rejects requests over the per-client budget with 429. It runs
// after chi's RealIP middleware so RemoteAddr holds the client address.
func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(r.RemoteAddr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "rate_limit_exceeded",
				"message": "too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Outbound paces the scrapes this service itself issues, so a batch
// request does not hammer a storefront.
type Outbound struct {
	limiter *rate.Limiter
}

func NewOutbound(perSecond float64, burst int) *Outbound {
	return &Outbound{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a token is available or the context ends.
func (o *Outbound) Wait(ctx context.Context) error {
	if o == nil {
		return nil
	}
	return o.limiter.Wait(ctx)
}
