package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	visitorIdleTTL = 10 * time.Minute
	sweepEvery     = time.Minute
)

type visitor struct {
	tokens float64
	seen   time.Time
}

// RateLimiter throttles callers with a per-IP token bucket. Stale visitors
// are swept inline on the request path, so the limiter needs no background
// goroutine and no shutdown hook.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	perSecond float64
	burst     float64
	lastSweep time.Time
}

// NewRateLimiter allows perSecond sustained requests per IP with bursts up
// to burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors:  make(map[string]*visitor),
		perSecond: perSecond,
		burst:     float64(burst),
		lastSweep: time.Now(),
	}
}

// Allow reports whether the caller may proceed and, when throttled, how many
// seconds to wait before retrying.
func (l *RateLimiter) Allow(ip string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > sweepEvery {
		for key, v := range l.visitors {
			if now.Sub(v.seen) > visitorIdleTTL {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{tokens: l.burst}
		l.visitors[ip] = v
	} else {
		v.tokens += now.Sub(v.seen).Seconds() * l.perSecond
		if v.tokens > l.burst {
			v.tokens = l.burst
		}
	}
	v.seen = now

	if v.tokens < 1 {
		wait := int((1 - v.tokens) / l.perSecond)
		if wait < 1 {
			wait = 1
		}
		return false, wait
	}
	v.tokens--
	return true, 0
}

// RateLimit rejects callers over the limit with 429 and a Retry-After hint.
// It keys on RemoteAddr, which chi's RealIP middleware has already rewritten
// to the caller's address.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(perSecond, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter := limiter.Allow(r.RemoteAddr)
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
