package simd

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a per-client token bucket. A client may burst up to the
// per-second rate, then gets one token back every 1/rate seconds.
type RateLimiter struct {
	ratePerSecond int
	now           func() time.Time

	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	lastSweep time.Time
}

// bucketIdleTTL is how long an untouched bucket is kept. Any bucket idle this
// long is full again, so dropping it loses nothing.
const bucketIdleTTL = time.Minute

type tokenBucket struct {
	tokens     int
	lastRefill time.Time
	lastSeen   time.Time
}

// NewRateLimiter returns a limiter allowing ratePerSecond requests per client.
// A non-positive rate disables limiting.
func NewRateLimiter(ratePerSecond int) *RateLimiter {
	return &RateLimiter{
		ratePerSecond: ratePerSecond,
		now:           time.Now,
		buckets:       make(map[string]*tokenBucket),
	}
}

func (l *RateLimiter) Enabled() bool {
	return l != nil && l.ratePerSecond > 0
}

// Allow takes a token from key's bucket
func (l *RateLimiter) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= bucketIdleTTL {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: l.ratePerSecond, lastRefill: now}
		l.buckets[key] = b
	}
	b.lastSeen = now

	// lastRefill advances only by the time the granted tokens cost, so the
	// fractional remainder carries into the next call.
	refill := int(now.Sub(b.lastRefill).Seconds() * float64(l.ratePerSecond))
	if refill > 0 {
		b.tokens += refill
		if b.tokens >= l.ratePerSecond {
			b.tokens = l.ratePerSecond
			b.lastRefill = now
		} else {
			b.lastRefill = b.lastRefill.Add(time.Duration(refill) * time.Second / time.Duration(l.ratePerSecond))
		}
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

func (l *RateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= bucketIdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// Middleware rejects requests over the limit with 429, keyed by client host
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", "1")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
