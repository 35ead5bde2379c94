package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientRateLimiter gives every client address its own token bucket.
// Buckets idle for longer than ttl are dropped by a background sweep.
type ClientRateLimiter struct {
	rps   rate.Limit
	burst int
	ttl   time.Duration

	mu      sync.Mutex
	buckets map[string]*clientBucket

	done     chan struct{}
	stopOnce sync.Once
}

type clientBucket struct {
	*rate.Limiter
	lastSeen time.Time
}

// NewClientRateLimiter allows rps requests per second with the given burst
// per client. Stop ends the sweep goroutine.
func NewClientRateLimiter(rps float64, burst int, ttl time.Duration) *ClientRateLimiter {
	l := &ClientRateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		buckets: make(map[string]*clientBucket),
		done:    make(chan struct{}),
	}

	go l.sweepEvery(ttl)

	return l
}

func (l *ClientRateLimiter) bucket(client string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[client]
	if !ok {
		b = &clientBucket{Limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[client] = b
	}
	b.lastSeen = now

	return b.Limiter
}

// sweep drops buckets not used since now minus ttl and reports how many remain.
func (l *ClientRateLimiter) sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	for client, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.ttl {
			delete(l.buckets, client)
		}
	}

	return len(l.buckets)
}

func (l *ClientRateLimiter) sweepEvery(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-l.done:
			return
		case now := <-t.C:
			l.sweep(now)
		}
	}
}

func (l *ClientRateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Middleware answers 429 once a client has used up its bucket. Retry-After
// carries the whole seconds until the next token is available.
func (l *ClientRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		res := l.bucket(clientAddr(r), now).ReserveN(now, 1)
		if res.OK() && res.DelayFrom(now) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := 1
		if res.OK() {
			retryAfter = int(math.Ceil(res.DelayFrom(now).Seconds()))
			res.CancelAt(now)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"too many requests"}` + "\n"))
	})
}

// clientAddr keys buckets by the host part of RemoteAddr. With trust_proxy
// enabled, chi's RealIP has already rewritten RemoteAddr from the forwarded headers.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
