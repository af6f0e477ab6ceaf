package middleware

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is passed to the reject handler when a client exceeds its budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// RejectFunc writes the response for a rejected request.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	name   string
	limit  rate.Limit
	burst  int
	idle   time.Duration
	reject RejectFunc

	// OnLimit, when set, is called with the limiter name for every rejection.
	OnLimit func(name string)

	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client with the given burst.
// Clients idle for longer than ten minutes are forgotten.
func NewRateLimiter(name string, perMinute, burst int, reject RejectFunc) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if reject == nil {
		reject = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusTooManyRequests)
		}
	}
	l := &RateLimiter{
		name:    name,
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		idle:    10 * time.Minute,
		reject:  reject,
		clients: make(map[string]*client),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go l.cleanup(time.Minute)
	return l
}

// Allow consumes a token for key.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	now := l.now()
	c.lastSeen = now
	l.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

// Handler rejects requests from clients that ran out of tokens.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r.RemoteAddr)
		if !l.Allow(ip) {
			slog.WarnContext(r.Context(), "rate limit exceeded",
				"limiter", l.name,
				"method", r.Method,
				"path", r.URL.Path,
				"ip", ip,
			)
			if l.OnLimit != nil {
				l.OnLimit(l.name)
			}
			w.Header().Set("Retry-After", "60")
			l.reject(w, r, ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Close stops the cleanup goroutine.
func (l *RateLimiter) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

func (l *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.prune()
		}
	}
}

// prune drops idle clients and returns how many were removed.
func (l *RateLimiter) prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idle)
	removed := 0
	for key, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
