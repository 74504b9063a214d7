package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"labmatch/internal/common"
	"labmatch/internal/http/response"
)

type Limiter interface {
	Allow(key string, limit int, window time.Duration) bool
}

// MemoryLimiter is a fixed-window counter for single-instance deployments.
// Expired windows are pruned lazily on the insert path.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count int
	until time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*window)}
}

func (l *MemoryLimiter) Allow(key string, limit int, windowSize time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.After(w.until) {
		if len(l.windows) > 4096 {
			l.prune(now)
		}
		l.windows[key] = &window{count: 1, until: now.Add(windowSize)}
		return true
	}
	if w.count >= limit {
		return false
	}
	w.count++
	return true
}

func (l *MemoryLimiter) prune(now time.Time) {
	for key, w := range l.windows {
		if now.After(w.until) {
			delete(l.windows, key)
		}
	}
}

func RateLimit(limiter Limiter, keyFn func(*http.Request) string, limit int, windowSize time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow(key, limit, windowSize) {
				response.Error(w, common.NewError(common.CodeRateLimited, "rate limit exceeded", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
