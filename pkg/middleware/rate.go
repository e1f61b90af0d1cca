package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// window tracks request counts for one client within the current
// fixed window.
type window struct {
	count   int
	resetAt time.Time
}

// limiter holds per-client windows for a single RateLimit instance, so
// two limits with different budgets never share state.
type limiter struct {
	mu      sync.Mutex
	max     int
	period  time.Duration
	clients map[string]*window
}

func (l *limiter) take(ip string) (ok bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.clients[ip]
	if !exists || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	if w.count > l.max {
		return false, time.Until(w.resetAt)
	}
	return true, 0
}

// sweep drops windows that have expired, once per period.
func (l *limiter) sweep() {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		for ip, w := range l.clients {
			if now.After(w.resetAt) {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

// clientAddr picks the client IP, trusting the first X-Forwarded-For
// entry when a proxy added one.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	return r.RemoteAddr
}

// RateLimit caps each client at max requests per period. Over-budget
// requests get a 429 with a Retry-After hint.
//
//	middleware.RateLimit(20, time.Minute)
func RateLimit(max int, period time.Duration) func(http.Handler) http.Handler {
	l := &limiter{max: max, period: period, clients: map[string]*window{}}
	go l.sweep()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter := l.take(clientAddr(r))
			if !ok {
				w.Header().Set("Retry-After",
					strconv.Itoa(int(retryAfter.Seconds())+1))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"status":429,"message":"Too Many Requests"}`)) //nolint:errcheck
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
