package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type visitor struct {
	lastSeen time.Time
	count    int
}

// RateLimiter limits requests per IP within a one minute window
type RateLimiter struct {
	requestsPerMinute int
	visitors          map[string]*visitor
	mu                sync.Mutex
}

// NewRateLimiter creates a new per-IP rate limiter
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		visitors:          make(map[string]*visitor),
	}
}

// Limit rejects requests beyond the per-minute budget with 429
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIP(r)

		l.mu.Lock()
		v, exists := l.visitors[ip]

		if !exists || time.Since(v.lastSeen) > time.Minute {
			l.visitors[ip] = &visitor{lastSeen: time.Now(), count: 1}
			l.mu.Unlock()
			next.ServeHTTP(w, r)
			return
		}

		if v.count >= l.requestsPerMinute {
			l.mu.Unlock()
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		v.count++
		l.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// StartCleanup drops idle visitor entries until stop is closed
func (l *RateLimiter) StartCleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				l.mu.Lock()
				for ip, v := range l.visitors {
					if time.Since(v.lastSeen) > 5*time.Minute {
						delete(l.visitors, ip)
					}
				}
				l.mu.Unlock()
			}
		}
	}()
}

// getIP extracts IP from request
func getIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
