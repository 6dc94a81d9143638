package middleware

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/snatchbot/snatch/internal/config"
)

const maxTrackedIPs = 100000

type limiter struct {
	mu    sync.Mutex
	hits  map[string][]time.Time
	limit int
	win   time.Duration
}

var global = &limiter{
	hits:  make(map[string][]time.Time),
	limit: config.RateLimitMax,
	win:   config.RateLimitWindow,
}

func (l *limiter) allow(ip string) (ok bool, remaining, resetIn int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-l.win)

	recent := l.hits[ip][:0]
	for _, t := range l.hits[ip] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.limit {
		l.hits[ip] = recent
		return false, 0, int(recent[0].Add(l.win).Sub(now).Seconds()) + 1
	}
	if len(l.hits) >= maxTrackedIPs {
		l.hits[ip] = recent
		return false, 0, int(l.win.Seconds())
	}

	l.hits[ip] = append(recent, now)
	return true, l.limit - len(l.hits[ip]), 0
}

func (l *limiter) prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	windowStart := time.Now().Add(-l.win)
	for ip, times := range l.hits {
		recent := times[:0]
		for _, t := range times {
			if t.After(windowStart) {
				recent = append(recent, t)
			}
		}
		if len(recent) == 0 {
			delete(l.hits, ip)
		} else {
			l.hits[ip] = recent
		}
	}
}

func RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		allowed, remaining, resetIn := global.allow(ip)

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", global.limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if !allowed {
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetIn))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(429)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   "Too many requests. Please slow down.",
				"resetIn": resetIn,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// StartRateLimitCleanup prunes idle IPs once a minute.
func StartRateLimitCleanup() {
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		for range ticker.C {
			global.prune()
		}
	}()
}

// clientIP trusts RemoteAddr; chi's RealIP middleware has already folded
// in X-Forwarded-For by the time we run.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
