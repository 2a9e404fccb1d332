package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// IPLimiter хранит по token bucket на каждый IP клиента.
type IPLimiter struct {
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	visitors map[string]*visitor
	now      func() time.Time
}

func NewIPLimiter(rps float64, burst int) *IPLimiter {
	return &IPLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *IPLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		// заодно чистим давно не приходивших
		for k, old := range l.visitors {
			if now.Sub(old.seen) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.seen = now
	return v.limiter
}

func (l *IPLimiter) Allow(ip string) bool { return l.get(ip).Allow() }

// RateLimit отвечает 429, когда клиент исчерпал свой bucket. rps <= 0 отключает лимит.
func RateLimit(l *IPLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil || l.rps <= 0 {
			return next
		}
		retry := strconv.Itoa(max(1, int(1/float64(l.rps))))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", retry)
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
