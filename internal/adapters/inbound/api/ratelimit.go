package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/charleschow/mplid-predictor/internal/telemetry"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter gives every client a token bucket per path.
type RateLimiter struct {
	perMin int
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	sweptAt  time.Time
}

// NewRateLimiter allows perMin requests per minute for each ip:path. A
// non-positive perMin disables limiting.
func NewRateLimiter(perMin int) *RateLimiter {
	return &RateLimiter{perMin: perMin, now: time.Now, visitors: make(map[string]*visitor)}
}

// Middleware limits /api/ routes except the cron trigger, which has its own
// secret.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl.perMin <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if !strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/api/cron/") {
			next.ServeHTTP(w, r)
			return
		}

		allowed, remaining := rl.take(clientIP(r) + ":" + path)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.perMin))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			telemetry.Metrics.RateLimited.Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int((time.Minute / time.Duration(rl.perMin)).Seconds())+1))
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limited", Message: "Too Many Requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) take(key string) (bool, int) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.sweptAt) > limiterIdleTTL {
		for k, v := range rl.visitors {
			if now.Sub(v.seen) > limiterIdleTTL {
				delete(rl.visitors, k)
			}
		}
		rl.sweptAt = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.perMin)), rl.perMin)}
		rl.visitors[key] = v
	}
	v.seen = now
	allowed := v.lim.AllowN(now, 1)
	return allowed, max(0, int(v.lim.TokensAt(now)))
}

// clientIP prefers the proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
