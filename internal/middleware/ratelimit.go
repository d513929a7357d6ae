package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type keyLimiter struct {
	lim *rate.Limiter
	ts  time.Time
}

type rateLimiters struct {
	mu  sync.Mutex
	m   map[string]*keyLimiter
	r   rate.Limit
	b   int
	ttl time.Duration
}

func (rl *rateLimiters) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	kl, ok := rl.m[key]
	if ok {
		kl.ts = time.Now()
		return kl.lim
	}
	lim := rate.NewLimiter(rl.r, rl.b)
	rl.m[key] = &keyLimiter{lim: lim, ts: time.Now()}
	return lim
}

func (rl *rateLimiters) gc() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		rl.mu.Lock()
		for k, v := range rl.m {
			if now.Sub(v.ts) > rl.ttl {
				delete(rl.m, k)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit returns a token-bucket limiter middleware keyed by client IP and
// route path.
func RateLimit(r rate.Limit, burst int) echo.MiddlewareFunc {
	rl := &rateLimiters{m: make(map[string]*keyLimiter), r: r, b: burst, ttl: 2 * time.Minute}
	go rl.gc()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := clientIP(c.Request().RemoteAddr) + "|" + c.Path()
			if !rl.get(key).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

func clientIP(remote string) string {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}
