package httpmiddleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client rate limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per window. Zero disables
	// limiting.
	Max int
	// Window is the duration of each window.
	Window time.Duration
	// KeyFunc extracts the limiting key from a request; defaults to the
	// client IP.
	KeyFunc func(*http.Request) string
}

// clientWindow tracks a client's request count within the current window.
type clientWindow struct {
	count   int
	started time.Time
}

type rateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*clientWindow
}

// allow counts a request against key's current window, rotating the window
// when it has elapsed. It returns the remaining budget and the window reset
// time alongside the verdict.
func (rl *rateLimiter) allow(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw, found := rl.clients[key]
	if !found || now.Sub(cw.started) >= rl.cfg.Window {
		cw = &clientWindow{started: now}
		rl.clients[key] = cw
	}

	resetAt = cw.started.Add(rl.cfg.Window)
	if cw.count >= rl.cfg.Max {
		return 0, resetAt, false
	}
	cw.count++
	return rl.cfg.Max - cw.count, resetAt, true
}

// sweep drops windows that ended before now, bounding memory growth.
func (rl *rateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cw := range rl.clients {
		if now.Sub(cw.started) >= rl.cfg.Window {
			delete(rl.clients, key)
		}
	}
}

// RateLimit returns a middleware rejecting requests over the configured
// budget with 429 and standard RateLimit headers. A background sweeper tied
// to ctx evicts idle clients.
func RateLimit(ctx context.Context, cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	rl := &rateLimiter{cfg: cfg, clients: make(map[string]*clientWindow)}

	if cfg.Max > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Window)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					rl.sweep(now)
				}
			}
		}()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Max <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			remaining, resetAt, ok := rl.allow(cfg.KeyFunc(r), time.Now())
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
			if !ok {
				retryAfter := int(time.Until(resetAt).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr, falling back to the raw value.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
