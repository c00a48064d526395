package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultIdleTTL = time.Hour

type RateLimitConfig struct {
	// Requests запросов за Window разрешено одному IP; столько же допускается пачкой.
	Requests int
	Window   time.Duration
	// IdleTTL после которого лимитер неактивного клиента забывается.
	IdleTTL time.Duration
	// Exempt пути, которые не ограничиваются, например пробы оркестратора.
	Exempt []string
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client

	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	exempt  map[string]struct{}
	logger  *slog.Logger
}

// NewRateLimiter запускает фоновую очистку неактивных клиентов, живущую до отмены ctx.
func NewRateLimiter(ctx context.Context, cfg RateLimitConfig, logger *slog.Logger) *RateLimiter {
	idleTTL := cfg.IdleTTL
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}

	exempt := make(map[string]struct{}, len(cfg.Exempt))
	for _, path := range cfg.Exempt {
		exempt[path] = struct{}{}
	}

	l := &RateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:   cfg.Requests,
		idleTTL: idleTTL,
		exempt:  exempt,
		logger:  logger,
	}

	go l.sweep(ctx)

	return l
}

func (l *RateLimiter) limiterFor(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}

	c.lastSeen = now

	return c.limiter
}

func (l *RateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(l.idleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for ip, c := range l.clients {
				if now.Sub(c.lastSeen) > l.idleTTL {
					delete(l.clients, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := l.exempt[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now()
		ip := clientIP(r)
		limiter := l.limiterFor(ip, now)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))

		reservation := limiter.ReserveN(now, 1)
		if delay := reservation.DelayFrom(now); delay > 0 {
			reservation.CancelAt(now)

			l.logger.Debug("Превышен лимит запросов", "ip", ip, "retry_after", delay)

			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			w.Header().Set("X-RateLimit-Remaining", "0")
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)

			return
		}

		remaining := int(math.Max(0, math.Floor(limiter.TokensAt(now))))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		next.ServeHTTP(w, r)
	})
}
