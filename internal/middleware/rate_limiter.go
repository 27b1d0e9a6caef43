package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"gestionstock/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ─────────────────────────────────────────────────────

type windowEntry struct {
	count     int
	windowEnd time.Time
}

// Limiter counts requests per client IP in fixed windows.
type Limiter struct {
	name   string
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*windowEntry
}

func NewLimiter(name string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		name:    name,
		limit:   limit,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*windowEntry),
	}
}

// Allow records one hit for key and reports whether it is within the limit,
// plus the end of the current window.
func (l *Limiter) Allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// Purge drops expired windows and returns how many were removed.
func (l *Limiter) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	purged := 0
	for k, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, k)
			purged++
		}
	}
	return purged
}

// RunPurge purges expired windows every interval until ctx is done, so IPs
// that never come back do not accumulate.
func (l *Limiter) RunPurge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Purge(); n > 0 {
				log.Debug().Str("limiter", l.name).Int("purged", n).Msg("rate limiter entries purged")
			}
		}
	}
}

// Middleware rejects requests over the limit with 429 and msg.
func (l *Limiter) Middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits passcode attempts to 20 per minute per IP.
func LoginRateLimiter(l *Limiter) gin.HandlerFunc {
	return l.Middleware("Trop de tentatives de connexion. Réessayez dans une minute.")
}

// RateLimiter is the general API limiter.
func RateLimiter(l *Limiter) gin.HandlerFunc {
	return l.Middleware("Trop de requêtes. Réessayez dans un instant.")
}
