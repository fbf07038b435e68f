package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig defines a fixed-window limit
type RateLimitConfig struct {
	Requests int           // Maximum requests per window
	Window   time.Duration // Window length
	// KeyFunc returns the key requests are counted under (defaults to IP)
	KeyFunc func(c echo.Context) string
	Message string
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// RateLimiter counts requests per key in fixed windows
type RateLimiter struct {
	config RateLimitConfig
	store  map[string]*rateLimitEntry
	mu     sync.Mutex
	now    func() time.Time
}

// NewRateLimiter creates a limiter. Expired entries are dropped lazily on
// each request.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.Message == "" {
		config.Message = "Trop de requêtes. Réessayez dans un instant."
	}
	return &RateLimiter{
		config: config,
		store:  make(map[string]*rateLimitEntry),
		now:    time.Now,
	}
}

// Allow records a request for key and reports whether it is within the limit
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for k, entry := range rl.store {
		if now.After(entry.expiresAt) {
			delete(rl.store, k)
		}
	}

	entry, ok := rl.store[key]
	if !ok {
		rl.store[key] = &rateLimitEntry{count: 1, expiresAt: now.Add(rl.config.Window)}
		return true
	}
	if entry.count >= rl.config.Requests {
		return false
	}
	entry.count++
	return true
}

// Middleware rejects requests over the limit with 429
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(rl.config.KeyFunc(c)) {
				return echo.NewHTTPError(http.StatusTooManyRequests, rl.config.Message)
			}
			return next(c)
		}
	}
}

// ImageUploadRateLimiter limits picture uploads to 30 batches per minute per IP
func ImageUploadRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Requests: 30,
		Window:   time.Minute,
		Message:  "Trop d'envois de photos. Patientez une minute.",
	})
}

// PrintRateLimiter limits PDF generation to 10 per minute per IP
func PrintRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
		Message:  "Trop de générations de PDF. Patientez une minute.",
	})
}

// EmailRateLimiter limits report emails to 5 per hour per IP
func EmailRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Requests: 5,
		Window:   time.Hour,
		Message:  "Trop d'envois par email. Réessayez plus tard.",
	})
}
