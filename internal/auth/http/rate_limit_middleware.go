package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// authLimiterStore holds one token-bucket limiter per client IP.
type authLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*authLimiterEntry
	rps      float64
	burst    int
}

type authLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// AuthRateLimitMiddleware enforces a per-IP rate limit on the authenticate
// endpoint. The endpoint is unauthenticated and takes passwords, so it is the
// one place worth slowing credential stuffing down. Answers 429 with a
// Retry-After header when the bucket is empty.
func AuthRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &authLimiterStore{
		limiters: make(map[string]*authLimiterEntry),
		rps:      rps,
		burst:    burst,
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limiter := store.limiterFor(clientIP)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds())
			reservation.Cancel()

			logger.Debug("authenticate rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter),
			)

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many authentication attempts from this IP. Please retry after the specified delay.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// limiterFor returns the limiter for the IP, creating it on first sight and
// evicting entries idle for over an hour while it holds the lock.
func (s *authLimiterStore) limiterFor(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	threshold := now.Add(-time.Hour)
	for key, entry := range s.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(s.limiters, key)
		}
	}

	entry, ok := s.limiters[ip]
	if !ok {
		entry = &authLimiterEntry{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.limiters[ip] = entry
	}
	entry.lastAccess = now
	return entry.limiter
}
