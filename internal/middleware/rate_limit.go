package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/errors"
	"golang.org/x/time/rate"
)

// UserRateLimiter keeps one token bucket per authenticated user
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[uint]*userLimiter
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewUserRateLimiter(perSecond float64, burst int) *UserRateLimiter {
	return &UserRateLimiter{
		limiters: make(map[uint]*userLimiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

// Allow consumes one token for userID
func (l *UserRateLimiter) Allow(userID uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.limiters[userID]
	if !ok {
		entry = &userLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[userID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Cleanup drops limiters idle for longer than the idle TTL
func (l *UserRateLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for id, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, id)
			removed++
		}
	}
	return removed
}

// Middleware limits requests per user; must run after Authenticate
func (l *UserRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.Next()
			return
		}
		if !l.Allow(userID) {
			GetLoggerFromContext(c).Warn("Rate limit exceeded", map[string]interface{}{
				"user_id": userID,
			})
			errors.TooManyRequests(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
