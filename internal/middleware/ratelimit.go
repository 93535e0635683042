package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/backend/internal/logger"
	"golang.org/x/time/rate"
)

// RemoteLimiter is a limiter shared between server processes, such as the
// Redis token bucket.
type RemoteLimiter interface {
	AllowAction(ctx context.Context, key, action string, rate, burst int) (bool, error)
}

type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	rps      int

	action string
	remote RemoteLimiter
	log    *logger.Logger
}

// NewRateLimiter allows rps events per second per key with a burst of twice
// that. remote may be nil; when set it is asked first and the local limiter
// only decides if it fails.
func NewRateLimiter(action string, rps int, remote RemoteLimiter, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    rps * 2,
		rps:      rps,
		action:   action,
		remote:   remote,
		log:      log.With("service", "RateLimiter", "action", action),
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}

	return limiter
}

// Allow reports whether one more event for key is allowed now
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl.remote != nil {
		ok, err := rl.remote.AllowAction(ctx, key, rl.action, rl.rps, rl.burst)
		if err == nil {
			return ok
		}
		rl.log.Warn("remote rate limiter failed, using local limiter", "error", err)
	}
	return rl.getLimiter(key).Allow()
}

// Cleanup drops the limiters periodically until ctx is done
func (rl *RateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.mu.Lock()
				if len(rl.limiters) > 10000 {
					rl.limiters = make(map[string]*rate.Limiter)
				}
				rl.mu.Unlock()
			}
		}
	}()
}

// RateLimitMiddleware limits requests per signed-in user
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			c.Next()
			return
		}

		if !rl.Allow(c.Request.Context(), session.Username) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}
