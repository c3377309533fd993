package middlewares

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window per-IP limiter guarding the public
// submission, upload and login endpoints against bursts.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count int
	until time.Time
}

func NewRateLimiter(limit int, windowSize time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  windowSize,
		windows: make(map[string]*window),
	}
}

// allow counts one request for key; when the window is exhausted it reports
// how long the caller should wait. Expired windows of other keys are pruned
// on the way through to keep the map from growing with one-off clients.
func (rl *RateLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w := rl.windows[key]

	if w == nil || now.After(w.until) {
		if len(rl.windows) > 1024 {
			rl.prune(now)
		}

		rl.windows[key] = &window{count: 1, until: now.Add(rl.window)}
		return true, 0
	}

	if w.count >= rl.limit {
		return false, w.until.Sub(now)
	}

	w.count++
	return true, 0
}

func (rl *RateLimiter) prune(now time.Time) {
	for key, w := range rl.windows {
		if now.After(w.until) {
			delete(rl.windows, key)
		}
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := rl.allow(c.ClientIP(), time.Now())

		if !ok {
			retryAfter := int(wait.Seconds())

			if retryAfter < 1 {
				retryAfter = 1
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests, please try again shortly",
			})
			return
		}

		c.Next()
	}
}
