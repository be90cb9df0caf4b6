package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ViewerRateLimiter applies a token bucket per authenticated viewer. It must
// run after Auth.
type ViewerRateLimiter struct {
	visitors sync.Map
	limit    rate.Limit
	burst    int
	log      *zap.Logger
}

type visitor struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewViewerRateLimiter allows perMinute requests per viewer with the given
// burst. perMinute <= 0 disables limiting.
func NewViewerRateLimiter(perMinute, burst int, log *zap.Logger) *ViewerRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	return &ViewerRateLimiter{limit: limit, burst: burst, log: log}
}

func (l *ViewerRateLimiter) limiterFor(key string) *rate.Limiter {
	v, _ := l.visitors.LoadOrStore(key, &visitor{limiter: rate.NewLimiter(l.limit, l.burst)})
	vi := v.(*visitor)
	vi.mu.Lock()
	vi.lastSeen = time.Now()
	vi.mu.Unlock()
	return vi.limiter
}

// Cleanup forgets idle viewers every minute until ctx is done.
func (l *ViewerRateLimiter) Cleanup(ctx context.Context, idle time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(time.Now().Add(-idle))
		}
	}
}

func (l *ViewerRateLimiter) sweep(cutoff time.Time) {
	l.visitors.Range(func(k, v any) bool {
		vi := v.(*visitor)
		vi.mu.Lock()
		stale := vi.lastSeen.Before(cutoff)
		vi.mu.Unlock()
		if stale {
			l.visitors.Delete(k)
		}
		return true
	})
}

func (l *ViewerRateLimiter) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit == rate.Inf {
			c.Next()
			return
		}
		key := ViewerID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !l.limiterFor(key).Allow() {
			l.log.Warn("rate limit exceeded", zap.String("viewer_id", key), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
