package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything the health check should reach: the pgx pool, the memory
// store, the Redis cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	Checks map[string]Pinger
}

func NewHealthController(checks map[string]Pinger) *HealthController {
	return &HealthController{Checks: checks}
}

func (h *HealthController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(h.Checks))
		for name, p := range h.Checks {
			if err := p.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}
		state := "OK"
		if status != http.StatusOK {
			state = "DEGRADED"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
