package v1

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-prestachat/internal/infrastructure/metrics"
	"go-prestachat/internal/infrastructure/middleware"
	"go-prestachat/internal/pkg/messaging/application/facade"
	"go-prestachat/internal/pkg/messaging/presentation/controller"
	httpHandler "go-prestachat/internal/pkg/messaging/presentation/http"
)

// Deps is everything the HTTP surface needs. Limiter and Health may be nil.
type Deps struct {
	Messenger      *facade.Messenger
	Validator      middleware.TokenValidator
	Limiter        *middleware.ViewerRateLimiter
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	Health         map[string]controller.Pinger
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// RegisterRoutes installs the global middleware, the unauthenticated probes
// and every version 1 API route under /api/v1.
func RegisterRoutes(r *gin.Engine, d Deps) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log, d.Metrics))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  d.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Authorization", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/healthz", controller.NewHealthController(d.Health).Handle())
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	var sendLimit gin.HandlerFunc
	if d.Limiter != nil {
		sendLimit = d.Limiter.Handle()
	}
	v1 := r.Group("/api/v1", middleware.Auth(d.Validator, log))
	httpHandler.RegisterRoutes(v1, d.Messenger, sendLimit, d.RequestTimeout)
}
