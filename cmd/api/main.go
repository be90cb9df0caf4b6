package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	v1 "go-prestachat/cmd/api/router/v1"
	"go-prestachat/internal/config"
	"go-prestachat/internal/infrastructure/auth"
	cacheAdapter "go-prestachat/internal/infrastructure/cache/adapter"
	"go-prestachat/internal/infrastructure/database"
	eventsAdapter "go-prestachat/internal/infrastructure/events/adapter"
	eport "go-prestachat/internal/infrastructure/events/port"
	"go-prestachat/internal/infrastructure/logger"
	"go-prestachat/internal/infrastructure/metrics"
	"go-prestachat/internal/infrastructure/middleware"
	queueAdapter "go-prestachat/internal/infrastructure/queue/adapter"
	qport "go-prestachat/internal/infrastructure/queue/port"
	"go-prestachat/internal/pkg/messaging/application/facade"
	"go-prestachat/internal/pkg/messaging/application/task"
	repoAdapter "go-prestachat/internal/pkg/messaging/persistence/repository/adapter"
	repository "go-prestachat/internal/pkg/messaging/persistence/repository/port"
	"go-prestachat/internal/pkg/messaging/persistence/stats"
	"go-prestachat/internal/pkg/messaging/presentation/controller"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	if err := run(cfg, zl); err != nil {
		os.Exit(exitOnError(zl, err))
	}
	_ = zl.Sync()
}

// exitOnError logs err and flushes zl. os.Exit skips deferred calls, so the
// flush has to happen here.
func exitOnError(zl *zap.Logger, err error) int {
	zl.Error("server stopped", zap.Error(err))
	_ = zl.Sync()
	return 1
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	health := map[string]controller.Pinger{}

	var (
		conversations repository.ConversationRepository
		messages      repository.MessageRepository
		profiles      repository.ProfileRepository
	)
	switch cfg.Database.Driver {
	case "memory":
		zl.Warn("using the in-memory store; data is lost on restart")
		mem := repoAdapter.NewMemoryRepository(nil)
		conversations, messages, profiles = mem, mem, mem
		health["store"] = mem
	default:
		pool, err := database.Connect(ctx, cfg.Database.URL, database.Options{
			MaxConns:     cfg.Database.MaxConns,
			ConnectRetry: cfg.Database.ConnectRetry,
			Logger:       zl,
		})
		if err != nil {
			return err
		}
		defer pool.Close()
		if cfg.Database.Migrate {
			if err := database.Migrate(ctx, pool); err != nil {
				return err
			}
		}
		conversations = repoAdapter.NewPgConversationRepository(pool)
		messages = repoAdapter.NewPgMessageRepository(pool)
		profiles = repoAdapter.NewPgProfileRepository(pool)
		health["postgres"] = pool
	}

	if cfg.Redis.URL != "" {
		cache, err := cacheAdapter.NewRedisCache(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer func() { _ = cache.Close() }()
		messages = stats.NewCachedMessageRepository(messages, cache, cfg.Redis.SummaryTTL, zl.Named("stats"))
		health["redis"] = cache
	}

	var publisher eport.Publisher = eventsAdapter.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := eventsAdapter.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		publisher = kp
	}
	defer func() { _ = publisher.Close() }()

	var queue qport.Client
	if cfg.Queue.Enabled {
		qc, err := queueAdapter.NewAsynqClient(cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer func() { _ = qc.Close() }()
		queue = qc
	}

	messenger := facade.NewMessenger(conversations, messages, profiles, facade.Options{
		Queue:   queue,
		Events:  publisher,
		Metrics: m,
		Logger:  zl.Named("messenger"),
	})

	validator, err := auth.NewValidator(cfg.Auth.Alg, cfg.Auth.HSSecret, cfg.Auth.PublicKeyPath)
	if err != nil {
		return err
	}
	limiter := middleware.NewViewerRateLimiter(cfg.RateLimit.SendPerMinute, cfg.RateLimit.Burst, zl)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	v1.RegisterRoutes(r, v1.Deps{
		Messenger:      messenger,
		Validator:      validator,
		Limiter:        limiter,
		Metrics:        m,
		Logger:         zl,
		Health:         health,
		CORSOrigins:    cfg.App.CORSOrigins,
		RequestTimeout: cfg.App.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("http listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		zl.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		limiter.Cleanup(gctx, 10*time.Minute)
		return nil
	})
	if cfg.Queue.Enabled {
		worker, err := queueAdapter.NewAsynqServer(cfg.Redis.URL, cfg.Queue.Concurrency,
			map[string]int{task.MarkReadQueue: 1}, zl.Named("asynq"))
		if err != nil {
			return err
		}
		task.RegisterMarkReadTask(worker, messenger, zl.Named("task"))
		g.Go(func() error { return worker.Run(gctx) })
	}
	return g.Wait()
}
