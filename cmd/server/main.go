package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/adapters"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/config"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/database"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/handlers"
	customMiddleware "github.com/DevilCodeX-123/College-Hub-sub003/internal/middleware"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/service"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage/memory"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage/mongostore"
	"github.com/DevilCodeX-123/College-Hub-sub003/pkg/logger"
	"github.com/DevilCodeX-123/College-Hub-sub003/pkg/metrics"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// backend собранное хранилище выбранного драйвера
type backend struct {
	repository *storage.Repository
	locker     storage.Locker
	db         *database.DB
	checks     []handlers.NamedCheck
	closers    []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func main() {
	// .env is optional, real environment wins
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to load .env file: %v\n", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set service start time for metrics
	startTime := time.Now()
	go func() {
		for {
			metrics.ServiceUptime.Set(time.Since(startTime).Seconds())
			time.Sleep(cfg.Metrics.UpdateInterval)
		}
	}()

	// Set service info
	metrics.ServiceInfo.WithLabelValues(version, buildTime, cfg.Storage.Driver).Set(1)

	store, err := newBackend(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer store.Close()

	clock, err := service.NewSystemClock(cfg.WeeklyReset.Timezone)
	if err != nil {
		logger.Fatal("Failed to initialize clock", zap.Error(err))
	}

	// Initialize service layer
	serviceLayer := service.NewService(&service.ServiceDependencies{
		Repository: store.repository,
		Locker:     store.locker,
		Clock:      clock,
		Metrics:    adapters.NewMetricsAdapter(cfg.Storage.Driver),
		Logger:     logger.Get(),
		WeeklyReset: service.WeeklyResetConfig{
			CheckInterval: cfg.WeeklyReset.CheckInterval,
			RunTimeout:    cfg.WeeklyReset.RunTimeout,
			LockTTL:       cfg.WeeklyReset.LockTTL,
			TopRanks:      cfg.WeeklyReset.TopRanks,
			CatchUpMissed: cfg.WeeklyReset.CatchUpMissed,
		},
	})

	// Start weekly reset scheduler in background
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()

	schedulerDone := make(chan struct{})
	if cfg.WeeklyReset.Enabled {
		go func() {
			defer close(schedulerDone)
			serviceLayer.WeeklyReset.Start(schedulerCtx)
		}()
	} else {
		logger.Warn("Weekly reset scheduler is disabled")
		close(schedulerDone)
	}

	// Initialize handlers
	allHandlers := handlers.NewHandlers(&handlers.HandlerDependencies{
		Service:      serviceLayer,
		DB:           store.db,
		HealthChecks: store.checks,
		Logger:       logger.Get(),
	})

	internalServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.InternalPort),
		Handler:      newInternalRouter(allHandlers, cfg.Timeouts.HTTPMiddleware, logger.Named("http")),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start internal server in a goroutine
	go func() {
		logger.Info("Starting Progression Service internal server",
			zap.String("host", cfg.Server.Host),
			zap.String("port", cfg.Server.InternalPort),
			zap.String("storage_driver", cfg.Storage.Driver),
			zap.String("timezone", cfg.WeeklyReset.Timezone),
		)

		if err := internalServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start internal server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.GracefulShutdown)
	defer cancel()

	if err := internalServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// A reset already in progress runs to completion (bounded by run_timeout); wait for it before closing storage
	schedulerCancel()
	select {
	case <-schedulerDone:
	case <-ctx.Done():
		logger.Warn("Weekly reset scheduler did not stop before shutdown timeout")
	}

	logger.Info("Server exited")
}

// newBackend подключает хранилище по storage.driver и выбирает реализацию блокировки
func newBackend(cfg *config.Config) (*backend, error) {
	b := &backend{}

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := database.NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetHealthTimeout(cfg.Timeouts.DatabaseHealth)
		b.closers = append(b.closers, db.Close)
		b.db = db

		repositoryDeps := &storage.RepositoryDependencies{
			DB:               adapters.NewDatabaseAdapter(db),
			MetricsCollector: adapters.NewMetricsAdapter(cfg.Storage.Driver),
		}
		b.repository = storage.NewRepository(repositoryDeps, db.SQLX())
		b.checks = append(b.checks, handlers.NamedCheck{Name: "database", Checker: db})

	case config.StorageDriverMongo:
		mongoDB, err := database.NewMongoDB(&cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		mongoDB.SetHealthTimeout(cfg.Timeouts.DatabaseHealth)
		b.closers = append(b.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoDB.Close(ctx); err != nil {
				logger.Warn("Failed to disconnect from mongo", zap.Error(err))
			}
		})

		store := mongostore.NewStore(mongoDB.Database(), adapters.NewMetricsAdapter(cfg.Storage.Driver))
		b.repository = &storage.Repository{User: store, Club: store, RunState: store}
		b.checks = append(b.checks, handlers.NamedCheck{Name: "mongo", Checker: mongoDB})

	case config.StorageDriverMemory:
		store := memory.NewStore()
		b.repository = &storage.Repository{User: store, Club: store, RunState: store}
		b.locker = store
		b.checks = append(b.checks, handlers.NamedCheck{Name: "memory", Checker: store})
		logger.Warn("Using in-memory storage, data will be lost on restart")

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Redis.URL != "" {
		redis, err := database.NewRedisClient(&cfg.Redis)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redis.SetHealthTimeout(cfg.Timeouts.RedisHealth)
		b.closers = append(b.closers, func() { redis.Close() })

		cache := adapters.NewCacheAdapter(redis)
		b.locker = adapters.NewCacheLocker(cache)
		b.checks = append(b.checks, handlers.NamedCheck{Name: "redis", Checker: cache})
	} else if b.locker == nil {
		logger.Warn("Redis is not configured, weekly reset lock is local to this process")
		b.locker = memory.NewLocker()
	}

	return b, nil
}

// newInternalRouter собирает маршруты служебного порта
func newInternalRouter(h *handlers.Handlers, requestTimeout time.Duration, log *zap.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(customMiddleware.Recovery(log))
	router.Use(customMiddleware.Logging(log))
	router.Use(customMiddleware.Metrics())
	router.Use(middleware.Timeout(requestTimeout))

	// Internal endpoints - health, metrics
	router.Get("/health", h.Health.Health)
	router.Get("/ready", h.Health.Ready)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/internal", func(r chi.Router) {
		r.Post("/weekly-reset", h.Reset.TriggerWeeklyReset)
		r.Get("/levels", h.Level.GetLevel)
		r.Get("/users/{userID}/level", h.Level.GetUserLevel)
	})

	return router
}
