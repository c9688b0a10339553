package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appaudit "github.com/uxlens/backend/internal/application/audit"
	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/waitlist"
	"github.com/uxlens/backend/internal/infrastructure/analysis"
	"github.com/uxlens/backend/internal/infrastructure/auth"
	"github.com/uxlens/backend/internal/infrastructure/cache"
	"github.com/uxlens/backend/internal/infrastructure/capture"
	"github.com/uxlens/backend/internal/infrastructure/config"
	"github.com/uxlens/backend/internal/infrastructure/logger"
	"github.com/uxlens/backend/internal/infrastructure/persistence"
	"github.com/uxlens/backend/internal/infrastructure/storage"
	"github.com/uxlens/backend/internal/interfaces/http/handler"
	"github.com/uxlens/backend/internal/interfaces/http/middleware"
	"github.com/uxlens/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	auditRepo, waitlistRepo := buildRepositories(cfg, log)
	rateStore := buildRateLimitStore(cfg, log)
	defer rateStore.Close()

	objectStore := buildObjectStorage(cfg, log)
	engine := buildEngine(cfg, log, auditRepo, objectStore)
	unlockService := auth.NewUnlockService(cfg.Unlock)

	auditHandler := handler.NewAuditHandler(engine, auditRepo, unlockService)
	waitlistHandler := handler.NewWaitlistHandler(waitlistRepo, unlockService)
	healthHandler := handler.NewHealthHandler()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	ginEngine := gin.New()
	if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	ginEngine.Use(middleware.CorrelationID())
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(logger.GinMiddleware(log))
	ginEngine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	ginEngine.Use(middleware.CORSWithConfig(corsConfig))
	ginEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		ginEngine.Use(middleware.RateLimit(rateStore, middleware.RateLimitConfig{
			Limit:  int64(cfg.HTTP.RateLimitRequests),
			Window: cfg.HTTP.RateLimitWindow,
		}))
	}

	ginEngine.GET("/healthz", healthHandler.Healthz)

	router.NewRouter(ginEngine, router.WithAPIVersion("v1")).
		Register(auditHandler).
		Register(waitlistHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// buildRepositories connects to Postgres when a host is configured. Without
// one the service runs on in-memory repositories, which is fine for local
// development but refused in production.
func buildRepositories(cfg *config.Config, log *zap.Logger) (audit.Repository, waitlist.Repository) {
	if cfg.Database.Host == "" {
		if cfg.App.Env == "production" {
			log.Fatal("Database host is required in production")
		}
		log.Warn("No database configured, using in-memory repositories")
		return persistence.NewMemoryAuditRepository(), persistence.NewMemoryWaitlistRepository()
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)
	return persistence.NewGormAuditRepository(db.DB), persistence.NewGormWaitlistRepository(db.DB)
}

func buildRateLimitStore(cfg *config.Config, log *zap.Logger) cache.RateLimitStore {
	if !cfg.Redis.Enabled {
		return cache.NewInMemoryRateLimitStore()
	}
	store, err := cache.NewRedisRateLimitStore(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory rate limiting", zap.Error(err))
		return cache.NewInMemoryRateLimitStore()
	}
	log.Info("Redis rate limit store connected", zap.String("addr", cfg.Redis.Addr()))
	return store
}

func buildObjectStorage(cfg *config.Config, log *zap.Logger) storage.ObjectStorage {
	if cfg.Storage.Bucket == "" {
		log.Warn("No storage bucket configured, captured screenshots will not be persisted")
		return storage.NewStubObjectStorage()
	}

	store, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to ensure storage bucket", zap.Error(err))
	}
	log.Info("Object storage ready", zap.String("bucket", cfg.Storage.Bucket))
	return store
}

func buildEngine(cfg *config.Config, log *zap.Logger, repo audit.Repository, store storage.ObjectStorage) *appaudit.Engine {
	capturer := capture.NewChromeCapturer(&capture.ChromeConfig{
		Timeout:        cfg.Capture.Timeout,
		ViewportWidth:  cfg.Capture.ViewportWidth,
		ViewportHeight: cfg.Capture.ViewportHeight,
		ExecPath:       cfg.Capture.ChromePath,
		NoSandbox:      cfg.Capture.NoSandbox,
		Logger:         log,
	})

	var analyzer appaudit.Analyzer
	if !cfg.Analysis.Deterministic {
		if cfg.Analysis.Endpoint == "" {
			log.Fatal("analysis.endpoint is required unless analysis.deterministic is enabled")
		}
		analyzer = analysis.NewClient(analysis.Config{
			Endpoint: cfg.Analysis.Endpoint,
			APIKey:   cfg.Analysis.APIKey,
			Model:    cfg.Analysis.Model,
			Timeout:  cfg.Analysis.Timeout,
			Logger:   log,
		})
	} else {
		log.Info("Deterministic analysis mode enabled, model calls are skipped")
	}

	opts := []appaudit.EngineOption{appaudit.WithEngineLogger(log)}
	if cfg.Capture.WorkerURL != "" {
		worker := capture.NewWorkerClient(cfg.Capture.WorkerURL,
			capture.WithWorkerTimeout(cfg.Capture.WorkerTimeout),
			capture.WithWorkerViewport(cfg.Capture.ViewportWidth, cfg.Capture.ViewportHeight),
			capture.WithWorkerLogger(log),
		)
		opts = append(opts, appaudit.WithWorker(worker))
	}

	return appaudit.NewEngine(appaudit.EngineConfig{
		Runtime:          capture.Runtime(cfg.App.Runtime),
		Platform:         capture.Platform(cfg.App.Platform),
		Override:         capture.StrategyOverride(cfg.Capture.Strategy),
		WorkerConfigured: cfg.Capture.WorkerURL != "",
		Deterministic:    cfg.Analysis.Deterministic,
	}, capturer, analyzer, repo, store, opts...)
}
