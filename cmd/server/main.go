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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/app"
	"github.com/benvon/interview-tracker/internal/config"
	"github.com/benvon/interview-tracker/internal/handlers"
	"github.com/benvon/interview-tracker/internal/logger"
	"github.com/benvon/interview-tracker/internal/metrics"
	"github.com/benvon/interview-tracker/internal/middleware"
	"github.com/benvon/interview-tracker/internal/mirror"
	"github.com/benvon/interview-tracker/internal/queue"
	"github.com/benvon/interview-tracker/internal/services/ai"
	"github.com/benvon/interview-tracker/internal/store"
	"github.com/benvon/interview-tracker/internal/telemetry"
)

// Set at build time with -ldflags "-X main.version=..."
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("broker", cfg.UseBroker()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize OpenTelemetry if enabled
	tracing := false
	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, serviceName, version, cfg.OTELEndpoint)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracing = true
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	// Open storage
	stores, err := app.OpenStores(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_open_storage", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			zapLogger.Warn("failed_to_close_storage", zap.Error(err))
		}
	}()
	zapLogger.Info("storage_opened", zap.String("backend", cfg.StorageBackend))

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector()
	}

	// Job queue: RabbitMQ when configured, in-process otherwise
	jobQueue, err := app.ConnectQueue(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_job_queue", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_job_queue", zap.Error(err))
		}
	}()

	// Directory mirror
	session := mirror.NewSession()
	if cfg.MirrorDir != "" {
		if err := session.Acquire(cfg.MirrorDir); err != nil {
			zapLogger.Warn("failed_to_attach_mirror_directory",
				zap.String("directory", logger.SanitizePath(cfg.MirrorDir)),
				zap.Error(err))
		} else {
			zapLogger.Info("mirror_directory_attached", zap.String("directory", logger.SanitizePath(cfg.MirrorDir)))
		}
	}
	defer session.Release()
	scheduler := mirror.NewScheduler(session, jobQueue, zapLogger)

	stores.Questions.SetChangeHandler(func(ctx context.Context, event store.ChangeEvent) {
		if collector != nil {
			collector.ObserveStoreChange(event.Op, event.Count)
		}
		scheduler.Schedule(ctx)
	})

	// Project seed
	if _, err := app.ApplySeed(ctx, stores, cfg.SeedSource, cfg.SeedPolicy, zapLogger); err != nil {
		zapLogger.Warn("failed_to_apply_seed", zap.Error(err))
	}

	// Initialize AI provider
	aiProvider, err := app.NewAIProvider(cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Warn("failed_to_create_ai_provider_ai_features_disabled", zap.Error(err))
		aiProvider = nil
	}
	if aiProvider == nil {
		zapLogger.Info("ai_provider_not_configured")
	}
	generator := ai.NewGenerator(aiProvider, stores.Categories, zapLogger)
	chat := ai.NewChatService(aiProvider, zapLogger)
	chat.SetTTL(cfg.ChatTTL)
	go chat.StartJanitor(ctx, time.Minute)

	// Process jobs in-process unless a standalone worker consumes the broker
	if !cfg.UseBroker() {
		deps := app.ProcessorDeps{Stores: stores, Generator: generator, Session: session, Requeue: jobQueue}
		if collector != nil {
			deps.Observer = collector
		}
		processor := app.NewProcessor(deps, zapLogger)
		go func() {
			if err := processor.Run(ctx, jobQueue, cfg.RabbitMQPrefetch); err != nil {
				zapLogger.Error("in_process_worker_stopped_with_error", zap.Error(err))
			}
		}()
	}

	// Start DLQ garbage collector if the queue implementation supports it
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, time.Hour, cfg.DLQRetention, zapLogger)
		go func() {
			if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", time.Hour),
			zap.Duration("retention", cfg.DLQRetention),
		)
	}

	// Rate limit counters are shared through Redis when one is available
	redisClient := stores.RedisClient()
	if redisClient == nil && cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("invalid_redis_url", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
	}

	router, err := newRouter(routerDeps{
		Stores:      stores,
		Queue:       jobQueue,
		Generator:   generator,
		Chat:        chat,
		Session:     session,
		Scheduler:   scheduler,
		Collector:   collector,
		RedisClient: redisClient,
		Version:     handlers.VersionInfo{Version: version, Commit: commit, BuildTime: buildTime},
		FrontendURL: cfg.FrontendURL,
		EnableHSTS:  cfg.EnableHSTS,
		AIRateLimit: cfg.AIRateLimit,
		Tracing:     tracing,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_build_router", zap.Error(err))
	}

	// Setup server
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      middleware.DefaultAIRequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	stop()

	zapLogger.Info("server_exited")
}
