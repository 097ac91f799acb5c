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

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/app"
	"github.com/benvon/interview-tracker/internal/config"
	"github.com/benvon/interview-tracker/internal/logger"
	"github.com/benvon/interview-tracker/internal/metrics"
	"github.com/benvon/interview-tracker/internal/queue"
	"github.com/benvon/interview-tracker/internal/services/ai"
)

const serviceName = "interview-tracker-worker"

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	metricsAddr := flag.String("metrics-addr", ":9091", "Address for the Prometheus metrics listener (empty disables it)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.UseBroker() {
		log.Fatalf("RABBITMQ_URL is required for the standalone worker; the server processes jobs in-process otherwise")
	}

	// Override debug mode if flag is set
	debugMode := cfg.WorkerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_open_storage", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			zapLogger.Warn("failed_to_close_storage", zap.Error(err))
		}
	}()

	jobQueue, err := app.ConnectQueue(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	aiProvider, err := app.NewAIProvider(cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Warn("failed_to_create_ai_provider", zap.Error(err))
		aiProvider = nil
	}
	if aiProvider == nil {
		zapLogger.Warn("ai_provider_not_configured_answer_jobs_will_dead_letter")
	}

	deps := app.ProcessorDeps{
		Stores:    stores,
		Generator: ai.NewGenerator(aiProvider, stores.Categories, zapLogger),
		Requeue:   jobQueue,
	}

	var metricsServer *http.Server
	if cfg.MetricsEnabled && *metricsAddr != "" {
		collector := metrics.NewCollector()
		deps.Observer = collector
		metricsServer = &http.Server{
			Addr:              *metricsAddr,
			Handler:           collector.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zapLogger.Error("metrics_listener_failed", zap.Error(err))
			}
		}()
	}

	processor := app.NewProcessor(deps, zapLogger)

	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, time.Hour, cfg.DLQRetention, zapLogger)
		go func() {
			if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- processor.Run(ctx, jobQueue, cfg.RabbitMQPrefetch)
	}()

	select {
	case <-sigChan:
		zapLogger.Info("shutdown_signal_received")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			zapLogger.Error("worker_stopped_with_error", zap.Error(err))
		}
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	zapLogger.Info("worker_stopped")
}
