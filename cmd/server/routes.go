package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/api"
	"github.com/benvon/interview-tracker/internal/app"
	"github.com/benvon/interview-tracker/internal/handlers"
	"github.com/benvon/interview-tracker/internal/mcpserver"
	"github.com/benvon/interview-tracker/internal/metrics"
	"github.com/benvon/interview-tracker/internal/middleware"
	"github.com/benvon/interview-tracker/internal/mirror"
	"github.com/benvon/interview-tracker/internal/queue"
	"github.com/benvon/interview-tracker/internal/services/ai"
)

const serviceName = "interview-tracker-api"

// routerDeps are the collaborators mounted on the HTTP router
type routerDeps struct {
	Stores      *app.Stores
	Queue       queue.JobQueue
	Generator   *ai.Generator
	Chat        *ai.ChatService
	Session     *mirror.Session
	Scheduler   *mirror.Scheduler
	Collector   *metrics.Collector
	RedisClient *redis.Client
	Version     handlers.VersionInfo

	FrontendURL string
	EnableHSTS  bool
	AIRateLimit string
	Tracing     bool
}

func newRouter(deps routerDeps, logger *zap.Logger) (*mux.Router, error) {
	r := mux.NewRouter()

	// Registered outermost first
	r.Use(middleware.RequestID)
	if deps.Tracing {
		r.Use(otelmux.Middleware(serviceName))
	}
	if deps.Collector != nil {
		r.Use(metrics.Middleware(deps.Collector))
	}
	r.Use(middleware.Logging(logger))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.SecurityHeaders(deps.EnableHSTS))
	r.Use(middleware.CORS(deps.FrontendURL, logger))

	rateLimitMW, err := middleware.RateLimit(deps.AIRateLimit, deps.RedisClient, "tracker:ratelimit")
	if err != nil {
		return nil, err
	}

	// Public operational routes
	healthChecker := handlers.NewHealthChecker()
	healthChecker.AddCheck("storage", deps.Stores.Ping)
	if deps.Queue != nil {
		healthChecker.AddCheck("queue", deps.Queue.HealthCheck)
	}
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.VersionHandler(deps.Version)).Methods("GET")
	if deps.Collector != nil {
		r.Handle("/metrics", deps.Collector.Handler()).Methods("GET")
	}

	openAPIHandler, err := handlers.NewOpenAPIHandler(api.OpenAPISpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	openAPIHandler.RegisterRoutes(r)

	mcp := mcpserver.New(deps.Version.Version, deps.Stores.Questions, deps.Stores.Categories)
	r.Handle("/mcp", mcpserver.NewHTTPHandler(mcp))

	// API v1 routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	var jobs handlers.JobEnqueuer
	if deps.Queue != nil {
		jobs = deps.Queue
	}

	questionsRouter := apiRouter.PathPrefix("/questions").Subrouter()
	questionsRouter.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	questionsRouter.Use(middleware.ContentType(middleware.MediaTypeJSON))
	questionsRouter.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	handlers.NewQuestionHandler(deps.Stores.Questions, deps.Stores.Categories, jobs, logger).RegisterRoutes(questionsRouter)

	categoriesRouter := apiRouter.PathPrefix("/categories").Subrouter()
	categoriesRouter.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	categoriesRouter.Use(middleware.ContentType(middleware.MediaTypeJSON))
	categoriesRouter.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	handlers.NewCategoryHandler(deps.Stores.Categories, logger).RegisterRoutes(categoriesRouter)

	// Import accepts CSV and larger bodies
	transferRouter := apiRouter.NewRoute().Subrouter()
	transferRouter.Use(middleware.MaxRequestSize(middleware.DefaultMaxImportSize))
	transferRouter.Use(middleware.ContentType(middleware.MediaTypeJSON, middleware.MediaTypeCSV))
	transferRouter.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	handlers.NewTransferHandler(deps.Stores.Questions, deps.Stores.Categories, logger).RegisterRoutes(transferRouter)

	syncRouter := apiRouter.NewRoute().Subrouter()
	syncRouter.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	syncRouter.Use(middleware.ContentType(middleware.MediaTypeJSON))
	syncRouter.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	handlers.NewSyncHandler(deps.Session, deps.Scheduler, logger).RegisterRoutes(syncRouter)

	var observer handlers.AIObserver
	if deps.Collector != nil {
		observer = deps.Collector
	}
	aiRouter := apiRouter.PathPrefix("/ai").Subrouter()
	aiRouter.Use(rateLimitMW)
	aiRouter.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	aiRouter.Use(middleware.ContentType(middleware.MediaTypeJSON))
	aiRouter.Use(middleware.Timeout(middleware.DefaultAIRequestTimeout))
	handlers.NewAIHandler(deps.Generator, deps.Chat, observer, logger).RegisterRoutes(aiRouter)

	// Preflight requests; CORS has already written the headers
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r, nil
}
