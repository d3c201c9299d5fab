package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/tomorrow-architect/planner-api/internal/clock"
	"github.com/tomorrow-architect/planner-api/internal/config"
	"github.com/tomorrow-architect/planner-api/internal/database"
	"github.com/tomorrow-architect/planner-api/internal/handlers"
	"github.com/tomorrow-architect/planner-api/internal/logger"
	"github.com/tomorrow-architect/planner-api/internal/middleware"
	"github.com/tomorrow-architect/planner-api/internal/planstore"
	"github.com/tomorrow-architect/planner-api/internal/services/ai"
	"github.com/tomorrow-architect/planner-api/internal/telemetry"
)

const serviceName = "planner-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	newLogger := logger.NewProductionLogger
	if cfg.ServerLogMode == "development" {
		newLogger = logger.NewDevelopmentLogger
	}
	zapLogger, err := newLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("database_path", cfg.DatabasePath),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Optional tracing
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		zapLogger.Fatal("failed_to_open_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	snapshotRepo := database.NewSnapshotRepository(db)
	snapshotRepo.SetLogger(zapLogger)

	// Load the persisted collection (seed fallback on missing or corrupt
	// state) and point fresh installs' welcome task at the current tomorrow.
	snap := snapshotRepo.Load(context.Background())
	store := planstore.New(snap, snapshotRepo, zapLogger)
	window := clock.ResolveDayWindow(time.Now(), cfg.ReferenceOffsetMin, cfg.NightOwlCutoffHour)
	store.RetargetWelcomeTask(context.Background(), window.TomorrowKey)

	zapLogger.Info("plan_store_loaded",
		zap.Int("plan_count", len(snap.Plans)),
		zap.String("today", window.TodayKey),
	)

	advisor := createAdvisor(cfg, zapLogger, debugMode)

	planHandler := handlers.NewPlanHandler(store, cfg.ReferenceOffsetMin, cfg.NightOwlCutoffHour)
	windowHandler := handlers.NewWindowHandler(cfg.ReferenceOffsetMin, cfg.NightOwlCutoffHour)
	dataHandler := handlers.NewDataHandler(store, cfg.ReferenceOffsetMin, cfg.NightOwlCutoffHour, zapLogger)
	healthChecker := handlers.NewHealthChecker(db)

	r := mux.NewRouter()

	// Middleware, outermost first
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", healthChecker.VersionInfo).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	windowHandler.RegisterRoutes(apiRouter.PathPrefix("/window").Subrouter())
	planHandler.RegisterRoutes(apiRouter.PathPrefix("/plans").Subrouter())
	dataHandler.RegisterRoutes(apiRouter.PathPrefix("/data").Subrouter())

	// AI routes are rate limited per client IP; advisory calls are expensive
	if advisor != nil {
		rateLimitMW, err := middleware.RateLimit(cfg.AIRateLimit)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
		}
		aiRouter := apiRouter.PathPrefix("/ai").Subrouter()
		aiRouter.Use(rateLimitMW)
		scheduleHandler := handlers.NewScheduleHandler(store, advisor, cfg.ReferenceOffsetMin, cfg.NightOwlCutoffHour, zapLogger)
		scheduleHandler.RegisterRoutes(aiRouter)
	} else {
		zapLogger.Warn("ai_advisor_not_configured_ai_routes_disabled")
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.FrontendURL},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        c.Handler(r),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// createAdvisor builds the AI advisor from configuration. A missing API key
// disables advisory features rather than failing startup.
func createAdvisor(cfg *config.Config, logger *zap.Logger, debugMode bool) ai.Advisor {
	if cfg.OpenAIKey == "" {
		return nil
	}

	providerType := cfg.AIProvider
	if providerType == "" {
		providerType = "openai"
	}

	logger.Info("ai_advisor_configured",
		zap.String("provider", providerType),
		zap.String("model", cfg.AIModel),
		zap.String("api_key", ai.SanitizeAPIKey(cfg.OpenAIKey)),
	)

	// Create provider directly with logger support
	if providerType == "openai" {
		return ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, logger, debugMode)
	}

	// Fallback to registry for other providers (without logger)
	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry)

	advisor, err := registry.GetProvider(providerType, map[string]string{
		"api_key":  cfg.OpenAIKey,
		"model":    cfg.AIModel,
		"base_url": cfg.AIBaseURL,
	})
	if err != nil {
		logger.Warn("unknown_ai_provider_advisory_disabled",
			zap.String("provider", providerType),
			zap.Error(err),
		)
		return nil
	}
	return advisor
}
