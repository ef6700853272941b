package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/config"
	"github.com/avancea/ritmo/internal/database"
	"github.com/avancea/ritmo/internal/handlers"
	"github.com/avancea/ritmo/internal/logger"
	"github.com/avancea/ritmo/internal/middleware"
	"github.com/avancea/ritmo/internal/queue"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/telemetry"
)

const (
	serviceName = "ritmo-server"

	shutdownTimeout   = 30 * time.Second
	requestTimeout    = 60 * time.Second
	maxRequestBody    = 1 << 20 // 1 MB
	dlqSweepInterval  = 1 * time.Hour
	dlqRetention      = 24 * time.Hour
	rabbitMaxRetries  = 10
	rabbitBaseBackoff = 1 * time.Second
	rabbitMaxBackoff  = 30 * time.Second
)

var version = "dev"

func main() {
	debugMode := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if err := run(*debugMode); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(debugMode bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.NewProductionLogger(debugMode || cfg.ServerDebugMode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, serviceName, cfg.OTELEndpoint)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
				log.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
		log.Info("tracing enabled", zap.String("endpoint", cfg.OTELEndpoint))
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	store := database.NewStore(db)

	redisClient, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	jobQueue, err := connectQueue(ctx, cfg.RabbitMQURL, log)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer jobQueue.Close()

	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		gc := queue.NewGarbageCollector(dlqPurger, dlqSweepInterval, dlqRetention, log)
		go func() {
			if err := gc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("dead letter garbage collector stopped", zap.Error(err))
			}
		}()
	}

	router, err := buildRouter(ctx, cfg, store, db, jobQueue, redisClient, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   requestTimeout + 5*time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("port", cfg.ServerPort),
			zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// connectQueue retries the RabbitMQ connection with exponential backoff.
// The broker often comes up a few seconds after the server in
// docker-compose deployments.
func connectQueue(ctx context.Context, amqpURL string, log *zap.Logger) (queue.JobQueue, error) {
	backoff := rabbitBaseBackoff
	var lastErr error
	for attempt := 1; attempt <= rabbitMaxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(amqpURL)
		if err == nil {
			return jobQueue, nil
		}
		lastErr = err
		log.Warn("RabbitMQ connection failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > rabbitMaxBackoff {
			backoff = rabbitMaxBackoff
		}
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", rabbitMaxRetries, lastErr)
}

func buildRouter(ctx context.Context, cfg *config.Config, store storage.Store, db *database.DB, jobQueue queue.JobQueue, redisClient *redis.Client, log *zap.Logger) (*mux.Router, error) {
	router := mux.NewRouter()

	if cfg.OTELEnabled {
		router.Use(otelmux.Middleware(serviceName))
	}

	// Order matters: security headers and CORS run before anything that
	// can short-circuit the request, logging wraps the full chain.
	router.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.MaxRequestSize(maxRequestBody))
	router.Use(middleware.ContentType)
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.Logging(log))

	rateLimit, err := middleware.RateLimit(redisClient, "")
	if err != nil {
		return nil, fmt.Errorf("failed to build rate limiter: %w", err)
	}

	authenticator, err := middleware.NewAuthenticator(ctx, store, cfg.AuthJWKSURL, cfg.AuthIssuer, cfg.AuthDisabled, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build authenticator: %w", err)
	}

	// Preflight requests short-circuit before auth.
	router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

	health := handlers.NewHealthChecker(db, jobQueue)
	router.HandleFunc("/healthz", health.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"version":%q}`, version)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(rateLimit)
	api.Use(authenticator.Middleware())
	api.Use(middleware.Audit(log))

	handlers.NewProjectHandler(store).RegisterRoutes(api.PathPrefix("/projects").Subrouter())
	handlers.NewInboxTaskHandler(store).RegisterRoutes(api.PathPrefix("/inbox-tasks").Subrouter())
	handlers.NewBigPlanHandler(store).RegisterRoutes(api.PathPrefix("/big-plans").Subrouter())
	handlers.NewHabitHandler(store).RegisterRoutes(api.PathPrefix("/habits").Subrouter())
	handlers.NewChoreHandler(store).RegisterRoutes(api.PathPrefix("/chores").Subrouter())
	handlers.NewMetricHandler(store).RegisterRoutes(api.PathPrefix("/metrics").Subrouter())
	handlers.NewPersonHandler(store).RegisterRoutes(api.PathPrefix("/persons").Subrouter())
	handlers.NewVacationHandler(store).RegisterRoutes(api.PathPrefix("/vacations").Subrouter())
	handlers.NewSlackTaskHandler(store).RegisterRoutes(api.PathPrefix("/slack-tasks").Subrouter())
	handlers.NewEmailTaskHandler(store).RegisterRoutes(api.PathPrefix("/email-tasks").Subrouter())
	handlers.NewGenHandler(store, log).RegisterRoutes(api.PathPrefix("/gen").Subrouter())
	handlers.NewReportHandler(store, redisClient, cfg.ReportCacheTTL, log).RegisterRoutes(api.PathPrefix("/report").Subrouter())

	return router, nil
}
