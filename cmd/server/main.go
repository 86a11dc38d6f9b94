package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/analytics"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/cache"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/events"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/gateway"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/httpapi"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/orders"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/payment"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/repository"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/settlement"
)

type Config struct {
	HTTPPort          string
	BackendBaseURL    string
	RedisAddr         string
	KafkaBrokers      []string
	Postgres          repository.Credentials
	RequestTimeout    time.Duration
	BackendTimeout    time.Duration
	ShutdownTimeout   time.Duration
	VerifyMaxAttempts int
	VerifyBackoff     time.Duration
	VerifyMaxRetries  int
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:9000/api"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:   strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		Postgres: repository.Credentials{
			Host:              getEnv("PG_HOST", "localhost"),
			Port:              getEnvInt("PG_PORT", 5432),
			User:              getEnv("PG_USER", "postgres"),
			Password:          getEnv("PG_PASSWORD", "postgres"),
			DBName:            getEnv("PG_DBNAME", "checkout"),
			MigrationsDirPath: getEnv("PG_MIGRATIONS_DIR", "./internal/repository/migrations"),
		},
		RequestTimeout:    30 * time.Second,
		BackendTimeout:    10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		VerifyMaxAttempts: 3,
		VerifyBackoff:     2 * time.Second,
		VerifyMaxRetries:  3,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	store, err := repository.NewPostgresStore(&cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer store.Close()

	if err := store.RunMigrations(&cfg.Postgres); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	snapshotCache := cache.NewRedisCache(redisClient)

	publisher := events.NewKafkaPublisher(cfg.KafkaBrokers...)
	defer publisher.Close()

	backend := gateway.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)

	reconciler := settlement.NewReconciler(backend, publisher, cfg.VerifyMaxAttempts, cfg.VerifyBackoff)
	orchestrator := orders.NewOrchestrator(backend)
	controller := payment.NewController(store, backend, reconciler, cfg.VerifyMaxRetries)
	analyticsService := analytics.NewService(backend, snapshotCache)

	checkoutHandler := httpapi.NewCheckoutHandler(orchestrator, controller, cfg.RequestTimeout)
	paymentsHandler := httpapi.NewPaymentsHandler(controller, backend, cfg.RequestTimeout)
	analyticsHandler := httpapi.NewAnalyticsHandler(analyticsService, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/checkout", checkoutHandler.Checkout)
		r.Post("/orders/{order_id}/payments", paymentsHandler.StartPayment)
		r.Route("/payments", func(r chi.Router) {
			r.Post("/events", paymentsHandler.HandleEvent)
			r.Post("/{session_id}/verify", paymentsHandler.RetryVerification)
			r.Post("/{session_id}/abandon", paymentsHandler.Abandon)
			r.Post("/{session_id}/retry-load", paymentsHandler.RetryLoad)
		})
		r.Get("/sellers/{seller_id}/metrics", analyticsHandler.SellerMetrics)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "checkout-api"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("checkout service starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
