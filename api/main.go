package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/siialab/signalscope/api/config"
	"github.com/siialab/signalscope/api/handlers"
	"github.com/siialab/signalscope/api/metrics"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// shuttingDown is set to true when shutdown signal is received.
	// Readiness probe checks this to immediately return 503.
	shuttingDown atomic.Bool
)

const (
	defaultMetricsAddr = "0.0.0.0:0"
)

func main() {
	metricsAddrFlag := flag.String("metrics-addr", defaultMetricsAddr, "Address to listen on for prometheus metrics")
	flag.Parse()

	log.Printf("Starting signalscope-api version=%s commit=%s date=%s", version, commit, date)
	handlers.SetBuildInfo(version, commit, date)

	// Load .env files if they exist
	// godotenv doesn't override existing env vars, so later files don't overwrite earlier ones
	_ = godotenv.Load()           // .env in current working directory
	_ = godotenv.Load("api/.env") // api/.env when running from repo root

	// Initialize Sentry for error tracking (optional - gracefully no-op if DSN not set)
	sentryDSN := os.Getenv("SENTRY_DSN")
	if sentryDSN != "" {
		sentryEnv := os.Getenv("SENTRY_ENVIRONMENT")
		if sentryEnv == "" {
			sentryEnv = "development"
		}
		release := version
		if commit != "none" {
			release = version + "-" + commit
		}
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         sentryDSN,
			Environment: sentryEnv,
			Release:     release,
		})
		if err != nil {
			log.Printf("Warning: Sentry initialization failed: %v", err)
		} else {
			log.Printf("Sentry initialized (env=%s, release=%s)", sentryEnv, release)
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Load ClickHouse configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	defer config.Close()

	// Load PostgreSQL
	if err := config.LoadPostgres(); err != nil {
		log.Fatalf("Failed to load PostgreSQL: %v", err)
	}
	defer config.ClosePostgres()

	// Start metrics server
	var metricsServer *http.Server
	if *metricsAddrFlag != "" {
		metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
		listener, err := net.Listen("tcp", *metricsAddrFlag)
		if err != nil {
			log.Printf("Failed to start prometheus metrics server listener: %v", err)
		} else {
			log.Printf("Prometheus metrics server listening on %s", listener.Addr().String())
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			metricsServer = &http.Server{Handler: mux}
			go func() {
				if err := metricsServer.Serve(listener); err != nil && err != http.ErrServerClosed {
					log.Printf("Metrics server error: %v", err)
				}
			}()
		}
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	// Sentry middleware before Recoverer so panics are captured
	if sentryDSN != "" {
		sentryHandler := sentryhttp.New(sentryhttp.Options{
			Repanic: true,
		})
		r.Use(sentryHandler.Handle)
	}

	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// CORS configuration - origins from env or allow all
	corsOrigins := []string{"*"}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsOrigins = strings.Split(origins, ",")
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// Immediately fail if shutting down
		if shuttingDown.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("shutting down"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := config.DB.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("clickhouse connection failed: " + err.Error()))
			return
		}
		if err := config.PgPool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("postgres connection failed: " + err.Error()))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/api/version", handlers.GetVersion)

	// Performance measure routes
	r.Get("/api/measures", handlers.GetMeasures)
	r.Get("/api/measures/facets", handlers.GetMeasureFacets)

	// Safety ranking routes
	r.Get("/api/ranking", handlers.GetRanking)
	r.Get("/api/ranking/intervals", handlers.GetRankingIntervals)

	// Timing recommendation routes
	r.Get("/api/recommendation", handlers.GetRecommendation)
	r.Get("/api/recommendation/panel", handlers.GetRecommendationPanel)

	// Intersection registry routes
	r.Get("/api/intersections", handlers.GetIntersections)
	r.Get("/api/intersections/{signalID}", handlers.GetIntersection)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("API server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("Received signal %v, shutting down gracefully...", sig)

	// Immediately mark as shutting down so readiness probe returns 503
	shuttingDown.Store(true)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown error: %v", err)
	} else {
		log.Println("Server stopped gracefully")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Printf("Metrics server shutdown error: %v", err)
		} else {
			log.Println("Metrics server stopped gracefully")
		}
	}
}
