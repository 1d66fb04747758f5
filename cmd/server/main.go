package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightplan-service/internal/app"
	"flightplan-service/internal/infrastructure/config"
	"flightplan-service/internal/interface/httpapi"
	"flightplan-service/pkg/logger"
	"flightplan-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("production").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.AppEnv).With("version", cfg.AppVersion)
	log.Info("Starting Flight Plan Service", "env", cfg.AppEnv, "store", cfg.StoreDriver, "cache", cfg.CacheDriver)

	err = run(cfg, log)
	if err != nil {
		log.Error("Flight Plan Service failed", "error", err)
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until a signal arrives. Resources opened here are released
// before it returns.
func run(cfg *config.Config, log logger.Logger) error {
	if err := cfg.ValidateAuth(); err != nil {
		return fmt.Errorf("invalid auth configuration: %w", err)
	}

	// Stop on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics("flightplan", registry)

	// Set up stores
	var closers app.Closers
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if cerr := closers.Close(closeCtx); cerr != nil {
			log.Error("Failed to release resources", "error", cerr)
		}
		log.Info("Flight Plan Service stopped")
	}()

	store, storeClosers, err := app.NewFlightPlanStore(ctx, cfg, log, m)
	closers = append(closers, storeClosers...)
	if err != nil {
		return fmt.Errorf("failed to open flight plan store: %w", err)
	}

	users, userClosers, err := app.NewUserService(ctx, cfg, log)
	closers = append(closers, userClosers...)
	if err != nil {
		return fmt.Errorf("failed to open user store: %w", err)
	}

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.RouterOptions{
		Store:          store,
		Users:          users,
		Logger:         log,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown once a signal arrives or the listener fails
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
