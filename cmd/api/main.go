// Package main is the entry point for the HR document platform API server.
//
// It loads configuration, connects the PostgreSQL pool, wires the repositories
// and domain services into the HTTP chassis (middleware, routing, health
// checks), and serves the versioned API until a shutdown signal arrives.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"hrdocs/internal/api/handlers"
	"hrdocs/internal/compliance"
	"hrdocs/internal/config"
	"hrdocs/internal/core"
	"hrdocs/internal/db"
	"hrdocs/internal/entitlements"
	"hrdocs/internal/license"
	"hrdocs/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("hrdocs API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}

	collector, err := newMetricsCollector(ctx, cfg, logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("initializing metrics: %w", err)
	}

	// Repositories share the pool; each owns its table.
	codes := db.NewLicenseCodeRepository(pool)
	tenants := db.NewTenantRepository(pool)
	employees := db.NewEmployeeRepository(pool)
	documents := db.NewDocumentRepository(pool)

	catalog := entitlements.NewStaticCatalog()
	gatekeeper := entitlements.NewGatekeeper(catalog)
	engine := compliance.NewEngine()
	licenseService := license.NewService(codes, tenants, catalog, collector, logger)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Metrics = collector
	srv.HealthProbes = []core.HealthProbe{db.NewHealthProbe(pool)}
	srv.RegisterCloser(func() error {
		pool.Close()
		return nil
	})

	licenseHandler := handlers.NewLicenseHandler(licenseService, srv.Validator, logger)
	planHandler := handlers.NewPlanHandler(tenants, employees, gatekeeper, logger)
	notificationsHandler := handlers.NewNotificationsHandler(
		tenants, employees, documents, gatekeeper, engine, collector, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		licenseHandler.RegisterRoutes,
		planHandler.RegisterRoutes,
		notificationsHandler.RegisterRoutes,
	)

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// newMetricsCollector builds the CloudWatch collector, or a no-op collector
// when metrics are disabled. AWS_ENDPOINT_URL redirects publishing to
// LocalStack during local development.
func newMetricsCollector(ctx context.Context, cfg *config.Config, logger *slog.Logger) (metrics.Collector, error) {
	if !cfg.AWS.MetricsEnabled {
		logger.Info("metrics publishing disabled")
		return metrics.Noop{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})
	return metrics.NewCloudWatchCollector(client, logger), nil
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: false,
	})
	return slog.New(handler)
}
