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

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/irfndi/fundamentals-ai-go/internal/config"
	"github.com/irfndi/fundamentals-ai-go/internal/database"
	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/metrics"
	"github.com/irfndi/fundamentals-ai-go/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "correlate":
			if err := runCorrelate(); err != nil {
				fmt.Fprintf(os.Stderr, "Correlation run failed: %v\n", err)
				os.Exit(1)
			}
			return
		case "admin-token":
			if err := runAdminToken(os.Args[2:], os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Token generation failed: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

// runtimeDeps are the process-level resources both commands start from.
type runtimeDeps struct {
	cfg      *config.Config
	logger   *logging.StandardLogger
	provider *telemetry.Provider
	db       *database.PostgresDB
	redis    *database.RedisClient
}

// bootstrap loads configuration and opens telemetry, PostgreSQL and Redis.
// A Redis failure is logged and the process continues without a cache.
func bootstrap(ctx context.Context) (*runtimeDeps, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg)
	logger.WithService(serviceName(cfg)).Info("Configuration loaded",
		"environment", cfg.Environment,
		"recompute_interval", cfg.Analysis.RecomputeInterval,
	)

	provider, err := telemetry.Init(ctx, telemetryConfig(cfg))
	if err != nil {
		logger.WithError(err).Warn("Tracing disabled")
		provider = &telemetry.Provider{}
	}

	connLog := logrus.New()
	connLog.SetFormatter(&logrus.JSONFormatter{})
	connLog.SetLevel(logging.ParseLogrusLevel(cfg.LogLevel))

	db, err := database.NewPostgresConnection(ctx, cfg.Database, connLog)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient, err := database.NewRedisConnection(ctx, cfg.Redis, connLog)
	if err != nil {
		logger.WithError(err).Warn("Failed to connect to Redis - continuing without cache")
		redisClient = nil
	}

	return &runtimeDeps{cfg: cfg, logger: logger, provider: provider, db: db, redis: redisClient}, nil
}

func (d *runtimeDeps) close(ctx context.Context) {
	if d.redis != nil {
		d.redis.Close()
	}
	d.db.Close()
	if err := d.provider.Shutdown(ctx); err != nil {
		d.logger.WithError(err).Warn("Tracer shutdown failed")
	}
	_ = d.logger.Shutdown(ctx)
}

func newLogger(cfg *config.Config) *logging.StandardLogger {
	if cfg.Telemetry.LogsEnabled {
		return logging.NewStandardOTLPLogger(logging.OTLPConfig{
			Endpoint:       cfg.Telemetry.OTLPEndpoint,
			ServiceName:    serviceName(cfg),
			ServiceVersion: telemetry.ServiceVersion,
			Environment:    cfg.Environment,
			LogLevel:       cfg.LogLevel,
		})
	}
	return logging.NewStandardLogger(cfg.LogLevel, cfg.Environment)
}

func serviceName(cfg *config.Config) string {
	if cfg.Telemetry.ServiceName != "" {
		return cfg.Telemetry.ServiceName
	}
	return telemetry.ServiceName
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	return telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		ServiceName:  serviceName(cfg),
		Environment:  cfg.Environment,
	}
}

// run starts the HTTP server and the recompute scheduler, then blocks until
// SIGINT or SIGTERM.
func run() error {
	ctx := context.Background()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	cfg, logger := rt.cfg, rt.logger

	app := newApplication(rt, metrics.New())
	app.correlationJob.Start(cfg.Analysis.RecomputeEvery())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.LogStartup(serviceName(cfg), telemetry.ServiceVersion, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	reason := "signal"
	select {
	case sig := <-quit:
		reason = sig.String()
	case err := <-serverErr:
		logger.WithError(err).Error("HTTP server failed")
		reason = "server_error"
	}
	logger.LogShutdown(serviceName(cfg), reason)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	app.correlationJob.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	rt.close(shutdownCtx)

	if reason == "server_error" {
		return errors.New("http server stopped unexpectedly")
	}
	return nil
}
