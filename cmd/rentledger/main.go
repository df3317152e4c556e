package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"rentledger/internal/amqp"
	"rentledger/internal/analysis"
	"rentledger/internal/analysis/gemini"
	"rentledger/internal/cli"
	"rentledger/internal/core"
	apphttp "rentledger/internal/http"
	"rentledger/internal/ledger"
	"rentledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	// Persistence backend.
	var (
		store   services.Store
		cleanup func()
	)
	switch cfg.DataBackend {
	case "memory":
		store = ledger.NewMemStore(nil)
		cleanup = func() {}
		logger.Info("Initialized memory backend")
	default:
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		store = repo
		cleanup = func() {
			if err := repo.Close(); err != nil {
				logger.Error("Failed to close SQLite repository", "error", err)
			}
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	}

	// AMQP publisher for the cloud-sync pipeline. Optional: without it
	// the worker's pending scan still picks mutations up.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" && cfg.CloudSyncEnabled() {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, sync messages disabled", "error", err)
		}
	}

	svc := services.NewBillingService(store, amqpClient)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close billing service", "error", err)
		}
	}()

	// Seed the current period so a fresh install is usable immediately.
	if created, err := svc.OpenPeriod(context.Background(), core.CurrentPeriod()); err != nil {
		logger.Error("Failed to open current period", "error", err)
	} else if created > 0 {
		logger.Info("Opened current period", "created", created)
	}

	// AI analysis backend, with a fixed fallback reply when unavailable.
	var analyzer analysis.Analyzer
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewFromEnv()
		if err != nil {
			logger.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		analyzer = analysis.WithFallback(client)
		logger.Info("Gemini analysis enabled")
	} else {
		analyzer = analysis.WithFallback(unavailableAnalyzer{})
		logger.Info("Gemini disabled - no GEMINI_API_KEY provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, analyzer)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cleanup()
	})

	logger.Info("Starting rentledger server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// unavailableAnalyzer stands in when no AI backend is configured; the
// fallback wrapper turns its error into the standard user-facing reply.
type unavailableAnalyzer struct{}

func (unavailableAnalyzer) Analyze(ctx context.Context, snap analysis.Snapshot) (string, error) {
	return "", errors.New("no analysis backend configured")
}
