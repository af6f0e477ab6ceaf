package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/fileconv/internal/config"
	"github.com/JonMunkholm/fileconv/internal/core"
	"github.com/JonMunkholm/fileconv/internal/logging"
	"github.com/JonMunkholm/fileconv/internal/metrics"
	"github.com/JonMunkholm/fileconv/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	closeLogs := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.SeqURL)
	defer closeLogs()

	slog.Info("configuration loaded", "config", cfg.String())

	var m *metrics.Metrics
	var opts []core.ServiceOption
	if cfg.Metrics.Enabled {
		m = metrics.New()
		opts = append(opts, core.WithObserver(m))
	}

	service := core.NewService(core.ServiceConfig{
		StoreTTL:      cfg.Store.TTL,
		StoreMaxFiles: cfg.Store.MaxFiles,
		MaxConcurrent: cfg.Pipeline.MaxConcurrent,
		MaxWait:       cfg.Pipeline.MaxWait,
		Limits: core.Limits{
			PreviewRows:  cfg.Pipeline.PreviewRows,
			ChartMaxRows: cfg.Pipeline.ChartMaxRows,
		},
	}, opts...)

	server := web.NewServer(service, cfg, m)

	// Background jobs stop when jobCtx is cancelled
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSweeper(jobCtx, cfg.Store.SweepInterval)

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Let evaluations that outlived their requests finish
		runs := service.Limiter().Status()
		if runs.Active > 0 {
			slog.Info("waiting for evaluations to complete", "active", runs.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("evaluations did not complete in time", "error", err)
			}
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		closeLogs()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
