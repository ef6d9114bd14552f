package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/tableform/internal/config"
	"github.com/JonMunkholm/tableform/internal/core"
	"github.com/JonMunkholm/tableform/internal/core/forms" // Register built-in forms
	"github.com/JonMunkholm/tableform/internal/logging"
	"github.com/JonMunkholm/tableform/internal/storage"
	"github.com/JonMunkholm/tableform/internal/web"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
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

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"storage_driver", cfg.Storage.Driver,
		"session_ttl", cfg.Session.TTL,
		"submit_max_concurrent", cfg.Session.MaxConcurrentSubmits,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Forms.File != "" {
		n, err := forms.LoadFile(cfg.Forms.File)
		if err != nil {
			return err
		}
		slog.Info("form definitions loaded", "file", cfg.Forms.File, "forms", n)
	}
	slog.Info("forms registered", "count", core.FormCount())

	store, err := storage.Open(ctx, storage.Options{
		Driver:          cfg.Storage.Driver,
		URL:             cfg.Storage.URL,
		MaxConns:        cfg.Storage.MaxConns,
		MinConns:        cfg.Storage.MinConns,
		MaxConnLifetime: cfg.Storage.MaxConnLifetime,
		MaxConnIdleTime: cfg.Storage.MaxConnIdleTime,
		Path:            cfg.Storage.SQLitePath,
		Migrate:         cfg.Storage.Migrate,
	})
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("storage ready", "driver", cfg.Storage.Driver)

	service := core.NewService(store, core.Options{
		SessionTTL:           cfg.Session.TTL,
		MaxSessions:          cfg.Session.MaxSessions,
		MaxConcurrentSubmits: cfg.Session.MaxConcurrentSubmits,
		SubmitWait:           cfg.Session.SubmitWait,
	})
	server := web.NewServer(service, cfg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		service.StartMaintenance(gctx, core.MaintenanceConfig{
			Interval:       cfg.Session.ReapInterval,
			AuditRetention: cfg.Session.AuditRetention,
		})
		return nil
	})

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Submits still writing after the last response are waited for.
		if n := service.ActiveSubmits(); n > 0 {
			slog.Info("waiting for submits to complete", "active", n)
			if err := service.WaitForSubmits(shutdownCtx); err != nil {
				slog.Warn("submits did not complete in time", "error", err)
			}
		}
		return nil
	})

	return g.Wait()
}
