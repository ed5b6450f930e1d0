package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/sheets/internal/config"
	"github.com/JonMunkholm/sheets/internal/core"
	"github.com/JonMunkholm/sheets/internal/logging"
	"github.com/JonMunkholm/sheets/internal/sheetio"
	"github.com/JonMunkholm/sheets/internal/store"
	"github.com/JonMunkholm/sheets/internal/web"
	"github.com/joho/godotenv"
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
		"store", cfg.Store.Driver,
		"session_max", cfg.Session.Max,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	sessionStore, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open session store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	codec := sheetio.NewCodec(sheetio.Options{
		CSVCharset:   cfg.Import.CSVCharset,
		MaxUnzipSize: cfg.Import.MaxUnzipSize,
	})
	service := core.NewService(sessionStore, codec, codec, core.ServiceConfig{
		IdleTimeout:          cfg.Session.IdleTimeout,
		MaxSessions:          cfg.Session.Max,
		ImportTimeout:        cfg.Import.Timeout,
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		ImportWait:           cfg.Import.MaxWaitTime,
		AuditRetain:          cfg.Session.AuditRetain,
		StoreRetention:       cfg.Store.Retention,
	})

	formats := sheetio.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name
	}
	slog.Info("formats registered", "formats", strings.Join(names, ","))

	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSweeper(jobCtx, cfg.Session.SweepInterval)

	// Graceful shutdown
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

		// Wait for imports still parsing (with timeout)
		if status := service.ImportStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			}
		}

		if err := service.FlushAll(shutdownCtx); err != nil {
			slog.Error("failed to save sessions", "error", err)
		} else {
			slog.Info("sessions saved", "count", service.SessionCount())
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		cancelJobs()
		closeStore()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// openStore builds the configured session store. The returned close func
// is always safe to call.
func openStore(ctx context.Context, cfg config.StoreConfig) (core.SessionStore, func(), error) {
	switch cfg.Driver {
	case "none":
		slog.Warn("session persistence disabled, idle sessions will be dropped")
		return nil, func() {}, nil

	case "memory":
		return store.NewMemory(), func() {}, nil

	case "postgres":
		pool, err := store.Connect(ctx, cfg.URL, cfg.MaxConns, cfg.MinConns, cfg.MaxConnLifetime, cfg.MaxConnIdleTime)
		if err != nil {
			return nil, nil, err
		}

		// Log which database we connected to
		if u, err := url.Parse(cfg.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}

		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	}
	return nil, nil, errors.New("unknown store driver " + cfg.Driver)
}
