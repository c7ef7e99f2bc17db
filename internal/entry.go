// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/vaultmeta/internal/api"
	"github.com/starford/vaultmeta/internal/index"
	"github.com/starford/vaultmeta/internal/mcpserver"
	"github.com/starford/vaultmeta/internal/metaservice"
	"github.com/starford/vaultmeta/internal/sse"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("watch", cfg.Vault.Watch),
		slog.Bool("prewarm", cfg.Vault.Prewarm),
		slog.String("log_level", cfg.App.LogLevel.String()))

	st, err := buildStack(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(st.service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","cached":%d}`, st.cache.Len())
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Vault.Prewarm {
		g.Go(func() error {
			st.prewarm(gCtx, cfg.Vault.PrewarmConcurrency, logger)
			return nil
		})
	}

	if cfg.Vault.Watch {
		g.Go(func() error {
			w := &index.Watcher{
				DB:       st.db,
				Store:    st.store,
				Root:     st.store.Root(),
				Cache:    st.cache,
				Logger:   logger,
				OnChange: broker.PublishDocumentEvent,
			}
			if err := w.Run(gCtx); err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Stop the watcher and prewarm when shutdown came from a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they do
// not corrupt the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{withStderrLogger()}, opts...)
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	st, err := buildStack(app.config, app.logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if app.config.Vault.Prewarm {
		st.prewarm(ctx, app.config.Vault.PrewarmConcurrency, app.logger)
	}
	return mcpserver.New(st.service, app.version).ServeStdio()
}

// Lookup answers a single metadata query and exits.
func Lookup(ctx context.Context, path, typ string, opts ...Option) (*metaservice.Lookup, error) {
	opts = append([]Option{withStderrLogger()}, opts...)
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	st, err := buildStack(app.config, app.logger)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.service.GetMetadata(ctx, path, typ)
}

// withStderrLogger sends the default logger to stderr.
func withStderrLogger() Option {
	return func(a *application) {
		a.stderr = true
	}
}
