package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/vaultmeta/internal/frontmatter"
	"github.com/starford/vaultmeta/internal/index"
	"github.com/starford/vaultmeta/internal/metadata"
	"github.com/starford/vaultmeta/internal/metaservice"
	"github.com/starford/vaultmeta/internal/models"
	"github.com/starford/vaultmeta/internal/storage"
)

// stack is the wired metadata lookup layer. Provider order is fixed here:
// the .mdx frontmatter provider first, then the native index.
type stack struct {
	store    *storage.FS
	db       *index.DB
	cache    *frontmatter.Store
	registry *metadata.Registry
	service  *metaservice.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		out := os.Stdout
		if app.stderr {
			out = os.Stderr
		}
		app.logger = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	return app, nil
}

// buildStack opens storage and the index, syncs the index and registers
// the providers.
func buildStack(cfg *Config, logger *slog.Logger) (*stack, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path, storage.WithIgnore(cfg.Vault.Ignore...))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	cache := frontmatter.NewStore(store, logger)
	registry := metadata.NewRegistry(
		metadata.NewFrontmatterProvider(cache),
		metadata.NewNativeProvider(db, logger),
	)
	return &stack{
		store:    store,
		db:       db,
		cache:    cache,
		registry: registry,
		service:  metaservice.NewService(registry, cache, store),
	}, nil
}

// prewarm parses every .mdx header in the vault.
func (s *stack) prewarm(ctx context.Context, concurrency int, logger *slog.Logger) {
	docs, err := s.store.List("")
	if err != nil {
		logger.Warn("prewarm: list failed", slog.String("error", err.Error()))
		return
	}
	var paths []string
	for _, d := range docs {
		if d.Extension == models.ExtMDX {
			paths = append(paths, d.Path)
		}
	}
	if err := s.registry.PrewarmAll(ctx, paths, metadata.TypeFrontmatter, concurrency); err != nil {
		logger.Warn("prewarm: interrupted", slog.String("error", err.Error()))
		return
	}
	logger.Info("prewarm: done", slog.Int("documents", len(paths)), slog.Int("cached", s.cache.Len()))
}

func (s *stack) Close() error {
	return s.db.Close()
}
