// Package testutil provides shared test helpers for setting up vaults,
// indexes and the metadata stack.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/vaultmeta/internal/frontmatter"
	"github.com/starford/vaultmeta/internal/index"
	"github.com/starford/vaultmeta/internal/metadata"
	"github.com/starford/vaultmeta/internal/metaservice"
	"github.com/starford/vaultmeta/internal/storage"
)

// Logger returns a logger that only reports errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestDB creates a temporary SQLite index that is automatically closed.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory populated with files
// (vault-relative path → content).
func TestVault(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	for rel, content := range files {
		WriteFile(t, vaultDir, rel, content)
	}
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// WriteFile writes content to rel under root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestService wires a synced index, a frontmatter store and a registry
// over a temporary vault.
func TestService(t *testing.T, files map[string]string) (*metaservice.Service, string) {
	t.Helper()
	vaultDir, store := TestVault(t, files)
	db := TestDB(t)
	logger := Logger()
	if err := index.Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}
	cache := frontmatter.NewStore(store, logger)
	reg := metadata.NewRegistry(
		metadata.NewFrontmatterProvider(cache),
		metadata.NewNativeProvider(db, logger),
	)
	return metaservice.NewService(reg, cache, store), vaultDir
}
