// Package metaservice coordinates the registry, the frontmatter cache and
// vault storage for the API and MCP surfaces.
package metaservice

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/starford/vaultmeta/internal/apperr"
	"github.com/starford/vaultmeta/internal/frontmatter"
	"github.com/starford/vaultmeta/internal/metadata"
	"github.com/starford/vaultmeta/internal/storage"
)

// Lookup is the answer to a metadata query.
type Lookup struct {
	Path  string `json:"path"`
	Type  string `json:"type"`
	Found bool   `json:"found"`
	Value any    `json:"value"`
}

// DocumentItem is a lightweight item in a list response.
type DocumentItem struct {
	Path      string    `json:"path"`
	Extension string    `json:"extension"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CacheStats describes the frontmatter cache.
type CacheStats struct {
	Entries int `json:"entries"`
}

// Service answers metadata queries for the outer surfaces.
type Service struct {
	registry *metadata.Registry
	cache    *frontmatter.Store
	store    storage.Provider
}

// NewService creates a new metadata service.
func NewService(registry *metadata.Registry, cache *frontmatter.Store, store storage.Provider) *Service {
	return &Service{registry: registry, cache: cache, store: store}
}

// GetMetadata pre-warms and reads the metadata for (path, typ). It returns
// apperr.ErrNotApplicable when no provider handles the pair.
func (s *Service) GetMetadata(ctx context.Context, path, typ string) (*Lookup, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	if typ == "" {
		typ = metadata.TypeFrontmatter
	}
	v, handled := s.registry.Resolve(ctx, path, typ)
	if !handled {
		return nil, apperr.ErrNotApplicable
	}
	return &Lookup{Path: path, Type: typ, Found: v != nil, Value: v}, nil
}

// ListDocuments lists vault documents under folder.
func (s *Service) ListDocuments(_ context.Context, folder string) ([]DocumentItem, error) {
	docs, err := s.store.List(folder)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, apperr.ErrNotFound
		case errors.Is(err, storage.ErrInvalidPath):
			return nil, apperr.ErrInvalidPath
		}
		return nil, err
	}
	items := make([]DocumentItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, DocumentItem{
			Path:      d.Path,
			Extension: d.Extension,
			Size:      d.Size,
			UpdatedAt: d.ModTime,
		})
	}
	return items, nil
}

// Invalidate drops the cached header of one document.
func (s *Service) Invalidate(path string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	s.cache.Invalidate(path)
	return nil
}

// InvalidateAll drops every cached header.
func (s *Service) InvalidateAll() {
	s.cache.InvalidateAll()
}

// CacheStats reports the frontmatter cache size.
func (s *Service) CacheStats() CacheStats {
	return CacheStats{Entries: s.cache.Len()}
}

func validatePath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") {
		return apperr.ErrInvalidPath
	}
	return nil
}
