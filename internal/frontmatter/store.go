package frontmatter

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/vaultmeta/internal/models"
)

// Ext is the only document extension the Store parses.
const Ext = models.ExtMDX

// Source is the document store the Store reads from.
type Source interface {
	Stat(path string) (*models.Document, error)
	Read(path string) ([]byte, error)
}

type entry struct {
	record  Record
	modTime time.Time
}

// Store parses .mdx headers and caches them per path. An entry is valid
// only while its modification time equals the document's current one.
//
// Concurrent Parse calls on the same path may both read the document; the
// later write wins. Results for one modification time are identical, so
// the duplicate work is tolerated rather than deduplicated.
type Store struct {
	src    Source
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]entry
}

// NewStore creates an empty Store reading from src.
func NewStore(src Source, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		src:    src,
		logger: logger,
		cache:  make(map[string]entry),
	}
}

// Parse returns the header of the document at path, reading it only when
// the cached entry is missing or stale. Failures are logged and reported
// as nil, and drop any entry left from an earlier modification time. A
// cancelled ctx leaves the cache untouched.
func (s *Store) Parse(ctx context.Context, path string) Record {
	if !strings.HasSuffix(path, Ext) {
		return nil
	}
	doc := s.resolve(path)
	if doc == nil {
		// Gone or unreadable: a stale entry must not outlive its document.
		s.Invalidate(path)
		return nil
	}

	s.mu.RLock()
	cached, ok := s.cache[path]
	s.mu.RUnlock()
	if ok && cached.modTime.Equal(doc.ModTime) {
		return cached.record
	}

	if err := ctx.Err(); err != nil {
		s.logger.Warn("frontmatter: parse skipped",
			slog.String("path", path), slog.String("error", err.Error()))
		return nil
	}

	data, err := s.src.Read(path)
	if err != nil {
		s.logger.Warn("frontmatter: read failed",
			slog.String("path", path), slog.String("error", err.Error()))
		s.Invalidate(path)
		return nil
	}
	record := Extract(string(data))

	s.mu.Lock()
	s.cache[path] = entry{record: record, modTime: doc.ModTime}
	s.mu.Unlock()

	s.logger.Debug("frontmatter: parsed",
		slog.String("path", path), slog.Bool("has_header", record != nil))
	return record
}

// CachedValue returns the cached record for path without parsing. It
// returns nil both when nothing is cached and when the document was
// cached as having no header.
func (s *Store) CachedValue(path string) Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[path].record
}

// EnsureCached parses path when it has no entry or the entry is stale.
func (s *Store) EnsureCached(ctx context.Context, path string) {
	if s.fresh(path) {
		return
	}
	s.Parse(ctx, path)
}

// Invalidate drops the entry for path.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	delete(s.cache, path)
	s.mu.Unlock()
}

// InvalidateAll drops every entry.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func (s *Store) fresh(path string) bool {
	s.mu.RLock()
	cached, ok := s.cache[path]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	doc := s.resolve(path)
	return doc != nil && cached.modTime.Equal(doc.ModTime)
}

// resolve returns the document for path, or nil when it is not an .mdx
// document the source knows about.
func (s *Store) resolve(path string) *models.Document {
	if !strings.HasSuffix(path, Ext) {
		return nil
	}
	doc, err := s.src.Stat(path)
	if err != nil {
		s.logger.Debug("frontmatter: stat failed",
			slog.String("path", path), slog.String("error", err.Error()))
		return nil
	}
	return doc
}
