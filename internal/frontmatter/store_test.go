package frontmatter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/vaultmeta/internal/models"
)

// fakeSource is an in-memory document store that counts reads.
type fakeSource struct {
	mu      sync.Mutex
	content map[string]string
	mtime   map[string]time.Time
	reads   map[string]int
	readErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		content: map[string]string{},
		mtime:   map[string]time.Time{},
		reads:   map[string]int{},
	}
}

func (f *fakeSource) put(path, content string, mtime time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[path] = content
	f.mtime[path] = mtime
}

func (f *fakeSource) remove(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.content, path)
	delete(f.mtime, path)
}

func (f *fakeSource) setReadErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

func (f *fakeSource) readCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[path]
}

func (f *fakeSource) Stat(path string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mt, ok := f.mtime[path]
	if !ok {
		return nil, fmt.Errorf("stat %s: %w", path, fs.ErrNotExist)
	}
	return &models.Document{Path: path, Extension: models.Extension(path), ModTime: mt}, nil
}

func (f *fakeSource) Read(path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads[path]++
	if f.readErr != nil {
		return nil, f.readErr
	}
	c, ok := f.content[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(c), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestParse_UnsupportedExtension(t *testing.T) {
	src := newFakeSource()
	src.put("notes/a.md", "---\ntitle: x\n---\n", t0)
	s := NewStore(src, quietLogger())

	assert.Nil(t, s.Parse(context.Background(), "notes/a.md"))
	assert.Zero(t, src.readCount("notes/a.md"))
	assert.Zero(t, s.Len())
}

func TestParse_MissingDocument(t *testing.T) {
	s := NewStore(newFakeSource(), quietLogger())
	assert.Nil(t, s.Parse(context.Background(), "missing.mdx"))
	assert.Zero(t, s.Len())
}

func TestParse_CacheHitSkipsRead(t *testing.T) {
	src := newFakeSource()
	src.put("a.mdx", "---\ntitle: Hi\n---\nbody", t0)
	s := NewStore(src, quietLogger())
	ctx := context.Background()

	first := s.Parse(ctx, "a.mdx")
	second := s.Parse(ctx, "a.mdx")

	assert.Equal(t, Record{"title": "Hi"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.readCount("a.mdx"))
}

func TestParse_MtimeChangeForcesReread(t *testing.T) {
	src := newFakeSource()
	src.put("a.mdx", "---\ntitle: Hi\n---\n", t0)
	s := NewStore(src, quietLogger())
	ctx := context.Background()

	s.Parse(ctx, "a.mdx")
	src.put("a.mdx", "---\ntitle: Hi\n---\n", t0.Add(time.Second))
	got := s.Parse(ctx, "a.mdx")

	assert.Equal(t, Record{"title": "Hi"}, got)
	assert.Equal(t, 2, src.readCount("a.mdx"))

	src.put("a.mdx", "---\ntitle: Changed\n---\n", t0.Add(2*time.Second))
	assert.Equal(t, Record{"title": "Changed"}, s.Parse(ctx, "a.mdx"))
}

func TestParse_NoHeaderIsCached(t *testing.T) {
	src := newFakeSource()
	src.put("plain.mdx", "just body", t0)
	s := NewStore(src, quietLogger())
	ctx := context.Background()

	assert.Nil(t, s.Parse(ctx, "plain.mdx"))
	assert.Nil(t, s.Parse(ctx, "plain.mdx"))
	assert.Equal(t, 1, src.readCount("plain.mdx"))
	assert.Equal(t, 1, s.Len())
}

func TestParse_ReadFailureYieldsNil(t *testing.T) {
	src := newFakeSource()
	src.put("a.mdx", "---\ntitle: Hi\n---\n", t0)
	src.readErr = errors.New("disk on fire")
	s := NewStore(src, quietLogger())

	assert.Nil(t, s.Parse(context.Background(), "a.mdx"))
	assert.Zero(t, s.Len())
}

func TestParse_DeletedDocumentDropsEntry(t *testing.T) {
	src := newFakeSource()
	src.put("a.mdx", "---\nv: 1\n---\n", t0)
	s := NewStore(src, quietLogger())
	ctx := context.Background()
	s.EnsureCached(ctx, "a.mdx")
	require.Equal(t, Record{"v": float64(1)}, s.CachedValue("a.mdx"))

	src.remove("a.mdx")
	s.EnsureCached(ctx, "a.mdx")

	assert.Nil(t, s.Parse(ctx, "a.mdx"))
	assert.Nil(t, s.CachedValue("a.mdx"))
	assert.Zero(t, s.Len())
}

func TestParse_ReadFailureAfterChangeDropsEntry(t *testing.T) {
	src := newFakeSource()
	src.put("a.mdx", "---\nv: 1\n---\n", t0)
	s := NewStore(src, quietLogger())
	ctx := context.Background()
	s.EnsureCached(ctx, "a.mdx")

	src.put("a.mdx", "---\nv: 2\n---\n", t0.Add(time.Second))
	src.setReadErr(errors.New("permission denied"))
	s.EnsureCached(ctx, "a.mdx")
	assert.Nil(t, s.CachedValue("a.mdx"))

	src.setReadErr(nil)
	assert.Equal(t, Record{"v": float64(2)}, s.Parse(ctx, "a.mdx"))
}

func TestParse_CancelledContextKeepsEntry(t *testing.T) {
	src := newFakeSource()
	src.put("a.mdx", "---\nv: 1\n---\n", t0)
	s := NewStore(src, quietLogger())
	s.EnsureCached(context.Background(), "a.mdx")

	src.put("a.mdx", "---\nv: 2\n---\n", t0.Add(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, s.Parse(ctx, "a.mdx"))
	assert.Equal(t, 1, s.Len())
}

func TestParse_CancelledContext(t *testing.T) {
	src := newFakeSource()
	src.put("a.mdx", "---\ntitle: Hi\n---\n", t0)
	s := NewStore(src, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, s.Parse(ctx, "a.mdx"))
	assert.Zero(t, src.readCount("a.mdx"))
}

func TestCachedValue_DoesNotParse(t *testing.T) {
	src := newFakeSource()
	src.put("a.mdx", "---\ntitle: Hi\n---\n", t0)
	s := NewStore(src, quietLogger())

	assert.Nil(t, s.CachedValue("a.mdx"))
	assert.Zero(t, src.readCount("a.mdx"))

	s.Parse(context.Background(), "a.mdx")
	assert.Equal(t, Record{"title": "Hi"}, s.CachedValue("a.mdx"))
}

func TestCachedValue_EmptyRecordIsNotNil(t *testing.T) {
	src := newFakeSource()
	src.put("empty.mdx", "---\n\n---\n", t0)
	s := NewStore(src, quietLogger())

	s.EnsureCached(context.Background(), "empty.mdx")
	got := s.CachedValue("empty.mdx")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEnsureCached(t *testing.T) {
	src := newFakeSource()
	src.put("a.mdx", "---\nv: 1\n---\n", t0)
	s := NewStore(src, quietLogger())
	ctx := context.Background()

	s.EnsureCached(ctx, "a.mdx")
	s.EnsureCached(ctx, "a.mdx")
	assert.Equal(t, 1, src.readCount("a.mdx"))

	src.put("a.mdx", "---\nv: 2\n---\n", t0.Add(time.Minute))
	s.EnsureCached(ctx, "a.mdx")
	assert.Equal(t, 2, src.readCount("a.mdx"))
	assert.Equal(t, Record{"v": float64(2)}, s.CachedValue("a.mdx"))
}

func TestInvalidate(t *testing.T) {
	src := newFakeSource()
	src.put("a.mdx", "---\nv: 1\n---\n", t0)
	src.put("b.mdx", "---\nv: 2\n---\n", t0)
	s := NewStore(src, quietLogger())
	ctx := context.Background()
	s.Parse(ctx, "a.mdx")
	s.Parse(ctx, "b.mdx")

	s.Invalidate("a.mdx")
	s.Invalidate("a.mdx")
	assert.Nil(t, s.CachedValue("a.mdx"))
	assert.NotNil(t, s.CachedValue("b.mdx"))

	s.Parse(ctx, "a.mdx")
	assert.Equal(t, 2, src.readCount("a.mdx"))
}

func TestInvalidateAll(t *testing.T) {
	src := newFakeSource()
	paths := []string{"a.mdx", "b.mdx", "c/d.mdx"}
	s := NewStore(src, quietLogger())
	for _, p := range paths {
		src.put(p, "---\nk: v\n---\n", t0)
		s.EnsureCached(context.Background(), p)
	}
	require.Equal(t, len(paths), s.Len())

	s.InvalidateAll()
	s.InvalidateAll()
	for _, p := range paths {
		assert.Nil(t, s.CachedValue(p))
	}
	assert.Zero(t, s.Len())
}

func TestParse_ConcurrentSamePath(t *testing.T) {
	src := newFakeSource()
	src.put("a.mdx", "---\ntitle: Hi\n---\n", t0)
	s := NewStore(src, quietLogger())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.EnsureCached(context.Background(), "a.mdx")
		}()
	}
	wg.Wait()

	assert.Equal(t, Record{"title": "Hi"}, s.CachedValue("a.mdx"))
	assert.GreaterOrEqual(t, src.readCount("a.mdx"), 1)
}
