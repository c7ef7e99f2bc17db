package metaservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/vaultmeta/internal/apperr"
	"github.com/starford/vaultmeta/internal/frontmatter"
	"github.com/starford/vaultmeta/internal/testutil"
)

var vault = map[string]string{
	"notes/a.mdx":     "---\ntitle: Alpha\ndraft: true\n---\nbody",
	"notes/a.md":      "---\ntitle: Native\n---\n# Native\n",
	"notes/plain.mdx": "no header",
	"img/logo.png":    "png",
}

func TestGetMetadata_MDX(t *testing.T) {
	svc, _ := testutil.TestService(t, vault)

	res, err := svc.GetMetadata(context.Background(), "notes/a.mdx", "")
	require.NoError(t, err)
	assert.Equal(t, "frontmatter", res.Type)
	assert.True(t, res.Found)
	assert.Equal(t, frontmatter.Record{"title": "Alpha", "draft": true}, res.Value)
	assert.Equal(t, 1, svc.CacheStats().Entries)
}

func TestGetMetadata_NoHeader(t *testing.T) {
	svc, _ := testutil.TestService(t, vault)

	res, err := svc.GetMetadata(context.Background(), "notes/plain.mdx", "frontmatter")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Value)
}

func TestGetMetadata_Native(t *testing.T) {
	svc, _ := testutil.TestService(t, vault)

	res, err := svc.GetMetadata(context.Background(), "notes/a.md", "title")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "Native", res.Value)
}

func TestGetMetadata_NotApplicable(t *testing.T) {
	svc, _ := testutil.TestService(t, vault)

	_, err := svc.GetMetadata(context.Background(), "img/logo.png", "frontmatter")
	assert.ErrorIs(t, err, apperr.ErrNotApplicable)

	_, err = svc.GetMetadata(context.Background(), "notes/a.mdx", "tags")
	assert.ErrorIs(t, err, apperr.ErrNotApplicable)
}

func TestGetMetadata_InvalidPath(t *testing.T) {
	svc, _ := testutil.TestService(t, vault)

	for _, p := range []string{"", "/etc/passwd.mdx"} {
		_, err := svc.GetMetadata(context.Background(), p, "")
		assert.ErrorIs(t, err, apperr.ErrInvalidPath, "path %q", p)
	}
}

func TestListDocuments(t *testing.T) {
	svc, _ := testutil.TestService(t, vault)

	items, err := svc.ListDocuments(context.Background(), "notes")
	require.NoError(t, err)
	paths := make([]string, 0, len(items))
	for _, it := range items {
		paths = append(paths, it.Path)
	}
	assert.ElementsMatch(t, []string{"notes/a.mdx", "notes/a.md", "notes/plain.mdx"}, paths)

	_, err = svc.ListDocuments(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.ListDocuments(context.Background(), "../outside")
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}

func TestInvalidate(t *testing.T) {
	svc, _ := testutil.TestService(t, vault)
	ctx := context.Background()

	_, err := svc.GetMetadata(ctx, "notes/a.mdx", "")
	require.NoError(t, err)
	_, err = svc.GetMetadata(ctx, "notes/plain.mdx", "")
	require.NoError(t, err)
	require.Equal(t, 2, svc.CacheStats().Entries)

	require.NoError(t, svc.Invalidate("notes/a.mdx"))
	assert.Equal(t, 1, svc.CacheStats().Entries)
	assert.ErrorIs(t, svc.Invalidate(""), apperr.ErrInvalidPath)

	svc.InvalidateAll()
	assert.Zero(t, svc.CacheStats().Entries)
}
