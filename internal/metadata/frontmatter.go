package metadata

import (
	"context"
	"strings"

	"github.com/starford/vaultmeta/internal/frontmatter"
)

// FrontmatterProvider serves the "frontmatter" type of .mdx documents from
// a frontmatter.Store.
//
// GetMetadata only reads the cache. Callers must run EnsureMetadataCached
// first (Registry.Resolve does both); otherwise an uncached document reads
// as nil even when it has a header.
type FrontmatterProvider struct {
	store *frontmatter.Store
}

// NewFrontmatterProvider creates a provider backed by store.
func NewFrontmatterProvider(store *frontmatter.Store) *FrontmatterProvider {
	return &FrontmatterProvider{store: store}
}

// CanHandle implements Provider.
func (p *FrontmatterProvider) CanHandle(path, typ string) bool {
	return strings.HasSuffix(path, frontmatter.Ext) && typ == TypeFrontmatter
}

// GetMetadata implements Provider.
func (p *FrontmatterProvider) GetMetadata(path, _ string) any {
	if r := p.store.CachedValue(path); r != nil {
		return r
	}
	return nil
}

// EnsureMetadataCached implements Prewarmer.
func (p *FrontmatterProvider) EnsureMetadataCached(ctx context.Context, path, _ string) {
	p.store.EnsureCached(ctx, path)
}

var (
	_ Provider  = (*FrontmatterProvider)(nil)
	_ Prewarmer = (*FrontmatterProvider)(nil)
)
