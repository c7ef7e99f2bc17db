// Package metadata dispatches metadata lookups across competing providers.
//
// A lookup names a document path and a metadata type. The Registry asks
// each provider in registration order whether it can handle the pair and
// delegates to the first that can.
package metadata

import "context"

// TypeFrontmatter is the metadata type for a document's header block.
const TypeFrontmatter = "frontmatter"

// Provider answers metadata queries for a subset of documents and types.
type Provider interface {
	// CanHandle reports whether the provider is responsible for the pair.
	CanHandle(path, typ string) bool
	// GetMetadata returns the value for the pair, or nil when absent.
	GetMetadata(path, typ string) any
}

// Prewarmer is the optional capability of populating a provider's cache
// ahead of a GetMetadata call.
type Prewarmer interface {
	EnsureMetadataCached(ctx context.Context, path, typ string)
}
