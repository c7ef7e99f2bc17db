// Package storage defines the read-only vault file-system abstraction.
package storage

import "github.com/starford/vaultmeta/internal/models"

// Provider is the interface for vault file lookups. Paths are relative to
// the vault root and use forward slashes.
type Provider interface {
	// List returns metadata for every document under dir.
	List(dir string) ([]models.Document, error)
	// Stat resolves path to a document without reading it.
	Stat(path string) (*models.Document, error)
	// Read returns the raw bytes of the document at path.
	Read(path string) ([]byte, error)
}
