// Package models defines the domain types for vaultmeta.
package models

import (
	"path"
	"time"
)

// Document extensions understood by the vault.
const (
	ExtMarkdown = ".md"
	ExtMDX      = ".mdx"
)

// Document describes a vault file without its content.
type Document struct {
	Path      string    `json:"path"`
	Extension string    `json:"extension"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum,omitempty"`
	ModTime   time.Time `json:"mtime"`
}

// Extension returns the extension of p including the dot. Paths are
// case-sensitive, so "a.MD" is not a Markdown document.
func Extension(p string) string {
	return path.Ext(p)
}

// IsDocument reports whether p names a file the vault indexes.
func IsDocument(p string) bool {
	switch Extension(p) {
	case ExtMarkdown, ExtMDX:
		return true
	}
	return false
}
