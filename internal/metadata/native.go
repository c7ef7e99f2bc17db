package metadata

import (
	"log/slog"
	"strings"

	"github.com/starford/vaultmeta/internal/index"
	"github.com/starford/vaultmeta/internal/models"
)

// NativeIndex is the read-only view of the native metadata index.
type NativeIndex interface {
	Lookup(path string) (index.Metadata, error)
}

// NativeProvider serves any metadata type of .md documents from the
// native index. The index is kept current by the watcher, so there is
// nothing to pre-warm.
type NativeProvider struct {
	idx    NativeIndex
	logger *slog.Logger
}

// NewNativeProvider creates a provider backed by idx.
func NewNativeProvider(idx NativeIndex, logger *slog.Logger) *NativeProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &NativeProvider{idx: idx, logger: logger}
}

// CanHandle implements Provider.
func (p *NativeProvider) CanHandle(path, _ string) bool {
	return strings.HasSuffix(path, models.ExtMarkdown)
}

// GetMetadata implements Provider. Index errors are logged and read as nil.
func (p *NativeProvider) GetMetadata(path, typ string) any {
	md, err := p.idx.Lookup(path)
	if err != nil {
		p.logger.Warn("native index lookup failed",
			slog.String("path", path), slog.String("error", err.Error()))
		return nil
	}
	if md == nil {
		return nil
	}
	return md[typ]
}

var _ Provider = (*NativeProvider)(nil)
