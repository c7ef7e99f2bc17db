package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vaultmeta/internal/metaservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *metaservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *metaservice.Service) *Handler {
	return &Handler{svc: svc}
}

// docPath extracts the document path from the wildcard URL segment.
// Supports encoded slashes (e.g. notes%2Fa.mdx).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetMetadata handles GET /api/metadata/*?type=<type>.
// The type defaults to "frontmatter".
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetMetadata(r.Context(), docPath(r), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListDocuments handles GET /api/documents?folder=<dir>.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListDocuments(r.Context(), r.URL.Query().Get("folder"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": items,
		"total":     len(items),
	})
}

// CacheStats handles GET /api/cache.
func (h *Handler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CacheStats())
}

// Invalidate handles DELETE /api/cache/*.
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Invalidate(docPath(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InvalidateAll handles DELETE /api/cache.
func (h *Handler) InvalidateAll(w http.ResponseWriter, _ *http.Request) {
	h.svc.InvalidateAll()
	w.WriteHeader(http.StatusNoContent)
}
