package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vaultmeta/internal/metaservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *metaservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/metadata/*", h.GetMetadata)
	r.Get("/documents", h.ListDocuments)

	r.Get("/cache", h.CacheStats)
	r.Delete("/cache", h.InvalidateAll)
	r.Delete("/cache/*", h.Invalidate)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
