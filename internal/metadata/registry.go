package metadata

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type registered struct {
	provider Provider
	warm     Prewarmer // nil when the provider cannot pre-warm
}

// Registry holds providers in a fixed order. It keeps no cache of its own;
// every call scans the providers again.
type Registry struct {
	providers []registered
}

// NewRegistry creates a registry. Earlier providers take precedence.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make([]registered, 0, len(providers))}
	for _, p := range providers {
		entry := registered{provider: p}
		if w, ok := p.(Prewarmer); ok {
			entry.warm = w
		}
		r.providers = append(r.providers, entry)
	}
	return r
}

func (r *Registry) find(path, typ string) (registered, bool) {
	for _, e := range r.providers {
		if e.provider.CanHandle(path, typ) {
			return e, true
		}
	}
	return registered{}, false
}

// GetMetadata returns the answer of the first provider that handles the
// pair, or nil when none does. An empty answer is final: later providers
// are not consulted.
func (r *Registry) GetMetadata(path, typ string) any {
	e, ok := r.find(path, typ)
	if !ok {
		return nil
	}
	return e.provider.GetMetadata(path, typ)
}

// EnsureMetadataCached pre-warms the provider that handles the pair, if
// it can pre-warm.
func (r *Registry) EnsureMetadataCached(ctx context.Context, path, typ string) {
	e, ok := r.find(path, typ)
	if !ok || e.warm == nil {
		return
	}
	e.warm.EnsureMetadataCached(ctx, path, typ)
}

// Resolve pre-warms then reads. handled is false when no provider accepts
// the pair, which lets callers tell "not applicable" from "not found".
func (r *Registry) Resolve(ctx context.Context, path, typ string) (value any, handled bool) {
	e, ok := r.find(path, typ)
	if !ok {
		return nil, false
	}
	if e.warm != nil {
		e.warm.EnsureMetadataCached(ctx, path, typ)
	}
	return e.provider.GetMetadata(path, typ), true
}

// PrewarmAll runs EnsureMetadataCached for every path with at most
// concurrency lookups in flight.
func (r *Registry) PrewarmAll(ctx context.Context, paths []string, typ string, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, p := range paths {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			r.EnsureMetadataCached(gCtx, p, typ)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
