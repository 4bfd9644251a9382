// Package catalog contains the cache-aware orchestration that answers
// "give me the current product list": prefer a fresh remote fetch whenever
// the network is reachable, fall back to a non-expired local cache, and
// translate every failure path into a classified Failure.
package catalog

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/averix-dev/catalog-gateway/internal/domain/product"
)

// MsgNoConnection is the failure message surfaced when the connectivity
// probe reports offline and the cache cannot serve the request either.
const MsgNoConnection = "no network connection"

// Source fetches the authoritative product list from the remote endpoint.
// Implementations return the list in the order the endpoint sent it.
type Source interface {
	Fetch(ctx context.Context) ([]product.Product, error)
}

// Cache is the local fallback store for the most recently fetched list.
// Last returns a *Failure of kind FailureCache when no usable entry exists
// (absent, corrupt, or expired).
type Cache interface {
	Last(ctx context.Context) ([]product.Product, error)
	Store(ctx context.Context, products []product.Product) error
}

// Prober reports whether network access is currently available.
type Prober interface {
	Online(ctx context.Context) bool
}

// Repository orchestrates the Source against the optional Cache and Prober.
// The zero collaborators case (remote-only) is a legitimate degraded
// configuration: remote failures surface directly with no fallback.
type Repository struct {
	source Source
	cache  Cache
	prober Prober
}

// Option configures optional Repository collaborators.
type Option func(*Repository)

// WithCache wires a local cache used as fallback and write-through target.
func WithCache(c Cache) Option {
	return func(r *Repository) { r.cache = c }
}

// WithProber wires a connectivity probe. Without one the repository cannot
// distinguish "offline" from "server error" and falls back to the cache on
// any remote failure.
func WithProber(p Prober) Option {
	return func(r *Repository) { r.prober = p }
}

// NewRepository creates a Repository around the required remote source.
func NewRepository(source Source, opts ...Option) *Repository {
	r := &Repository{source: source}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetProducts resolves the current product list. The returned error is
// always a *Failure; it never panics and never exposes a raw transport or
// storage error.
//
// Resolution order:
//  1. Prober wired and offline: serve from cache, or NetworkFailure.
//  2. Remote fetch. On success the list is cached best-effort (a write
//     failure is logged, not surfaced) and returned.
//  3. On remote failure the cache is consulted. If the cache fails too, the
//     returned failure carries the original remote message: the remote path
//     is primary, so its error is the actionable one.
func (r *Repository) GetProducts(ctx context.Context) ([]product.Product, error) {
	if r.prober != nil && !r.prober.Online(ctx) {
		if r.cache == nil {
			return nil, NetworkFailure(MsgNoConnection, nil)
		}
		products, err := r.cache.Last(ctx)
		if err != nil {
			return nil, NetworkFailure(MsgNoConnection, err)
		}
		return products, nil
	}

	products, remoteErr := r.source.Fetch(ctx)
	if remoteErr == nil {
		if r.cache != nil {
			if err := r.cache.Store(ctx, products); err != nil {
				// Best-effort write-through: the fetched data is still
				// authoritative, so the caller sees success.
				zctx.From(ctx).Warn("cache write failed", zap.Error(err))
			}
		}
		return products, nil
	}

	if r.cache == nil {
		return nil, ServerFailure(remoteErr.Error(), remoteErr)
	}

	cached, cacheErr := r.cache.Last(ctx)
	if cacheErr != nil {
		// Remote error takes precedence when both paths fail.
		zctx.From(ctx).Debug("cache fallback failed", zap.Error(cacheErr))
		return nil, ServerFailure(remoteErr.Error(), remoteErr)
	}

	zctx.From(ctx).Debug("serving products from cache", zap.Error(remoteErr))
	return cached, nil
}
