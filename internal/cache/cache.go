// Package cache implements the TTL-governed local product cache on top of a
// kvstore.Store.
//
// A cache entry is two associated keys: a payload key holding the encoded
// product list and a stamp key holding the write-time wall clock in RFC 3339.
// Store writes the payload first and the stamp last, so a reader that sees a
// fresh stamp is guaranteed to see the matching payload even without
// transactional storage: the stamp's presence is the entry's ready signal.
package cache

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/averix-dev/catalog-gateway/internal/domain/catalog"
	"github.com/averix-dev/catalog-gateway/internal/domain/product"
	"github.com/averix-dev/catalog-gateway/internal/kvstore"
)

// DefaultTTL is the maximum entry age before Last reports it expired.
const DefaultTTL = time.Hour

// Failure messages surfaced through catalog.CacheFailure.
const (
	MsgNoProducts = "no cached products"
	MsgExpired    = "cache expired"
)

const (
	defaultKeyPrefix = "catalog"
	payloadSuffix    = ":products"
	stampSuffix      = ":products:cached_at"
)

var _ catalog.Cache = (*Cache)(nil)

// Cache persists the last fetched product list with its write timestamp.
type Cache struct {
	store    kvstore.Store
	ttl      time.Duration
	compress bool
	now      func() time.Time

	payloadKey string
	stampKey   string
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces the two entry keys, for stores shared with other
// tenants.
func WithKeyPrefix(prefix string) Option {
	return func(c *Cache) {
		if prefix != "" {
			c.payloadKey = prefix + payloadSuffix
			c.stampKey = prefix + stampSuffix
		}
	}
}

// WithCompression gzips the payload blob before it is written. Reads accept
// both compressed and plain payloads, so the option can be toggled without
// invalidating existing entries.
func WithCompression() Option {
	return func(c *Cache) { c.compress = true }
}

// WithClock replaces the wall clock, used by tests exercising expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a Cache over the given store.
func New(store kvstore.Store, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		ttl:        DefaultTTL,
		now:        time.Now,
		payloadKey: defaultKeyPrefix + payloadSuffix,
		stampKey:   defaultKeyPrefix + stampSuffix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store overwrites the cache entry with products and the current time.
// Either key failing to write is reported as an error; a partial commit is
// never signalled as success.
func (c *Cache) Store(ctx context.Context, products []product.Product) error {
	payload, err := encodeProducts(products)
	if err != nil {
		return errors.Wrap(err, "encode products")
	}
	if c.compress {
		if payload, err = compress(payload); err != nil {
			return errors.Wrap(err, "compress payload")
		}
	}

	// Payload before stamp: see the package comment on write ordering.
	if err := c.store.Put(ctx, c.payloadKey, payload); err != nil {
		return errors.Wrap(err, "put payload")
	}

	stamp := c.now().UTC().Format(time.RFC3339Nano)
	if err := c.store.Put(ctx, c.stampKey, []byte(stamp)); err != nil {
		return errors.Wrap(err, "put timestamp")
	}
	return nil
}

// Last returns the cached product list when a valid, non-expired entry
// exists. Every failure is a *catalog.Failure of kind FailureCache:
// MsgNoProducts for an absent, corrupt, or inconsistent entry and MsgExpired
// when the entry's age strictly exceeds the TTL. An entry aged exactly TTL
// is still valid.
func (c *Cache) Last(ctx context.Context) ([]product.Product, error) {
	rawStamp, found, err := c.store.Get(ctx, c.stampKey)
	if err != nil {
		return nil, catalog.CacheFailure(MsgNoProducts, err)
	}
	if !found {
		return nil, catalog.CacheFailure(MsgNoProducts, nil)
	}

	cachedAt, err := time.Parse(time.RFC3339Nano, string(rawStamp))
	if err != nil {
		return nil, catalog.CacheFailure(MsgNoProducts, err)
	}

	if age := c.now().Sub(cachedAt); age > c.ttl {
		return nil, catalog.CacheFailure(MsgExpired, nil)
	}

	payload, found, err := c.store.Get(ctx, c.payloadKey)
	if err != nil {
		return nil, catalog.CacheFailure(MsgNoProducts, err)
	}
	if !found {
		// Stamp without payload: inconsistent store, treated as absent.
		return nil, catalog.CacheFailure(MsgNoProducts, nil)
	}

	if isGzip(payload) {
		if payload, err = decompress(payload); err != nil {
			return nil, catalog.CacheFailure(MsgNoProducts, err)
		}
	}

	products, err := decodeProducts(payload)
	if err != nil {
		return nil, catalog.CacheFailure(MsgNoProducts, err)
	}
	return products, nil
}
