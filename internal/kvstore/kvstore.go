// Package kvstore defines the opaque blob store the cache persists into,
// along with memory, Redis, SQLite, and PostgreSQL implementations.
package kvstore

import "context"

// Store is a minimal key-value blob store. Get reports found=false for an
// absent key without an error; errors are reserved for the store itself
// being unusable. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}
