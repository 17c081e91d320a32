// Package storage is the key/value persistence layer every LoanDesk store is
// built on. Keys are plain strings, values are opaque bytes (JSON documents
// in practice). Backends: in-memory, SQLite, PostgreSQL and S3.
package storage

import (
	"context"
)

// Store is the minimal key/value capability. Get returns (nil, nil) when the
// key is absent and Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists all keys in ascending order.
	Keys(ctx context.Context) ([]string, error)
}

// UpdateFunc receives the current value (nil when absent) and returns the new
// one. Returning an error aborts the update and leaves the value untouched.
type UpdateFunc func(current []byte) ([]byte, error)

// Updater is implemented by backends that can run a read-modify-write cycle
// atomically (a transaction or a lock).
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Update applies fn to key, atomically when s supports it and as a plain
// Get followed by Set otherwise (last write wins).
func Update(ctx context.Context, s Store, key string, fn UpdateFunc) error {
	if u, ok := s.(Updater); ok {
		return u.Update(ctx, key, fn)
	}
	current, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, next)
}
