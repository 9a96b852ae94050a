// Package store provides the persistent hash-collection contract used by the
// authorization core, together with its Redis implementation. All core state
// (roles, users, their cross-references and the activity-index map) lives in
// named hash collections keyed by field.
package store

import (
	"context"
)

// HashStore is the persistence contract the authorization core depends on.
// Collections are named hashes; fields within a collection are set, read and
// deleted individually. Per-field operations are atomic, multi-field updates
// are not.
type HashStore interface {
	// HSet sets one or more field/value pairs on the named collection.
	HSet(ctx context.Context, collection string, fieldvals ...string) error
	// HGet returns the value of a field. Returns ErrNotFound when the field
	// or the collection does not exist.
	HGet(ctx context.Context, collection, field string) (string, error)
	// HKeys lists the fields of the named collection, in store-native order.
	HKeys(ctx context.Context, collection string) ([]string, error)
	// HGetAll returns all field/value pairs of the named collection.
	HGetAll(ctx context.Context, collection string) (map[string]string, error)
	// HExists reports whether the field exists on the named collection.
	HExists(ctx context.Context, collection, field string) (bool, error)
	// HDel deletes the given fields from the named collection.
	HDel(ctx context.Context, collection string, fields ...string) error
	// Set writes a scalar key.
	Set(ctx context.Context, key, value string) error
	// Get reads a scalar key. Returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Del deletes entire collections or scalar keys.
	Del(ctx context.Context, keys ...string) error
	// Exists reports whether the given key exists in any form.
	Exists(ctx context.Context, key string) (bool, error)
	// FlushAll wipes every key in the store. Used by reset and tests.
	FlushAll(ctx context.Context) error
	// Ping verifies connectivity. Used by readiness checks.
	Ping(ctx context.Context) error
	// Close releases the underlying connection resources.
	Close() error
}
