// Package activity maintains the persistent mapping between activity labels
// and their integer indices. Each label receives a permanent, strictly
// increasing index on first registration. Indices are never reused: a
// reclaimed index would let previously issued tokens reach activities they
// were never granted, so removal leaves the counter untouched.
package activity

import (
	"context"
	"strconv"
	"sync"

	apperrors "github.com/allisson/authd/internal/errors"
	"github.com/allisson/authd/internal/store"
)

// Index assigns every activity label a stable integer identity, persisted in
// the hash store and cached in memory. Construct one per core instance and
// call Load before use.
type Index struct {
	store store.HashStore

	mu        sync.RWMutex
	labels    map[string]int
	nextIndex int
}

// NewIndex creates an Index backed by the given store. Call Load to populate
// it from persisted state.
func NewIndex(st store.HashStore) *Index {
	return &Index{
		store:  st,
		labels: make(map[string]int),
	}
}

// Load reads the persisted counter and label map into memory. A missing
// counter defaults to zero, a missing map to empty. Stored values are coerced
// to integers; a non-numeric value means the store is corrupt.
func (i *Index) Load(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	next := 0
	raw, err := i.store.Get(ctx, store.NextIndexKey)
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		if err := i.store.Set(ctx, store.NextIndexKey, "0"); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		next, err = strconv.Atoi(raw)
		if err != nil {
			return apperrors.Wrapf(err, "corrupt next-index value %q", raw)
		}
	}

	stored, err := i.store.HGetAll(ctx, store.ActivityIndexKey)
	if err != nil {
		return err
	}
	labels := make(map[string]int, len(stored))
	for label, value := range stored {
		index, err := strconv.Atoi(value)
		if err != nil {
			return apperrors.Wrapf(err, "corrupt index value %q for activity %q", value, label)
		}
		labels[label] = index
	}

	i.labels = labels
	i.nextIndex = next
	return nil
}

// IndexOf returns the index assigned to the given label.
func (i *Index) IndexOf(label string) (int, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	index, ok := i.labels[label]
	return index, ok
}

// Register assigns the next free index to every label not yet known, then
// persists the new mappings and the updated counter as one group. Nothing is
// written when every label is already registered, so repeated registration is
// cheap and idempotent. An index is durable only once Register returns.
func (i *Index) Register(ctx context.Context, labels []string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	var fieldvals []string
	for _, label := range labels {
		if _, ok := i.labels[label]; ok {
			continue
		}
		index := i.nextIndex
		i.nextIndex++
		i.labels[label] = index
		fieldvals = append(fieldvals, label, strconv.Itoa(index))
	}
	if len(fieldvals) == 0 {
		return nil
	}

	if err := i.store.HSet(ctx, store.ActivityIndexKey, fieldvals...); err != nil {
		return err
	}
	return i.store.Set(ctx, store.NextIndexKey, strconv.Itoa(i.nextIndex))
}

// RemoveAll deletes the given labels from the in-memory and persisted map.
// The counter is deliberately not decremented; see the package comment.
func (i *Index) RemoveAll(ctx context.Context, labels ...string) error {
	if len(labels) == 0 {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	for _, label := range labels {
		delete(i.labels, label)
	}
	return i.store.HDel(ctx, store.ActivityIndexKey, labels...)
}

// Snapshot returns a fresh copy of the label map, restricted to the given
// labels, or the whole map when none are given. Labels without an index are
// omitted from the result.
func (i *Index) Snapshot(labels ...string) map[string]int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(labels) == 0 {
		snapshot := make(map[string]int, len(i.labels))
		for label, index := range i.labels {
			snapshot[label] = index
		}
		return snapshot
	}

	snapshot := make(map[string]int, len(labels))
	for _, label := range labels {
		if index, ok := i.labels[label]; ok {
			snapshot[label] = index
		}
	}
	return snapshot
}

// NextIndex returns the next free index. Exposed for consistency checks.
func (i *Index) NextIndex() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.nextIndex
}

// Reset zeroes the counter and clears the map, in memory and in the store.
// Every previously issued token carries bit positions that are no longer
// meaningful afterwards, so the signing secret should be rotated alongside.
func (i *Index) Reset(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.store.Set(ctx, store.NextIndexKey, "0"); err != nil {
		return err
	}
	fields, err := i.store.HKeys(ctx, store.ActivityIndexKey)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		if err := i.store.HDel(ctx, store.ActivityIndexKey, fields...); err != nil {
			return err
		}
	}
	i.labels = make(map[string]int)
	i.nextIndex = 0
	return nil
}
