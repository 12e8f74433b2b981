// Package store keeps the set of items the recipient was already notified about.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// ErrNoLocation is returned when the storage location could not be determined.
var ErrNoLocation = errors.New("storage location is unknown")

//go:generate moq -out mock_store.go . Interface

// Interface defines methods for a backend of the notified set.
// Save always receives the whole set and must replace the stored one atomically.
type Interface interface {
	Load(ctx context.Context) ([]uint64, error)
	Save(ctx context.Context, ids []uint64) error
	Close() error
}

// PersistError is returned when the notified set could not be saved.
type PersistError struct {
	Location string
	Err      error
}

// Error implements error.
func (e *PersistError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("persist notified set: %v", e.Err)
	}
	return fmt.Sprintf("persist notified set to %s: %v", e.Location, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistError) Unwrap() error { return e.Err }

// Dedup is a set of item ids the recipient was notified about.
// It only grows, ids are never removed from it.
// Dedup is not safe for concurrent use, it is meant to have a single owner.
type Dedup struct {
	backend Interface
	ids     map[uint64]struct{}
	dirty   bool
}

// Load reads the notified set from the backend. It never fails: if the set
// could not be read, an empty set is returned along with the error, which
// the caller is expected to report as a warning.
func Load(ctx context.Context, backend Interface) (*Dedup, error) {
	d := &Dedup{backend: backend, ids: map[uint64]struct{}{}}

	ids, err := backend.Load(ctx)
	if err != nil {
		return d, fmt.Errorf("load notified set: %w", err)
	}

	for _, id := range ids {
		d.ids[id] = struct{}{}
	}

	return d, nil
}

// Contains reports whether the id is in the set.
func (d *Dedup) Contains(id uint64) bool {
	_, ok := d.ids[id]
	return ok
}

// Missing returns ids which are not in the set, preserving their order.
func (d *Dedup) Missing(ids []uint64) []uint64 {
	return lo.Filter(lo.Uniq(ids), func(id uint64, _ int) bool { return !d.Contains(id) })
}

// Add puts ids to the set and returns the number of ids that were not there before.
func (d *Dedup) Add(ids ...uint64) int {
	added := 0
	for _, id := range ids {
		if d.Contains(id) {
			continue
		}
		d.ids[id] = struct{}{}
		added++
	}

	if added > 0 {
		d.dirty = true
	}

	return added
}

// Len returns the size of the set.
func (d *Dedup) Len() int { return len(d.ids) }

// Dirty reports whether the set changed since it was loaded or last persisted.
func (d *Dedup) Dirty() bool { return d.dirty }

// IDs returns all ids of the set in ascending order.
func (d *Dedup) IDs() []uint64 {
	ids := lo.Keys(d.ids)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Persist saves the whole set to the backend.
func (d *Dedup) Persist(ctx context.Context) error {
	if err := d.backend.Save(ctx, d.IDs()); err != nil {
		var perr *PersistError
		if errors.As(err, &perr) {
			return perr
		}
		return &PersistError{Err: err}
	}

	d.dirty = false
	return nil
}
