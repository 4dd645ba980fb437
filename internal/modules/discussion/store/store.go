// Package store persists discussion documents and provides the one
// serialization guarantee the synchronization server relies on: Mutate calls
// for the same discussion id never interleave, so every mutation is applied
// to the result of the previous one. Mutations to different discussions may
// proceed fully concurrently.
package store

import (
	"context"

	"github.com/sugit/boardsync/internal/modules/discussion/domain"
)

// MutateFunc computes the next document from a consistent snapshot. A
// returned error aborts the mutation and leaves the stored document
// untouched.
type MutateFunc func(domain.Discussion) (domain.Discussion, error)

type Store interface {
	// Create persists a fresh discussion with the given name and returns it.
	Create(ctx context.Context, name string) (domain.Discussion, error)

	// Get returns the current document, or domain.ErrDiscussionNotFound.
	Get(ctx context.Context, id string) (domain.Discussion, error)

	// Mutate applies fn to a consistent snapshot of the identified document
	// and persists the result atomically relative to other Mutate calls on
	// the same id. Returns the persisted result, fn's error, or
	// domain.ErrDiscussionNotFound.
	Mutate(ctx context.Context, id string, fn MutateFunc) (domain.Discussion, error)
}
