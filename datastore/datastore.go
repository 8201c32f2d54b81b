/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/repokit/query"
)

// DataStore is the uniform storage contract every repokit backend satisfies.
// The composed repository wraps a DataStore transparently; callers observe
// the same errors they would see calling the backend directly.
//
// Nil collections and nil options are rejected with a NilArgumentError.
// Thread safety of the underlying store is the backend's responsibility.
type DataStore[T any, K comparable] interface {
	// Insert stores a new entity and returns it, with any generated key
	// assigned.
	Insert(ctx context.Context, entity T) (T, error)

	// GetByID retrieves a single entity by key, or nil when absent.
	GetByID(ctx context.Context, key K) (*T, error)

	// Get retrieves entities matching the options (filter, sort, page).
	Get(ctx context.Context, opts *query.Options[T]) ([]T, error)

	// Update replaces an existing entity and returns the stored value.
	Update(ctx context.Context, entity T) (T, error)

	// Delete removes an entity by value; reports whether anything was
	// removed.
	Delete(ctx context.Context, entity T) (bool, error)

	// DeleteByID removes an entity by key; reports whether anything was
	// removed.
	DeleteByID(ctx context.Context, key K) (bool, error)

	// InsertRange stores a batch of new entities.
	InsertRange(ctx context.Context, entities []T) ([]T, error)

	// UpdateRange replaces a batch of existing entities.
	UpdateRange(ctx context.Context, entities []T) ([]T, error)

	// DeleteRange removes a batch of entities by value, returning the
	// number removed.
	DeleteRange(ctx context.Context, entities []T) (int, error)

	// DeleteWhere removes all entities matching the options' filter,
	// returning the number removed.
	DeleteWhere(ctx context.Context, opts *query.Options[T]) (int, error)

	// Stream enumerates entities matching the options as a channel. The
	// channel closes when enumeration finishes, fails, or ctx is
	// cancelled.
	Stream(ctx context.Context, opts *query.Options[T], streamOpts ...StreamOption) <-chan StreamResult[T]
}
