/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repository

import (
	"context"

	"github.com/suparena/repokit/datastore"
	"github.com/suparena/repokit/query"
)

// Repository is the outward-facing operation surface of repokit. It mirrors
// the datastore contract; implementations may add cross-cutting behavior
// around each call but must not change operation semantics.
type Repository[T any, K comparable] interface {
	Insert(ctx context.Context, entity T) (T, error)
	Get(ctx context.Context, opts *query.Options[T]) ([]T, error)
	GetByID(ctx context.Context, key K) (*T, error)
	Update(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, entity T) (bool, error)
	DeleteByID(ctx context.Context, key K) (bool, error)
	InsertRange(ctx context.Context, entities []T) ([]T, error)
	UpdateRange(ctx context.Context, entities []T) ([]T, error)
	DeleteRange(ctx context.Context, entities []T) (int, error)
	DeleteWhere(ctx context.Context, opts *query.Options[T]) (int, error)

	// Stream enumerates matching entities directly from the backend.
	// Streaming is a backend capability and does not run the middleware
	// pipeline.
	Stream(ctx context.Context, opts *query.Options[T], streamOpts ...datastore.StreamOption) <-chan datastore.StreamResult[T]
}
