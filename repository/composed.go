/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repository

import (
	"context"

	"github.com/suparena/repokit/datastore"
	"github.com/suparena/repokit/errors"
	"github.com/suparena/repokit/pipeline"
	"github.com/suparena/repokit/query"
	"github.com/suparena/repokit/registry"
)

// Composed implements Repository by running every operation through a
// middleware pipeline wrapped around a storage backend.
//
// For each call it builds a fresh pipeline.Context tagged with the operation
// and payload, executes the chain with the backend call as the final
// operation, and unwraps the recorded result — or returns the recorded error
// exactly as the backend (or a vetoing middleware) produced it. No wrapper
// error type is introduced.
type Composed[T any, K comparable] struct {
	backend    datastore.DataStore[T, K]
	pipe       *pipeline.Pipeline[T, K]
	entityType string
}

// NewComposed wires a pipeline around a storage backend. The entity type
// name is resolved from the descriptor registry, falling back to the
// reflected type name.
func NewComposed[T any, K comparable](backend datastore.DataStore[T, K], pipe *pipeline.Pipeline[T, K]) (*Composed[T, K], error) {
	if backend == nil {
		return nil, errors.NewNilArgumentError("backend")
	}
	if pipe == nil {
		pipe = pipeline.New[T, K]()
	}
	return &Composed[T, K]{
		backend:    backend,
		pipe:       pipe,
		entityType: registry.TypeNameOf[T](),
	}, nil
}

// Pipeline exposes the underlying pipeline for registration during setup.
// Register all middleware before sharing the repository across goroutines.
func (r *Composed[T, K]) Pipeline() *pipeline.Pipeline[T, K] {
	return r.pipe
}

func (r *Composed[T, K]) run(ctx context.Context, op *pipeline.Context[T, K], final pipeline.Next) error {
	if err := r.pipe.Execute(ctx, op, final); err != nil {
		return err
	}
	return op.Err
}

// Insert stores a new entity through the pipeline.
func (r *Composed[T, K]) Insert(ctx context.Context, entity T) (T, error) {
	op := pipeline.NewContext[T, K](pipeline.OpInsert, r.entityType)
	op.Entity = &entity

	err := r.run(ctx, op, func(ctx context.Context) error {
		stored, err := r.backend.Insert(ctx, *op.Entity)
		if err != nil {
			return err
		}
		op.Result = stored
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	stored, _ := op.Result.(T)
	return stored, nil
}

// Get retrieves entities matching the options through the pipeline.
func (r *Composed[T, K]) Get(ctx context.Context, opts *query.Options[T]) ([]T, error) {
	op := pipeline.NewContext[T, K](pipeline.OpGet, r.entityType)

	err := r.run(ctx, op, func(ctx context.Context) error {
		found, err := r.backend.Get(ctx, opts)
		if err != nil {
			return err
		}
		op.Result = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	found, _ := op.Result.([]T)
	return found, nil
}

// GetByID retrieves a single entity by key through the pipeline.
func (r *Composed[T, K]) GetByID(ctx context.Context, key K) (*T, error) {
	op := pipeline.NewContext[T, K](pipeline.OpGetByID, r.entityType)
	op.Key = key

	err := r.run(ctx, op, func(ctx context.Context) error {
		found, err := r.backend.GetByID(ctx, op.Key)
		if err != nil {
			return err
		}
		op.Result = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	found, _ := op.Result.(*T)
	return found, nil
}

// Update replaces an existing entity through the pipeline.
func (r *Composed[T, K]) Update(ctx context.Context, entity T) (T, error) {
	op := pipeline.NewContext[T, K](pipeline.OpUpdate, r.entityType)
	op.Entity = &entity

	err := r.run(ctx, op, func(ctx context.Context) error {
		stored, err := r.backend.Update(ctx, *op.Entity)
		if err != nil {
			return err
		}
		op.Result = stored
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	stored, _ := op.Result.(T)
	return stored, nil
}

// Delete removes an entity by value through the pipeline.
func (r *Composed[T, K]) Delete(ctx context.Context, entity T) (bool, error) {
	op := pipeline.NewContext[T, K](pipeline.OpDelete, r.entityType)
	op.Entity = &entity

	err := r.run(ctx, op, func(ctx context.Context) error {
		removed, err := r.backend.Delete(ctx, *op.Entity)
		if err != nil {
			return err
		}
		op.Result = removed
		return nil
	})
	if err != nil {
		return false, err
	}
	removed, _ := op.Result.(bool)
	return removed, nil
}

// DeleteByID removes an entity by key through the pipeline.
func (r *Composed[T, K]) DeleteByID(ctx context.Context, key K) (bool, error) {
	op := pipeline.NewContext[T, K](pipeline.OpDelete, r.entityType)
	op.Key = key

	err := r.run(ctx, op, func(ctx context.Context) error {
		removed, err := r.backend.DeleteByID(ctx, op.Key)
		if err != nil {
			return err
		}
		op.Result = removed
		return nil
	})
	if err != nil {
		return false, err
	}
	removed, _ := op.Result.(bool)
	return removed, nil
}

// InsertRange stores a batch of entities through the pipeline.
func (r *Composed[T, K]) InsertRange(ctx context.Context, entities []T) ([]T, error) {
	op := pipeline.NewContext[T, K](pipeline.OpInsertRange, r.entityType)
	op.Entities = entities

	err := r.run(ctx, op, func(ctx context.Context) error {
		stored, err := r.backend.InsertRange(ctx, op.Entities)
		if err != nil {
			return err
		}
		op.Result = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	stored, _ := op.Result.([]T)
	return stored, nil
}

// UpdateRange replaces a batch of entities through the pipeline.
func (r *Composed[T, K]) UpdateRange(ctx context.Context, entities []T) ([]T, error) {
	op := pipeline.NewContext[T, K](pipeline.OpUpdateRange, r.entityType)
	op.Entities = entities

	err := r.run(ctx, op, func(ctx context.Context) error {
		stored, err := r.backend.UpdateRange(ctx, op.Entities)
		if err != nil {
			return err
		}
		op.Result = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	stored, _ := op.Result.([]T)
	return stored, nil
}

// DeleteRange removes a batch of entities through the pipeline.
func (r *Composed[T, K]) DeleteRange(ctx context.Context, entities []T) (int, error) {
	op := pipeline.NewContext[T, K](pipeline.OpDeleteRange, r.entityType)
	op.Entities = entities

	err := r.run(ctx, op, func(ctx context.Context) error {
		removed, err := r.backend.DeleteRange(ctx, op.Entities)
		if err != nil {
			return err
		}
		op.Result = removed
		return nil
	})
	if err != nil {
		return 0, err
	}
	removed, _ := op.Result.(int)
	return removed, nil
}

// DeleteWhere removes entities matching the options through the pipeline.
func (r *Composed[T, K]) DeleteWhere(ctx context.Context, opts *query.Options[T]) (int, error) {
	op := pipeline.NewContext[T, K](pipeline.OpDeleteRange, r.entityType)

	err := r.run(ctx, op, func(ctx context.Context) error {
		removed, err := r.backend.DeleteWhere(ctx, opts)
		if err != nil {
			return err
		}
		op.Result = removed
		return nil
	})
	if err != nil {
		return 0, err
	}
	removed, _ := op.Result.(int)
	return removed, nil
}

// Stream delegates directly to the backend; streaming does not run the
// pipeline.
func (r *Composed[T, K]) Stream(ctx context.Context, opts *query.Options[T], streamOpts ...datastore.StreamOption) <-chan datastore.StreamResult[T] {
	return r.backend.Stream(ctx, opts, streamOpts...)
}
