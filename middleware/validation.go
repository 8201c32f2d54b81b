/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package middleware

import (
	"context"
	"fmt"

	"github.com/suparena/repokit/errors"
	"github.com/suparena/repokit/pipeline"
)

// Validator checks a single entity and reports whether it is valid, with a
// message describing the first problem found.
type Validator[T any] func(entity T) (bool, string)

// Validation vetoes mutating operations carrying invalid entities. Reads are
// never validated: Get results may be partially hydrated and deletes do not
// interpret entity contents.
//
// Range operations validate every entity in order and stop at the first
// failure; the recorded error references that entity only. On failure the
// continuation is never invoked, so the storage backend sees nothing.
type Validation[T any, K comparable] struct {
	validate Validator[T]
}

// NewValidation creates a validation middleware with the given validator.
func NewValidation[T any, K comparable](validate Validator[T]) *Validation[T, K] {
	return &Validation[T, K]{validate: validate}
}

// Invoke implements pipeline.Middleware.
func (v *Validation[T, K]) Invoke(ctx context.Context, op *pipeline.Context[T, K], next pipeline.Next) error {
	if v.validate == nil || !validatedOperation(op.Operation) {
		return next(ctx)
	}

	switch op.Operation {
	case pipeline.OpInsert, pipeline.OpUpdate:
		if op.Entity != nil {
			if ok, msg := v.validate(*op.Entity); !ok {
				op.Abort(errors.NewValidationError("", msg))
				return nil
			}
		}
	case pipeline.OpInsertRange, pipeline.OpUpdateRange:
		for i, entity := range op.Entities {
			if ok, msg := v.validate(entity); !ok {
				op.Abort(errors.NewValidationError("", fmt.Sprintf("entity at index %d: %s", i, msg)))
				return nil
			}
		}
	}

	return next(ctx)
}

func validatedOperation(op pipeline.Operation) bool {
	switch op {
	case pipeline.OpInsert, pipeline.OpUpdate, pipeline.OpInsertRange, pipeline.OpUpdateRange:
		return true
	default:
		return false
	}
}
