/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pipeline

import (
	"context"

	"github.com/suparena/repokit/errors"
)

// Pipeline composes an ordered list of middleware into a single callable
// chain terminating in a caller-supplied final operation.
//
// Registration order is execution order: the first registered middleware is
// the outermost wrapper, so for units [U1, U2] a call runs U1-before,
// U2-before, final operation, U2-after, U1-after.
//
// The registered list is append-only and is expected to be fully built before
// the pipeline is shared across calls; Execute only reads it. Per-call state
// lives exclusively on the Context.
type Pipeline[T any, K comparable] struct {
	units []Middleware[T, K]
}

// New returns an empty pipeline.
func New[T any, K comparable]() *Pipeline[T, K] {
	return &Pipeline[T, K]{}
}

// Register appends a middleware to the end of the chain.
func (p *Pipeline[T, K]) Register(m Middleware[T, K]) error {
	if m == nil {
		return errors.NewNilArgumentError("middleware")
	}
	p.units = append(p.units, m)
	return nil
}

// Count returns the number of registered middleware.
func (p *Pipeline[T, K]) Count() int {
	return len(p.units)
}

// Clear removes all registered middleware, resetting to an empty chain.
func (p *Pipeline[T, K]) Clear() {
	p.units = nil
}

// Execute runs op through the middleware chain, terminating in final.
//
// The chain is folded right-to-left around final so that the first registered
// middleware wraps everything registered after it. If a middleware aborts via
// op.Abort and returns without invoking its continuation, every unit further
// in and final never execute; units further out still run their post-
// continuation code as the call unwinds.
//
// An error returned by the chain is recorded on op before being returned, so
// that op always reflects the outcome of the call.
func (p *Pipeline[T, K]) Execute(ctx context.Context, op *Context[T, K], final Next) error {
	if op == nil {
		return errors.NewNilArgumentError("op")
	}
	if final == nil {
		return errors.NewNilArgumentError("final")
	}

	next := final
	for i := len(p.units) - 1; i >= 0; i-- {
		next = p.wrap(p.units[i], op, next)
	}

	if err := next(ctx); err != nil {
		op.Err = err
		op.Success = false
		return err
	}
	return nil
}

func (p *Pipeline[T, K]) wrap(m Middleware[T, K], op *Context[T, K], next Next) Next {
	return func(ctx context.Context) error {
		return m.Invoke(ctx, op, next)
	}
}
