/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pipeline

import "context"

// Next is the continuation a middleware invokes to proceed to the next unit
// in the chain, or to the final storage operation when the middleware is the
// innermost one.
type Next func(ctx context.Context) error

// Middleware intercepts a single repository operation. Implementations may
// inspect and mutate the operation Context before invoking next, decide not
// to invoke next at all (the short-circuit mechanism), and post-process once
// next returns.
//
// Contract:
//   - An error returned by next must propagate to the caller unless the
//     middleware intentionally handles it. None of the standard middleware
//     absorbs errors.
//   - A middleware that vetoes the operation without an error path calls
//     op.Abort(err) and returns nil without invoking next. The pipeline does
//     not infer short-circuiting from "next not called"; Abort sets the flag
//     so later introspection can observe it.
//   - Cancellation errors from ctx are propagated unmodified, never folded
//     into op.Err.
type Middleware[T any, K comparable] interface {
	Invoke(ctx context.Context, op *Context[T, K], next Next) error
}

// Func adapts an ordinary function to the Middleware interface.
type Func[T any, K comparable] func(ctx context.Context, op *Context[T, K], next Next) error

// Invoke calls f.
func (f Func[T, K]) Invoke(ctx context.Context, op *Context[T, K], next Next) error {
	return f(ctx, op, next)
}
