/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pipeline

// Context is the per-call record threaded through every middleware for one
// repository operation. A fresh Context is built for every public repository
// call and never pooled or shared between calls. Middleware executes strictly
// sequentially within one call, so fields may be read and written without
// synchronisation.
type Context[T any, K comparable] struct {
	// Operation identifies the repository operation being executed.
	// Fixed at creation.
	Operation Operation

	// EntityType is the display name of the entity type, used by the
	// standard middleware for log lines, performance labels and audit
	// entries.
	EntityType string

	// Entity is the single entity relevant to this call, if any.
	// Middleware may mutate it before the continuation runs (for example
	// to stamp timestamps).
	Entity *T

	// Entities is the collection relevant to a range call, if any.
	Entities []T

	// Key is the entity key for GetById / Delete-by-id calls.
	Key K

	// Result holds the outcome of the final operation. It is populated
	// only after the continuation chain completes and is undefined before
	// that point.
	Result any

	// Success reports whether the call is considered successful. Defaults
	// to true; set to false by middleware that vetoes the operation.
	Success bool

	// Err holds an error recorded by a middleware or by the pipeline when
	// the chain fails. The composed repository returns it to the caller
	// after the pipeline unwinds.
	Err error

	// ShortCircuited is set by a middleware that aborts the chain without
	// invoking its continuation. The pipeline never infers this flag; the
	// vetoing middleware must set it.
	ShortCircuited bool

	items map[string]any
}

// NewContext builds a Context tagged with the given operation.
func NewContext[T any, K comparable](op Operation, entityType string) *Context[T, K] {
	return &Context[T, K]{
		Operation:  op,
		EntityType: entityType,
		Success:    true,
	}
}

// Abort records a veto: err is stored, Success is cleared and ShortCircuited
// is set. A middleware that calls Abort should return nil without invoking
// its continuation; the recorded error surfaces to the caller once the
// pipeline unwinds.
func (c *Context[T, K]) Abort(err error) {
	c.Err = err
	c.Success = false
	c.ShortCircuited = true
}

// SetItem stores a value in the context's key/value bag. The bag exists for
// middleware-to-middleware communication within a single call (for example a
// correlation id set by one unit and read by a later one).
func (c *Context[T, K]) SetItem(key string, value any) {
	if c.items == nil {
		c.items = make(map[string]any)
	}
	c.items[key] = value
}

// Item retrieves a value from the context's key/value bag.
func (c *Context[T, K]) Item(key string) (any, bool) {
	v, ok := c.items[key]
	return v, ok
}
