/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package middleware

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"

	"github.com/suparena/repokit/pipeline"
)

// Entry is a single audit record describing one successful mutating
// operation.
type Entry struct {
	Timestamp  strfmt.DateTime `json:"timestamp"`
	EntityType string          `json:"entityType"`
	Operation  string          `json:"operation"`
	User       string          `json:"user"`
	Details    string          `json:"details,omitempty"`
}

// Audit appends one entry per successful mutating operation. Range
// operations produce a single summary entry carrying the entity count in
// Details, never one entry per entity. Reads and failed mutations record
// nothing.
type Audit[T any, K comparable] struct {
	sink         func(entry Entry)
	userProvider func() string
}

// NewAudit creates an audit middleware writing entries to the given sink.
func NewAudit[T any, K comparable](sink func(entry Entry)) *Audit[T, K] {
	return &Audit[T, K]{sink: sink}
}

// WithUserProvider sets the attribution source, queried once per call.
func (a *Audit[T, K]) WithUserProvider(provider func() string) *Audit[T, K] {
	a.userProvider = provider
	return a
}

// Invoke implements pipeline.Middleware.
func (a *Audit[T, K]) Invoke(ctx context.Context, op *pipeline.Context[T, K], next pipeline.Next) error {
	if err := next(ctx); err != nil {
		return err
	}

	if a.sink == nil || !op.Operation.IsMutation() || !op.Success || op.Err != nil {
		return nil
	}

	// The sink may perform I/O; honour cancellation before writing and
	// surface it unmodified.
	if err := ctx.Err(); err != nil {
		return err
	}

	var user string
	if a.userProvider != nil {
		user = a.userProvider()
	}

	var details string
	if op.Operation.IsRange() {
		details = fmt.Sprintf("count=%d", len(op.Entities))
	}

	a.sink(Entry{
		Timestamp:  strfmt.DateTime(time.Now().UTC()),
		EntityType: op.EntityType,
		Operation:  op.Operation.String(),
		User:       user,
		Details:    details,
	})
	return nil
}

// JSONSink returns an audit sink encoding entries as JSON lines to w.
// Writes are serialised; the sink is safe for concurrent repository calls.
func JSONSink(w io.Writer) func(Entry) {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return func(entry Entry) {
		mu.Lock()
		defer mu.Unlock()
		_ = enc.Encode(entry)
	}
}
