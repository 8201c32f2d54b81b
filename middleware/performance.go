/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package middleware

import (
	"context"
	"time"

	"github.com/suparena/repokit/pipeline"
)

// Performance measures elapsed time around the continuation regardless of
// outcome and reports it as "<EntityType>.<Operation>". It never alters
// control flow; a configured slow threshold only triggers an extra report.
type Performance[T any, K comparable] struct {
	reporter      func(label string, elapsed time.Duration)
	slowThreshold time.Duration
	onSlow        func(label string, elapsed time.Duration)
}

// NewPerformance creates a performance middleware with the given reporter.
func NewPerformance[T any, K comparable](reporter func(label string, elapsed time.Duration)) *Performance[T, K] {
	return &Performance[T, K]{reporter: reporter}
}

// WithSlowThreshold sets a threshold above which onSlow is invoked in
// addition to the regular report.
func (p *Performance[T, K]) WithSlowThreshold(threshold time.Duration, onSlow func(label string, elapsed time.Duration)) *Performance[T, K] {
	p.slowThreshold = threshold
	p.onSlow = onSlow
	return p
}

// Invoke implements pipeline.Middleware.
func (p *Performance[T, K]) Invoke(ctx context.Context, op *pipeline.Context[T, K], next pipeline.Next) error {
	start := time.Now()
	err := next(ctx)
	elapsed := time.Since(start)

	label := op.EntityType + "." + op.Operation.String()
	if p.reporter != nil {
		p.reporter(label, elapsed)
	}
	if p.slowThreshold > 0 && elapsed > p.slowThreshold && p.onSlow != nil {
		p.onSlow(label, elapsed)
	}

	return err
}
