/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suparena/repokit/pipeline"
)

// Logging emits a line before and after every operation. It never absorbs
// errors: a failing continuation is logged and the error returned unmodified.
type Logging[T any, K comparable] struct {
	sink           func(message string)
	includeTimings bool
}

// NewLogging creates a logging middleware writing to the given sink.
// When includeTimings is set, completion lines carry the elapsed time.
func NewLogging[T any, K comparable](sink func(message string), includeTimings bool) *Logging[T, K] {
	return &Logging[T, K]{sink: sink, includeTimings: includeTimings}
}

// NewLoggingWithLogger creates a logging middleware backed by a logrus
// logger. All lines go to Info; a failing operation's error is part of the
// message and still propagates to the caller.
func NewLoggingWithLogger[T any, K comparable](logger logrus.FieldLogger, includeTimings bool) *Logging[T, K] {
	return &Logging[T, K]{
		sink:           func(message string) { logger.Info(message) },
		includeTimings: includeTimings,
	}
}

// Invoke implements pipeline.Middleware.
func (l *Logging[T, K]) Invoke(ctx context.Context, op *pipeline.Context[T, K], next pipeline.Next) error {
	l.emit(fmt.Sprintf("Starting %s on %s", op.Operation, op.EntityType))

	start := time.Now()
	err := next(ctx)
	elapsed := time.Since(start)

	if err != nil {
		l.emit(fmt.Sprintf("Failed %s on %s: %v", op.Operation, op.EntityType, err))
		return err
	}

	msg := fmt.Sprintf("Completed %s on %s, success=%t", op.Operation, op.EntityType, op.Success)
	if l.includeTimings {
		msg += fmt.Sprintf(", %dms", elapsed.Milliseconds())
	}
	l.emit(msg)
	return nil
}

func (l *Logging[T, K]) emit(message string) {
	if l.sink != nil {
		l.sink(message)
	}
}
