/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package specification

// Specification is a composable predicate over entities of type T.
type Specification[T any] interface {
	// IsSatisfiedBy reports whether the entity matches the specification.
	IsSatisfiedBy(entity T) bool
}

type funcSpec[T any] struct {
	fn func(T) bool
}

func (s funcSpec[T]) IsSatisfiedBy(entity T) bool {
	return s.fn(entity)
}

// ByFunc builds a specification from a plain predicate function.
func ByFunc[T any](fn func(T) bool) Specification[T] {
	return funcSpec[T]{fn: fn}
}

type andSpec[T any] struct {
	left, right Specification[T]
}

func (s andSpec[T]) IsSatisfiedBy(entity T) bool {
	return s.left.IsSatisfiedBy(entity) && s.right.IsSatisfiedBy(entity)
}

type orSpec[T any] struct {
	left, right Specification[T]
}

func (s orSpec[T]) IsSatisfiedBy(entity T) bool {
	return s.left.IsSatisfiedBy(entity) || s.right.IsSatisfiedBy(entity)
}

type notSpec[T any] struct {
	inner Specification[T]
}

func (s notSpec[T]) IsSatisfiedBy(entity T) bool {
	return !s.inner.IsSatisfiedBy(entity)
}

// And combines two specifications; both must be satisfied.
func And[T any](left, right Specification[T]) Specification[T] {
	return andSpec[T]{left: left, right: right}
}

// Or combines two specifications; at least one must be satisfied.
func Or[T any](left, right Specification[T]) Specification[T] {
	return orSpec[T]{left: left, right: right}
}

// Not negates a specification.
func Not[T any](inner Specification[T]) Specification[T] {
	return notSpec[T]{inner: inner}
}
