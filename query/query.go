/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"github.com/suparena/repokit/errors"
	"github.com/suparena/repokit/specification"
)

// Options collects filtering, sorting, paging and hydration settings for a
// read (or filtered delete) operation. Build it fluently:
//
//	opts := query.NewOptions[User]().
//	    FilterBy(activeUsers).
//	    OrderBy("created_at", query.Descending).
//	    Page(0, 25)
//
// Options is a plain data holder; each backend interprets the parts it can
// honour and rejects the parts it cannot.
type Options[T any] struct {
	// Filter is an in-process predicate. Honoured by the memory backend;
	// relational backends cannot translate Go predicates and require Where.
	Filter specification.Specification[T]

	// WhereClause and WhereArgs are a backend-native filter: a SQL fragment
	// with named parameters for postgres, a filter expression for ddb.
	WhereClause string
	WhereArgs   map[string]any

	// SortField and SortDirection order results by a named field.
	SortField     string
	SortDirection Direction

	// Less orders results with a custom comparison, for backends that sort
	// in process. Takes precedence over SortField in the memory backend.
	Less func(a, b T) bool

	// Offset and Limit page the result set. Limit 0 means no limit.
	Offset int
	Limit  int

	// Includes names related data to hydrate alongside the entity. Backends
	// without a relation concept ignore it.
	Includes []string

	// NoTracking asks the backend to skip any change-tracking or caching of
	// returned entities.
	NoTracking bool
}

// Direction is a sort direction.
type Direction string

const (
	// Ascending sorts smallest first.
	Ascending Direction = "asc"
	// Descending sorts largest first.
	Descending Direction = "desc"
)

// NewOptions returns empty options.
func NewOptions[T any]() *Options[T] {
	return &Options[T]{SortDirection: Ascending}
}

// FilterBy sets the in-process filter specification.
func (o *Options[T]) FilterBy(spec specification.Specification[T]) *Options[T] {
	o.Filter = spec
	return o
}

// Where sets a backend-native filter clause with named arguments.
func (o *Options[T]) Where(clause string, args map[string]any) *Options[T] {
	o.WhereClause = clause
	o.WhereArgs = args
	return o
}

// OrderBy sorts by a named field in the given direction.
func (o *Options[T]) OrderBy(field string, dir Direction) *Options[T] {
	o.SortField = field
	o.SortDirection = dir
	return o
}

// OrderByFunc sorts with a custom comparison (memory backend only).
func (o *Options[T]) OrderByFunc(less func(a, b T) bool) *Options[T] {
	o.Less = less
	return o
}

// Page sets offset and limit.
func (o *Options[T]) Page(offset, limit int) *Options[T] {
	o.Offset = offset
	o.Limit = limit
	return o
}

// Include names related data to hydrate.
func (o *Options[T]) Include(relations ...string) *Options[T] {
	o.Includes = append(o.Includes, relations...)
	return o
}

// WithNoTracking disables change tracking for returned entities.
func (o *Options[T]) WithNoTracking() *Options[T] {
	o.NoTracking = true
	return o
}

// Validate checks the options for internally inconsistent values.
func (o *Options[T]) Validate() error {
	if o.Offset < 0 {
		return errors.NewValidationError("offset", "must not be negative")
	}
	if o.Limit < 0 {
		return errors.NewValidationError("limit", "must not be negative")
	}
	if o.SortDirection != Ascending && o.SortDirection != Descending && o.SortDirection != "" {
		return errors.NewValidationError("sortDirection", "must be asc or desc")
	}
	if o.WhereClause == "" && len(o.WhereArgs) > 0 {
		return errors.NewValidationError("whereArgs", "set without a where clause")
	}
	return nil
}

// Matches evaluates the in-process filter against an entity. Nil filter
// matches everything.
func (o *Options[T]) Matches(entity T) bool {
	if o == nil || o.Filter == nil {
		return true
	}
	return o.Filter.IsSatisfiedBy(entity)
}
