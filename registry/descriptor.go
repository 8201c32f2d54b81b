/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Descriptor tells repokit how to work with an entity type: its display
// name, how to read and write its key, and how to mint a fresh key for
// inserts that arrive without one.
type Descriptor[T any, K comparable] struct {
	// TypeName is the display name used in log lines, performance labels
	// and audit entries. Defaults to the reflected type name.
	TypeName string

	// Key extracts the entity's key.
	Key func(entity T) K

	// SetKey writes a key onto the entity.
	SetKey func(entity *T, key K)

	// NewKey mints a fresh key. Optional; backends that generate keys on
	// insert call it when Key returns the zero value.
	NewKey func() K
}

var (
	descriptorRegistry = make(map[reflect.Type]any)
	mu                 sync.RWMutex
)

// RegisterDescriptor associates a Go type T with its descriptor.
func RegisterDescriptor[T any, K comparable](d Descriptor[T, K]) {
	var zero T
	t := reflect.TypeOf(zero)

	if d.TypeName == "" {
		d.TypeName = typeName(t)
	}

	mu.Lock()
	defer mu.Unlock()
	descriptorRegistry[t] = d
}

// GetDescriptor retrieves the descriptor for type T, if any.
func GetDescriptor[T any, K comparable]() (Descriptor[T, K], bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	d, ok := descriptorRegistry[t]
	if !ok {
		return Descriptor[T, K]{}, false
	}
	typed, ok := d.(Descriptor[T, K])
	return typed, ok
}

// TypeNameOf returns the registered display name for T, falling back to the
// reflected type name when no descriptor is registered.
func TypeNameOf[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	d, ok := descriptorRegistry[t]
	mu.RUnlock()
	if ok {
		if named, isNamed := d.(interface{ Name() string }); isNamed && named.Name() != "" {
			return named.Name()
		}
	}
	return typeName(t)
}

// Name returns the descriptor's type name.
func (d Descriptor[T, K]) Name() string { return d.TypeName }

func typeName(t reflect.Type) string {
	if t == nil {
		return "Unknown"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// UUIDKey returns a key generator producing random UUID strings, suitable
// for Descriptor.NewKey on string-keyed entities.
func UUIDKey() func() string {
	return uuid.NewString
}
