/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repokit

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/suparena/repokit/repository"
)

// TypedRepositories provides type-safe access to repositories for a specific
// entity type T keyed by K.
type TypedRepositories[T any, K comparable] struct {
	mu    sync.RWMutex
	repos map[string]repository.Repository[T, K]
}

// NewTypedRepositories creates a new TypedRepositories for type T.
func NewTypedRepositories[T any, K comparable]() *TypedRepositories[T, K] {
	return &TypedRepositories[T, K]{
		repos: make(map[string]repository.Repository[T, K]),
	}
}

// Register adds a repository with the given key.
func (tr *TypedRepositories[T, K]) Register(key string, repo repository.Repository[T, K]) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if _, exists := tr.repos[key]; exists {
		return fmt.Errorf("repository with key %q already registered", key)
	}

	tr.repos[key] = repo
	return nil
}

// Get retrieves a repository by key.
func (tr *TypedRepositories[T, K]) Get(key string) (repository.Repository[T, K], error) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	repo, exists := tr.repos[key]
	if !exists {
		return nil, fmt.Errorf("repository with key %q not found", key)
	}

	return repo, nil
}

// Remove deletes a repository by key.
func (tr *TypedRepositories[T, K]) Remove(key string) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if _, exists := tr.repos[key]; !exists {
		return fmt.Errorf("repository with key %q not found", key)
	}

	delete(tr.repos, key)
	return nil
}

// List returns all registered repository keys.
func (tr *TypedRepositories[T, K]) List() []string {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	keys := make([]string, 0, len(tr.repos))
	for k := range tr.repos {
		keys = append(keys, k)
	}
	return keys
}

// MultiTypeRegistry manages TypedRepositories instances for different types.
type MultiTypeRegistry struct {
	mu         sync.RWMutex
	registries map[reflect.Type]interface{}
}

// NewMultiTypeRegistry creates a new MultiTypeRegistry.
func NewMultiTypeRegistry() *MultiTypeRegistry {
	return &MultiTypeRegistry{
		registries: make(map[reflect.Type]interface{}),
	}
}

// GetTypedRepositories returns a TypedRepositories for the specified type, creating it if necessary.
func GetTypedRepositories[T any, K comparable](mtr *MultiTypeRegistry) *TypedRepositories[T, K] {
	mtr.mu.Lock()
	defer mtr.mu.Unlock()

	var zero T
	typ := reflect.TypeOf(zero)

	if reg, exists := mtr.registries[typ]; exists {
		return reg.(*TypedRepositories[T, K])
	}

	newReg := NewTypedRepositories[T, K]()
	mtr.registries[typ] = newReg
	return newReg
}

// RegisterRepository is a convenience function to register a repository for type T.
func RegisterRepository[T any, K comparable](mtr *MultiTypeRegistry, key string, repo repository.Repository[T, K]) error {
	reg := GetTypedRepositories[T, K](mtr)
	return reg.Register(key, repo)
}

// GetRepository is a convenience function to get a repository for type T.
func GetRepository[T any, K comparable](mtr *MultiTypeRegistry, key string) (repository.Repository[T, K], error) {
	reg := GetTypedRepositories[T, K](mtr)
	return reg.Get(key)
}

// RemoveRepository is a convenience function to remove a repository for type T.
func RemoveRepository[T any, K comparable](mtr *MultiTypeRegistry, key string) error {
	reg := GetTypedRepositories[T, K](mtr)
	return reg.Remove(key)
}

// ListRepositories is a convenience function to list all repositories for type T.
func ListRepositories[T any, K comparable](mtr *MultiTypeRegistry) []string {
	reg := GetTypedRepositories[T, K](mtr)
	return reg.List()
}
