/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repokit

import (
	"fmt"
	"sync"
)

// Manager is a higher-level interface that tracks a collection of composed
// repositories. Its methods are not generic; they use the empty interface
// (any) to store and retrieve repositories.
type Manager interface {
	// RegisterRepository registers a repository under a given key (for example, "Customer" or "Order").
	RegisterRepository(key string, repo any) error
	// GetRepository retrieves the registered repository for a given key.
	// The caller must type-assert the returned value to the appropriate Repository type.
	GetRepository(key string) (any, error)
}

// repositoryManager is a thread-safe implementation of the Manager interface.
type repositoryManager struct {
	mu    sync.RWMutex
	repos map[string]any
}

// NewManager creates and returns a new Manager implementation.
func NewManager() Manager {
	return &repositoryManager{
		repos: make(map[string]any),
	}
}

// RegisterRepository stores the provided repository under the given key.
func (rm *repositoryManager) RegisterRepository(key string, repo any) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, exists := rm.repos[key]; exists {
		return fmt.Errorf("repository with key %q already registered", key)
	}
	rm.repos[key] = repo
	return nil
}

// GetRepository retrieves the repository associated with the given key.
func (rm *repositoryManager) GetRepository(key string) (any, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	repo, exists := rm.repos[key]
	if !exists {
		return nil, fmt.Errorf("repository with key %q not found", key)
	}
	return repo, nil
}
