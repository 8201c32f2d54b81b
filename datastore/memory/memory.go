/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides an in-process concurrent map implementation of the
// DataStore interface.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/suparena/repokit/datastore"
	"github.com/suparena/repokit/errors"
	"github.com/suparena/repokit/query"
	"github.com/suparena/repokit/registry"
)

// Store is a thread-safe in-memory implementation of datastore.DataStore.
// Entities are held by value in a map guarded by a RW mutex; insertion order
// is preserved so unsorted reads are deterministic.
type Store[T any, K comparable] struct {
	mu    sync.RWMutex
	data  map[K]T
	order []K
	desc  registry.Descriptor[T, K]
}

// New creates a store using the given descriptor for key handling.
func New[T any, K comparable](desc registry.Descriptor[T, K]) *Store[T, K] {
	if desc.TypeName == "" {
		desc.TypeName = registry.TypeNameOf[T]()
	}
	return &Store[T, K]{
		data: make(map[K]T),
		desc: desc,
	}
}

// NewFromRegistry creates a store using the descriptor registered for T.
func NewFromRegistry[T any, K comparable]() (*Store[T, K], error) {
	desc, ok := registry.GetDescriptor[T, K]()
	if !ok {
		return nil, errors.NewValidationError("descriptor", "no descriptor registered for entity type")
	}
	return New(desc), nil
}

// Insert stores a new entity, assigning a generated key when the entity
// arrives with the zero key and the descriptor can mint one.
func (s *Store[T, K]) Insert(ctx context.Context, entity T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(entity)
}

func (s *Store[T, K]) insertLocked(entity T) (T, error) {
	var zero T
	key := s.desc.Key(entity)

	var zeroKey K
	if key == zeroKey {
		if s.desc.NewKey == nil {
			return zero, errors.NewValidationError("key", "entity has no key and no key generator is configured")
		}
		key = s.desc.NewKey()
		if s.desc.SetKey != nil {
			s.desc.SetKey(&entity, key)
		}
	}

	if _, exists := s.data[key]; exists {
		return zero, errors.NewAlreadyExistsError(s.desc.TypeName, keyString(key))
	}

	s.data[key] = entity
	s.order = append(s.order, key)
	return entity, nil
}

// GetByID retrieves an entity by key, or nil when absent.
func (s *Store[T, K]) GetByID(ctx context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entity, exists := s.data[key]; exists {
		return &entity, nil
	}
	return nil, nil
}

// Get retrieves entities matching the options. Nil options mean no
// constraints.
func (s *Store[T, K]) Get(ctx context.Context, opts *query.Options[T]) ([]T, error) {
	if opts != nil {
		if err := opts.Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	matched := make([]T, 0, len(s.order))
	for _, key := range s.order {
		entity := s.data[key]
		if opts.Matches(entity) {
			matched = append(matched, entity)
		}
	}
	s.mu.RUnlock()

	if opts == nil {
		return matched, nil
	}

	sortEntities(matched, opts)
	return paginate(matched, opts), nil
}

// Update replaces an existing entity.
func (s *Store[T, K]) Update(ctx context.Context, entity T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(entity)
}

func (s *Store[T, K]) updateLocked(entity T) (T, error) {
	var zero T
	key := s.desc.Key(entity)

	if _, exists := s.data[key]; !exists {
		return zero, errors.NewNotFoundError(s.desc.TypeName, keyString(key))
	}

	s.data[key] = entity
	return entity, nil
}

// Delete removes an entity by value.
func (s *Store[T, K]) Delete(ctx context.Context, entity T) (bool, error) {
	return s.DeleteByID(ctx, s.desc.Key(entity))
}

// DeleteByID removes an entity by key.
func (s *Store[T, K]) DeleteByID(ctx context.Context, key K) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(key), nil
}

func (s *Store[T, K]) deleteLocked(key K) bool {
	if _, exists := s.data[key]; !exists {
		return false
	}
	delete(s.data, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// InsertRange stores a batch of entities. Entities are inserted in order;
// the batch is not atomic — on failure, entities inserted so far remain.
func (s *Store[T, K]) InsertRange(ctx context.Context, entities []T) ([]T, error) {
	if entities == nil {
		return nil, errors.NewNilArgumentError("entities")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]T, 0, len(entities))
	for _, entity := range entities {
		inserted, err := s.insertLocked(entity)
		if err != nil {
			return nil, err
		}
		stored = append(stored, inserted)
	}
	return stored, nil
}

// UpdateRange replaces a batch of entities.
func (s *Store[T, K]) UpdateRange(ctx context.Context, entities []T) ([]T, error) {
	if entities == nil {
		return nil, errors.NewNilArgumentError("entities")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]T, 0, len(entities))
	for _, entity := range entities {
		updated, err := s.updateLocked(entity)
		if err != nil {
			return nil, err
		}
		stored = append(stored, updated)
	}
	return stored, nil
}

// DeleteRange removes a batch of entities by value.
func (s *Store[T, K]) DeleteRange(ctx context.Context, entities []T) (int, error) {
	if entities == nil {
		return 0, errors.NewNilArgumentError("entities")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, entity := range entities {
		if s.deleteLocked(s.desc.Key(entity)) {
			removed++
		}
	}
	return removed, nil
}

// DeleteWhere removes all entities matching the options' filter.
func (s *Store[T, K]) DeleteWhere(ctx context.Context, opts *query.Options[T]) (int, error) {
	if opts == nil {
		return 0, errors.NewNilArgumentError("opts")
	}
	if err := opts.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var doomed []K
	for _, key := range s.order {
		if opts.Matches(s.data[key]) {
			doomed = append(doomed, key)
		}
	}
	for _, key := range doomed {
		s.deleteLocked(key)
	}
	return len(doomed), nil
}

// Stream enumerates matching entities over a channel. A snapshot is taken
// under the read lock, then sent without holding it.
func (s *Store[T, K]) Stream(ctx context.Context, opts *query.Options[T], streamOpts ...datastore.StreamOption) <-chan datastore.StreamResult[T] {
	options := datastore.DefaultStreamOptions()
	for _, opt := range streamOpts {
		opt(&options)
	}

	resultCh := make(chan datastore.StreamResult[T], options.BufferSize)

	go func() {
		defer close(resultCh)

		snapshot, err := s.Get(ctx, opts)
		if err != nil {
			resultCh <- datastore.StreamResult[T]{Error: err}
			return
		}

		start := time.Now()
		for i, entity := range snapshot {
			select {
			case <-ctx.Done():
				return
			case resultCh <- datastore.StreamResult[T]{
				Item: entity,
				Meta: datastore.StreamMeta{
					Index:      int64(i),
					PageNumber: 1,
					Timestamp:  time.Now(),
				},
			}:
			}
		}

		if options.ProgressHandler != nil {
			progress := datastore.StreamProgress{
				ItemsProcessed: int64(len(snapshot)),
				PagesProcessed: 1,
				StartTime:      start,
			}
			if elapsed := time.Since(start).Seconds(); elapsed > 0 {
				progress.CurrentRate = float64(len(snapshot)) / elapsed
			}
			options.ProgressHandler(progress)
		}
	}()

	return resultCh
}

// Len returns the number of stored entities.
func (s *Store[T, K]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Clear removes all stored entities.
func (s *Store[T, K]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[K]T)
	s.order = nil
}

func sortEntities[T any](items []T, opts *query.Options[T]) {
	switch {
	case opts.Less != nil:
		sort.SliceStable(items, func(i, j int) bool { return opts.Less(items[i], items[j]) })
	case opts.SortField != "":
		desc := opts.SortDirection == query.Descending
		sort.SliceStable(items, func(i, j int) bool {
			less := lessByField(items[i], items[j], opts.SortField)
			if desc {
				return !less && !equalByField(items[i], items[j], opts.SortField)
			}
			return less
		})
	}
}

func paginate[T any](items []T, opts *query.Options[T]) []T {
	if opts.Offset >= len(items) {
		return []T{}
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

func fieldValue(entity any, field string) (reflect.Value, bool) {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	f := v.FieldByName(field)
	if !f.IsValid() {
		return reflect.Value{}, false
	}
	return f, true
}

func lessByField(a, b any, field string) bool {
	fa, okA := fieldValue(a, field)
	fb, okB := fieldValue(b, field)
	if !okA || !okB {
		return false
	}

	switch fa.Kind() {
	case reflect.String:
		return fa.String() < fb.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fa.Int() < fb.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fa.Uint() < fb.Uint()
	case reflect.Float32, reflect.Float64:
		return fa.Float() < fb.Float()
	default:
		if ta, ok := fa.Interface().(time.Time); ok {
			if tb, ok := fb.Interface().(time.Time); ok {
				return ta.Before(tb)
			}
		}
		return false
	}
}

func equalByField(a, b any, field string) bool {
	fa, okA := fieldValue(a, field)
	fb, okB := fieldValue(b, field)
	if !okA || !okB {
		return false
	}
	return reflect.DeepEqual(fa.Interface(), fb.Interface())
}

func keyString(key any) string {
	return fmt.Sprintf("%v", key)
}
