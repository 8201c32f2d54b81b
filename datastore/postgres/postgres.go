/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package postgres provides a relational implementation of the DataStore
// interface over sqlx.
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/suparena/repokit/errors"
	"github.com/suparena/repokit/query"
	"github.com/suparena/repokit/registry"
)

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

// Mapping tells the store how an entity type maps onto a table.
type Mapping[T any, K comparable] struct {
	// Table is the table name.
	Table string

	// KeyColumn is the primary key column.
	KeyColumn string

	// Columns lists every column written on insert/update, including the
	// key column. Column names must match the entity's db struct tags.
	Columns []string

	// Args produces the named arguments for an entity, keyed by column.
	Args func(entity T) map[string]any

	// Key extracts the entity's key.
	Key func(entity T) K

	// SetKey writes a key onto the entity.
	SetKey func(entity *T, key K)

	// NewKey mints a fresh key for inserts arriving with the zero key.
	// Optional.
	NewKey func() K
}

// Store is a relational implementation of datastore.DataStore. Filtering is
// pushed down as SQL: Options.Where carries a clause with named parameters;
// in-process Filter specifications are rejected since Go predicates cannot be
// translated to SQL.
type Store[T any, K comparable] struct {
	db       *sqlx.DB
	mapping  Mapping[T, K]
	typeName string

	insertStmt string
	updateStmt string
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// New creates a store for the given table mapping.
func New[T any, K comparable](db *sqlx.DB, mapping Mapping[T, K]) (*Store[T, K], error) {
	if db == nil {
		return nil, errors.NewNilArgumentError("db")
	}
	if mapping.Table == "" || mapping.KeyColumn == "" || len(mapping.Columns) == 0 {
		return nil, errors.NewValidationError("mapping", "table, key column and columns are required")
	}
	if mapping.Args == nil || mapping.Key == nil {
		return nil, errors.NewValidationError("mapping", "Args and Key functions are required")
	}

	s := &Store[T, K]{
		db:       db,
		mapping:  mapping,
		typeName: registry.TypeNameOf[T](),
	}
	s.insertStmt = buildInsert(mapping.Table, mapping.Columns)
	s.updateStmt = buildUpdate(mapping.Table, mapping.KeyColumn, mapping.Columns)
	return s, nil
}

func buildInsert(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		placeholders[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

func buildUpdate(table, keyColumn string, columns []string) string {
	assignments := make([]string, 0, len(columns))
	for _, c := range columns {
		if c == keyColumn {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = :%s", c, c))
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = :%s",
		table, strings.Join(assignments, ", "), keyColumn, keyColumn)
}

// Insert stores a new entity, assigning a generated key when needed.
func (s *Store[T, K]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T

	entity, err := s.assignKey(entity)
	if err != nil {
		return zero, err
	}

	if _, err := s.db.NamedExecContext(ctx, s.insertStmt, s.mapping.Args(entity)); err != nil {
		return zero, s.translate(err, entity)
	}
	return entity, nil
}

func (s *Store[T, K]) assignKey(entity T) (T, error) {
	var zeroKey K
	if s.mapping.Key(entity) != zeroKey {
		return entity, nil
	}
	if s.mapping.NewKey == nil {
		return entity, errors.NewValidationError("key", "entity has no key and no key generator is configured")
	}
	key := s.mapping.NewKey()
	if s.mapping.SetKey != nil {
		s.mapping.SetKey(&entity, key)
	}
	return entity, nil
}

func (s *Store[T, K]) translate(err error, entity T) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return errors.NewAlreadyExistsError(s.typeName, fmt.Sprintf("%v", s.mapping.Key(entity)))
	}
	return err
}

// GetByID retrieves an entity by key, or nil when absent.
func (s *Store[T, K]) GetByID(ctx context.Context, key K) (*T, error) {
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		strings.Join(s.mapping.Columns, ", "), s.mapping.Table, s.mapping.KeyColumn)

	var entity T
	if err := s.db.GetContext(ctx, &entity, stmt, key); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s failed: %w", s.typeName, err)
	}
	return &entity, nil
}

// Get retrieves entities matching the options.
func (s *Store[T, K]) Get(ctx context.Context, opts *query.Options[T]) ([]T, error) {
	stmt, args, err := s.buildSelect(opts)
	if err != nil {
		return nil, err
	}

	var entities []T
	if err := s.db.SelectContext(ctx, &entities, stmt, args...); err != nil {
		return nil, fmt.Errorf("query %s failed: %w", s.typeName, err)
	}
	return entities, nil
}

func (s *Store[T, K]) buildSelect(opts *query.Options[T]) (string, []any, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(s.mapping.Columns, ", "), s.mapping.Table)

	namedArgs := map[string]any{}
	if opts != nil {
		if err := opts.Validate(); err != nil {
			return "", nil, err
		}
		if opts.Filter != nil {
			return "", nil, errors.NewValidationError("filter",
				"in-process specifications are not supported by the postgres backend; use Where")
		}
		if opts.WhereClause != "" {
			fmt.Fprintf(&sb, " WHERE %s", opts.WhereClause)
			namedArgs = opts.WhereArgs
		}
		if opts.SortField != "" {
			if !s.knownColumn(opts.SortField) {
				return "", nil, errors.NewValidationError("sortField", "unknown column "+opts.SortField)
			}
			dir := "ASC"
			if opts.SortDirection == query.Descending {
				dir = "DESC"
			}
			fmt.Fprintf(&sb, " ORDER BY %s %s", opts.SortField, dir)
		}
		if opts.Limit > 0 {
			fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
		}
		if opts.Offset > 0 {
			fmt.Fprintf(&sb, " OFFSET %d", opts.Offset)
		}
	}

	stmt, args, err := sqlx.Named(sb.String(), namedArgs)
	if err != nil {
		return "", nil, fmt.Errorf("failed to bind query parameters: %w", err)
	}
	return s.db.Rebind(stmt), args, nil
}

func (s *Store[T, K]) knownColumn(name string) bool {
	for _, c := range s.mapping.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Update replaces an existing entity.
func (s *Store[T, K]) Update(ctx context.Context, entity T) (T, error) {
	var zero T

	res, err := s.db.NamedExecContext(ctx, s.updateStmt, s.mapping.Args(entity))
	if err != nil {
		return zero, fmt.Errorf("update %s failed: %w", s.typeName, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return zero, err
	}
	if affected == 0 {
		return zero, errors.NewNotFoundError(s.typeName, fmt.Sprintf("%v", s.mapping.Key(entity)))
	}
	return entity, nil
}

// Delete removes an entity by value.
func (s *Store[T, K]) Delete(ctx context.Context, entity T) (bool, error) {
	return s.DeleteByID(ctx, s.mapping.Key(entity))
}

// DeleteByID removes an entity by key.
func (s *Store[T, K]) DeleteByID(ctx context.Context, key K) (bool, error) {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", s.mapping.Table, s.mapping.KeyColumn)

	res, err := s.db.ExecContext(ctx, stmt, key)
	if err != nil {
		return false, fmt.Errorf("delete %s failed: %w", s.typeName, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// InsertRange stores a batch of entities inside one transaction.
func (s *Store[T, K]) InsertRange(ctx context.Context, entities []T) ([]T, error) {
	if entities == nil {
		return nil, errors.NewNilArgumentError("entities")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stored := make([]T, 0, len(entities))
	for _, entity := range entities {
		entity, err := s.assignKey(entity)
		if err != nil {
			return nil, err
		}
		if _, err := tx.NamedExecContext(ctx, s.insertStmt, s.mapping.Args(entity)); err != nil {
			return nil, s.translate(err, entity)
		}
		stored = append(stored, entity)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit insert batch: %w", err)
	}
	return stored, nil
}

// UpdateRange replaces a batch of entities inside one transaction.
func (s *Store[T, K]) UpdateRange(ctx context.Context, entities []T) ([]T, error) {
	if entities == nil {
		return nil, errors.NewNilArgumentError("entities")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, entity := range entities {
		res, err := tx.NamedExecContext(ctx, s.updateStmt, s.mapping.Args(entity))
		if err != nil {
			return nil, fmt.Errorf("update %s failed: %w", s.typeName, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, errors.NewNotFoundError(s.typeName, fmt.Sprintf("%v", s.mapping.Key(entity)))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update batch: %w", err)
	}
	return entities, nil
}

// DeleteRange removes a batch of entities by key inside one transaction.
func (s *Store[T, K]) DeleteRange(ctx context.Context, entities []T) (int, error) {
	if entities == nil {
		return 0, errors.NewNilArgumentError("entities")
	}

	keys := make([]K, len(entities))
	for i, entity := range entities {
		keys[i] = s.mapping.Key(entity)
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ANY($1)", s.mapping.Table, s.mapping.KeyColumn)
	res, err := s.db.ExecContext(ctx, stmt, pq.Array(keys))
	if err != nil {
		return 0, fmt.Errorf("delete batch failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// DeleteWhere removes all rows matching the options' where clause. A clause
// is required; an unbounded delete must be spelled out by the caller.
func (s *Store[T, K]) DeleteWhere(ctx context.Context, opts *query.Options[T]) (int, error) {
	if opts == nil {
		return 0, errors.NewNilArgumentError("opts")
	}
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if opts.WhereClause == "" {
		return 0, errors.NewValidationError("where", "a where clause is required for filtered deletes")
	}

	stmt, args, err := sqlx.Named(
		fmt.Sprintf("DELETE FROM %s WHERE %s", s.mapping.Table, opts.WhereClause),
		opts.WhereArgs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to bind delete parameters: %w", err)
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(stmt), args...)
	if err != nil {
		return 0, fmt.Errorf("filtered delete failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
