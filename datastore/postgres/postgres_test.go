/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/repokit/errors"
	"github.com/suparena/repokit/query"
	"github.com/suparena/repokit/specification"
)

type playerRow struct {
	ID     string `db:"id"`
	Name   string `db:"name"`
	Rating int    `db:"rating"`
}

func playerMapping() Mapping[playerRow, string] {
	return Mapping[playerRow, string]{
		Table:     "players",
		KeyColumn: "id",
		Columns:   []string{"id", "name", "rating"},
		Args: func(p playerRow) map[string]any {
			return map[string]any{"id": p.ID, "name": p.Name, "rating": p.Rating}
		},
		Key:    func(p playerRow) string { return p.ID },
		SetKey: func(p *playerRow, k string) { p.ID = k },
		NewKey: func() string { return "generated-key" },
	}
}

func newMockStore(t *testing.T) (*Store[playerRow, string], sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	store, err := New(sqlxDB, playerMapping())
	require.NoError(t, err)

	return store, mock, func() { _ = db.Close() }
}

func TestNewValidatesMapping(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	_, err = New[playerRow, string](nil, playerMapping())
	assert.True(t, errors.IsNilArgument(err))

	bad := playerMapping()
	bad.Table = ""
	_, err = New(sqlxDB, bad)
	assert.True(t, errors.IsValidationError(err))

	bad = playerMapping()
	bad.Args = nil
	_, err = New(sqlxDB, bad)
	assert.True(t, errors.IsValidationError(err))
}

func TestInsert(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO players (id, name, rating) VALUES")).
		WithArgs("p1", "Ann", 1500).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stored, err := store.Insert(ctx, playerRow{ID: "p1", Name: "Ann", Rating: 1500})
	require.NoError(t, err)
	assert.Equal(t, "p1", stored.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertGeneratesKey(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO players")).
		WithArgs("generated-key", "Ann", 1500).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stored, err := store.Insert(context.Background(), playerRow{Name: "Ann", Rating: 1500})
	require.NoError(t, err)
	assert.Equal(t, "generated-key", stored.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDuplicateKey(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO players")).
		WithArgs("p1", "Ann", 1500).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.Insert(context.Background(), playerRow{ID: "p1", Name: "Ann", Rating: 1500})
	assert.True(t, errors.IsAlreadyExists(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "rating"}).
			AddRow("p1", "Ann", 1500)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, rating FROM players WHERE id = $1")).
			WithArgs("p1").
			WillReturnRows(rows)

		found, err := store.GetByID(ctx, "p1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Ann", found.Name)
	})

	t.Run("Absent", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, rating FROM players WHERE id = $1")).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		found, err := store.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithWhereSortAndPage(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	rows := sqlmock.NewRows([]string{"id", "name", "rating"}).
		AddRow("p2", "Ben", 1800).
		AddRow("p1", "Ann", 1500)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, rating FROM players WHERE rating >= ? ORDER BY rating DESC LIMIT 2")).
		WithArgs(1500).
		WillReturnRows(rows)

	opts := query.NewOptions[playerRow]().
		Where("rating >= :min", map[string]any{"min": 1500}).
		OrderBy("rating", query.Descending).
		Page(0, 2)

	got, err := store.Get(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ben", got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRejectsInProcessFilter(t *testing.T) {
	store, _, done := newMockStore(t)
	defer done()

	spec := specification.ByFunc[playerRow](func(p playerRow) bool { return p.Rating > 0 })
	_, err := store.Get(context.Background(), query.NewOptions[playerRow]().FilterBy(spec))
	assert.True(t, errors.IsValidationError(err))
}

func TestGetRejectsUnknownSortColumn(t *testing.T) {
	store, _, done := newMockStore(t)
	defer done()

	_, err := store.Get(context.Background(), query.NewOptions[playerRow]().OrderBy("password", query.Ascending))
	assert.True(t, errors.IsValidationError(err))
}

func TestUpdate(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	t.Run("Existing", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE players SET name = ?, rating = ? WHERE id = ?")).
			WithArgs("Anna", 1600, "p1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		updated, err := store.Update(ctx, playerRow{ID: "p1", Name: "Anna", Rating: 1600})
		require.NoError(t, err)
		assert.Equal(t, "Anna", updated.Name)
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE players SET")).
			WithArgs("Ghost", 0, "ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := store.Update(ctx, playerRow{ID: "ghost", Name: "Ghost"})
		assert.True(t, errors.IsNotFound(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByID(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM players WHERE id = $1")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	removed, err := store.DeleteByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, removed)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM players WHERE id = $1")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	removed, err = store.DeleteByID(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRangeTransaction(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO players")).
		WithArgs("p1", "Ann", 1500).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO players")).
		WithArgs("p2", "Ben", 1800).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	stored, err := store.InsertRange(context.Background(), []playerRow{
		{ID: "p1", Name: "Ann", Rating: 1500},
		{ID: "p2", Name: "Ben", Rating: 1800},
	})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRangeRollsBackOnMissingRow(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE players SET")).
		WithArgs("Ghost", 0, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := store.UpdateRange(context.Background(), []playerRow{{ID: "ghost", Name: "Ghost"}})
	assert.True(t, errors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRange(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM players WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	removed, err := store.DeleteRange(context.Background(), []playerRow{
		{ID: "p1"}, {ID: "p2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWhere(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	t.Run("RequiresClause", func(t *testing.T) {
		_, err := store.DeleteWhere(ctx, query.NewOptions[playerRow]())
		assert.True(t, errors.IsValidationError(err))

		_, err = store.DeleteWhere(ctx, nil)
		assert.True(t, errors.IsNilArgument(err))
	})

	t.Run("WithClause", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM players WHERE rating < ?")).
			WithArgs(1000).
			WillReturnResult(sqlmock.NewResult(0, 3))

		removed, err := store.DeleteWhere(ctx, query.NewOptions[playerRow]().
			Where("rating < :floor", map[string]any{"floor": 1000}))
		require.NoError(t, err)
		assert.Equal(t, 3, removed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRangeNilSlices(t *testing.T) {
	store, _, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	_, err := store.InsertRange(ctx, nil)
	assert.True(t, errors.IsNilArgument(err))
	_, err = store.UpdateRange(ctx, nil)
	assert.True(t, errors.IsNilArgument(err))
	_, err = store.DeleteRange(ctx, nil)
	assert.True(t, errors.IsNilArgument(err))
}
