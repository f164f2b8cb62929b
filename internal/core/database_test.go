// AngelaMos | 2026
// database_test.go

package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestInTxCommits(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM lessons`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(context.Background(), `DELETE FROM lessons WHERE course_id = $1`, "c1")
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackAndKeepsCause(t *testing.T) {
	db, mock := newMockDB(t)
	cause := errors.New("step failed")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := InTx(context.Background(), db, func(*sqlx.Tx) error { return cause })
	assert.ErrorIs(t, err, cause)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = InTx(context.Background(), db, func(*sqlx.Tx) error { panic("boom") })
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxBeginFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	called := false
	err := InTx(context.Background(), db, func(*sqlx.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
	assert.False(t, called)
}

func TestIsDuplicateKeyError(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	other := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsDuplicateKeyError(dup))
	assert.False(t, IsDuplicateKeyError(other))
	assert.False(t, IsDuplicateKeyError(errors.New("plain")))
}

func TestJitteredDurationStaysWithinBound(t *testing.T) {
	base := time.Hour
	for range 50 {
		d := jitteredDuration(base)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/7)
	}
	assert.Equal(t, time.Duration(0), jitteredDuration(0))
}
