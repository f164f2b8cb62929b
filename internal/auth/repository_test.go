// AngelaMos | 2026
// repository_test.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestRepositoryFindPrincipalByToken(t *testing.T) {
	ctx := context.Background()

	t.Run("joins session to user", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		rows := sqlmock.NewRows([]string{"id", "email", "role"}).
			AddRow("u-1", "creator@example.com", "CREATOR")

		mock.ExpectQuery(`SELECT u.id, u.email, u.role\s+FROM sessions s\s+JOIN users u`).
			WithArgs("tok").
			WillReturnRows(rows)

		p, err := repo.FindPrincipalByToken(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, &access.Principal{
			UserID: "u-1",
			Email:  "creator@example.com",
			Role:   access.RoleCreator,
		}, p)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(`FROM sessions s`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindPrincipalByToken(ctx, "missing")
		assert.ErrorIs(t, err, core.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepositorySaveSessionUpserts(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`INSERT INTO sessions \(token, user_id\)\s+VALUES \(\$1, \$2\)\s+ON CONFLICT \(user_id\)`).
		WithArgs("tok", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveSession(context.Background(), "u-1", "tok"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySetResetTokenUnknownUser(t *testing.T) {
	repo, mock := newMockRepository(t)
	expiry := time.Now().Add(time.Hour)

	mock.ExpectExec(`UPDATE users\s+SET password_reset_token = \$2`).
		WithArgs("ghost", "r1", expiry).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetResetToken(context.Background(), "ghost", "r1", expiry)
	assert.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCompleteReset(t *testing.T) {
	ctx := context.Background()

	t.Run("commits password swap and session drop together", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE users\s+SET password_hash = \$3`).
			WithArgs("u-1", "r1", "digest").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM sessions WHERE user_id = \$1`).
			WithArgs("u-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.CompleteReset(ctx, "u-1", "r1", "digest"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("consumed token rolls back", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE users`).
			WithArgs("u-1", "r1", "digest").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.CompleteReset(ctx, "u-1", "r1", "digest")
		assert.ErrorIs(t, err, core.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("session delete failure rolls back", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		boom := errors.New("lock timeout")

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE users`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM sessions`).
			WillReturnError(boom)
		mock.ExpectRollback()

		err := repo.CompleteReset(ctx, "u-1", "r1", "digest")
		assert.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
