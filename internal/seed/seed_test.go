// AngelaMos | 2026
// seed_test.go

package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/course-backend/internal/config"
)

type stubHasher struct{}

func (stubHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (stubHasher) Verify(string, *string) (bool, string, error) { return false, "", nil }

func newSeeder(t *testing.T, enabled bool) (*Seeder, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.SeedConfig{
		Enabled:         enabled,
		AdminEmail:      "admin@example.com",
		AdminPassword:   "pass1234",
		StudentEmail:    "student@example.com",
		StudentPassword: "pass4321",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(sqlx.NewDb(db, "sqlmock"), stubHasher{}, cfg, logger), mock
}

func TestRunSeedsEmptyDatabase(t *testing.T) {
	s, mock := newSeeder(t, true)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "admin@example.com", "Admin User", "hashed:pass1234", "ADMIN").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "student@example.com", "Demo Student", "hashed:pass4321", "STUDENT").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO courses`).WillReturnResult(sqlmock.NewResult(0, 1))
	for i := 1; i <= 3; i++ {
		mock.ExpectExec(`INSERT INTO lessons`).
			WithArgs(
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), i,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(`INSERT INTO courses`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	seeded, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, seeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunSkipsPopulatedDatabase(t *testing.T) {
	s, mock := newSeeder(t, true)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	seeded, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, seeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunDisabledTouchesNothing(t *testing.T) {
	s, mock := newSeeder(t, false)

	seeded, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, seeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRollsBackOnFailure(t *testing.T) {
	s, mock := newSeeder(t, true)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	seeded, err := s.Run(context.Background())
	require.Error(t, err)
	assert.False(t, seeded)
	require.NoError(t, mock.ExpectationsWereMet())
}
