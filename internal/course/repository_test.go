// AngelaMos | 2026
// repository_test.go

package course

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestDeleteCourseCascadeCommits(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM lesson_progress\s+WHERE lesson_id IN \(SELECT id FROM lessons WHERE course_id = \$1\)`).
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM lessons WHERE course_id = \$1`).
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM course_enrollments WHERE course_id = \$1`).
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM courses WHERE id = \$1`).
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteCourseCascade(context.Background(), "c-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCourseCascadeRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM lesson_progress`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM lessons WHERE course_id`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM course_enrollments`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.DeleteCourseCascade(context.Background(), "c-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete enrollments")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCourseCascadeMissingCourse(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM lesson_progress`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM lessons`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM course_enrollments`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM courses`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteCourseCascade(context.Background(), "gone")
	assert.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteLessonCascade(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM lesson_progress WHERE lesson_id = \$1`).
		WithArgs("l-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM lessons WHERE id = \$1`).
		WithArgs("l-1").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.DeleteLessonCascade(context.Background(), "l-1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLessonAppendsAtEnd(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO lessons .*COALESCE\(MAX\(order_index\), 0\) \+ 1`).
		WithArgs("l-9", "c-1", "Intro", "", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"order_index", "created_at", "updated_at"}).
			AddRow(7, fixedTime, fixedTime))

	l := &Lesson{ID: "l-9", CourseID: "c-1", Title: "Intro"}
	require.NoError(t, repo.CreateLesson(context.Background(), l))
	assert.Equal(t, 7, l.OrderIndex)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReorderLessonsInTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	cols := []string{
		"id", "course_id", "title", "content", "video_url", "pdf_url",
		"order_index", "created_at", "updated_at",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM lessons\s+WHERE course_id = \$1\s+ORDER BY order_index, id\s+FOR UPDATE`).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a", "c-1", "A", "", nil, nil, 1, fixedTime, fixedTime).
			AddRow("b", "c-1", "B", "", nil, nil, 2, fixedTime, fixedTime))
	mock.ExpectExec(`UPDATE lessons`).WithArgs("b", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE lessons`).WithArgs("a", 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	lessons, err := repo.ReorderLessons(context.Background(), "c-1", []string{"b"})
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "b", lessons[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCourseNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM courses\s+WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetCourse(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
