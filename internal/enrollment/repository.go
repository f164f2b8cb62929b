// AngelaMos | 2026
// repository.go

package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

type Repository interface {
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	Create(ctx context.Context, e *Enrollment) error
	Get(ctx context.Context, userID, courseID string) (*Enrollment, error)
	DeleteWithProgress(ctx context.Context, userID, courseID string) error
	CompleteLesson(ctx context.Context, p *Progress, now time.Time) error
	CourseProgress(ctx context.Context, userID, courseID string) ([]LessonProgress, error)
	ListForUser(ctx context.Context, userID string) ([]MyCourse, error)
}

type repository struct {
	db core.TxDB
}

func NewRepository(db core.TxDB) Repository {
	return &repository{db: db}
}

func (r *repository) IsEnrolled(
	ctx context.Context,
	userID, courseID string,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM course_enrollments
			WHERE user_id = $1 AND course_id = $2
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, courseID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}

	return exists, nil
}

func (r *repository) Create(ctx context.Context, e *Enrollment) error {
	query := `
		INSERT INTO course_enrollments (id, user_id, course_id, enrolled_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, e.ID, e.UserID, e.CourseID, e.EnrolledAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create enrollment: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	return nil
}

func (r *repository) Get(
	ctx context.Context,
	userID, courseID string,
) (*Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, enrolled_at
		FROM course_enrollments
		WHERE user_id = $1 AND course_id = $2`

	var e Enrollment
	err := r.db.GetContext(ctx, &e, query, userID, courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get enrollment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}

	return &e, nil
}

// DeleteWithProgress drops the user's progress on the course's lessons and
// then the enrollment, in one transaction.
func (r *repository) DeleteWithProgress(
	ctx context.Context,
	userID, courseID string,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM lesson_progress
			WHERE user_id = $1
			  AND lesson_id IN (SELECT id FROM lessons WHERE course_id = $2)`,
			userID, courseID,
		); err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			DELETE FROM course_enrollments
			WHERE user_id = $1 AND course_id = $2`,
			userID, courseID,
		)
		if err != nil {
			return fmt.Errorf("delete enrollment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete enrollment: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("delete enrollment: %w", core.ErrNotFound)
		}

		return nil
	})
}

// CompleteLesson upserts the progress row. An existing completed_at is kept.
func (r *repository) CompleteLesson(
	ctx context.Context,
	p *Progress,
	now time.Time,
) error {
	query := `
		INSERT INTO lesson_progress (id, user_id, lesson_id, completed, completed_at)
		VALUES ($1, $2, $3, TRUE, $4)
		ON CONFLICT (user_id, lesson_id) DO UPDATE
		SET completed = TRUE,
		    completed_at = COALESCE(lesson_progress.completed_at, EXCLUDED.completed_at)
		RETURNING id, completed, completed_at`

	err := r.db.GetContext(ctx, p, query, p.ID, p.UserID, p.LessonID, now)
	if err != nil {
		return fmt.Errorf("complete lesson: %w", err)
	}

	return nil
}

func (r *repository) CourseProgress(
	ctx context.Context,
	userID, courseID string,
) ([]LessonProgress, error) {
	query := `
		SELECT l.id AS lesson_id,
		       l.title,
		       l.order_index,
		       p.id IS NOT NULL AS recorded,
		       COALESCE(p.completed, FALSE) AS completed,
		       p.completed_at
		FROM lessons l
		LEFT JOIN lesson_progress p
		       ON p.lesson_id = l.id AND p.user_id = $1
		WHERE l.course_id = $2
		ORDER BY l.order_index, l.id`

	rows := []LessonProgress{}
	if err := r.db.SelectContext(ctx, &rows, query, userID, courseID); err != nil {
		return nil, fmt.Errorf("course progress: %w", err)
	}

	return rows, nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]MyCourse, error) {
	query := `
		SELECT e.id AS enrollment_id,
		       c.id AS course_id,
		       c.title,
		       c.description,
		       c.author_id,
		       e.enrolled_at,
		       (SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS total_lessons,
		       (SELECT COUNT(*)
		          FROM lesson_progress p
		          JOIN lessons l ON l.id = p.lesson_id
		         WHERE l.course_id = c.id
		           AND p.user_id = e.user_id
		           AND p.completed) AS completed_lessons
		FROM course_enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1
		ORDER BY e.enrolled_at, e.id`

	courses := []MyCourse{}
	if err := r.db.SelectContext(ctx, &courses, query, userID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	return courses, nil
}
