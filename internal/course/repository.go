// AngelaMos | 2026
// repository.go

package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

type Repository interface {
	ListCourses(ctx context.Context) ([]Course, error)
	ListCoursesByAuthor(ctx context.Context, authorID string) ([]Course, error)
	GetCourse(ctx context.Context, id string) (*Course, error)
	CreateCourse(ctx context.Context, c *Course) error
	UpdateCourse(ctx context.Context, c *Course) error
	UpdateAccess(
		ctx context.Context,
		id string,
		restricted bool,
		emails []string,
	) error
	DeleteCourseCascade(ctx context.Context, id string) error

	ListLessons(ctx context.Context, courseID string) ([]Lesson, error)
	ListAllLessons(ctx context.Context) ([]Lesson, error)
	ListLessonsForUser(ctx context.Context, userID string) ([]Lesson, error)
	GetLesson(ctx context.Context, id string) (*Lesson, error)
	CreateLesson(ctx context.Context, l *Lesson) error
	UpdateLesson(ctx context.Context, l *Lesson) error
	DeleteLessonCascade(ctx context.Context, id string) error
	ReorderLessons(
		ctx context.Context,
		courseID string,
		orderedIDs []string,
	) ([]Lesson, error)
}

type repository struct {
	db core.TxDB
}

func NewRepository(db core.TxDB) Repository {
	return &repository{db: db}
}

const courseColumns = `
	id, title, description, author_id, restricted_to_allow_list,
	allowed_emails, created_at, updated_at`

const lessonColumns = `
	id, course_id, title, content, video_url, pdf_url, order_index,
	created_at, updated_at`

func (r *repository) ListCourses(ctx context.Context) ([]Course, error) {
	query := `SELECT ` + courseColumns + `
		FROM courses
		ORDER BY created_at, id`

	courses := []Course{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	return courses, nil
}

func (r *repository) ListCoursesByAuthor(
	ctx context.Context,
	authorID string,
) ([]Course, error) {
	query := `SELECT ` + courseColumns + `
		FROM courses
		WHERE author_id = $1
		ORDER BY created_at, id`

	courses := []Course{}
	if err := r.db.SelectContext(ctx, &courses, query, authorID); err != nil {
		return nil, fmt.Errorf("list courses by author: %w", err)
	}

	return courses, nil
}

func (r *repository) GetCourse(ctx context.Context, id string) (*Course, error) {
	query := `SELECT ` + courseColumns + `
		FROM courses
		WHERE id = $1`

	var c Course
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get course: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	return &c, nil
}

func (r *repository) CreateCourse(ctx context.Context, c *Course) error {
	query := `
		INSERT INTO courses (
			id, title, description, author_id,
			restricted_to_allow_list, allowed_emails
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, c, query,
		c.ID,
		c.Title,
		c.Description,
		c.AuthorID,
		c.Restricted,
		pq.StringArray(c.AllowedEmails),
	)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

func (r *repository) UpdateCourse(ctx context.Context, c *Course) error {
	query := `
		UPDATE courses
		SET title = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID,
		c.Title,
		c.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update course: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	return nil
}

func (r *repository) UpdateAccess(
	ctx context.Context,
	id string,
	restricted bool,
	emails []string,
) error {
	query := `
		UPDATE courses
		SET restricted_to_allow_list = $2,
		    allowed_emails = $3,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, restricted, pq.StringArray(emails))
	if err != nil {
		return fmt.Errorf("update course access: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course access: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update course access: %w", core.ErrNotFound)
	}

	return nil
}

// DeleteCourseCascade removes a course and everything hanging off it in one
// transaction: progress, lessons, enrollments, then the course row.
func (r *repository) DeleteCourseCascade(ctx context.Context, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		steps := []struct {
			name  string
			query string
		}{
			{"delete progress", `
				DELETE FROM lesson_progress
				WHERE lesson_id IN (SELECT id FROM lessons WHERE course_id = $1)`},
			{"delete lessons", `DELETE FROM lessons WHERE course_id = $1`},
			{"delete enrollments", `DELETE FROM course_enrollments WHERE course_id = $1`},
		}

		for _, step := range steps {
			if _, err := tx.ExecContext(ctx, step.query, id); err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete course: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("delete course: %w", core.ErrNotFound)
		}

		return nil
	})
}

func (r *repository) ListLessons(
	ctx context.Context,
	courseID string,
) ([]Lesson, error) {
	query := `SELECT ` + lessonColumns + `
		FROM lessons
		WHERE course_id = $1
		ORDER BY order_index, id`

	lessons := []Lesson{}
	if err := r.db.SelectContext(ctx, &lessons, query, courseID); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}

	return lessons, nil
}

func (r *repository) ListAllLessons(ctx context.Context) ([]Lesson, error) {
	query := `SELECT ` + lessonColumns + `
		FROM lessons
		ORDER BY course_id, order_index, id`

	lessons := []Lesson{}
	if err := r.db.SelectContext(ctx, &lessons, query); err != nil {
		return nil, fmt.Errorf("list all lessons: %w", err)
	}

	return lessons, nil
}

func (r *repository) ListLessonsForUser(
	ctx context.Context,
	userID string,
) ([]Lesson, error) {
	query := `
		SELECT l.id, l.course_id, l.title, l.content, l.video_url, l.pdf_url,
		       l.order_index, l.created_at, l.updated_at
		FROM lessons l
		JOIN courses c ON c.id = l.course_id
		WHERE c.author_id = $1
		   OR EXISTS (
		       SELECT 1 FROM course_enrollments e
		       WHERE e.course_id = l.course_id AND e.user_id = $1
		   )
		ORDER BY l.course_id, l.order_index, l.id`

	lessons := []Lesson{}
	if err := r.db.SelectContext(ctx, &lessons, query, userID); err != nil {
		return nil, fmt.Errorf("list lessons for user: %w", err)
	}

	return lessons, nil
}

func (r *repository) GetLesson(ctx context.Context, id string) (*Lesson, error) {
	query := `SELECT ` + lessonColumns + `
		FROM lessons
		WHERE id = $1`

	var l Lesson
	err := r.db.GetContext(ctx, &l, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get lesson: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}

	return &l, nil
}

// CreateLesson appends the lesson after the current last one.
func (r *repository) CreateLesson(ctx context.Context, l *Lesson) error {
	query := `
		INSERT INTO lessons (
			id, course_id, title, content, video_url, pdf_url, order_index
		)
		SELECT $1, $2, $3, $4, $5, $6, COALESCE(MAX(order_index), 0) + 1
		FROM lessons
		WHERE course_id = $2
		RETURNING order_index, created_at, updated_at`

	err := r.db.GetContext(ctx, l, query,
		l.ID,
		l.CourseID,
		l.Title,
		l.Content,
		l.VideoURL,
		l.PDFURL,
	)
	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}

	return nil
}

func (r *repository) UpdateLesson(ctx context.Context, l *Lesson) error {
	query := `
		UPDATE lessons
		SET title = $2, content = $3, video_url = $4, pdf_url = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &l.UpdatedAt, query,
		l.ID,
		l.Title,
		l.Content,
		l.VideoURL,
		l.PDFURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update lesson: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}

	return nil
}

func (r *repository) DeleteLessonCascade(ctx context.Context, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM lesson_progress WHERE lesson_id = $1`, id,
		); err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete lesson: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete lesson: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("delete lesson: %w", core.ErrNotFound)
		}

		return nil
	})
}

func (r *repository) ReorderLessons(
	ctx context.Context,
	courseID string,
	orderedIDs []string,
) ([]Lesson, error) {
	var result []Lesson

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current := []Lesson{}
		if err := tx.SelectContext(ctx, &current, `SELECT `+lessonColumns+`
			FROM lessons
			WHERE course_id = $1
			ORDER BY order_index, id
			FOR UPDATE`, courseID); err != nil {
			return fmt.Errorf("lock lessons: %w", err)
		}

		planned := planReorder(current, orderedIDs)

		for _, l := range planned {
			if _, err := tx.ExecContext(ctx, `
				UPDATE lessons
				SET order_index = $2, updated_at = NOW()
				WHERE id = $1`, l.ID, l.OrderIndex,
			); err != nil {
				return fmt.Errorf("set order of %s: %w", l.ID, err)
			}
		}

		result = planned
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reorder lessons: %w", err)
	}

	return result, nil
}
