// AngelaMos | 2026
// entity.go

package enrollment

import (
	"time"
)

type Enrollment struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	CourseID   string    `db:"course_id"`
	EnrolledAt time.Time `db:"enrolled_at"`
}

type Progress struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	LessonID    string     `db:"lesson_id"`
	Completed   bool       `db:"completed"`
	CompletedAt *time.Time `db:"completed_at"`
}

// LessonProgress is one lesson of a course joined with the caller's progress
// row. Recorded is false when no row exists yet and the other progress
// fields hold defaults; nothing is written for such lessons.
type LessonProgress struct {
	LessonID    string     `db:"lesson_id"`
	Title       string     `db:"title"`
	OrderIndex  int        `db:"order_index"`
	Recorded    bool       `db:"recorded"`
	Completed   bool       `db:"completed"`
	CompletedAt *time.Time `db:"completed_at"`
}

type CourseProgress struct {
	CourseID         string
	Lessons          []LessonProgress
	TotalLessons     int
	CompletedLessons int
	Percentage       float64
}

type MyCourse struct {
	EnrollmentID     string    `db:"enrollment_id"`
	CourseID         string    `db:"course_id"`
	Title            string    `db:"title"`
	Description      string    `db:"description"`
	AuthorID         string    `db:"author_id"`
	EnrolledAt       time.Time `db:"enrolled_at"`
	TotalLessons     int       `db:"total_lessons"`
	CompletedLessons int       `db:"completed_lessons"`
}

func (m MyCourse) Percentage() float64 {
	return percentage(m.CompletedLessons, m.TotalLessons)
}

// percentage is 0 for a course with no lessons.
func percentage(completed, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(completed) * 100.0 / float64(total)
}
