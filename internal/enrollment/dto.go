// AngelaMos | 2026
// dto.go

package enrollment

import (
	"time"
)

type EnrollmentResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CourseID   string    `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

type ProgressResponse struct {
	LessonID    string     `json:"lesson_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

type LessonProgressResponse struct {
	LessonID    string     `json:"lesson_id"`
	Title       string     `json:"title"`
	OrderIndex  int        `json:"order_index"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

type CourseProgressResponse struct {
	CourseID         string                   `json:"course_id"`
	TotalLessons     int                      `json:"total_lessons"`
	CompletedLessons int                      `json:"completed_lessons"`
	Percentage       float64                  `json:"percentage"`
	Lessons          []LessonProgressResponse `json:"lessons"`
}

type MyCourseResponse struct {
	EnrollmentID     string    `json:"enrollment_id"`
	CourseID         string    `json:"course_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	AuthorID         string    `json:"author_id"`
	EnrolledAt       time.Time `json:"enrolled_at"`
	TotalLessons     int       `json:"total_lessons"`
	CompletedLessons int       `json:"completed_lessons"`
	Percentage       float64   `json:"percentage"`
}

func ToEnrollmentResponse(e *Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:         e.ID,
		UserID:     e.UserID,
		CourseID:   e.CourseID,
		EnrolledAt: e.EnrolledAt,
	}
}

func ToProgressResponse(p *Progress) ProgressResponse {
	return ProgressResponse{
		LessonID:    p.LessonID,
		Completed:   p.Completed,
		CompletedAt: p.CompletedAt,
	}
}

func ToCourseProgressResponse(cp *CourseProgress) CourseProgressResponse {
	lessons := make([]LessonProgressResponse, 0, len(cp.Lessons))
	for _, l := range cp.Lessons {
		lessons = append(lessons, LessonProgressResponse{
			LessonID:    l.LessonID,
			Title:       l.Title,
			OrderIndex:  l.OrderIndex,
			Completed:   l.Completed,
			CompletedAt: l.CompletedAt,
		})
	}

	return CourseProgressResponse{
		CourseID:         cp.CourseID,
		TotalLessons:     cp.TotalLessons,
		CompletedLessons: cp.CompletedLessons,
		Percentage:       cp.Percentage,
		Lessons:          lessons,
	}
}

func ToMyCourseResponseList(courses []MyCourse) []MyCourseResponse {
	responses := make([]MyCourseResponse, 0, len(courses))
	for _, c := range courses {
		responses = append(responses, MyCourseResponse{
			EnrollmentID:     c.EnrollmentID,
			CourseID:         c.CourseID,
			Title:            c.Title,
			Description:      c.Description,
			AuthorID:         c.AuthorID,
			EnrolledAt:       c.EnrolledAt,
			TotalLessons:     c.TotalLessons,
			CompletedLessons: c.CompletedLessons,
			Percentage:       c.Percentage(),
		})
	}
	return responses
}
