// AngelaMos | 2026
// dto.go

package course

import (
	"time"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
)

type CreateCourseRequest struct {
	Title         string   `json:"title"                    validate:"required,max=200"`
	Description   string   `json:"description"              validate:"max=5000"`
	Restricted    bool     `json:"restricted_to_allow_list"`
	AllowedEmails []string `json:"allowed_emails"           validate:"max=1000"`
}

type UpdateCourseRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

type UpdateAccessRequest struct {
	Restricted    bool     `json:"restricted_to_allow_list"`
	AllowedEmails []string `json:"allowed_emails"           validate:"max=1000"`
}

type CreateLessonRequest struct {
	Title    string  `json:"title"     validate:"required,max=200"`
	Content  string  `json:"content"`
	VideoURL *string `json:"video_url" validate:"omitempty,max=2048"`
}

type UpdateLessonRequest struct {
	Title    string  `json:"title"     validate:"required,max=200"`
	Content  string  `json:"content"`
	VideoURL *string `json:"video_url" validate:"omitempty,max=2048"`
	ClearPDF bool    `json:"clear_pdf"`
}

type ReorderLessonsRequest struct {
	LessonIDs []string `json:"lesson_ids" validate:"required,dive,required"`
}

type CourseResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	AuthorID      string    `json:"author_id"`
	Restricted    bool      `json:"restricted_to_allow_list"`
	AllowedEmails []string  `json:"allowed_emails,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type LessonResponse struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	VideoURL   *string   `json:"video_url"`
	PDFURL     *string   `json:"pdf_url"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LessonListResponse fills Lessons or Summaries depending on Locked; the
// other one is always an empty array.
type LessonListResponse struct {
	CourseID  string           `json:"course_id"`
	Locked    bool             `json:"locked"`
	Lessons   []LessonResponse `json:"lessons"`
	Summaries []LessonSummary  `json:"summaries"`
}

// ToCourseResponse shows the allowlist only to callers who manage the course.
func ToCourseResponse(c *Course, p *access.Principal) CourseResponse {
	resp := CourseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		AuthorID:    c.AuthorID,
		Restricted:  c.Restricted,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if access.CanManageCourse(p, c.Rules()) {
		resp.AllowedEmails = append([]string{}, c.AllowedEmails...)
	}
	return resp
}

func ToCourseResponseList(courses []Course, p *access.Principal) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		responses = append(responses, ToCourseResponse(&c, p))
	}
	return responses
}

func ToLessonResponse(l *Lesson) LessonResponse {
	return LessonResponse{
		ID:         l.ID,
		CourseID:   l.CourseID,
		Title:      l.Title,
		Content:    l.Content,
		VideoURL:   l.VideoURL,
		PDFURL:     l.PDFURL,
		OrderIndex: l.OrderIndex,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func ToLessonResponseList(lessons []Lesson) []LessonResponse {
	responses := make([]LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		responses = append(responses, ToLessonResponse(&l))
	}
	return responses
}

func ToLessonListResponse(courseID string, listing *LessonListing) LessonListResponse {
	resp := LessonListResponse{
		CourseID:  courseID,
		Locked:    listing.Locked,
		Lessons:   []LessonResponse{},
		Summaries: []LessonSummary{},
	}
	if listing.Locked {
		if listing.Summaries != nil {
			resp.Summaries = listing.Summaries
		}
		return resp
	}
	resp.Lessons = ToLessonResponseList(listing.Lessons)
	return resp
}
