// AngelaMos | 2026
// service.go

package course

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
	"github.com/carterperez-dev/templates/course-backend/internal/storage"
)

var (
	ErrCourseNotFound = core.Reject(
		core.ErrNotFound,
		"COURSE_NOT_FOUND",
		"course not found",
	)
	ErrCourseRestricted = core.Reject(
		core.ErrForbidden,
		"COURSE_RESTRICTED",
		"course is restricted to an allowlist",
	)
	ErrNotCourseManager = core.Reject(
		core.ErrForbidden,
		"NOT_COURSE_MANAGER",
		"only an admin or the course author can do this",
	)
	ErrCreatorRequired = core.Reject(
		core.ErrForbidden,
		"CREATOR_REQUIRED",
		"creator or admin role required",
	)
	ErrLessonNotFound = core.Reject(
		core.ErrNotFound,
		"LESSON_NOT_FOUND",
		"lesson not found",
	)
	ErrLessonLocked = core.Reject(
		core.ErrForbidden,
		"LESSON_LOCKED",
		"enroll in the course to view this lesson",
	)
	ErrInvalidPDF = core.Reject(
		core.ErrInvalidInput,
		"INVALID_PDF",
		"uploaded file is not a PDF",
	)
)

// Upload is an attached file as received from the transport.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Service struct {
	repo        Repository
	enrollments access.EnrollmentChecker
	cache       CatalogCache
	store       storage.Store
}

func NewService(
	repo Repository,
	enrollments access.EnrollmentChecker,
	cache CatalogCache,
	store storage.Store,
) *Service {
	if cache == nil {
		cache = NoopCatalogCache()
	}
	return &Service{
		repo:        repo,
		enrollments: enrollments,
		cache:       cache,
		store:       store,
	}
}

// ListCourses returns every course the caller may discover. p may be nil.
func (s *Service) ListCourses(
	ctx context.Context,
	p *access.Principal,
) ([]Course, error) {
	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]Course, 0, len(catalog))
	for _, c := range catalog {
		if access.CanSeeCourse(p, c.Rules()) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

func (s *Service) catalog(ctx context.Context) ([]Course, error) {
	courses, generation, ok := s.cache.Get(ctx)
	if ok {
		return courses, nil
	}

	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, generation, courses)
	return courses, nil
}

func (s *Service) GetCourse(
	ctx context.Context,
	p *access.Principal,
	id string,
) (*Course, error) {
	c, err := s.FindCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if !access.CanSeeCourse(p, c.Rules()) {
		return nil, ErrCourseRestricted
	}
	return c, nil
}

// FindCourse loads a course without any policy check.
func (s *Service) FindCourse(ctx context.Context, id string) (*Course, error) {
	c, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) ListMyCreatedCourses(
	ctx context.Context,
	p *access.Principal,
) ([]Course, error) {
	if !access.IsCreator(p) {
		return nil, ErrCreatorRequired
	}
	return s.repo.ListCoursesByAuthor(ctx, p.UserID)
}

func (s *Service) CreateCourse(
	ctx context.Context,
	p *access.Principal,
	req CreateCourseRequest,
) (*Course, error) {
	if !access.IsCreator(p) {
		return nil, ErrCreatorRequired
	}

	c := &Course{
		ID:            uuid.New().String(),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		AuthorID:      p.UserID,
		Restricted:    req.Restricted,
		AllowedEmails: access.NormalizeEmails(req.AllowedEmails),
	}

	if err := s.repo.CreateCourse(ctx, c); err != nil {
		return nil, err
	}

	_ = s.cache.Invalidate(ctx)
	return c, nil
}

func (s *Service) UpdateCourse(
	ctx context.Context,
	p *access.Principal,
	id string,
	req UpdateCourseRequest,
) (*Course, error) {
	c, err := s.managedCourse(ctx, p, id)
	if err != nil {
		return nil, err
	}

	c.Title = strings.TrimSpace(req.Title)
	c.Description = req.Description

	if err := s.repo.UpdateCourse(ctx, c); err != nil {
		return nil, s.courseErr(err)
	}

	_ = s.cache.Invalidate(ctx)
	return c, nil
}

// UpdateAccess replaces the restriction flag and allowlist. Existing
// enrollments are left in place.
func (s *Service) UpdateAccess(
	ctx context.Context,
	p *access.Principal,
	id string,
	req UpdateAccessRequest,
) (*Course, error) {
	c, err := s.managedCourse(ctx, p, id)
	if err != nil {
		return nil, err
	}

	c.Restricted = req.Restricted
	c.AllowedEmails = access.NormalizeEmails(req.AllowedEmails)

	if err := s.repo.UpdateAccess(ctx, c.ID, c.Restricted, c.AllowedEmails); err != nil {
		return nil, s.courseErr(err)
	}

	// A catalog entry that outlives an access change would list the course
	// under its old visibility.
	if err := s.cache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCourse(
	ctx context.Context,
	p *access.Principal,
	id string,
) (err error) {
	ctx, finish := core.StartSpan(ctx, "course.delete",
		attribute.String("course.id", id),
	)
	defer func() { finish(err) }()

	if _, err = s.managedCourse(ctx, p, id); err != nil {
		return err
	}

	if err = s.repo.DeleteCourseCascade(ctx, id); err != nil {
		return s.courseErr(err)
	}

	_ = s.cache.Invalidate(ctx)
	return nil
}

// ListCourseLessons returns full lessons to callers that may view content
// and summaries to everyone else.
func (s *Service) ListCourseLessons(
	ctx context.Context,
	p *access.Principal,
	courseID string,
) (*Course, *LessonListing, error) {
	c, err := s.FindCourse(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}

	lessons, err := s.repo.ListLessons(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}

	full, err := access.CanViewFullContent(ctx, p, c.Rules(), s.enrollments)
	if err != nil {
		return nil, nil, err
	}

	if !full {
		return c, &LessonListing{Locked: true, Summaries: summarize(lessons)}, nil
	}
	return c, &LessonListing{Lessons: lessons}, nil
}

func (s *Service) GetLesson(
	ctx context.Context,
	p *access.Principal,
	id string,
) (*Lesson, error) {
	l, c, err := s.lessonWithCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	full, err := access.CanViewFullContent(ctx, p, c.Rules(), s.enrollments)
	if err != nil {
		return nil, err
	}
	if !full {
		return nil, ErrLessonLocked
	}
	return l, nil
}

// FindLesson loads a lesson without any policy check.
func (s *Service) FindLesson(ctx context.Context, id string) (*Lesson, error) {
	l, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *Service) ListAccessibleLessons(
	ctx context.Context,
	p *access.Principal,
) ([]Lesson, error) {
	if p == nil {
		return nil, core.UnauthorizedError("")
	}
	if access.IsAdmin(p) {
		return s.repo.ListAllLessons(ctx)
	}
	return s.repo.ListLessonsForUser(ctx, p.UserID)
}

func (s *Service) CreateLesson(
	ctx context.Context,
	p *access.Principal,
	courseID string,
	req CreateLessonRequest,
	pdf *Upload,
) (*Lesson, error) {
	if _, err := s.managedCourse(ctx, p, courseID); err != nil {
		return nil, err
	}

	l := &Lesson{
		ID:       uuid.New().String(),
		CourseID: courseID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		VideoURL: nonEmpty(req.VideoURL),
	}

	if pdf != nil {
		url, err := s.storePDF(ctx, pdf)
		if err != nil {
			return nil, err
		}
		l.PDFURL = &url
	}

	if err := s.repo.CreateLesson(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateLesson replaces title and content. A nil VideoURL keeps the stored
// one and an empty one clears it. A new PDF wins over ClearPDF.
func (s *Service) UpdateLesson(
	ctx context.Context,
	p *access.Principal,
	id string,
	req UpdateLessonRequest,
	pdf *Upload,
) (*Lesson, error) {
	l, c, err := s.lessonWithCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageCourse(p, c.Rules()) {
		return nil, ErrNotCourseManager
	}

	l.Title = strings.TrimSpace(req.Title)
	l.Content = req.Content
	if req.VideoURL != nil {
		l.VideoURL = nonEmpty(req.VideoURL)
	}

	switch {
	case pdf != nil:
		url, err := s.storePDF(ctx, pdf)
		if err != nil {
			return nil, err
		}
		l.PDFURL = &url
	case req.ClearPDF:
		l.PDFURL = nil
	}

	if err := s.repo.UpdateLesson(ctx, l); err != nil {
		return nil, s.lessonErr(err)
	}
	return l, nil
}

func (s *Service) DeleteLesson(
	ctx context.Context,
	p *access.Principal,
	id string,
) (err error) {
	ctx, finish := core.StartSpan(ctx, "lesson.delete",
		attribute.String("lesson.id", id),
	)
	defer func() { finish(err) }()

	_, c, err := s.lessonWithCourse(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanManageCourse(p, c.Rules()) {
		return ErrNotCourseManager
	}

	if err = s.repo.DeleteLessonCascade(ctx, id); err != nil {
		return s.lessonErr(err)
	}
	return nil
}

func (s *Service) ReorderLessons(
	ctx context.Context,
	p *access.Principal,
	courseID string,
	orderedIDs []string,
) ([]Lesson, error) {
	if _, err := s.managedCourse(ctx, p, courseID); err != nil {
		return nil, err
	}
	return s.repo.ReorderLessons(ctx, courseID, orderedIDs)
}

func (s *Service) managedCourse(
	ctx context.Context,
	p *access.Principal,
	id string,
) (*Course, error) {
	c, err := s.FindCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageCourse(p, c.Rules()) {
		return nil, ErrNotCourseManager
	}
	return c, nil
}

func (s *Service) lessonWithCourse(
	ctx context.Context,
	id string,
) (*Lesson, *Course, error) {
	l, err := s.FindLesson(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	c, err := s.FindCourse(ctx, l.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return l, c, nil
}

func (s *Service) storePDF(ctx context.Context, pdf *Upload) (string, error) {
	if http.DetectContentType(pdf.Data) != "application/pdf" {
		return "", ErrInvalidPDF
	}

	url, err := s.store.Store(ctx, pdf.Data, "application/pdf", pdf.Filename)
	if err != nil {
		return "", fmt.Errorf("store pdf: %w", err)
	}
	return url, nil
}

// courseErr maps a row that vanished between the check and the write.
func (s *Service) courseErr(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return ErrCourseNotFound
	}
	return err
}

func (s *Service) lessonErr(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return ErrLessonNotFound
	}
	return err
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
