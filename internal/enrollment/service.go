// AngelaMos | 2026
// service.go

package enrollment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
	"github.com/carterperez-dev/templates/course-backend/internal/course"
)

var (
	ErrAlreadyEnrolled = core.Reject(
		core.ErrDuplicateKey,
		"ALREADY_ENROLLED",
		"already enrolled in this course",
	)
	// ErrNotEnrolled guards operations that need an enrollment.
	ErrNotEnrolled = core.Reject(
		core.ErrForbidden,
		"NOT_ENROLLED",
		"not enrolled in this course",
	)
	// ErrEnrollmentNotFound is returned when removing an enrollment that
	// does not exist.
	ErrEnrollmentNotFound = core.Reject(
		core.ErrNotFound,
		"NOT_ENROLLED",
		"not enrolled in this course",
	)
)

// CourseFinder resolves courses and lessons without applying any policy.
type CourseFinder interface {
	FindCourse(ctx context.Context, id string) (*course.Course, error)
	FindLesson(ctx context.Context, id string) (*course.Lesson, error)
}

type Service struct {
	repo    Repository
	courses CourseFinder
	now     func() time.Time
}

func NewService(repo Repository, courses CourseFinder) *Service {
	return &Service{
		repo:    repo,
		courses: courses,
		now:     time.Now,
	}
}

func (s *Service) Enroll(
	ctx context.Context,
	p *access.Principal,
	courseID string,
) (_ *Enrollment, err error) {
	ctx, finish := core.StartSpan(ctx, "enrollment.enroll",
		attribute.String("course.id", courseID),
	)
	defer func() { finish(err) }()

	if p == nil {
		return nil, core.UnauthorizedError("")
	}

	c, err := s.courses.FindCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if !access.CanSeeCourse(p, c.Rules()) {
		return nil, course.ErrCourseRestricted
	}

	enrolled, err := s.repo.IsEnrolled(ctx, p.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	e := &Enrollment{
		ID:         uuid.New().String(),
		UserID:     p.UserID,
		CourseID:   courseID,
		EnrolledAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, e); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	return e, nil
}

func (s *Service) Unenroll(
	ctx context.Context,
	p *access.Principal,
	courseID string,
) (err error) {
	ctx, finish := core.StartSpan(ctx, "enrollment.unenroll",
		attribute.String("course.id", courseID),
	)
	defer func() { finish(err) }()

	if p == nil {
		return core.UnauthorizedError("")
	}

	if _, err = s.courses.FindCourse(ctx, courseID); err != nil {
		return err
	}

	if err = s.repo.DeleteWithProgress(ctx, p.UserID, courseID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	return nil
}

// CompleteLesson is idempotent; completed_at keeps its first value.
func (s *Service) CompleteLesson(
	ctx context.Context,
	p *access.Principal,
	lessonID string,
) (*Progress, error) {
	if p == nil {
		return nil, core.UnauthorizedError("")
	}

	l, err := s.courses.FindLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.repo.IsEnrolled(ctx, p.UserID, l.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	progress := &Progress{
		ID:       uuid.New().String(),
		UserID:   p.UserID,
		LessonID: lessonID,
	}
	if err := s.repo.CompleteLesson(ctx, progress, s.now().UTC()); err != nil {
		return nil, err
	}

	return progress, nil
}

// CourseProgress is read-only: lessons without a progress row are reported
// with defaults and no row is created for them.
func (s *Service) CourseProgress(
	ctx context.Context,
	p *access.Principal,
	courseID string,
) (*CourseProgress, error) {
	if p == nil {
		return nil, core.UnauthorizedError("")
	}

	if _, err := s.courses.FindCourse(ctx, courseID); err != nil {
		return nil, err
	}

	enrolled, err := s.repo.IsEnrolled(ctx, p.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	lessons, err := s.repo.CourseProgress(ctx, p.UserID, courseID)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, l := range lessons {
		if l.Completed {
			completed++
		}
	}

	return &CourseProgress{
		CourseID:         courseID,
		Lessons:          lessons,
		TotalLessons:     len(lessons),
		CompletedLessons: completed,
		Percentage:       percentage(completed, len(lessons)),
	}, nil
}

func (s *Service) MyCourses(
	ctx context.Context,
	p *access.Principal,
) ([]MyCourse, error) {
	if p == nil {
		return nil, core.UnauthorizedError("")
	}
	return s.repo.ListForUser(ctx, p.UserID)
}
