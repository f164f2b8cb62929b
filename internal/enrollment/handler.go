// AngelaMos | 2026
// handler.go

package enrollment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
	"github.com/carterperez-dev/templates/course-backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/enrollments", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/mine", h.MyCourses)
		r.Post("/courses/{courseID}", h.Enroll)
		r.Delete("/courses/{courseID}", h.Unenroll)
		r.Get("/courses/{courseID}/progress", h.CourseProgress)
		r.Post("/lessons/{lessonID}/complete", h.CompleteLesson)
	})
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Enroll(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "courseID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToEnrollmentResponse(e))
}

func (h *Handler) Unenroll(w http.ResponseWriter, r *http.Request) {
	err := h.service.Unenroll(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "courseID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.CompleteLesson(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "lessonID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToProgressResponse(p))
}

func (h *Handler) CourseProgress(w http.ResponseWriter, r *http.Request) {
	cp, err := h.service.CourseProgress(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "courseID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToCourseProgressResponse(cp))
}

func (h *Handler) MyCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.MyCourses(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToMyCourseResponseList(courses))
}
