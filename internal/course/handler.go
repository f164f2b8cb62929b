// AngelaMos | 2026
// handler.go

package course

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
	"github.com/carterperez-dev/templates/course-backend/internal/middleware"
)

const pdfField = "pdf"

type Handler struct {
	service        *Service
	validator      *validator.Validate
	maxUploadBytes int64
}

func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		validator:      validator.New(validator.WithRequiredStructEnabled()),
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/courses", func(r chi.Router) {
		r.With(optionalAuth).Get("/", h.ListCourses)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.With(middleware.RequireCreator).Get("/mine", h.ListMyCourses)
			r.With(middleware.RequireCreator).Post("/", h.CreateCourse)

			r.Put("/{courseID}", h.UpdateCourse)
			r.Put("/{courseID}/access", h.UpdateAccess)
			r.Delete("/{courseID}", h.DeleteCourse)

			r.Get("/{courseID}/lessons", h.ListCourseLessons)
			r.Post("/{courseID}/lessons", h.CreateLesson)
			r.Post("/{courseID}/lessons/reorder", h.ReorderLessons)
		})

		r.With(optionalAuth).Get("/{courseID}", h.GetCourse)
	})

	r.Route("/lessons", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListAccessibleLessons)
		r.Get("/{lessonID}", h.GetLesson)
		r.Put("/{lessonID}", h.UpdateLesson)
		r.Delete("/{lessonID}", h.DeleteLesson)
	})
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	courses, err := h.service.ListCourses(r.Context(), p)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToCourseResponseList(courses, p))
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	c, err := h.service.GetCourse(r.Context(), p, chi.URLParam(r, "courseID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToCourseResponse(c, p))
}

func (h *Handler) ListMyCourses(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	courses, err := h.service.ListMyCreatedCourses(r.Context(), p)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToCourseResponseList(courses, p))
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if !h.decode(w, r, &req) {
		return
	}

	p := middleware.GetPrincipal(r.Context())
	c, err := h.service.CreateCourse(r.Context(), p, req)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToCourseResponse(c, p))
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req UpdateCourseRequest
	if !h.decode(w, r, &req) {
		return
	}

	p := middleware.GetPrincipal(r.Context())
	c, err := h.service.UpdateCourse(r.Context(), p, chi.URLParam(r, "courseID"), req)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToCourseResponse(c, p))
}

func (h *Handler) UpdateAccess(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccessRequest
	if !h.decode(w, r, &req) {
		return
	}

	p := middleware.GetPrincipal(r.Context())
	c, err := h.service.UpdateAccess(r.Context(), p, chi.URLParam(r, "courseID"), req)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToCourseResponse(c, p))
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteCourse(
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

func (h *Handler) ListCourseLessons(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	_, listing, err := h.service.ListCourseLessons(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		courseID,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToLessonListResponse(courseID, listing))
}

// CreateLesson accepts multipart/form-data (with an optional "pdf" file
// part) or a plain JSON body.
func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req CreateLessonRequest
	pdf, ok := h.decodeLessonForm(w, r, &req, func(form formValues) {
		req.Title = form.get("title")
		req.Content = form.get("content")
		req.VideoURL = form.optional("video_url")
	})
	if !ok {
		return
	}

	l, err := h.service.CreateLesson(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "courseID"),
		req,
		pdf,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToLessonResponse(l))
}

func (h *Handler) ReorderLessons(w http.ResponseWriter, r *http.Request) {
	var req ReorderLessonsRequest
	if !h.decode(w, r, &req) {
		return
	}

	lessons, err := h.service.ReorderLessons(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "courseID"),
		req.LessonIDs,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToLessonResponseList(lessons))
}

func (h *Handler) ListAccessibleLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.ListAccessibleLessons(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToLessonResponseList(lessons))
}

func (h *Handler) GetLesson(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.GetLesson(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "lessonID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToLessonResponse(l))
}

func (h *Handler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	var req UpdateLessonRequest
	pdf, ok := h.decodeLessonForm(w, r, &req, func(form formValues) {
		req.Title = form.get("title")
		req.Content = form.get("content")
		req.VideoURL = form.optional("video_url")
		req.ClearPDF, _ = strconv.ParseBool(form.get("clear_pdf"))
	})
	if !ok {
		return
	}

	l, err := h.service.UpdateLesson(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "lessonID"),
		req,
		pdf,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToLessonResponse(l))
}

func (h *Handler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteLesson(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "lessonID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

type formValues map[string][]string

func (f formValues) get(key string) string {
	if v := f[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f formValues) optional(key string) *string {
	v, ok := f[key]
	if !ok || len(v) == 0 {
		return nil
	}
	return &v[0]
}

// decodeLessonForm fills dst from either a multipart form (via fill) or a
// JSON body, validates it, and returns the attached PDF if there is one.
func (h *Handler) decodeLessonForm(
	w http.ResponseWriter,
	r *http.Request,
	dst any,
	fill func(formValues),
) (*Upload, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return nil, h.decode(w, r, dst)
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			core.JSONError(w, core.Reject(
				core.ErrInvalidInput,
				"UPLOAD_TOO_LARGE",
				fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes),
			))
			return nil, false
		}
		core.BadRequest(w, "invalid multipart body")
		return nil, false
	}

	fill(formValues(r.MultipartForm.Value))

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return nil, false
	}

	file, header, err := r.FormFile(pdfField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		core.BadRequest(w, "invalid pdf part")
		return nil, false
	}
	defer file.Close() //nolint:errcheck // read-only multipart part

	if header.Size > h.maxUploadBytes {
		core.JSONError(w, core.Reject(
			core.ErrInvalidInput,
			"UPLOAD_TOO_LARGE",
			fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes),
		))
		return nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		core.BadRequest(w, "could not read pdf")
		return nil, false
	}

	return &Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}
