// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/reset-password", h.ResetPassword)
	})
}

// RegisterAdminRoutes expects r to already be behind the admin guard.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/users/{userID}/password-reset", h.InitiateReset)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.CompleteReset(r.Context(), req); err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: "password has been reset"})
}

func (h *Handler) InitiateReset(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		core.BadRequest(w, "user ID required")
		return
	}

	resp, err := h.service.InitiateReset(r.Context(), userID)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, resp)
}
