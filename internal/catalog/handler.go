package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/crashcoursehub/promosite/internal/api"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// ListCourses returns the catalog with active promo codes.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.svc.ListCourses(r.Context())
	if err != nil {
		slog.Error("listing courses", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, courses)
}

// CreatePromo attaches a promo code to a course. Admin only.
func (h *Handler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid course ID"))
		return
	}

	req := CreatePromoRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.HandleError(w, api.ErrBadRequest)
			return
		}
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	promo, err := h.svc.CreatePromo(r.Context(), courseID, &req)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			api.HandleError(w, api.NewNotFoundError("course not found"))
			return
		}
		slog.Error("creating promo code", "course_id", courseID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusCreated, promo)
}

// DeletePromo removes all promo codes of a course. Admin only.
func (h *Handler) DeletePromo(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid course ID"))
		return
	}

	if err := h.svc.DeletePromos(r.Context(), courseID); err != nil {
		switch {
		case errors.Is(err, ErrCourseNotFound):
			api.HandleError(w, api.NewNotFoundError("course not found"))
		case errors.Is(err, ErrNoActivePromo):
			api.HandleError(w, api.NewNotFoundError("no active promo found"))
		default:
			slog.Error("deleting promo codes", "course_id", courseID, "error", err)
			api.HandleError(w, api.ErrInternalServer)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Subscribe adds an email to the newsletter list.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	sub, err := h.svc.Subscribe(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrDuplicateSubscriber) {
			api.HandleError(w, api.NewConflictError("email already subscribed"))
			return
		}
		slog.Error("subscribing email", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusCreated, sub)
}
