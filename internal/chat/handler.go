package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/crashcoursehub/promosite/internal/api"
	"github.com/crashcoursehub/promosite/internal/middleware"
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

// CreateThread opens a fresh conversation thread.
func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	threadID, err := h.svc.OpenThread(r.Context())
	if err != nil {
		slog.Error("creating thread", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusCreated, ThreadResponse{ThreadID: threadID})
}

// SendMessage runs one exchange on an existing thread.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	identity := middleware.ClientIP(r)

	reply, err := h.svc.Send(r.Context(), identity, threadID, req.Message)
	if err != nil {
		h.handleSendError(w, threadID, err)
		return
	}

	api.JSON(w, http.StatusOK, SendResponse{Reply: reply})
}

func (h *Handler) handleSendError(w http.ResponseWriter, threadID string, err error) {
	switch {
	case errors.Is(err, ErrMessageTooLarge), errors.Is(err, ErrUpstreamTooLarge):
		api.HandleError(w, api.ErrMessageTooLarge)
	case errors.Is(err, ErrThreadNotFound):
		api.HandleError(w, api.NewNotFoundError("thread not found"))
	case IsQuotaExceeded(err), errors.Is(err, ErrUpstreamRateLimited):
		api.HandleError(w, api.ErrQuotaExceeded)
	case errors.Is(err, ErrUpstreamUnavailable):
		slog.Error("upstream completion failed", "thread_id", threadID, "error", err)
		api.HandleError(w, api.ErrUpstream)
	default:
		slog.Error("sending chat message", "thread_id", threadID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
	}
}

// QuotaStatus reports the caller's remaining word budget.
func (h *Handler) QuotaStatus(w http.ResponseWriter, r *http.Request) {
	identity := middleware.ClientIP(r)

	status, err := h.svc.Status(r.Context(), identity)
	if err != nil {
		slog.Error("reading quota status", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, status)
}

// DailyStats returns the aggregated per-day usage records.
func (h *Handler) DailyStats(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Stats(r.Context())
	if err != nil {
		slog.Error("reading daily stats", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if records == nil {
		records = []UsageRecord{}
	}

	api.JSON(w, http.StatusOK, records)
}
