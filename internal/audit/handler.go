package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/crashcoursehub/promosite/internal/api"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns paginated audit entries, newest first. Admin only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := DefaultListParams()
	q := r.URL.Query()

	if p := q.Get("page"); p != "" {
		if page, err := strconv.Atoi(p); err == nil && page > 0 {
			params.Page = page
		}
	}
	if ps := q.Get("page_size"); ps != "" {
		if pageSize, err := strconv.Atoi(ps); err == nil && pageSize > 0 && pageSize <= 100 {
			params.PageSize = pageSize
		}
	}
	params.EventType = q.Get("event_type")
	params.Identity = q.Get("identity")
	if f := q.Get("from"); f != "" {
		if ts, err := time.Parse(time.RFC3339, f); err == nil {
			params.From = &ts
		}
	}
	if to := q.Get("to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil {
			params.To = &ts
		}
	}

	entries, totalCount, err := h.repo.List(r.Context(), params)
	if err != nil {
		slog.Error("listing audit entries", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, entries, totalCount, params.Page, params.PageSize)
}
