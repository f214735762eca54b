package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry matches the audit_entries table schema. One row per recorded
// chat outcome (completed exchange, quota rejection, oversized input).
type Entry struct {
	ID        uuid.UUID       `json:"id"`
	EventType string          `json:"event_type"`
	Identity  string          `json:"identity"`
	ThreadID  string          `json:"thread_id,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListParams holds pagination and filtering parameters for audit queries.
type ListParams struct {
	EventType string
	Identity  string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// DefaultListParams returns sensible defaults.
func DefaultListParams() ListParams {
	return ListParams{
		Page:     1,
		PageSize: 20,
	}
}
