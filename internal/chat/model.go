package chat

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a thread's history. Immutable once appended.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Words     int       `json:"words"`
	Tokens    int       `json:"tokens"`
	Timestamp time.Time `json:"timestamp"`
}

// QuotaStatus is the client-facing quota snapshot. It is advisory: a Send
// issued right after a favorable status may still be rejected if another
// request from the same identity lands first.
type QuotaStatus struct {
	Allowed       bool `json:"allowed"`
	RemainingHour int  `json:"remaining_hour"`
	RemainingDay  int  `json:"remaining_day"`
}

// UsageRecord is one day's aggregated chat usage for the stats panel.
type UsageRecord struct {
	Date             string  `json:"date"` // YYYY-MM-DD
	Requests         int64   `json:"requests"`
	AvgQuestionToken float64 `json:"avg_q_tokens"`
	AvgAnswerToken   float64 `json:"avg_a_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
}

// SendRequest is the body of POST /chat/{threadID}.
type SendRequest struct {
	Message string `json:"message" validate:"required,min=1"`
}

// SendResponse carries the assistant's reply.
type SendResponse struct {
	Reply string `json:"reply"`
}

// ThreadResponse is returned when a new thread is opened.
type ThreadResponse struct {
	ThreadID string `json:"thread_id"`
}
