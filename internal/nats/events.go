package nats

import "time"

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// StreamEvents holds audit-relevant chat events.
const StreamEvents = "PROMOSITE_EVENTS"

// SubjectChatEvent is where the chat gateway publishes exchange outcomes.
const SubjectChatEvent = "promosite.events.chat"

// Chat event types.
const (
	EventExchangeCompleted = "exchange_completed"
	EventQuotaRejected     = "quota_rejected"
	EventOversizedRejected = "oversized_rejected"
	EventUpstreamFailed    = "upstream_failed"
)

// ChatEvent records the outcome of one chat request for the audit trail.
type ChatEvent struct {
	EventType      string    `json:"event_type"`
	Identity       string    `json:"identity"`
	ThreadID       string    `json:"thread_id,omitempty"`
	Words          int       `json:"words,omitempty"`
	QuestionTokens int       `json:"question_tokens,omitempty"`
	AnswerTokens   int       `json:"answer_tokens,omitempty"`
	Window         string    `json:"window,omitempty"` // exhausted window on quota_rejected
	Detail         string    `json:"detail,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
