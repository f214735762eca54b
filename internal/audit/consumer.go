package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	inats "github.com/crashcoursehub/promosite/internal/nats"
)

// Consumer listens on the chat event NATS subject and persists entries
// to the database.
type Consumer struct {
	repo        *Repository
	consumerMgr *inats.ConsumerManager
}

// NewConsumer creates a new chat event Consumer.
func NewConsumer(repo *Repository, consumerMgr *inats.ConsumerManager) *Consumer {
	return &Consumer{
		repo:        repo,
		consumerMgr: consumerMgr,
	}
}

// Start begins the consume loop. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.consumerMgr.EnsureConsumer(ctx, inats.StreamEvents, "audit-persister", inats.SubjectChatEvent)
	if err != nil {
		return err
	}

	slog.Info("audit consumer started", "consumer", "audit-persister")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("audit consumer: fetching events", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleEvent(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) handleEvent(ctx context.Context, msg jetstream.Msg) {
	var event inats.ChatEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		slog.Error("audit consumer: unmarshaling event", "error", err)
		_ = msg.Nak()
		return
	}

	entry := &Entry{
		ID:        uuid.New(),
		EventType: event.EventType,
		Identity:  event.Identity,
		ThreadID:  event.ThreadID,
		CreatedAt: event.Timestamp,
	}

	details := map[string]any{}
	if event.Words > 0 {
		details["words"] = event.Words
	}
	if event.QuestionTokens > 0 {
		details["question_tokens"] = event.QuestionTokens
	}
	if event.AnswerTokens > 0 {
		details["answer_tokens"] = event.AnswerTokens
	}
	if event.Window != "" {
		details["window"] = event.Window
	}
	if event.Detail != "" {
		details["detail"] = event.Detail
	}
	if data, err := json.Marshal(details); err == nil {
		entry.Details = data
	}

	if err := c.repo.Insert(ctx, entry); err != nil {
		slog.Error("audit consumer: persisting entry", "error", err, "event_type", event.EventType)
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()

	slog.Debug("audit consumer: persisted event",
		"event_type", event.EventType,
		"identity", event.Identity,
		"thread_id", event.ThreadID,
	)
}
