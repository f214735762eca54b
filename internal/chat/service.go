package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/crashcoursehub/promosite/internal/config"
	"github.com/crashcoursehub/promosite/internal/metrics"
	inats "github.com/crashcoursehub/promosite/internal/nats"
)

// EventPublisher emits chat outcomes for the audit trail.
type EventPublisher interface {
	PublishChatEvent(ctx context.Context, event inats.ChatEvent) error
}

// Service is the chat gateway: it admits or rejects messages against the
// word quota, maintains thread history, relays admitted messages upstream
// and records usage. All public errors are the sentinels in errors.go.
type Service struct {
	threads   *ThreadStore
	ledger    *Ledger
	relay     Completer
	usage     Recorder
	publisher EventPublisher
	cfg       config.ChatConfig
}

// NewService wires the gateway. publisher may be nil when NATS is disabled.
func NewService(threads *ThreadStore, ledger *Ledger, relay Completer, usage Recorder, publisher EventPublisher, cfg config.ChatConfig) *Service {
	return &Service{
		threads:   threads,
		ledger:    ledger,
		relay:     relay,
		usage:     usage,
		publisher: publisher,
		cfg:       cfg,
	}
}

// OpenThread allocates a fresh thread with an empty history.
func (s *Service) OpenThread(ctx context.Context) (string, error) {
	return s.threads.Create(ctx)
}

// Send runs one full exchange: size check, quota reservation, history
// append, upstream completion, usage recording. Steps are ordered so a
// rejected message consumes no quota, while an upstream failure after
// admission keeps the reservation (attempted usage still counts).
func (s *Service) Send(ctx context.Context, identity, threadID, text string) (string, error) {
	words := CountWords(text)

	if words > s.cfg.MaxMessageWords {
		metrics.ChatMessagesTotal.WithLabelValues("rejected_oversized").Inc()
		s.publishEvent(inats.ChatEvent{
			EventType: inats.EventOversizedRejected,
			Identity:  identity,
			ThreadID:  threadID,
			Words:     words,
			Timestamp: time.Now().UTC(),
		})
		return "", ErrMessageTooLarge
	}

	decision, err := s.ledger.Reserve(ctx, identity, words)
	if err != nil {
		return "", err
	}
	if !decision.Allowed {
		metrics.ChatMessagesTotal.WithLabelValues("rejected_quota").Inc()
		metrics.ChatQuotaRejectionsTotal.WithLabelValues(decision.Window).Inc()
		s.publishEvent(inats.ChatEvent{
			EventType: inats.EventQuotaRejected,
			Identity:  identity,
			ThreadID:  threadID,
			Words:     words,
			Window:    decision.Window,
			Timestamp: time.Now().UTC(),
		})
		if decision.Window == WindowDay {
			return "", ErrDailyQuotaExceeded
		}
		return "", ErrHourlyQuotaExceeded
	}

	history, err := s.threads.History(ctx, threadID)
	if err != nil {
		return "", err
	}

	questionTokens := EstimateTokens(text)
	userMsg := Message{
		Role:      RoleUser,
		Content:   text,
		Words:     words,
		Tokens:    questionTokens,
		Timestamp: time.Now().UTC(),
	}
	if err := s.threads.Append(ctx, threadID, userMsg); err != nil {
		return "", err
	}

	relayCtx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	reply, err := s.relay.Complete(relayCtx, history, text)
	if err != nil {
		metrics.ChatMessagesTotal.WithLabelValues("upstream_failed").Inc()
		s.publishEvent(inats.ChatEvent{
			EventType: inats.EventUpstreamFailed,
			Identity:  identity,
			ThreadID:  threadID,
			Words:     words,
			Detail:    err.Error(),
			Timestamp: time.Now().UTC(),
		})
		return "", err
	}

	answerTokens := EstimateTokens(reply)
	assistantMsg := Message{
		Role:      RoleAssistant,
		Content:   reply,
		Words:     CountWords(reply),
		Tokens:    answerTokens,
		Timestamp: time.Now().UTC(),
	}
	if err := s.threads.Append(ctx, threadID, assistantMsg); err != nil {
		// The exchange succeeded upstream; losing the assistant echo in
		// history is recoverable, losing the reply is not.
		slog.Warn("appending assistant message", "thread_id", threadID, "error", err)
	}

	if err := s.usage.Record(ctx, time.Now().UTC(), questionTokens, answerTokens); err != nil {
		slog.Warn("recording daily usage", "error", err)
	}

	metrics.ChatMessagesTotal.WithLabelValues("completed").Inc()
	s.publishEvent(inats.ChatEvent{
		EventType:      inats.EventExchangeCompleted,
		Identity:       identity,
		ThreadID:       threadID,
		Words:          words,
		QuestionTokens: questionTokens,
		AnswerTokens:   answerTokens,
		Timestamp:      time.Now().UTC(),
	})

	return reply, nil
}

// Status returns the identity's remaining quota without consuming any.
func (s *Service) Status(ctx context.Context, identity string) (QuotaStatus, error) {
	return s.ledger.Status(ctx, identity)
}

// Stats returns the per-day usage aggregates.
func (s *Service) Stats(ctx context.Context) ([]UsageRecord, error) {
	return s.usage.DailyStats(ctx)
}

func (s *Service) publishEvent(event inats.ChatEvent) {
	if s.publisher == nil {
		return
	}
	// Audit is best effort and must not delay or fail the exchange.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.publisher.PublishChatEvent(ctx, event); err != nil {
		slog.Warn("publishing chat event", "event_type", event.EventType, "error", err)
	}
}
