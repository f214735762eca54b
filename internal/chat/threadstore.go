package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ThreadStore owns conversation threads and their append-only message
// history, kept in Redis: a meta key marks thread existence, a list holds
// the messages. RPUSH is atomic, so concurrent appends to one thread
// interleave but never corrupt.
type ThreadStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewThreadStore creates a thread store. ttl bounds a thread's lifetime;
// every append refreshes it.
func NewThreadStore(client redis.Cmdable, ttl time.Duration) *ThreadStore {
	return &ThreadStore{client: client, ttl: ttl}
}

func threadMetaKey(id string) string {
	return "chat:thread:" + id
}

func threadMsgsKey(id string) string {
	return "chat:thread:" + id + ":msgs"
}

// Create allocates a fresh thread id with an empty history.
func (s *ThreadStore) Create(ctx context.Context) (string, error) {
	id := uuid.New().String()
	err := s.client.Set(ctx, threadMetaKey(id), time.Now().UTC().Format(time.RFC3339), s.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}
	return id, nil
}

// Append adds a message to the thread. Returns ErrThreadNotFound for ids
// that were never issued or have expired.
func (s *ThreadStore) Append(ctx context.Context, threadID string, msg Message) error {
	exists, err := s.client.Exists(ctx, threadMetaKey(threadID)).Result()
	if err != nil {
		return fmt.Errorf("checking thread %s: %w", threadID, err)
	}
	if exists == 0 {
		return ErrThreadNotFound
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, threadMsgsKey(threadID), string(data))
	pipe.Expire(ctx, threadMsgsKey(threadID), s.ttl)
	pipe.Expire(ctx, threadMetaKey(threadID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending to thread %s: %w", threadID, err)
	}
	return nil
}

// History returns the thread's messages in append order.
func (s *ThreadStore) History(ctx context.Context, threadID string) ([]Message, error) {
	exists, err := s.client.Exists(ctx, threadMetaKey(threadID)).Result()
	if err != nil {
		return nil, fmt.Errorf("checking thread %s: %w", threadID, err)
	}
	if exists == 0 {
		return nil, ErrThreadNotFound
	}

	vals, err := s.client.LRange(ctx, threadMsgsKey(threadID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading thread %s: %w", threadID, err)
	}

	msgs := make([]Message, 0, len(vals))
	for _, v := range vals {
		var msg Message
		if err := json.Unmarshal([]byte(v), &msg); err != nil {
			continue // skip malformed entries
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
