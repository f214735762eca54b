package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window names used in decisions, metrics and audit events.
const (
	WindowHour = "hour"
	WindowDay  = "day"
)

// Ledger tracks per-identity word usage in fixed clock-aligned UTC buckets:
// one Redis counter per identity per hour (YYYYMMDDHH) and per day
// (YYYYMMDD). Bucket rollover is the window reset; expired buckets are
// reaped by TTL. Counters for different identities never contend.
//
// Reserve is increment-then-check: both counters are bumped by the cost in
// one pipeline, and a request whose own increment pushed a counter past its
// limit rolls the cost back and is rejected. Redis executes each INCRBY
// atomically, so of two concurrent reservations that cannot both fit,
// exactly one observes the over-limit total and backs out.
type Ledger struct {
	client      redis.Cmdable
	hourlyLimit int
	dailyLimit  int
	now         func() time.Time
}

// NewLedger creates a quota ledger with the given word limits.
func NewLedger(client redis.Cmdable, hourlyLimit, dailyLimit int) *Ledger {
	return &Ledger{
		client:      client,
		hourlyLimit: hourlyLimit,
		dailyLimit:  dailyLimit,
		now:         time.Now,
	}
}

// Decision is the outcome of a reservation attempt.
type Decision struct {
	Allowed bool
	// Window names the exhausted window ("hour" or "day") when rejected.
	Window string
}

func hourKey(identity string, t time.Time) string {
	return "chat:quota:hour:" + identity + ":" + t.UTC().Format("2006010215")
}

func dayKey(identity string, t time.Time) string {
	return "chat:quota:day:" + identity + ":" + t.UTC().Format("20060102")
}

// Reserve atomically charges cost words against the identity's hourly and
// daily budgets. On rejection no quota is consumed. Unlike the admin rate
// limiter this fails closed on Redis errors: admitting without accounting
// would break the quota contract.
func (l *Ledger) Reserve(ctx context.Context, identity string, cost int) (Decision, error) {
	now := l.now()
	hKey := hourKey(identity, now)
	dKey := dayKey(identity, now)

	pipe := l.client.Pipeline()
	hourCmd := pipe.IncrBy(ctx, hKey, int64(cost))
	dayCmd := pipe.IncrBy(ctx, dKey, int64(cost))
	// TTL outlives the bucket so Status can still read a full window
	pipe.Expire(ctx, hKey, 2*time.Hour)
	pipe.Expire(ctx, dKey, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("reserving quota for %s: %w", identity, err)
	}

	if hourCmd.Val() > int64(l.hourlyLimit) {
		l.release(ctx, hKey, dKey, cost)
		return Decision{Allowed: false, Window: WindowHour}, nil
	}
	if dayCmd.Val() > int64(l.dailyLimit) {
		l.release(ctx, hKey, dKey, cost)
		return Decision{Allowed: false, Window: WindowDay}, nil
	}

	return Decision{Allowed: true}, nil
}

// release backs out a failed reservation so rejected requests consume nothing.
func (l *Ledger) release(ctx context.Context, hKey, dKey string, cost int) {
	pipe := l.client.Pipeline()
	pipe.DecrBy(ctx, hKey, int64(cost))
	pipe.DecrBy(ctx, dKey, int64(cost))
	// Best effort: a lost decrement only under-grants until the bucket rolls
	_, _ = pipe.Exec(ctx)
}

// Status returns the identity's remaining budget. It is a pure read and
// never mutates counters; polling it is safe.
func (l *Ledger) Status(ctx context.Context, identity string) (QuotaStatus, error) {
	now := l.now()

	vals, err := l.client.MGet(ctx, hourKey(identity, now), dayKey(identity, now)).Result()
	if err != nil {
		return QuotaStatus{}, fmt.Errorf("reading quota for %s: %w", identity, err)
	}

	hourUsed := parseCounter(vals[0])
	dayUsed := parseCounter(vals[1])

	remainingHour := clamp(l.hourlyLimit-hourUsed, l.hourlyLimit)
	remainingDay := clamp(l.dailyLimit-dayUsed, l.dailyLimit)

	return QuotaStatus{
		Allowed:       remainingHour > 0 && remainingDay > 0,
		RemainingHour: remainingHour,
		RemainingDay:  remainingDay,
	}, nil
}

func parseCounter(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0
	}
	return n
}

func clamp(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
