package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLedger(t *testing.T, hourly, daily int) *Ledger {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLedger(client, hourly, daily)
}

func TestLedger_ReserveUnderLimit(t *testing.T) {
	l := setupLedger(t, 100, 200)
	ctx := context.Background()

	dec, err := l.Reserve(ctx, "1.2.3.4", 10)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)

	status, err := l.Status(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 90, status.RemainingHour)
	assert.Equal(t, 190, status.RemainingDay)
}

func TestLedger_HourlyExhaustion(t *testing.T) {
	l := setupLedger(t, 10, 100)
	ctx := context.Background()

	// Ten 1-word reservations drain the hour
	for i := 0; i < 10; i++ {
		dec, err := l.Reserve(ctx, "ip", 1)
		require.NoError(t, err)
		require.True(t, dec.Allowed, "reservation %d should be admitted", i+1)
	}

	status, err := l.Status(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, status.Allowed)
	assert.Equal(t, 0, status.RemainingHour)

	dec, err := l.Reserve(ctx, "ip", 1)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, WindowHour, dec.Window)
}

func TestLedger_DailyExhaustion(t *testing.T) {
	l := setupLedger(t, 100, 150)
	ctx := context.Background()

	dec, err := l.Reserve(ctx, "ip", 100)
	require.NoError(t, err)
	require.True(t, dec.Allowed)

	// New hour, same day: hourly budget is fresh but the day has 50 left
	l.now = func() time.Time { return time.Now().Add(time.Hour) }

	dec, err = l.Reserve(ctx, "ip", 60)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, WindowDay, dec.Window)

	dec, err = l.Reserve(ctx, "ip", 50)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestLedger_RejectionConsumesNothing(t *testing.T) {
	l := setupLedger(t, 10, 100)
	ctx := context.Background()

	dec, err := l.Reserve(ctx, "ip", 4)
	require.NoError(t, err)
	require.True(t, dec.Allowed)

	before, err := l.Status(ctx, "ip")
	require.NoError(t, err)

	dec, err = l.Reserve(ctx, "ip", 7)
	require.NoError(t, err)
	require.False(t, dec.Allowed)

	after, err := l.Status(ctx, "ip")
	require.NoError(t, err)
	assert.Equal(t, before, after, "a rejected reservation must not consume quota")
}

func TestLedger_StatusIsIdempotent(t *testing.T) {
	l := setupLedger(t, 50, 100)
	ctx := context.Background()

	_, err := l.Reserve(ctx, "ip", 5)
	require.NoError(t, err)

	first, err := l.Status(ctx, "ip")
	require.NoError(t, err)
	second, err := l.Status(ctx, "ip")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLedger_RemainingNeverNegative(t *testing.T) {
	l := setupLedger(t, 10, 20)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := l.Reserve(ctx, "ip", 10)
		require.NoError(t, err)
	}

	status, err := l.Status(ctx, "ip")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, status.RemainingHour, 0)
	assert.GreaterOrEqual(t, status.RemainingDay, 0)
	assert.LessOrEqual(t, status.RemainingHour, 10)
	assert.LessOrEqual(t, status.RemainingDay, 20)
}

func TestLedger_IdentitiesIndependent(t *testing.T) {
	l := setupLedger(t, 10, 100)
	ctx := context.Background()

	dec, err := l.Reserve(ctx, "ip-a", 10)
	require.NoError(t, err)
	require.True(t, dec.Allowed)

	dec, err = l.Reserve(ctx, "ip-a", 1)
	require.NoError(t, err)
	require.False(t, dec.Allowed)

	dec, err = l.Reserve(ctx, "ip-b", 10)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestLedger_HourlyWindowRollover(t *testing.T) {
	l := setupLedger(t, 10, 1000)
	ctx := context.Background()

	dec, err := l.Reserve(ctx, "ip", 10)
	require.NoError(t, err)
	require.True(t, dec.Allowed)

	dec, err = l.Reserve(ctx, "ip", 1)
	require.NoError(t, err)
	require.False(t, dec.Allowed)

	// Next hour bucket: hourly budget resets, daily carries over
	l.now = func() time.Time { return time.Now().Add(time.Hour) }

	status, err := l.Status(ctx, "ip")
	require.NoError(t, err)
	assert.Equal(t, 10, status.RemainingHour)
	assert.Equal(t, 990, status.RemainingDay)

	dec, err = l.Reserve(ctx, "ip", 5)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestLedger_ConcurrentReservationsNeverOverAdmit(t *testing.T) {
	l := setupLedger(t, 10, 1000)
	ctx := context.Background()

	// Two concurrent reservations of 6 words against a 10-word budget:
	// exactly one must be admitted.
	var wg sync.WaitGroup
	results := make([]Decision, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dec, err := l.Reserve(ctx, "ip", 6)
			require.NoError(t, err)
			results[i] = dec
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, dec := range results {
		if dec.Allowed {
			admitted++
		}
	}
	assert.Equal(t, 1, admitted, "exactly one of the two reservations must be admitted")

	status, err := l.Status(ctx, "ip")
	require.NoError(t, err)
	assert.Equal(t, 4, status.RemainingHour)
}
