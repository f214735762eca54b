package chat

import (
	"context"
	"time"
)

// Recorder aggregates per-exchange token counts into daily usage rows.
type Recorder interface {
	// Record folds one completed exchange into the given date's aggregate,
	// creating the row on first use.
	Record(ctx context.Context, day time.Time, questionTokens, answerTokens int) error

	// DailyStats returns one record per recorded date, chronological.
	DailyStats(ctx context.Context) ([]UsageRecord, error)
}
