package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UsageRepository persists daily chat usage in the chat_usage_daily table.
// The UPSERT increment is a single statement, so concurrent exchanges for
// the same date serialize inside Postgres.
type UsageRepository struct {
	pool *pgxpool.Pool
}

// NewUsageRepository creates a new usage repository.
func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{pool: pool}
}

func (r *UsageRepository) Record(ctx context.Context, day time.Time, questionTokens, answerTokens int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO chat_usage_daily (day, requests, question_tokens, answer_tokens)
		 VALUES ($1, 1, $2, $3)
		 ON CONFLICT (day) DO UPDATE
		 SET requests = chat_usage_daily.requests + 1,
		     question_tokens = chat_usage_daily.question_tokens + EXCLUDED.question_tokens,
		     answer_tokens = chat_usage_daily.answer_tokens + EXCLUDED.answer_tokens,
		     updated_at = NOW()`,
		day.UTC().Format("2006-01-02"), questionTokens, answerTokens)
	if err != nil {
		return fmt.Errorf("recording daily usage: %w", err)
	}
	return nil
}

func (r *UsageRepository) DailyStats(ctx context.Context) ([]UsageRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT day, requests, question_tokens, answer_tokens
		 FROM chat_usage_daily
		 ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("querying daily usage: %w", err)
	}
	defer rows.Close()

	var records []UsageRecord
	for rows.Next() {
		var (
			day            time.Time
			requests       int64
			questionTokens int64
			answerTokens   int64
		)
		if err := rows.Scan(&day, &requests, &questionTokens, &answerTokens); err != nil {
			return nil, fmt.Errorf("scanning usage row: %w", err)
		}

		rec := UsageRecord{
			Date:        day.Format("2006-01-02"),
			Requests:    requests,
			TotalTokens: questionTokens + answerTokens,
		}
		if requests > 0 {
			rec.AvgQuestionToken = float64(questionTokens) / float64(requests)
			rec.AvgAnswerToken = float64(answerTokens) / float64(requests)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage rows: %w", err)
	}
	return records, nil
}
