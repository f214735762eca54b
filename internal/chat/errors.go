package chat

import "errors"

// Failure classes surfaced by the gateway. Callers distinguish them with
// errors.Is; the HTTP handler maps each to its status code.
var (
	// ErrMessageTooLarge: the message exceeds the word cap. Rejected before
	// any quota is consumed and before any upstream call.
	ErrMessageTooLarge = errors.New("message exceeds maximum word count")

	// ErrThreadNotFound: the thread id was never issued (or has expired).
	ErrThreadNotFound = errors.New("thread not found")

	// Quota rejections, by exhausted window.
	ErrHourlyQuotaExceeded = errors.New("hourly quota exceeded")
	ErrDailyQuotaExceeded  = errors.New("daily quota exceeded")

	// Upstream completion failures. The local reservation is not refunded:
	// admission cost reflects attempted usage.
	ErrUpstreamRateLimited = errors.New("completion service rate limited")
	ErrUpstreamTooLarge    = errors.New("completion service rejected oversized payload")
	ErrUpstreamUnavailable = errors.New("completion service unavailable")
)

// IsQuotaExceeded reports whether err is either quota rejection.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrHourlyQuotaExceeded) || errors.Is(err, ErrDailyQuotaExceeded)
}
