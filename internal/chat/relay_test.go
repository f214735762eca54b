package chat

import (
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestClassifyUpstreamError_RateLimit(t *testing.T) {
	err := classifyUpstreamError(&openai.APIError{
		HTTPStatusCode: http.StatusTooManyRequests,
		Message:        "rate limit reached",
	})
	assert.ErrorIs(t, err, ErrUpstreamRateLimited)
}

func TestClassifyUpstreamError_ContextLength(t *testing.T) {
	err := classifyUpstreamError(&openai.APIError{
		HTTPStatusCode: http.StatusBadRequest,
		Code:           "context_length_exceeded",
		Message:        "this model's maximum context length is 128000 tokens",
	})
	assert.ErrorIs(t, err, ErrUpstreamTooLarge)
}

func TestClassifyUpstreamError_PayloadTooLarge(t *testing.T) {
	err := classifyUpstreamError(&openai.APIError{
		HTTPStatusCode: http.StatusRequestEntityTooLarge,
		Message:        "payload too large",
	})
	assert.ErrorIs(t, err, ErrUpstreamTooLarge)
}

func TestClassifyUpstreamError_ServerError(t *testing.T) {
	err := classifyUpstreamError(&openai.APIError{
		HTTPStatusCode: http.StatusInternalServerError,
		Message:        "server overloaded",
	})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestClassifyUpstreamError_TransportError(t *testing.T) {
	err := classifyUpstreamError(errors.New("dial tcp: connection refused"))
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}
