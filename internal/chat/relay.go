package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/crashcoursehub/promosite/internal/config"
	"github.com/crashcoursehub/promosite/internal/metrics"
)

// Completer turns prior thread context plus a new user message into a reply.
type Completer interface {
	Complete(ctx context.Context, history []Message, text string) (string, error)
}

const systemPrompt = "You are Crash-Course-Coach Markus, an enthusiastic expert who playfully " +
	"sparks developers' curiosity about the site's programming crash courses. " +
	"Speak briefly but energetically, ask questions, create curiosity, and offer " +
	"follow-up discussions or a promo code. Avoid politics, religion, health, " +
	"legal or other sensitive topics; if the user raises them, politely steer " +
	"back to programming and the courses. Mention course titles or prices only " +
	"when truly relevant."

// OpenAIRelay forwards admitted messages to the completion API.
// It distinguishes three upstream failure classes: the provider's own rate
// limit, payload/context too large, and everything else.
type OpenAIRelay struct {
	client *openai.Client
	cfg    config.OpenAIConfig
}

// NewOpenAIRelay creates a relay for the configured model. A non-empty
// BaseURL points the client at a compatible proxy.
func NewOpenAIRelay(cfg config.OpenAIConfig) *OpenAIRelay {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIRelay{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

func (r *OpenAIRelay) Complete(ctx context.Context, history []Message, text string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.cfg.Model,
		Messages:    msgs,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", classifyUpstreamError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion response", ErrUpstreamUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyUpstreamError maps a completion API error onto the gateway's
// failure classes. Timeouts and transport errors count as unavailability.
func classifyUpstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrUpstreamRateLimited, apiErr.Message)
		case apiErr.HTTPStatusCode == http.StatusRequestEntityTooLarge,
			isContextLengthError(apiErr):
			return fmt.Errorf("%w: %s", ErrUpstreamTooLarge, apiErr.Message)
		default:
			return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, apiErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}

func isContextLengthError(apiErr *openai.APIError) bool {
	if code, ok := apiErr.Code.(string); ok && code == "context_length_exceeded" {
		return true
	}
	return apiErr.HTTPStatusCode == http.StatusBadRequest &&
		strings.Contains(apiErr.Message, "maximum context length")
}
