package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// Upstream completion credentials
	if c.OpenAI.APIKey == "" {
		errs = append(errs, "OPENAI_API_KEY is required")
	}

	// Admin credentials
	if c.Admin.User == "" {
		errs = append(errs, "ADMIN_USER is required")
	}
	if c.Admin.PasswordHash == "" {
		errs = append(errs, "ADMIN_PASSWORD_HASH is required")
	} else if !strings.HasPrefix(c.Admin.PasswordHash, "$2") {
		errs = append(errs, "ADMIN_PASSWORD_HASH must be a bcrypt hash")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	// Quota limits: a message at the size cap must be admissible at all
	if c.Chat.MaxMessageWords < 1 {
		errs = append(errs, "CHAT_MAX_MESSAGE_WORDS must be positive")
	}
	if c.Chat.HourlyWordLimit < c.Chat.MaxMessageWords {
		errs = append(errs, fmt.Sprintf("CHAT_HOURLY_WORD_LIMIT (%d) must be at least CHAT_MAX_MESSAGE_WORDS (%d)",
			c.Chat.HourlyWordLimit, c.Chat.MaxMessageWords))
	}
	if c.Chat.DailyWordLimit < c.Chat.HourlyWordLimit {
		errs = append(errs, fmt.Sprintf("CHAT_DAILY_WORD_LIMIT (%d) must be at least CHAT_HOURLY_WORD_LIMIT (%d)",
			c.Chat.DailyWordLimit, c.Chat.HourlyWordLimit))
	}
	if c.Chat.UpstreamTimeout <= 0 {
		errs = append(errs, "CHAT_UPSTREAM_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
