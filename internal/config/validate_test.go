package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "promosite",
			Password: "secret", Name: "promosite", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Chat: ChatConfig{
			MaxMessageWords: 1000,
			HourlyWordLimit: 5000,
			DailyWordLimit:  20000,
			ThreadTTL:       24 * time.Hour,
			UpstreamTimeout: 30 * time.Second,
		},
		OpenAI: OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", MaxTokens: 1000, Temperature: 0.3},
		Admin: AdminConfig{
			User:          "admin",
			PasswordHash:  "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
			MaxReqsPerMin: 30,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_OpenAIKeyRequired(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.APIKey = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected OPENAI_API_KEY error, got: %v", err)
	}
}

func TestValidate_AdminPasswordMustBeBcrypt(t *testing.T) {
	cfg := validConfig()
	cfg.Admin.PasswordHash = "plaintext-password"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "bcrypt") {
		t.Fatalf("expected bcrypt error, got: %v", err)
	}
}

func TestValidate_AdminCredentialsRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Admin.User = ""
	cfg.Admin.PasswordHash = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "ADMIN_USER") || !strings.Contains(err.Error(), "ADMIN_PASSWORD_HASH") {
		t.Fatalf("expected admin credential errors, got: %v", err)
	}
}

func TestValidate_HourlyLimitBelowMessageCap(t *testing.T) {
	cfg := validConfig()
	cfg.Chat.HourlyWordLimit = 500
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "CHAT_HOURLY_WORD_LIMIT") {
		t.Fatalf("expected CHAT_HOURLY_WORD_LIMIT error, got: %v", err)
	}
}

func TestValidate_DailyLimitBelowHourly(t *testing.T) {
	cfg := validConfig()
	cfg.Chat.DailyWordLimit = 1000
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "CHAT_DAILY_WORD_LIMIT") {
		t.Fatalf("expected CHAT_DAILY_WORD_LIMIT error, got: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.APIKey = ""
	cfg.DB.Password = ""
	cfg.Server.Port = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"OPENAI_API_KEY", "DB_PASSWORD", "SERVER_PORT"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %s, got: %v", want, err)
		}
	}
}
