package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	NATS   NATSConfig
	Chat   ChatConfig
	OpenAI OpenAIConfig
	Admin  AdminConfig
	CORS   CORSConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NATSConfig configures the optional event bus. An empty URL disables
// event publishing and the audit consumer.
type NATSConfig struct {
	URL string
}

// ChatConfig holds the usage-governance knobs for the chat widget.
// Quota limits are expressed in words; the cost of a message is its word count.
type ChatConfig struct {
	MaxMessageWords int
	HourlyWordLimit int
	DailyWordLimit  int
	ThreadTTL       time.Duration
	UpstreamTimeout time.Duration
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// AdminConfig guards the promo-code and audit endpoints.
// PasswordHash is a bcrypt hash of the admin password.
type AdminConfig struct {
	User          string
	PasswordHash  string
	MaxReqsPerMin int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Chat: ChatConfig{
			MaxMessageWords: k.Int("chat.max.message.words"),
			HourlyWordLimit: k.Int("chat.hourly.word.limit"),
			DailyWordLimit:  k.Int("chat.daily.word.limit"),
		},
		OpenAI: OpenAIConfig{
			APIKey:      k.String("openai.api.key"),
			BaseURL:     k.String("openai.base.url"),
			Model:       k.String("openai.model"),
			MaxTokens:   k.Int("openai.max.tokens"),
			Temperature: float32(k.Float64("openai.temperature")),
		},
		Admin: AdminConfig{
			User:          k.String("admin.user"),
			PasswordHash:  k.String("admin.password.hash"),
			MaxReqsPerMin: k.Int("admin.max.reqs.per.min"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitOrigins(k.String("cors.allowed.origins")),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "promosite"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "promosite"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Chat.MaxMessageWords == 0 {
		cfg.Chat.MaxMessageWords = 1000
	}
	if cfg.Chat.HourlyWordLimit == 0 {
		cfg.Chat.HourlyWordLimit = 5000
	}
	if cfg.Chat.DailyWordLimit == 0 {
		cfg.Chat.DailyWordLimit = 20000
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.MaxTokens == 0 {
		cfg.OpenAI.MaxTokens = 1000
	}
	if cfg.OpenAI.Temperature == 0 {
		cfg.OpenAI.Temperature = 0.3
	}
	if cfg.Admin.MaxReqsPerMin == 0 {
		cfg.Admin.MaxReqsPerMin = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	threadTTLStr := k.String("chat.thread.ttl")
	if threadTTLStr == "" {
		threadTTLStr = "24h"
	}
	cfg.Chat.ThreadTTL, err = time.ParseDuration(threadTTLStr)
	if err != nil {
		return nil, fmt.Errorf("parsing chat thread ttl: %w", err)
	}

	upstreamTimeoutStr := k.String("chat.upstream.timeout")
	if upstreamTimeoutStr == "" {
		upstreamTimeoutStr = "30s"
	}
	cfg.Chat.UpstreamTimeout, err = time.ParseDuration(upstreamTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("parsing chat upstream timeout: %w", err)
	}

	return cfg, nil
}

func splitOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
