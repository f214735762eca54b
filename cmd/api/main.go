package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/crashcoursehub/promosite/internal/api"
	"github.com/crashcoursehub/promosite/internal/audit"
	"github.com/crashcoursehub/promosite/internal/auth"
	"github.com/crashcoursehub/promosite/internal/catalog"
	"github.com/crashcoursehub/promosite/internal/chat"
	"github.com/crashcoursehub/promosite/internal/config"
	"github.com/crashcoursehub/promosite/internal/database"
	"github.com/crashcoursehub/promosite/internal/middleware"
	inats "github.com/crashcoursehub/promosite/internal/nats"
	iredis "github.com/crashcoursehub/promosite/internal/redis"
	"github.com/crashcoursehub/promosite/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS is optional; without it the audit trail is disabled.
	var natsClient *inats.Client
	var publisher *inats.Publisher
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = inats.NewPublisher(natsClient.JetStream())
	} else {
		slog.Info("NATS disabled, audit trail off")
	}

	// Catalog
	catalogRepo := catalog.NewRepository(pool)
	catalogSvc := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogSvc)

	if err := catalogRepo.SeedCourses(ctx, catalog.DemoCourses); err != nil {
		slog.Error("seeding courses", "error", err)
		os.Exit(1)
	}

	// Chat gateway
	threads := chat.NewThreadStore(redisClient, cfg.Chat.ThreadTTL)
	ledger := chat.NewLedger(redisClient, cfg.Chat.HourlyWordLimit, cfg.Chat.DailyWordLimit)
	relay := chat.NewOpenAIRelay(cfg.OpenAI)
	usageRepo := chat.NewUsageRepository(pool)

	var eventPublisher chat.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}
	chatSvc := chat.NewService(threads, ledger, relay, usageRepo, eventPublisher, cfg.Chat)
	chatHandler := chat.NewHandler(chatSvc)

	// Audit trail
	auditRepo := audit.NewRepository(pool)
	auditHandler := audit.NewHandler(auditRepo)

	if natsClient != nil {
		consumer := audit.NewConsumer(auditRepo, inats.NewConsumerManager(natsClient.JetStream()))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	// Admin endpoints share a Redis rate limiter on top of basic auth.
	adminLimiter := middleware.NewRateLimiter(redisClient, cfg.Admin.MaxReqsPerMin, 60)

	// Router
	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AdminRateLimiter:   adminLimiter.Middleware,
	}, api.HandlerSet{
		ListCourses: catalogHandler.ListCourses,
		CreatePromo: catalogHandler.CreatePromo,
		DeletePromo: catalogHandler.DeletePromo,
		Subscribe:   catalogHandler.Subscribe,

		CreateThread: chatHandler.CreateThread,
		SendMessage:  chatHandler.SendMessage,
		QuotaStatus:  chatHandler.QuotaStatus,
		DailyStats:   chatHandler.DailyStats,

		ListAuditEntries: auditHandler.List,

		AdminMiddleware: auth.AdminBasic(cfg.Admin),
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
