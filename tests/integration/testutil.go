//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/crashcoursehub/promosite/internal/api"
	"github.com/crashcoursehub/promosite/internal/audit"
	"github.com/crashcoursehub/promosite/internal/auth"
	"github.com/crashcoursehub/promosite/internal/catalog"
	"github.com/crashcoursehub/promosite/internal/chat"
	"github.com/crashcoursehub/promosite/internal/config"
)

const (
	AdminUser     = "admin"
	AdminPassword = "test-admin-pass"
)

type TestEnv struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	Server      *httptest.Server
	CatalogSvc  *catalog.Service
	ChatSvc     *chat.Service
	AuditRepo   *audit.Repository
	Completer   *StubCompleter
}

// StubCompleter stands in for the completion API.
type StubCompleter struct {
	Reply string
	Err   error
}

func (s *StubCompleter) Complete(_ context.Context, _ []chat.Message, _ string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Reply, nil
}

var testEnv *TestEnv

func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "promosite_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	pgHost, _ := pgContainer.Host(ctx)
	pgPort, _ := pgContainer.MappedPort(ctx, "5432")

	// Start Redis container
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting redis container: %v", err)
	}
	t.Cleanup(func() { redisContainer.Terminate(ctx) })

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, "6379")

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/promosite_test?sslmode=disable", pgHost, pgPort.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	// Run migrations
	migrationsPath := getMigrationsPath()
	m, err := migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		dsn,
	)
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("running migrations: %v", err)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	t.Cleanup(func() { redisClient.Close() })

	// Catalog
	catalogRepo := catalog.NewRepository(pool)
	catalogSvc := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogSvc)

	if err := catalogRepo.SeedCourses(ctx, catalog.DemoCourses); err != nil {
		t.Fatalf("seeding courses: %v", err)
	}

	// Chat gateway with a stubbed completion API
	chatCfg := config.ChatConfig{
		MaxMessageWords: 1000,
		HourlyWordLimit: 5000,
		DailyWordLimit:  20000,
		ThreadTTL:       time.Hour,
		UpstreamTimeout: 5 * time.Second,
	}
	completer := &StubCompleter{Reply: "stubbed reply"}
	threads := chat.NewThreadStore(redisClient, chatCfg.ThreadTTL)
	ledger := chat.NewLedger(redisClient, chatCfg.HourlyWordLimit, chatCfg.DailyWordLimit)
	usageRepo := chat.NewUsageRepository(pool)
	chatSvc := chat.NewService(threads, ledger, completer, usageRepo, nil, chatCfg)
	chatHandler := chat.NewHandler(chatSvc)

	// Audit trail (repository only; no NATS in the test env)
	auditRepo := audit.NewRepository(pool)
	auditHandler := audit.NewHandler(auditRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing admin password: %v", err)
	}
	adminCfg := config.AdminConfig{User: AdminUser, PasswordHash: string(hash)}

	router := api.NewRouter(pool, nil, api.RouterConfig{}, api.HandlerSet{
		ListCourses: catalogHandler.ListCourses,
		CreatePromo: catalogHandler.CreatePromo,
		DeletePromo: catalogHandler.DeletePromo,
		Subscribe:   catalogHandler.Subscribe,

		CreateThread: chatHandler.CreateThread,
		SendMessage:  chatHandler.SendMessage,
		QuotaStatus:  chatHandler.QuotaStatus,
		DailyStats:   chatHandler.DailyStats,

		ListAuditEntries: auditHandler.List,

		AdminMiddleware: auth.AdminBasic(adminCfg),
	})

	server := httptest.NewServer(router)
	t.Cleanup(func() { server.Close() })

	testEnv = &TestEnv{
		Pool:        pool,
		RedisClient: redisClient,
		Server:      server,
		CatalogSvc:  catalogSvc,
		ChatSvc:     chatSvc,
		AuditRepo:   auditRepo,
		Completer:   completer,
	}

	return testEnv
}

func getMigrationsPath() string {
	// Try relative paths from test directory
	paths := []string{
		"../../migrations",
		"../../../migrations",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	log.Fatal("migrations directory not found")
	return ""
}

// Helper functions

func DoRequest(t *testing.T, env *TestEnv, method, path string, body any, asAdmin bool) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, bodyReader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if asAdmin {
		req.SetBasicAuth(AdminUser, AdminPassword)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("doing request: %v", err)
	}
	return resp
}

func ParseResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	return result
}
