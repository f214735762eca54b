package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crashcoursehub/promosite/internal/database"
	mw "github.com/crashcoursehub/promosite/internal/middleware"
	inats "github.com/crashcoursehub/promosite/internal/nats"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Catalog handlers
	ListCourses http.HandlerFunc
	CreatePromo http.HandlerFunc
	DeletePromo http.HandlerFunc
	Subscribe   http.HandlerFunc

	// Chat handlers
	CreateThread http.HandlerFunc
	SendMessage  http.HandlerFunc
	QuotaStatus  http.HandlerFunc
	DailyStats   http.HandlerFunc

	// Audit handler
	ListAuditEntries http.HandlerFunc

	// Admin basic-auth middleware
	AdminMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AdminRateLimiter   func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, natsClient *inats.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe — always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — checks DB and NATS
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if natsClient != nil && !natsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else if natsClient == nil {
			health["nats"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog routes
		r.Get("/courses", h.ListCourses)
		r.Post("/newsletter", h.Subscribe)

		// Usage analytics (public read, mirrors the stats panel)
		r.Get("/stats", h.DailyStats)

		// Chat routes (public, per-identity quota enforced by the gateway)
		r.Route("/chat", func(r chi.Router) {
			r.Post("/thread", h.CreateThread)
			r.Get("/status", h.QuotaStatus)
			r.Post("/{threadID}", h.SendMessage)
		})

		// Admin routes — basic auth, optionally rate-limited
		r.Group(func(r chi.Router) {
			if cfg.AdminRateLimiter != nil {
				r.Use(cfg.AdminRateLimiter)
			}
			r.Use(h.AdminMiddleware)

			r.Post("/courses/{courseID}/promo", h.CreatePromo)
			r.Delete("/courses/{courseID}/promo", h.DeletePromo)
			r.Get("/admin/audit", h.ListAuditEntries)
		})
	})

	return r
}
