package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/sync/semaphore"

	"github.com/albapepper/scoracle-sim/internal/api/handler"
	"github.com/albapepper/scoracle-sim/internal/cache"
	"github.com/albapepper/scoracle-sim/internal/config"
	"github.com/albapepper/scoracle-sim/internal/db"
	"github.com/albapepper/scoracle-sim/internal/mcptools"
	"github.com/albapepper/scoracle-sim/internal/sim"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
// pool may be nil when reference data is read from a file.
func NewRouter(runner *sim.Runner, pool *db.Pool, appCache *cache.Cache, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control", "Mcp-Session-Id"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag", "Mcp-Session-Id"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	sims := semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	h := handler.New(runner, pool, appCache, cfg, sims)
	mcpServer, _ := mcptools.NewServer(runner, cfg, sims)

	// --- Routes ---

	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	// MCP over streamable HTTP
	r.Handle("/mcp", mcptools.Handler(mcpServer))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/teams", h.ListTeams)
		r.Get("/groups", h.ListGroups)
		r.Get("/teams/{team}/progress", h.GetTeamProgress)
		r.Post("/simulations", h.RunSimulation)
	})

	return r
}
