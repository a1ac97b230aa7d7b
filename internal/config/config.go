// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/simulate.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Data sources
// --------------------------------------------------------------------------

const (
	DataSourceFile     = "file"
	DataSourcePostgres = "postgres"
)

// Table names, matching internal/db/schema.sql.
const (
	TeamsTable    = "sim_teams"
	FixturesTable = "sim_fixtures"
	ResultsTable  = "sim_results"
)

// ResultsChannel is the LISTEN/NOTIFY channel raised when a dataset's
// stored results change.
const ResultsChannel = "sim_results_changed"


// --------------------------------------------------------------------------
// Config is populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Reference data
	DataSource string // file or postgres
	DataFile   string // empty means the bundled dataset
	Dataset    string // dataset name when reading from postgres
	// ReloadInterval re-reads a postgres dataset on a ticker, catching
	// changes whose notification was missed. Zero disables it.
	ReloadInterval time.Duration

	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Simulation
	Samples    int
	MaxSamples int // upper bound for API requests
	Seed       uint64
	Workers    int
	HeadToHead bool
	// MaxConcurrent bounds simulations in flight across the API and MCP
	// surfaces. Each one already fans out over Workers goroutines.
	MaxConcurrent int

	// Predictor
	BaseGoals float64
	EloScale  float64

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DataSource: strings.ToLower(envOr("DATA_SOURCE", DataSourceFile)),
		DataFile:   envOr("DATA_FILE", ""),
		Dataset:    envOr("DATASET", "wc2022"),

		ReloadInterval: time.Duration(envInt("DATA_RELOAD_MINUTES", 15)) * time.Minute,

		DatabaseURL:    envOr("DATABASE_URL", envOr("NEON_DATABASE_URL", "")),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		Samples:    envInt("SIM_SAMPLES", 10000),
		MaxSamples: envInt("SIM_MAX_SAMPLES", 100000),
		Seed:       uint64(envInt("SIM_SEED", 0)),
		Workers:    envInt("SIM_WORKERS", 4),
		HeadToHead: envBool("SIM_HEAD_TO_HEAD", false),

		MaxConcurrent: envInt("SIM_MAX_CONCURRENT", 2),

		BaseGoals: envFloat("PREDICTOR_BASE_GOALS", 1.35),
		EloScale:  envFloat("PREDICTOR_ELO_SCALE", 400),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:4321",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
		CacheTTL:     time.Duration(envInt("CACHE_TTL_MINUTES", 10)) * time.Minute,
	}

	switch cfg.DataSource {
	case DataSourceFile:
	case DataSourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATA_SOURCE=postgres requires DATABASE_URL or NEON_DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("unknown DATA_SOURCE %q (want %s or %s)", cfg.DataSource, DataSourceFile, DataSourcePostgres)
	}
	if cfg.Samples < 1 {
		return nil, fmt.Errorf("SIM_SAMPLES must be positive, got %d", cfg.Samples)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
