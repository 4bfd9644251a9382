package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Store backend names accepted by CacheConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds the complete gateway configuration, loadable from environment
// variables (CATALOG_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"gateway listen address"`
	ProductsURL string `default:"https://fakestoreapi.com/products" usage:"upstream products endpoint" flag:"products-url"`
	Cache       CacheConfig
	Probe       ProbeConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// CacheConfig selects and configures the local cache store.
type CacheConfig struct {
	Backend   string        `default:"memory" usage:"cache store backend: memory, redis, sqlite, postgres"`
	TTL       time.Duration `default:"1h" usage:"maximum cache entry age"`
	KeyPrefix string        `default:"catalog" usage:"namespace prefix for cache keys" flag:"cache-key-prefix"`
	Compress  bool          `default:"false" usage:"gzip cache payloads before storing"`

	RedisAddr     string `default:"localhost:6379" usage:"Redis address for the redis backend" flag:"redis-addr"`
	RedisPassword string `usage:"Redis password (CATALOG_CACHE_REDIS_PASSWORD)" flag:"redis-password"`
	RedisDB       int    `default:"0" usage:"Redis database number" flag:"redis-db"`

	SQLitePath string `default:"catalog.db" usage:"database file for the sqlite backend" flag:"sqlite-path"`

	DatabaseURL string `usage:"PostgreSQL connection URL for the postgres backend (CATALOG_CACHE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
}

// ProbeConfig controls the optional connectivity probe. When disabled the
// repository treats any remote failure as a cue to fall back to the cache.
type ProbeConfig struct {
	Enabled bool          `default:"false" usage:"enable the TCP connectivity probe" flag:"probe-enabled"`
	Addr    string        `default:"1.1.1.1:443" usage:"TCP address dialed to detect connectivity" flag:"probe-addr"`
	Timeout time.Duration `default:"2s" usage:"single probe dial timeout" flag:"probe-timeout"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"max requests per window, 0 disables"`
	Window time.Duration `default:"1m" usage:"rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"allowed CORS origins"`
	MaxAge  int      `default:"86400" usage:"preflight cache lifetime in seconds" flag:"cors-max-age"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s" usage:"delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults, then validates backend requirements.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CATALOG",
		Files:     []string{"config.yaml", "/etc/catalog/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	switch cfg.Cache.Backend {
	case BackendMemory, BackendRedis, BackendSQLite:
	case BackendPostgres:
		if cfg.Cache.DatabaseURL == "" {
			return nil, errors.New("postgres backend requires CATALOG_CACHE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return nil, errors.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// onto the CATALOG_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Cache.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Cache.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
