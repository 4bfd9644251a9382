// Command cache-warm fetches the upstream product list once and primes one
// or more cache store backends with it, so a freshly deployed gateway can
// serve from cache before its first successful remote fetch.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/averix-dev/catalog-gateway/internal/cache"
	"github.com/averix-dev/catalog-gateway/internal/domain/product"
	"github.com/averix-dev/catalog-gateway/internal/kvstore"
	"github.com/averix-dev/catalog-gateway/internal/remote"
)

func main() {
	var (
		productsURL string
		backends    string
		keyPrefix   string
		compress    bool

		redisAddr     string
		redisPassword string
		redisDB       int
		sqlitePath    string
		databaseURL   string
	)

	flag.StringVar(&productsURL, "products-url", "https://fakestoreapi.com/products", "upstream products endpoint")
	flag.StringVar(&backends, "backends", "sqlite", "comma-separated store backends to prime: redis, sqlite, postgres")
	flag.StringVar(&keyPrefix, "key-prefix", "catalog", "namespace prefix for cache keys")
	flag.BoolVar(&compress, "compress", false, "gzip cache payloads before storing")
	flag.StringVar(&redisAddr, "redis-addr", "localhost:6379", "Redis address")
	flag.StringVar(&redisPassword, "redis-password", "", "Redis password")
	flag.IntVar(&redisDB, "redis-db", 0, "Redis database number")
	flag.StringVar(&sqlitePath, "sqlite-path", "catalog.db", "SQLite database file")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg := warmConfig{
		productsURL:   productsURL,
		backends:      strings.Split(backends, ","),
		keyPrefix:     keyPrefix,
		compress:      compress,
		redisAddr:     redisAddr,
		redisPassword: redisPassword,
		redisDB:       redisDB,
		sqlitePath:    sqlitePath,
		databaseURL:   databaseURL,
	}
	if err := run(ctx, cfg); err != nil {
		slog.Error("cache warm failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("cache warm completed successfully")
}

type warmConfig struct {
	productsURL string
	backends    []string
	keyPrefix   string
	compress    bool

	redisAddr     string
	redisPassword string
	redisDB       int
	sqlitePath    string
	databaseURL   string
}

func run(ctx context.Context, cfg warmConfig) error {
	start := time.Now()

	products, err := remote.NewClient(cfg.productsURL).Fetch(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch products")
	}
	slog.Info("fetched products",
		slog.Int("count", len(products)),
		slog.Duration("took", time.Since(start)),
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, backend := range cfg.backends {
		backend := strings.TrimSpace(backend)
		g.Go(func() error {
			if err := prime(ctx, cfg, backend, products); err != nil {
				return errors.Wrapf(err, "prime %s", backend)
			}
			slog.Info("primed backend", slog.String("backend", backend))
			return nil
		})
	}
	return g.Wait()
}

// prime opens the named backend and writes the product list through the
// cache layer, so the entry carries the same key layout and timestamp the
// gateway expects.
func prime(ctx context.Context, cfg warmConfig, backend string, products []product.Product) error {
	var (
		store kvstore.Store
		clean func()
	)
	switch backend {
	case "redis":
		s, err := kvstore.OpenRedis(ctx, kvstore.RedisConfig{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		if err != nil {
			return err
		}
		store, clean = s, func() { _ = s.Close() }

	case "sqlite":
		s, err := kvstore.OpenSQLite(ctx, cfg.sqlitePath)
		if err != nil {
			return err
		}
		store, clean = s, func() { _ = s.Close() }

	case "postgres":
		if cfg.databaseURL == "" {
			return errors.New("postgres backend requires --database-url or DATABASE_URL")
		}
		s, err := kvstore.OpenPostgres(ctx, cfg.databaseURL)
		if err != nil {
			return err
		}
		store, clean = s, s.Close

	default:
		return errors.Errorf("unknown backend %q", backend)
	}
	defer clean()

	opts := []cache.Option{cache.WithKeyPrefix(cfg.keyPrefix)}
	if cfg.compress {
		opts = append(opts, cache.WithCompression())
	}
	return cache.New(store, opts...).Store(ctx, products)
}
