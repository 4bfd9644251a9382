package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/averix-dev/catalog-gateway/internal/cache"
	"github.com/averix-dev/catalog-gateway/internal/domain/catalog"
	"github.com/averix-dev/catalog-gateway/internal/handler"
	"github.com/averix-dev/catalog-gateway/internal/kvstore"
	"github.com/averix-dev/catalog-gateway/internal/probe"
	"github.com/averix-dev/catalog-gateway/internal/remote"
	"github.com/averix-dev/catalog-gateway/pkg/health"
	"github.com/averix-dev/catalog-gateway/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the gateway.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.Cache.Backend),
		zap.String("products_url", cfg.ProductsURL),
	)

	// Cache store backend.
	store, closeStore, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return errors.Wrap(err, "open cache store")
	}
	defer closeStore()

	// Remote source with an instrumented transport.
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
		Timeout: 30 * time.Second,
	}
	source := remote.NewClient(cfg.ProductsURL, remote.WithHTTPClient(httpClient))

	// Cache layer over the store.
	cacheOpts := []cache.Option{
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithKeyPrefix(cfg.Cache.KeyPrefix),
	}
	if cfg.Cache.Compress {
		cacheOpts = append(cacheOpts, cache.WithCompression())
	}
	productCache := cache.New(store, cacheOpts...)

	// Orchestration.
	repoOpts := []catalog.Option{catalog.WithCache(productCache)}
	if cfg.Probe.Enabled {
		repoOpts = append(repoOpts, catalog.WithProber(probe.NewDialer(cfg.Probe.Addr, cfg.Probe.Timeout)))
	}
	catalogSvc := catalog.NewService(catalog.NewRepository(source, repoOpts...))

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddReadinessCheck("store", 5*time.Second, storeCheck(store))
	healthSvc.AddReadinessCheck("upstream", 5*time.Second, health.EndpointCheck(httpClient, cfg.ProductsURL))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Routes.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	handler.New(catalogSvc).Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				MaxAge:       cfg.CORS.MaxAge,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("catalog-gateway", m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// openStore builds the configured kvstore backend and returns its cleanup
// function.
func openStore(ctx context.Context, cfg CacheConfig) (kvstore.Store, func(), error) {
	switch cfg.Backend {
	case BackendMemory:
		return kvstore.NewMemory(), func() {}, nil

	case BackendRedis:
		s, err := kvstore.OpenRedis(ctx, kvstore.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case BackendSQLite:
		s, err := kvstore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case BackendPostgres:
		s, err := kvstore.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	default:
		return nil, nil, errors.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// storeCheck probes the store with a read of the readiness sentinel key. The
// key does not need to exist; only a store-level error marks it unreachable.
func storeCheck(store kvstore.Store) health.CheckFunc {
	return func(ctx context.Context) error {
		_, _, err := store.Get(ctx, "catalog:healthcheck")
		return err
	}
}
