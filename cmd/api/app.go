package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/onnwee/assessrec/internal/api"
	"github.com/onnwee/assessrec/internal/catalog"
	"github.com/onnwee/assessrec/internal/config"
	"github.com/onnwee/assessrec/internal/health"
	"github.com/onnwee/assessrec/internal/middleware"
	"github.com/onnwee/assessrec/internal/ranking"
	"github.com/onnwee/assessrec/internal/recommend"
	"github.com/onnwee/assessrec/internal/tracing"
)

const (
	serviceName    = "assessrec"
	serviceVersion = "0.1.0"

	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Minute
)

// app holds the wired dependencies of the API server.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	tracer      *tracing.Provider
	registry    *prometheus.Registry
	httpMetrics *middleware.Metrics
	recMetrics  *recommend.Metrics
	weights     *ranking.Weights

	source   catalog.Source
	store    middleware.RateLimitStore
	memStore *middleware.InMemoryRateLimitStore
	checkers map[string]api.HealthChecker
	handlers *api.RecommendHandlers

	closers []func() error
}

// newApp builds every dependency named by cfg. Nothing is contacted yet
// except what the client constructors do on their own.
func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		checkers: make(map[string]api.HealthChecker),
		handlers: api.NewRecommendHandlers(),
	}

	tp, err := tracing.NewProvider(tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Enabled:        cfg.TracingEnabled,
		Environment:    cfg.Env,
		ExporterType:   cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplingRate:   cfg.TracingSampleRate,
		InsecureMode:   cfg.TracingInsecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracer = tp

	a.httpMetrics = middleware.NewMetrics()
	a.recMetrics = recommend.NewMetrics()
	for _, register := range []func(prometheus.Registerer) error{a.httpMetrics.Register, a.recMetrics.Register} {
		if err := register(a.registry); err != nil {
			a.close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// A broken calibration file is not fatal; the defaults are used.
	weights, err := ranking.LoadCalibration(cfg.CalibrationPath)
	if err != nil {
		logger.Warn("ranking calibration not applied", "path", cfg.CalibrationPath, "error", err)
	}
	a.weights = weights

	if err := a.initCatalogSource(); err != nil {
		a.close()
		return nil, err
	}
	if err := a.initRateLimitStore(); err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

func (a *app) initCatalogSource() error {
	cfg := a.cfg
	switch cfg.CatalogSource {
	case config.CatalogSourceS3:
		format, err := catalog.ParseFormat(cfg.CatalogFormat, cfg.CatalogS3Key)
		if err != nil {
			return err
		}
		src, err := catalog.NewS3Source(catalog.S3Config{
			Bucket:          cfg.CatalogS3Bucket,
			Key:             cfg.CatalogS3Key,
			Endpoint:        cfg.CatalogS3Endpoint,
			Region:          cfg.CatalogS3Region,
			AccessKeyID:     cfg.CatalogS3AccessKeyID,
			SecretAccessKey: cfg.CatalogS3SecretAccessKey,
			Format:          format,
		})
		if err != nil {
			return fmt.Errorf("failed to configure s3 catalog: %w", err)
		}
		a.source = src

	case config.CatalogSourcePostgres:
		db, err := sql.Open("postgres", cfg.CatalogDatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open catalog database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		src, err := catalog.NewPostgresSource(db, cfg.CatalogTable)
		if err != nil {
			return err
		}
		a.source = src
		a.checkers["database"] = health.NewDBChecker(db)

	default:
		format, err := catalog.ParseFormat(cfg.CatalogFormat, cfg.CatalogPath)
		if err != nil {
			return err
		}
		a.source = catalog.FileSource{Path: cfg.CatalogPath, Format: format}
	}
	return nil
}

func (a *app) initRateLimitStore() error {
	if a.cfg.RedisURL == "" {
		a.memStore = middleware.NewInMemoryRateLimitStore()
		a.store = a.memStore
		return nil
	}

	opts, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	a.closers = append(a.closers, client.Close)
	a.store = middleware.NewRedisRateLimitStore(client, middleware.WithRedisMetrics(a.httpMetrics))
	a.checkers["redis"] = health.NewRedisChecker(client)
	return nil
}

// handler returns the routed and wrapped HTTP handler.
func (a *app) handler() http.Handler {
	limit := middleware.RateLimitConfig{
		RequestsPerWindow: a.cfg.RateLimitRequests,
		WindowDuration:    a.cfg.RateLimitWindow(),
	}

	router := api.NewRouter(api.RouterConfig{
		Recommend:        a.handlers,
		RecommendLimiter: middleware.RateLimiter(a.store, limit, middleware.IPKeyFunc(), a.httpMetrics),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			CatalogReady: a.handlers.Ready,
			Checkers:     a.checkers,
		}),
		Metrics: promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
		Service: serviceName,
		Version: serviceVersion,
	})

	// RequestID -> Tracing -> Logging -> HTTPMetrics -> CORS -> router; /recommend is rate limited
	var h http.Handler = router
	h = middleware.CORS(middleware.CORSConfig{AllowedOrigins: a.cfg.CORSAllowedOrigins, MaxAge: 600})(h)
	h = middleware.HTTPMetrics(a.httpMetrics)(h)
	h = middleware.Logging(a.logger)(h)
	h = middleware.Tracing(serviceName)(h)
	return middleware.RequestID(h)
}

// loadCatalog loads the catalog and installs the engine built from it.
func (a *app) loadCatalog(ctx context.Context) error {
	start := time.Now()
	cat, err := a.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	a.handlers.SetEngine(recommend.New(cat,
		recommend.WithWeights(a.weights),
		recommend.WithMetrics(a.recMetrics),
	))
	a.logger.InfoContext(ctx, "catalog ready",
		"records", cat.Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// run serves on ln until ctx is done or the catalog fails to load, then shuts
// the server down gracefully.
func (a *app) run(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:      a.handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := a.loadCatalog(gctx)
		if err != nil && gctx.Err() != nil {
			return nil
		}
		return err
	})

	if a.memStore != nil {
		g.Go(func() error {
			a.memStore.RunCleanup(gctx, cleanupInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.logger.Info("server stopped")
	return err
}

// close releases clients and flushes pending spans.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close dependency", "error", err)
		}
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.logger.Warn("failed to shut down tracing", "error", err)
		}
	}
}
