// Package app contains the application setup for the product catalog service.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/platform/bootstrap"
	"github.com/abgdnv/catalog/internal/platform/messaging"
	pnats "github.com/abgdnv/catalog/internal/platform/nats"
	"github.com/abgdnv/catalog/internal/platform/server"
	"github.com/abgdnv/catalog/internal/platform/web"
	"github.com/abgdnv/catalog/internal/product/docs"
	"github.com/abgdnv/catalog/internal/product/events"
	"github.com/abgdnv/catalog/internal/product/migrations"
	"github.com/abgdnv/catalog/internal/product/service"
	"github.com/abgdnv/catalog/internal/product/store"
	"github.com/abgdnv/catalog/internal/product/transport/rest"
	"github.com/abgdnv/catalog/internal/product/transport/views"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// ServiceName identifies the service in traces and gRPC health checks.
const ServiceName = "catalog"

const healthCheckInterval = 5 * time.Second

type Dependencies struct {
	ProductService service.ProductService
	Health         *health.Server
	Logger         *slog.Logger
	// Metrics serves the Prometheus scrape endpoint; nil disables it.
	Metrics http.Handler
}

func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(productStore, publisher),
		Health:         health.NewServer(),
		Logger:         logger,
	}
}

// OpenStore connects to the database, applies the schema migrations and
// guards the store with a circuit breaker.
// If either step fails the error is logged and a store that fails every
// operation is returned, so the service keeps running without a database.
// The returned function releases the connection pool.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.ProductStore, func()) {
	noop := func() {}

	if err := cfg.Validate(); err != nil {
		logger.Error("Database is not configured, running without a store", "error", err)
		return store.NewUnavailableStore(err), noop
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.URL, cfg.Timeout)
	if err != nil {
		logger.Error("Unable to connect to the database, running without a store", "error", err)
		return store.NewUnavailableStore(err), noop
	}
	logger.Info("Successfully connected to the database!")

	if err := migrations.Up(cfg.URL, cfg.Timeout); err != nil {
		logger.Error("Unable to apply database migrations, running without a store", "error", err)
		dbPool.Close()
		return store.NewUnavailableStore(err), noop
	}
	logger.Info("Database schema is up to date")

	return store.NewBreakerStore(store.NewPgStore(dbPool), cfg.CircuitBreaker, logger), dbPool.Close
}

// OpenPublisher connects to NATS and makes sure the product event stream exists.
// When NATS is disabled events are dropped. The returned function drains the connection.
func OpenPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Enabled {
		logger.Info("NATS is disabled, product events are not published")
		return messaging.NopPublisher{}, func() {}, nil
	}

	nc, err := pnats.NewClient(cfg.Url, ServiceName, cfg.Timeout, logger)
	if err != nil {
		return nil, nil, err
	}
	js, err := pnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if err := pnats.EnsureStream(ctx, js, events.StreamName, events.StreamSubjects); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Publishing product events to NATS", "stream", events.StreamName)

	return pnats.NewPublisher(js), func() {
		if err := nc.Drain(); err != nil {
			logger.Error("failed to drain NATS connection", "error", err)
		}
	}, nil
}

// SetupHttpHandler initializes the routes and middleware of the service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) (http.Handler, error) {
	mux := server.NewChiRouter(deps.Logger, ServiceName)
	if err := wireRoutes(mux, deps); err != nil {
		return nil, err
	}
	return mux, nil
}

// wireRoutes sets up the API, the HTML pages and the API documentation.
func wireRoutes(mux *chi.Mux, deps *Dependencies) error {
	rest.NewHandler(deps.ProductService, deps.Logger).RegisterRoutes(mux)

	pages, err := views.NewHandler(deps.ProductService, deps.Logger)
	if err != nil {
		return err
	}
	pages.RegisterRoutes(mux)

	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	mux.Mount("/docs", web.SwaggerUI("/docs", docs.SwaggerInfo.InstanceName()))
	return nil
}

// SetupHttpServer creates and configures an HTTP server for the service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) (*http.Server, error) {
	mux, err := SetupHttpHandler(deps)
	if err != nil {
		return nil, err
	}

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux), nil
}

// SetupGrpcServer initializes the gRPC server. It exposes the standard health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, server.HealthRegistration(deps.Health))
}

// WatchHealth mirrors the reachability of the product store into the gRPC health service until ctx is done.
func WatchHealth(ctx context.Context, deps *Dependencies) {
	server.WatchHealth(ctx, deps.Health, ServiceName, deps.ProductService.Ping, healthCheckInterval, deps.Logger)
}
