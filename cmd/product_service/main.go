// Package main runs the product catalog service: the REST API, the HTML pages,
// the API documentation, the gRPC health service and, optionally, pprof and
// a Prometheus scrape endpoint.
//
//go:generate swag init --parseInternal -g main.go -d ./,../../internal/product/transport/rest,../../internal/product/service,../../internal/platform/web -o ../../internal/product/docs --outputTypes go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/platform/logger"
	"github.com/abgdnv/catalog/internal/platform/telemetry"
	"github.com/abgdnv/catalog/internal/product/app"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

//	@title			Product Catalog API
//	@version		1.0.0
//	@description	REST API for managing the products of a catalog.
//	@BasePath		/
//	@tag.name		Products
//	@tag.description	Product catalog management

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, connects the product store, and starts the HTTP, gRPC and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	appLogger := logger.New(os.Stdout, cfg.Log.Level)
	slog.SetDefault(appLogger)

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, app.ServiceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				appLogger.Error("failed to shut down tracer provider", "error", err)
			}
		}()
	}

	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		mp, handler, err := telemetry.NewMeterProvider(app.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := mp.Shutdown(shutdownCtx); err != nil {
				appLogger.Error("failed to shut down meter provider", "error", err)
			}
		}()
		metricsHandler = handler
	}

	productStore, closeStore := app.OpenStore(ctx, cfg.Database, appLogger)
	defer closeStore()

	publisher, closePublisher, err := app.OpenPublisher(ctx, cfg.NATS, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up event publisher: %w", err)
	}
	defer closePublisher()

	deps := app.SetupDependencies(productStore, publisher, appLogger)
	deps.Metrics = metricsHandler
	httpServer, pprofServer, grpcServer, err := setupServers(deps, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up servers: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the gRPC health status in sync with the store
	g.Go(func() error {
		app.WatchHealth(gCtx, deps)
		return nil
	})

	// Start the HTTP server
	g.Go(func() error {
		appLogger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the gRPC server
	g.Go(func() error {
		grpcAddr := ":" + cfg.GRPC.Port
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		appLogger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	// gracefully shutdown gRPC server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			appLogger.Info("gRPC server stopped gracefully.")
			return nil
		case <-time.After(cfg.Shutdown.Timeout):
			appLogger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			grpcServer.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			appLogger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			appLogger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	} else {
		appLogger.Info("Pprof server is disabled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// setupServers initializes the HTTP, pprof, and gRPC servers.
// The pprof server uses the default mux, where net/http/pprof registers its handlers.
func setupServers(deps *app.Dependencies, cfg *config.Config) (*http.Server, *http.Server, *grpc.Server, error) {
	httpServer, err := app.SetupHttpServer(deps, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
	pprofServer := &http.Server{
		Addr:              cfg.PProf.Addr,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
	}
	return httpServer, pprofServer, grpcServer, nil
}
