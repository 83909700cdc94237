package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Prober reports whether a dependency is reachable.
type Prober func(ctx context.Context) error

// WatchHealth keeps the serving status of service (and of the server as a whole)
// in sync with probe until ctx is done. The status is checked once immediately,
// then every interval. On return every service is marked NOT_SERVING.
func WatchHealth(ctx context.Context, hs *health.Server, service string, probe Prober, interval time.Duration, logger *slog.Logger) {
	last := healthpb.HealthCheckResponse_UNKNOWN
	check := func() {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err := probe(probeCtx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			if last != status {
				logger.Warn("health probe failed", "service", service, "error", err)
			}
		}
		if last != status {
			logger.Info("health status changed", "service", service, "status", status.String())
			last = status
		}
		hs.SetServingStatus(service, status)
		hs.SetServingStatus("", status)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			check()
		}
	}
}
