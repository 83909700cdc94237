// Package pgtest starts a disposable PostgreSQL container with the catalog schema applied.
// It is shared by the store integration suite and the end-to-end suite.
package pgtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/catalog/internal/platform/bootstrap"
	"github.com/abgdnv/catalog/internal/product/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SkipEnv is the environment variable that skips container-backed tests when set to "1".
const SkipEnv = "CATALOG_SKIP_INTEGRATION_TESTS"

// Database is a running PostgreSQL container and a pool connected to it.
type Database struct {
	Container *postgres.PostgresContainer
	URL       string
	Pool      *pgxpool.Pool
}

// Start runs a PostgreSQL container, connects to it and applies the embedded migrations.
func Start(ctx context.Context, logger *slog.Logger) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run PostgreSQL container: %w", err)
	}
	d := &Database{Container: container}

	d.URL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		d.Close(ctx, logger)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	for i := range 10 {
		logger.Info("Connecting to PostgreSQL test database", "attempt", i+1)
		d.Pool, err = bootstrap.NewDbPool(ctx, d.URL, 5*time.Second)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		d.Close(ctx, logger)
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	if err := migrations.Up(d.URL, 30*time.Second); err != nil {
		d.Close(ctx, logger)
		return nil, err
	}
	logger.Info("Migrations applied to test database")
	return d, nil
}

// Truncate removes every product and restarts the id sequence.
func (d *Database) Truncate(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	return err
}

// Close releases the pool and terminates the container.
func (d *Database) Close(ctx context.Context, logger *slog.Logger) {
	if d.Pool != nil {
		d.Pool.Close()
	}
	if d.Container != nil {
		if err := d.Container.Terminate(ctx); err != nil {
			logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}
