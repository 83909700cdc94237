// Package migrations embeds the database schema and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// Up applies every pending migration to the database at databaseURL.
// A database that is already up to date is not an error. Waiting for the
// migration lock, or for a table lock, fails after lockTimeout.
func Up(databaseURL string, lockTimeout time.Duration) error {
	m, err := newMigrate(databaseURL, lockTimeout)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down rolls back every applied migration.
func Down(databaseURL string, lockTimeout time.Duration) error {
	m, err := newMigrate(databaseURL, lockTimeout)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

func newMigrate(databaseURL string, lockTimeout time.Duration) (*migrate.Migrate, error) {
	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, withLockTimeout(driverURL(databaseURL), lockTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if lockTimeout > 0 {
		m.LockTimeout = lockTimeout
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	_, _ = m.Close()
}

// withLockTimeout sets the lock_timeout session parameter so the server gives
// up on pg_advisory_lock instead of leaving the driver blocked in it.
func withLockTimeout(databaseURL string, lockTimeout time.Duration) string {
	if lockTimeout <= 0 {
		return databaseURL
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return databaseURL
	}
	q := u.Query()
	q.Set("lock_timeout", strconv.FormatInt(lockTimeout.Milliseconds(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// driverURL rewrites a postgres URL to the scheme of the pgx/v5 migrate driver.
func driverURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(databaseURL, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return databaseURL
}
