package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abgdnv/catalog/internal/config"
	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

// breaker guards a ProductStore with a circuit breaker. While the circuit is
// open calls fail fast with ErrStoreUnavailable instead of reaching the database.
type breaker struct {
	next ProductStore
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps next with a circuit breaker configured by cfg.
// A missing product or a row the database rejects as bad input is a successful
// call and never trips the breaker.
func NewBreakerStore(next ProductStore, cfg config.CircuitBreakerConfig, logger *slog.Logger) ProductStore {
	st := gobreaker.Settings{
		Name:        "product-store",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, perrors.ErrProductNotFound) ||
				errors.Is(err, context.Canceled) ||
				isInputError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &breaker{next: next, cb: gobreaker.NewCircuitBreaker[any](st)}
}

// isInputError reports SQLSTATE class 22 (data exception) and
// class 23 (integrity constraint violation).
func isInputError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	class := pgErr.SQLState()
	if len(class) >= 2 {
		class = class[:2]
	}
	return class == "22" || class == "23"
}

func execute[T any](b *breaker, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %w", perrors.ErrStoreUnavailable, err)
		}
		return zero, err
	}
	return res.(T), nil
}

func (b *breaker) FindAll(ctx context.Context) ([]ProductSummary, error) {
	return execute(b, func() ([]ProductSummary, error) {
		return b.next.FindAll(ctx)
	})
}

func (b *breaker) FindByID(ctx context.Context, id int64) (*Product, error) {
	return execute(b, func() (*Product, error) {
		return b.next.FindByID(ctx, id)
	})
}

func (b *breaker) Create(ctx context.Context, name string, price decimal.Decimal) (*Product, error) {
	return execute(b, func() (*Product, error) {
		return b.next.Create(ctx, name, price)
	})
}

func (b *breaker) Update(ctx context.Context, id int64, name string, price decimal.Decimal, availability bool) (*Product, error) {
	return execute(b, func() (*Product, error) {
		return b.next.Update(ctx, id, name, price, availability)
	})
}

func (b *breaker) ToggleAvailability(ctx context.Context, id int64) (*Product, error) {
	return execute(b, func() (*Product, error) {
		return b.next.ToggleAvailability(ctx, id)
	})
}

func (b *breaker) DeleteByID(ctx context.Context, id int64) error {
	_, err := execute(b, func() (struct{}, error) {
		return struct{}{}, b.next.DeleteByID(ctx, id)
	})
	return err
}

// Ping goes through the breaker so health checks report an open circuit
// and act as the probe once the open timeout has passed.
func (b *breaker) Ping(ctx context.Context) error {
	_, err := execute(b, func() (struct{}, error) {
		return struct{}{}, b.next.Ping(ctx)
	})
	return err
}
