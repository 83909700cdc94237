// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a persisted product record.
type Product struct {
	ID           int64           `db:"id"`
	Name         string          `db:"name"`
	Price        decimal.Decimal `db:"price"`
	Availability bool            `db:"availability"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// ProductSummary is the projection returned by listings.
type ProductSummary struct {
	ID    int64           `db:"id"`
	Name  string          `db:"name"`
	Price decimal.Decimal `db:"price"`
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindAll returns every product, newest id first.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductSummary, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// Create adds a new, available product.
	Create(ctx context.Context, name string, price decimal.Decimal) (*Product, error)

	// Update overwrites name, price and availability of a product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, name string, price decimal.Decimal, availability bool) (*Product, error)

	// ToggleAvailability flips the availability flag of a product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	ToggleAvailability(ctx context.Context, id int64) (*Product, error)

	// DeleteByID removes a product permanently.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// Ping reports whether the underlying data store is reachable.
	Ping(ctx context.Context) error
}
