package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	productColumns = "id, name, price, availability, created_at, updated_at"

	findAllQuery  = `SELECT id, name, price FROM products ORDER BY id DESC`
	findByIDQuery = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	createQuery   = `INSERT INTO products (name, price) VALUES ($1, $2) RETURNING ` + productColumns
	updateQuery   = `UPDATE products SET name = $2, price = $3, availability = $4, updated_at = NOW()
WHERE id = $1 RETURNING ` + productColumns
	toggleQuery = `UPDATE products SET availability = NOT availability, updated_at = NOW()
WHERE id = $1 RETURNING ` + productColumns
	deleteQuery = `DELETE FROM products WHERE id = $1`
)

// PgStore implements ProductStore using PostgreSQL as the data store.
// The pool must have the shopspring decimal codec registered (see bootstrap.NewDbPool).
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// FindAll retrieves all products ordered by id, newest first.
func (p *PgStore) FindAll(ctx context.Context) ([]ProductSummary, error) {
	rows, err := p.db.Query(ctx, findAllQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[ProductSummary])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	product, err := p.queryOne(ctx, findByIDQuery, id)
	if err != nil {
		return nil, p.notFoundOr(err, "failed to find product by ID")
	}
	return product, nil
}

// Create adds a new product to the system.
// Returns an error if the product cannot be created.
func (p *PgStore) Create(ctx context.Context, name string, price decimal.Decimal) (*Product, error) {
	product, err := p.queryOne(ctx, createQuery, name, price)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update modifies an existing product's details.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id int64, name string, price decimal.Decimal, availability bool) (*Product, error) {
	product, err := p.queryOne(ctx, updateQuery, id, name, price, availability)
	if err != nil {
		return nil, p.notFoundOr(err, "failed to update product")
	}
	return product, nil
}

// ToggleAvailability flips the availability of a product in a single statement.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) ToggleAvailability(ctx context.Context, id int64) (*Product, error) {
	product, err := p.queryOne(ctx, toggleQuery, id)
	if err != nil {
		return nil, p.notFoundOr(err, "failed to toggle product availability")
	}
	return product, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, deleteQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// Ping checks the database connection.
func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func (p *PgStore) queryOne(ctx context.Context, query string, args ...any) (*Product, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Product])
}

func (p *PgStore) notFoundOr(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return perrors.ErrProductNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
