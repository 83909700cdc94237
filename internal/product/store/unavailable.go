package store

import (
	"context"
	"fmt"

	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/shopspring/decimal"
)

// unavailable is the ProductStore used when the database could not be reached at startup.
// Every operation fails with ErrStoreUnavailable wrapping the startup error.
type unavailable struct {
	err error
}

// NewUnavailableStore returns a ProductStore whose operations all fail with cause.
func NewUnavailableStore(cause error) ProductStore {
	return &unavailable{err: fmt.Errorf("%w: %w", perrors.ErrStoreUnavailable, cause)}
}

func (u *unavailable) FindAll(context.Context) ([]ProductSummary, error) {
	return nil, u.err
}

func (u *unavailable) FindByID(context.Context, int64) (*Product, error) {
	return nil, u.err
}

func (u *unavailable) Create(context.Context, string, decimal.Decimal) (*Product, error) {
	return nil, u.err
}

func (u *unavailable) Update(context.Context, int64, string, decimal.Decimal, bool) (*Product, error) {
	return nil, u.err
}

func (u *unavailable) ToggleAvailability(context.Context, int64) (*Product, error) {
	return nil, u.err
}

func (u *unavailable) DeleteByID(context.Context, int64) error {
	return u.err
}

func (u *unavailable) Ping(context.Context) error {
	return u.err
}
