package store

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/tests/pgtest"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ProductStoreSuite is a test suite for the PgStore implementation.
type ProductStoreSuite struct {
	suite.Suite
	db     *pgtest.Database
	store  ProductStore
	logger *slog.Logger
	ctx    context.Context
}

// SetupSuite starts a PostgreSQL container with the schema applied.
func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.db, err = pgtest.Start(s.ctx, s.logger)
	require.NoError(s.T(), err, "Failed to start test database")

	s.store = NewPgStore(s.db.Pool)
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductStoreSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close(s.ctx, s.logger)
	}
}

// SetupTest prepares the database for each test by truncating the products table.
func (s *ProductStoreSuite) SetupTest() {
	require.NoError(s.T(), s.db.Truncate(s.ctx), "Failed to truncate products table")
}

// TestProductStoreIntegration runs the ProductStore integration tests.
func TestProductStoreIntegration(t *testing.T) {
	if os.Getenv(pgtest.SkipEnv) == "1" {
		t.Skip("Skipping integration tests based on " + pgtest.SkipEnv + " env var")
	}
	suite.Run(t, new(ProductStoreSuite))
}

func (s *ProductStoreSuite) createTestProduct(name, price string) *Product {
	s.T().Helper()
	product, err := s.store.Create(s.ctx, name, decimal.RequireFromString(price))
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

func (s *ProductStoreSuite) TestCreateAndFindByID() {
	created := s.createTestProduct("Monitor curvo de 49 pulgadas", "399.99")

	require.NotZero(s.T(), created.ID)
	require.Equal(s.T(), "Monitor curvo de 49 pulgadas", created.Name)
	require.True(s.T(), decimal.RequireFromString("399.99").Equal(created.Price))
	require.True(s.T(), created.Availability, "new products are available")
	require.False(s.T(), created.CreatedAt.IsZero())

	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), created.ID, fetched.ID)
	require.Equal(s.T(), created.Name, fetched.Name)
	require.True(s.T(), created.Price.Equal(fetched.Price))
	require.WithinDuration(s.T(), created.CreatedAt, fetched.CreatedAt, time.Second)
}

func (s *ProductStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, 2000)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestFindAll_NewestFirst() {
	s.createTestProduct("Product A", "100")
	s.createTestProduct("Product B", "200")
	s.createTestProduct("Product C", "300")

	products, err := s.store.FindAll(s.ctx)

	require.NoError(s.T(), err)
	require.Len(s.T(), products, 3)
	assert.Equal(s.T(), "Product C", products[0].Name)
	assert.Equal(s.T(), "Product B", products[1].Name)
	assert.Equal(s.T(), "Product A", products[2].Name)
	assert.Greater(s.T(), products[0].ID, products[1].ID)
}

func (s *ProductStoreSuite) TestFindAll_Empty() {
	products, err := s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), products)
}

func (s *ProductStoreSuite) TestUpdate() {
	created := s.createTestProduct("Laptop", "999.90")

	updated, err := s.store.Update(s.ctx, created.ID, "Laptop Pro", decimal.RequireFromString("1299.5"), false)

	require.NoError(s.T(), err)
	require.Equal(s.T(), created.ID, updated.ID)
	require.Equal(s.T(), "Laptop Pro", updated.Name)
	require.True(s.T(), decimal.RequireFromString("1299.50").Equal(updated.Price))
	require.False(s.T(), updated.Availability)
	require.False(s.T(), updated.UpdatedAt.Before(created.UpdatedAt))
}

func (s *ProductStoreSuite) TestUpdate_NotFound() {
	_, err := s.store.Update(s.ctx, 2000, "Ghost", decimal.NewFromInt(1), true)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestToggleAvailability() {
	created := s.createTestProduct("Keyboard", "45")

	toggled, err := s.store.ToggleAvailability(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.False(s.T(), toggled.Availability)

	toggled, err = s.store.ToggleAvailability(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), toggled.Availability)
	require.Equal(s.T(), created.Name, toggled.Name)
}

func (s *ProductStoreSuite) TestToggleAvailability_NotFound() {
	_, err := s.store.ToggleAvailability(s.ctx, 2000)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestDeleteByID() {
	created := s.createTestProduct("Mouse", "19.99")

	require.NoError(s.T(), s.store.DeleteByID(s.ctx, created.ID))

	_, err := s.store.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
	require.ErrorIs(s.T(), s.store.DeleteByID(s.ctx, created.ID), perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestIDsAreNotReused() {
	first := s.createTestProduct("First", "1")
	require.NoError(s.T(), s.store.DeleteByID(s.ctx, first.ID))

	second := s.createTestProduct("Second", "2")
	require.Greater(s.T(), second.ID, first.ID)
}

func (s *ProductStoreSuite) TestPing() {
	require.NoError(s.T(), s.store.Ping(s.ctx))
}

func (s *ProductStoreSuite) TestCreate_KeepsPriceAndNameExactly() {
	testCases := []struct {
		name  string
		price string
	}{
		{name: "Tornillo", price: "0.001"},
		{name: "Arandela", price: "0.005"},
		{name: "Yate", price: "123456789012345.6789"},
		{name: strings.Repeat("n", 300), price: "1"},
	}

	for _, tc := range testCases {
		s.Run(tc.price, func() {
			created := s.createTestProduct(tc.name, tc.price)
			s.True(decimal.RequireFromString(tc.price).Equal(created.Price), "created price %s", created.Price)

			fetched, err := s.store.FindByID(s.ctx, created.ID)
			require.NoError(s.T(), err)
			s.Equal(tc.name, fetched.Name)
			s.Equal(tc.price, fetched.Price.String())
		})
	}
}

func (s *ProductStoreSuite) TestUpdate_SubCentPrice() {
	created := s.createTestProduct("Tornillo", "1")

	updated, err := s.store.Update(s.ctx, created.ID, "Tornillo", decimal.RequireFromString("0.0001"), true)

	require.NoError(s.T(), err)
	s.Equal("0.0001", updated.Price.String())
}

func (s *ProductStoreSuite) TestCreate_CheckViolationIsInputError() {
	_, err := s.store.Create(s.ctx, "Gratis", decimal.Zero)

	var pgErr *pgconn.PgError
	require.ErrorAs(s.T(), err, &pgErr)
	s.Equal("23514", pgErr.Code)
	s.True(isInputError(err))
}
