package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abgdnv/catalog/internal/platform/messaging"
	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/events"
	"github.com/abgdnv/catalog/internal/product/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products []store.ProductSummary
	product  store.Product
	error    error

	lastName         string
	lastPrice        decimal.Decimal
	lastAvailability bool
}

func (m *mockProductStore) FindAll(_ context.Context) ([]store.ProductSummary, error) {
	return m.products, m.error
}

func (m *mockProductStore) FindByID(_ context.Context, _ int64) (*store.Product, error) {
	return &m.product, m.error
}

func (m *mockProductStore) Create(_ context.Context, name string, price decimal.Decimal) (*store.Product, error) {
	m.lastName, m.lastPrice = name, price
	return &m.product, m.error
}

func (m *mockProductStore) Update(_ context.Context, _ int64, name string, price decimal.Decimal, availability bool) (*store.Product, error) {
	m.lastName, m.lastPrice, m.lastAvailability = name, price, availability
	return &m.product, m.error
}

func (m *mockProductStore) ToggleAvailability(_ context.Context, _ int64) (*store.Product, error) {
	return &m.product, m.error
}

func (m *mockProductStore) DeleteByID(_ context.Context, _ int64) error {
	return m.error
}

func (m *mockProductStore) Ping(_ context.Context) error {
	return m.error
}

func Test_ProductService_FindByID(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    *ProductDto
		expectError error
	}{
		{
			name: "Success - product found",
			mockStore: &mockProductStore{
				product: store.Product{ID: 7, Name: "Toy", Price: decimal.RequireFromString("12.50"), Availability: true, CreatedAt: created, UpdatedAt: created},
			},
			expected: &ProductDto{ID: 7, Name: "Toy", Price: json.Number("12.5"), Availability: true, CreatedAt: created, UpdatedAt: created},
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{error: perrors.ErrProductNotFound},
			expectError: perrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewService(tc.mockStore, messaging.NopPublisher{})
			result, err := s.FindByID(context.Background(), 7)

			if tc.expectError != nil {
				require.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func Test_ProductService_FindAll(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    []ProductSummaryDto
		expectError bool
	}{
		{
			name: "Success - products found",
			mockStore: &mockProductStore{products: []store.ProductSummary{
				{ID: 2, Name: "B", Price: decimal.NewFromInt(20)},
				{ID: 1, Name: "A", Price: decimal.RequireFromString("0.99")},
			}},
			expected: []ProductSummaryDto{
				{ID: 2, Name: "B", Price: json.Number("20")},
				{ID: 1, Name: "A", Price: json.Number("0.99")},
			},
		},
		{
			name:      "Success - empty store",
			mockStore: &mockProductStore{products: []store.ProductSummary{}},
			expected:  []ProductSummaryDto{},
		},
		{
			name:        "Error - store failure",
			mockStore:   &mockProductStore{error: errors.New("db down")},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewService(tc.mockStore, messaging.NopPublisher{})
			result, err := s.FindAll(context.Background())

			if tc.expectError {
				require.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func Test_ProductService_Create(t *testing.T) {
	m := &mockProductStore{product: store.Product{ID: 1, Name: "Lamp", Price: decimal.NewFromInt(30), Availability: true}}
	s := NewService(m, messaging.NopPublisher{})

	result, err := s.Create(context.Background(), ProductCreateDto{Name: "Lamp", Price: decimal.NewFromInt(30)})

	require.NoError(t, err)
	assert.Equal(t, "Lamp", m.lastName)
	assert.True(t, decimal.NewFromInt(30).Equal(m.lastPrice))
	assert.Equal(t, int64(1), result.ID)
	assert.True(t, result.Availability)

	m.error = errors.New("insert failed")
	_, err = s.Create(context.Background(), ProductCreateDto{Name: "Lamp", Price: decimal.NewFromInt(30)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create product")
}

func Test_ProductService_Update(t *testing.T) {
	m := &mockProductStore{product: store.Product{ID: 3, Name: "New", Price: decimal.NewFromInt(5)}}
	s := NewService(m, messaging.NopPublisher{})

	result, err := s.Update(context.Background(), 3, ProductUpdateDto{Name: "New", Price: decimal.NewFromInt(5), Availability: false})

	require.NoError(t, err)
	assert.Equal(t, "New", m.lastName)
	assert.False(t, m.lastAvailability)
	assert.Equal(t, json.Number("5"), result.Price)

	m.error = perrors.ErrProductNotFound
	_, err = s.Update(context.Background(), 3, ProductUpdateDto{Name: "New", Price: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func Test_ProductService_ToggleAvailability(t *testing.T) {
	m := &mockProductStore{product: store.Product{ID: 3, Name: "X", Price: decimal.NewFromInt(5), Availability: false}}
	s := NewService(m, messaging.NopPublisher{})

	result, err := s.ToggleAvailability(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, result.Availability)

	m.error = perrors.ErrProductNotFound
	_, err = s.ToggleAvailability(context.Background(), 3)
	require.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func Test_ProductService_DeleteByID(t *testing.T) {
	m := &mockProductStore{}
	s := NewService(m, messaging.NopPublisher{})
	require.NoError(t, s.DeleteByID(context.Background(), 1))

	m.error = perrors.ErrProductNotFound
	require.ErrorIs(t, s.DeleteByID(context.Background(), 1), perrors.ErrProductNotFound)
}

// recordingPublisher keeps every published event and fails when err is set.
type recordingPublisher struct {
	events []messaging.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	r.events = append(r.events, event)
	return r.err
}

func Test_ProductService_PublishesChanges(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := NewService(store.NewInMemoryStore(), pub)

	created, err := s.Create(ctx, ProductCreateDto{Name: "Lamp", Price: decimal.RequireFromString("19.90")})
	require.NoError(t, err)
	_, err = s.Update(ctx, created.ID, ProductUpdateDto{Name: "Desk lamp", Price: decimal.NewFromInt(25), Availability: true})
	require.NoError(t, err)
	_, err = s.ToggleAvailability(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, s.DeleteByID(ctx, created.ID))

	// reads and failed writes publish nothing
	_, _ = s.FindAll(ctx)
	_, _ = s.FindByID(ctx, created.ID)
	require.ErrorIs(t, s.DeleteByID(ctx, created.ID), perrors.ErrProductNotFound)

	require.Len(t, pub.events, 4)
	subjects := make([]string, len(pub.events))
	for i, e := range pub.events {
		subjects[i] = e.Subject()
	}
	assert.Equal(t, []string{"products.created", "products.updated", "products.updated", "products.deleted"}, subjects)

	first := pub.events[0].(events.ProductChangedEvent)
	assert.Equal(t, created.ID, first.ProductID)
	assert.Equal(t, "Lamp", first.Name)
	assert.Equal(t, json.Number("19.9"), first.Price)
	require.NotNil(t, first.Availability)
	assert.True(t, *first.Availability)

	toggled := pub.events[2].(events.ProductChangedEvent)
	require.NotNil(t, toggled.Availability)
	assert.False(t, *toggled.Availability)

	deleted := pub.events[3].(events.ProductChangedEvent)
	assert.Equal(t, created.ID, deleted.ProductID)
	assert.Nil(t, deleted.Availability)
	assert.Empty(t, deleted.Name)
}

func Test_ProductService_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := NewService(store.NewInMemoryStore(), pub)

	created, err := s.Create(context.Background(), ProductCreateDto{Name: "Lamp", Price: decimal.NewFromInt(10)})

	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Len(t, pub.events, 1)
}

func Test_ProductDto_PriceIsJSONNumber(t *testing.T) {
	dto := toDto(&store.Product{ID: 1, Name: "A", Price: decimal.RequireFromString("300.10")})

	b, err := json.Marshal(ProductSummaryDto{ID: dto.ID, Name: dto.Name, Price: dto.Price})

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"A","price":300.1}`, string(b))
}

func Test_ProductCreateDto_AcceptsNumericString(t *testing.T) {
	var dto ProductCreateDto
	require.NoError(t, json.Unmarshal([]byte(`{"name":"A","price":"19.99"}`), &dto))
	assert.True(t, decimal.RequireFromString("19.99").Equal(dto.Price))

	require.NoError(t, json.Unmarshal([]byte(`{"name":"A","price":7}`), &dto))
	assert.True(t, decimal.NewFromInt(7).Equal(dto.Price))
}
