// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/catalog/internal/platform/messaging"
	"github.com/abgdnv/catalog/internal/product/events"
	"github.com/abgdnv/catalog/internal/product/store"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindAll returns every product, newest first, without timestamps or availability.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductSummaryDto, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// Create adds a new product to the catalog.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update replaces name, price and availability of a product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, product ProductUpdateDto) (*ProductDto, error)

	// ToggleAvailability flips the availability of a product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	ToggleAvailability(ctx context.Context, id int64) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// Ping reports whether the product store is reachable.
	Ping(ctx context.Context) error
}

// Service implements ProductService and provides methods to manage products.
// Every successful write is published as a ProductChangedEvent and counted.
type Service struct {
	repository     store.ProductStore
	publisher      messaging.Publisher
	changesCounter metric.Int64Counter
}

// NewService creates a new instance of ProductService with the provided repository and publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher) *Service {
	meter := otel.Meter("catalog-service")
	changesCounter, err := meter.Int64Counter("products_changed", metric.WithDescription("Total number of product writes"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_changed counter: %v", err))
	}
	return &Service{
		repository:     repo,
		publisher:      publisher,
		changesCounter: changesCounter,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Price accepts a JSON number or a numeric string.
type ProductCreateDto struct {
	Name  string          `json:"name"  example:"Monitor curvo de 49 pulgadas"`
	Price decimal.Decimal `json:"price" swaggertype:"number" example:"300"`
}

// ProductUpdateDto represents the data transfer object for a full product update.
type ProductUpdateDto struct {
	Name         string          `json:"name"         example:"Monitor curvo de 49 pulgadas"`
	Price        decimal.Decimal `json:"price"        swaggertype:"number" example:"300"`
	Availability bool            `json:"availability" example:"true"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID           int64       `json:"id"           example:"1"`
	Name         string      `json:"name"         example:"Monitor curvo de 49 pulgadas"`
	Price        json.Number `json:"price"        swaggertype:"number" example:"300"`
	Availability bool        `json:"availability" example:"true"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// ProductSummaryDto is a product as shown in listings.
type ProductSummaryDto struct {
	ID    int64       `json:"id"    example:"1"`
	Name  string      `json:"name"  example:"Monitor curvo de 49 pulgadas"`
	Price json.Number `json:"price" swaggertype:"number" example:"300"`
}

// FindAll retrieves a list of all products and returns them as ProductSummaryDto.
// Returns an empty slice if no products exist or error if the retrieval fails.
func (s *Service) FindAll(ctx context.Context) ([]ProductSummaryDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	dtos := make([]ProductSummaryDto, len(products))
	for i, item := range products {
		dtos[i] = ProductSummaryDto{ID: item.ID, Name: item.Name, Price: priceNumber(item.Price)}
	}
	return dtos, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toDto(product), nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	p, err := s.repository.Create(ctx, product.Name, product.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.changed(ctx, events.ActionCreated, p)
	return toDto(p), nil
}

// Update modifies an existing product's details and returns the updated product as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) Update(ctx context.Context, id int64, product ProductUpdateDto) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, id, product.Name, product.Price, product.Availability)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	s.changed(ctx, events.ActionUpdated, updated)
	return toDto(updated), nil
}

// ToggleAvailability flips availability and returns the updated product as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) ToggleAvailability(ctx context.Context, id int64) (*ProductDto, error) {
	updated, err := s.repository.ToggleAvailability(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle availability of product with ID %d: %w", id, err)
	}
	s.changed(ctx, events.ActionUpdated, updated)
	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	s.changed(ctx, events.ActionDeleted, &store.Product{ID: id})
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repository.Ping(ctx)
}

// changed publishes a ProductChangedEvent for a completed write.
// A failed publish is logged; the write itself has already succeeded.
func (s *Service) changed(ctx context.Context, action events.Action, p *store.Product) {
	s.changesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("action", string(action))))

	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	event := events.ProductChangedEvent{
		Carrier:    carrier,
		Action:     action,
		ProductID:  p.ID,
		OccurredAt: time.Now().UTC(),
	}
	if action != events.ActionDeleted {
		availability := p.Availability
		event.Name = p.Name
		event.Price = priceNumber(p.Price)
		event.Availability = &availability
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ProductChangedEvent", "action", action, "product_id", p.ID, "error", err)
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:           product.ID,
		Name:         product.Name,
		Price:        priceNumber(product.Price),
		Availability: product.Availability,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}

// priceNumber renders a decimal as a JSON number without losing precision.
func priceNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
