package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abgdnv/catalog/internal/product/errors"
	"github.com/shopspring/decimal"
)

// inMemory implements ProductStore using an in-memory map.
type inMemory struct {
	mu       sync.RWMutex
	products map[int64]Product
	lastID   int64
	now      func() time.Time
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[int64]Product),
		now:      time.Now,
	}
}

// FindAll retrieves all products.
func (s *inMemory) FindAll(_ context.Context) ([]ProductSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]ProductSummary, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return &p, nil
}

// Create adds a new product. Ids are never reused.
func (s *inMemory) Create(_ context.Context, name string, price decimal.Decimal) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	now := s.now()
	p := Product{
		ID:           s.lastID,
		Name:         name,
		Price:        price,
		Availability: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.products[p.ID] = p
	return &p, nil
}

// Update overwrites an existing product.
func (s *inMemory) Update(_ context.Context, id int64, name string, price decimal.Decimal, availability bool) (*Product, error) {
	return s.modify(id, func(p *Product) {
		p.Name = name
		p.Price = price
		p.Availability = availability
	})
}

// ToggleAvailability flips the availability flag.
func (s *inMemory) ToggleAvailability(_ context.Context, id int64) (*Product, error) {
	return s.modify(id, func(p *Product) {
		p.Availability = !p.Availability
	})
}

// DeleteByID deletes a product by its ID.
func (s *inMemory) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return errors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *inMemory) Ping(_ context.Context) error {
	return nil
}

func (s *inMemory) modify(id int64, fn func(p *Product)) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	fn(&p)
	p.UpdatedAt = s.now()
	s.products[id] = p
	return &p, nil
}
