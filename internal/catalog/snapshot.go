package catalog

import (
	"context"
	"sync"

	"github.com/fjod/storefront/internal/domain"
)

// Lister is anything that can list the catalog.
type Lister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Snapshot fetches the catalog once and serves lookups from memory until
// Refresh is called. A failed fetch is not cached.
type Snapshot struct {
	source Lister

	mu       sync.RWMutex
	loaded   bool
	products []domain.Product
	byID     map[int64]domain.Product
}

func NewSnapshot(source Lister) *Snapshot {
	return &Snapshot{source: source}
}

// Products returns the cached catalog, fetching it on first use.
func (s *Snapshot) Products(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	if s.loaded {
		products := s.products
		s.mu.RUnlock()
		return products, nil
	}
	s.mu.RUnlock()

	return s.Refresh(ctx)
}

// Refresh replaces the cached catalog with a fresh fetch.
func (s *Snapshot) Refresh(ctx context.Context) ([]domain.Product, error) {
	products, err := s.source.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	s.mu.Lock()
	s.products, s.byID, s.loaded = products, byID, true
	s.mu.Unlock()
	return products, nil
}

// Lookup resolves a product id against the last fetched catalog.
func (s *Snapshot) Lookup(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}
