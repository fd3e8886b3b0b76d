package service

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
)

// CartSummary is what the checkout screen shows.
type CartSummary struct {
	Lines  []domain.CartLine `json:"items"`
	Count  int               `json:"count"`
	Totals domain.Totals     `json:"totals"`
}

func (s *Session) Cart() ([]domain.CartLine, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.cart.Snapshot(), nil
}

func (s *Session) CartSummary() (CartSummary, error) {
	if err := s.lock(); err != nil {
		return CartSummary{}, err
	}
	defer s.mu.Unlock()
	return s.summary(), nil
}

func (s *Session) summary() CartSummary {
	lines := s.cart.Snapshot()
	return CartSummary{
		Lines:  lines,
		Count:  s.cart.Count(),
		Totals: s.deps.Pricing.ComputeTotals(lines),
	}
}

// mutateCart applies fn to a copy of the cart and swaps it in unless fn failed.
// ErrQuantityClamped is not a failure.
func (s *Session) mutateCart(ctx context.Context, fn func(c *domain.Cart) error) error {
	next := s.cart.Clone()
	err := fn(next)
	if err != nil && !errors.Is(err, domain.ErrQuantityClamped) {
		return err
	}
	s.cart = next
	persistBestEffort(ctx, s, repository.CollectionCart, next)
	return err
}

// AddToCart resolves the product in the catalog and merges quantity into its line.
func (s *Session) AddToCart(ctx context.Context, productID int64, quantity int) (CartSummary, error) {
	if err := s.lock(); err != nil {
		return CartSummary{}, err
	}
	defer s.mu.Unlock()

	if err := domain.CheckQuantity(quantity); err != nil {
		return CartSummary{}, err
	}
	product, err := s.deps.Catalog.resolve(ctx, productID)
	if err != nil {
		return CartSummary{}, err
	}
	if err := s.mutateCart(ctx, func(c *domain.Cart) error { return c.Add(product, quantity) }); err != nil {
		return CartSummary{}, err
	}
	return s.summary(), nil
}

func (s *Session) UpdateQuantity(ctx context.Context, productID int64, quantity int) (CartSummary, error) {
	if err := s.lock(); err != nil {
		return CartSummary{}, err
	}
	defer s.mu.Unlock()

	if err := s.mutateCart(ctx, func(c *domain.Cart) error { return c.UpdateQuantity(productID, quantity) }); err != nil {
		return CartSummary{}, err
	}
	return s.summary(), nil
}

// Increment adds one unit. clamped reports that the line was already full.
func (s *Session) Increment(ctx context.Context, productID int64) (summary CartSummary, clamped bool, err error) {
	if err := s.lock(); err != nil {
		return CartSummary{}, false, err
	}
	defer s.mu.Unlock()

	err = s.mutateCart(ctx, func(c *domain.Cart) error {
		_, err := c.Increment(productID)
		return err
	})
	if errors.Is(err, domain.ErrQuantityClamped) {
		return s.summary(), true, nil
	}
	if err != nil {
		return CartSummary{}, false, err
	}
	return s.summary(), false, nil
}

func (s *Session) Decrement(ctx context.Context, productID int64) (CartSummary, error) {
	if err := s.lock(); err != nil {
		return CartSummary{}, err
	}
	defer s.mu.Unlock()

	err := s.mutateCart(ctx, func(c *domain.Cart) error {
		_, err := c.Decrement(productID)
		return err
	})
	if err != nil {
		return CartSummary{}, err
	}
	return s.summary(), nil
}

func (s *Session) RemoveFromCart(ctx context.Context, productID int64) (CartSummary, error) {
	if err := s.lock(); err != nil {
		return CartSummary{}, err
	}
	defer s.mu.Unlock()

	_ = s.mutateCart(ctx, func(c *domain.Cart) error {
		c.Remove(productID)
		return nil
	})
	return s.summary(), nil
}

func (s *Session) ClearCart(ctx context.Context) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.mutateCart(ctx, func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
}
