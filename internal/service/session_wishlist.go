package service

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"go.uber.org/zap"
)

func (s *Session) Wishlist() ([]domain.Product, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.wishlist.Clone().Items, nil
}

// ToggleWishlist removes a wished product or adds one found in the catalog.
// A product the catalog does not know leaves the wishlist unchanged and is
// only logged.
func (s *Session) ToggleWishlist(ctx context.Context, productID int64) (added bool, err error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()

	if !s.wishlist.Contains(productID) {
		if _, err := s.deps.Catalog.products(ctx); err != nil {
			return false, err
		}
	}

	next := s.wishlist.Clone()
	added, err = next.Toggle(productID, s.deps.Catalog.catalog)
	if errors.Is(err, domain.ErrProductNotFound) {
		s.logger(ctx).Warn("wishlist toggle for product missing from catalog ignored", zap.Int64("product_id", productID))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.wishlist = next
	persistBestEffort(ctx, s, repository.CollectionWishlist, next)
	return added, nil
}

// MoveToCart adds one unit of a wished product to the cart and drops it from
// the wishlist. Nothing changes when the cart line is already full.
func (s *Session) MoveToCart(ctx context.Context, productID int64) (CartSummary, error) {
	if err := s.lock(); err != nil {
		return CartSummary{}, err
	}
	defer s.mu.Unlock()

	product, ok := s.wishlist.Get(productID)
	if !ok {
		return CartSummary{}, domain.ErrProductNotFound
	}

	if err := s.mutateCart(ctx, func(c *domain.Cart) error { return c.Add(product, 1) }); err != nil {
		return CartSummary{}, err
	}

	next := s.wishlist.Clone()
	next.Remove(productID)
	s.wishlist = next
	persistBestEffort(ctx, s, repository.CollectionWishlist, next)

	return s.summary(), nil
}
