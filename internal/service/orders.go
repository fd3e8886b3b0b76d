package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/publisher"
	"go.uber.org/zap"
)

// Orders lists the identity's order history, newest first.
func (s *Session) Orders(ctx context.Context) ([]domain.Order, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	ordersCtx, cancel := context.WithTimeout(ctx, s.deps.Orders.timeout)
	defer cancel()
	orders, err := s.deps.Orders.repo.List(ordersCtx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", ErrPersistence, err)
	}
	return orders, nil
}

func (s *Session) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if err := s.lock(); err != nil {
		return domain.Order{}, err
	}
	defer s.mu.Unlock()

	ordersCtx, cancel := context.WithTimeout(ctx, s.deps.Orders.timeout)
	defer cancel()
	order, err := s.deps.Orders.repo.UpdateStatus(ordersCtx, s.userID, orderID, status)
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrUnknownStatus):
		return domain.Order{}, err
	case err != nil:
		return domain.Order{}, fmt.Errorf("%w: update order %s: %w", ErrPersistence, orderID, err)
	}

	if err := s.deps.Publisher.Publish(ctx, publisher.OrderStatusChanged(order)); err != nil {
		s.logger(ctx).Warn("failed to publish order status event",
			zap.String("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}
