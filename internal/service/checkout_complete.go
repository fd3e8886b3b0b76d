package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/repository"
	"go.uber.org/zap"
)

// PlaceOrder turns the cart into an order. Non-COD methods settle the pending
// payment intent first. The order is durably stored before the cart is
// cleared; if storing fails the cart is untouched and a retry with the same
// confirmation stores the already paid order without charging again.
func (s *Session) PlaceOrder(ctx context.Context, method domain.PaymentMethod, conf domain.PaymentConfirmation) (domain.Order, error) {
	if err := s.lock(); err != nil {
		return domain.Order{}, err
	}
	defer s.mu.Unlock()

	lines, address := s.checkoutInputs()
	if err := domain.CheckOrderPreconditions(lines, address); err != nil {
		return domain.Order{}, err
	}
	totals := s.deps.Pricing.ComputeTotals(lines)

	var outcome domain.PaymentOutcome
	if method.RequiresGateway() {
		var err error
		outcome, err = s.confirmPayment(ctx, method, totals.Total, conf)
		if err != nil {
			return domain.Order{}, err
		}
	}

	order, err := domain.NewOrder(domain.OrderRequest{
		UserID:  s.userID,
		Lines:   lines,
		Address: address,
		Method:  method,
		Outcome: outcome,
		Pricing: s.deps.Pricing,
		Now:     s.deps.Now(),
	})
	if err != nil {
		return domain.Order{}, err
	}
	paid := method.RequiresGateway() && s.settled != nil
	if paid {
		// same id on every retry so a write that landed is not stored twice
		if s.settled.orderID == "" {
			s.settled.orderID = order.ID
		}
		order.ID = s.settled.orderID
	}

	if err := s.appendOrder(ctx, order, paid); err != nil {
		s.logger(ctx).Error("failed to store order, cart kept",
			zap.String("order_id", order.ID), zap.String("payment_id", order.PaymentID), zap.Error(err))
		return domain.Order{}, err
	}

	s.complete(ctx, order)
	return order, nil
}

// appendOrder stores the order. For a retried paid order a duplicate id means
// an earlier attempt reached the store, which counts as stored.
func (s *Session) appendOrder(ctx context.Context, order domain.Order, retryable bool) error {
	ordersCtx, cancel := context.WithTimeout(ctx, s.deps.Orders.timeout)
	defer cancel()
	err := s.deps.Orders.repo.Append(ordersCtx, order)
	if retryable && errors.Is(err, repository.ErrDuplicateOrder) {
		s.logger(ctx).Warn("paid order already stored by an earlier attempt",
			zap.String("order_id", order.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: store order %s: %w", ErrPersistence, order.ID, err)
	}
	return nil
}

// complete runs after the order is stored: the cart is emptied and the order
// announced. Neither step can undo the order, so failures are only logged.
func (s *Session) complete(ctx context.Context, order domain.Order) {
	s.settled = nil
	s.cart = &domain.Cart{}
	if err := saveDocument(ctx, s.deps.Store, repository.CollectionCart, s.userID, s.cart); err != nil {
		s.logger(ctx).Error("order stored but emptied cart not saved",
			zap.String("order_id", order.ID), zap.Error(err))
	}

	if err := s.deps.Publisher.Publish(ctx, publisher.OrderPlaced(order)); err != nil {
		s.logger(ctx).Warn("failed to publish order placed event",
			zap.String("order_id", order.ID), zap.Error(err))
	}

	s.logger(ctx).Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status.String()),
		zap.Int64("total", int64(order.Total)))
}
