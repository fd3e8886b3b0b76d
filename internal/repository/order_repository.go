package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/storefront/internal/domain"
)

// OrderRepository is the append-only order history. Append must only return
// nil once the order is durably stored.
type OrderRepository interface {
	Append(ctx context.Context, order domain.Order) error
	List(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, userID, orderID string, status domain.OrderStatus) (domain.Order, error)
}

// StoreOrderRepository keeps each identity's history as one document in a
// Store, newest order first.
type StoreOrderRepository struct {
	store Store
	mu    sync.Mutex
}

func NewStoreOrderRepository(store Store) *StoreOrderRepository {
	return &StoreOrderRepository{store: store}
}

func ordersKey(userID string) ScopeKey {
	return ScopeKey{Collection: CollectionOrders, UserID: userID}
}

func (r *StoreOrderRepository) Append(ctx context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, _, err := LoadJSON[domain.OrderHistory](ctx, r.store, ordersKey(order.UserID))
	if err != nil {
		return err
	}
	if _, exists := history.Find(order.ID); exists {
		return ErrDuplicateOrder
	}

	history.Prepend(order)
	return SaveJSON(ctx, r.store, ordersKey(order.UserID), history)
}

func (r *StoreOrderRepository) List(ctx context.Context, userID string) ([]domain.Order, error) {
	history, _, err := LoadJSON[domain.OrderHistory](ctx, r.store, ordersKey(userID))
	if err != nil {
		return nil, err
	}
	return history.Orders, nil
}

func (r *StoreOrderRepository) UpdateStatus(ctx context.Context, userID, orderID string, status domain.OrderStatus) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, _, err := LoadJSON[domain.OrderHistory](ctx, r.store, ordersKey(userID))
	if err != nil {
		return domain.Order{}, err
	}

	updated, err := history.UpdateStatus(orderID, status)
	if err != nil {
		return domain.Order{}, err
	}

	if err := SaveJSON(ctx, r.store, ordersKey(userID), history); err != nil {
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}
	return updated, nil
}
