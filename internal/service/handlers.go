package service

import (
	"context"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
)

// PaymentGateway opens and settles payments for non-COD orders.
type PaymentGateway interface {
	Initiate(ctx context.Context, req domain.PaymentRequest) (domain.PaymentIntent, error)
	Confirm(ctx context.Context, conf domain.PaymentConfirmation) (domain.PaymentOutcome, error)
}

// Catalog is the product snapshot sessions resolve product ids against.
type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Lookup(id int64) (domain.Product, bool)
}

// IdentityProvider reports the signed-in user and announces changes.
type IdentityProvider interface {
	CurrentUserID() string
	Subscribe(fn func(userID string)) (unsubscribe func())
}

type StoreHandler struct {
	store   repository.Store
	timeout time.Duration
}

func NewStoreHandler(store repository.Store, timeout time.Duration) *StoreHandler {
	return &StoreHandler{
		store:   store,
		timeout: timeout,
	}
}

type OrdersHandler struct {
	repo    repository.OrderRepository
	timeout time.Duration
}

func NewOrdersHandler(repo repository.OrderRepository, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		repo:    repo,
		timeout: timeout,
	}
}

type PaymentHandler struct {
	gateway PaymentGateway
	timeout time.Duration
}

func NewPaymentHandler(gateway PaymentGateway, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		gateway: gateway,
		timeout: timeout,
	}
}

type CatalogHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewCatalogHandler(catalog Catalog, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

func loadDocument[T any](ctx context.Context, h *StoreHandler, collection, userID string) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	doc, _, err := repository.LoadJSON[T](ctx, h.store, repository.ScopeKey{Collection: collection, UserID: userID})
	return doc, err
}

func saveDocument[T any](ctx context.Context, h *StoreHandler, collection, userID string, doc T) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return repository.SaveJSON(ctx, h.store, repository.ScopeKey{Collection: collection, UserID: userID}, doc)
}

// products makes sure the catalog snapshot is loaded before a lookup.
func (h *CatalogHandler) products(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.catalog.Products(ctx)
}

func (h *CatalogHandler) resolve(ctx context.Context, productID int64) (domain.Product, error) {
	if p, ok := h.catalog.Lookup(productID); ok {
		return p, nil
	}
	if _, err := h.products(ctx); err != nil {
		return domain.Product{}, err
	}
	if p, ok := h.catalog.Lookup(productID); ok {
		return p, nil
	}
	return domain.Product{}, domain.ErrProductNotFound
}
