package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/repository"
	"go.uber.org/zap"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Store     *StoreHandler
	Orders    *OrdersHandler
	Payment   *PaymentHandler
	Catalog   *CatalogHandler
	Publisher publisher.Publisher
	Pricing   domain.PricingPolicy
	Currency  string
	Log       *zap.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Publisher == nil {
		d.Publisher = publisher.Nop{}
	}
	if d.Pricing.TaxRate.IsZero() && d.Pricing.FlatShippingFee == 0 && d.Pricing.FreeShippingThreshold == 0 {
		d.Pricing = domain.DefaultPricing()
	}
	if d.Currency == "" {
		d.Currency = "INR"
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Session owns one identity's cart, wishlist and address book. Every
// operation holds the session lock, so operations of one user run in the
// order they were invoked.
type Session struct {
	userID string
	deps   Deps
	log    *zap.Logger

	mu        sync.Mutex
	closed    bool
	cart      *domain.Cart
	wishlist  *domain.Wishlist
	addresses *domain.AddressBook
	pending   *domain.PaymentIntent
	settled   *settledPayment
}

// OpenSession loads the identity's bundle. Missing documents start empty.
func OpenSession(ctx context.Context, deps Deps, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrNoIdentity
	}
	deps = deps.withDefaults()

	cart, err := loadDocument[domain.Cart](ctx, deps.Store, repository.CollectionCart, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	wishlist, err := loadDocument[domain.Wishlist](ctx, deps.Store, repository.CollectionWishlist, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	book, err := loadDocument[domain.AddressBook](ctx, deps.Store, repository.CollectionAddresses, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return &Session{
		userID:    userID,
		deps:      deps,
		log:       deps.Log.With(zap.String("user_id", userID)),
		cart:      &cart,
		wishlist:  &wishlist,
		addresses: domain.NewAddressBook(book.Addresses, book.SelectedID),
	}, nil
}

func (s *Session) UserID() string {
	return s.userID
}

// Close discards the in-memory bundle. Later calls return ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.settled != nil {
		s.log.Error("session closed with a paid order not yet stored",
			zap.String("intent_id", s.settled.intentID),
			zap.String("payment_id", s.settled.outcome.PaymentID),
			zap.String("order_id", s.settled.orderID))
	}
	s.cart, s.wishlist, s.addresses, s.pending, s.settled = nil, nil, nil, nil, nil
}

func (s *Session) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) logger(ctx context.Context) *zap.Logger {
	return logger.WithContext(ctx, s.log)
}

// persistBestEffort saves a cart or wishlist document. Failures are logged and
// the in-memory change is kept.
func persistBestEffort[T any](ctx context.Context, s *Session, collection string, doc T) {
	if err := saveDocument(ctx, s.deps.Store, collection, s.userID, doc); err != nil {
		s.logger(ctx).Warn("failed to persist document, keeping in-memory change",
			zap.String("collection", collection), zap.Error(err))
	}
}
