package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/repository"
)

var errStoreDown = errors.New("store down")

// MockStore wraps a MemoryStore and can be told to fail writes.
type MockStore struct {
	*repository.MemoryStore

	mu       sync.Mutex
	SaveErr  error
	LoadErr  error
	Saves    map[string]int
	failKeys map[string]bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		MemoryStore: repository.NewMemoryStore(),
		Saves:       make(map[string]int),
		failKeys:    make(map[string]bool),
	}
}

func (m *MockStore) FailCollection(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failKeys[collection] = true
}

func (m *MockStore) Load(ctx context.Context, key repository.ScopeKey) ([]byte, error) {
	m.mu.Lock()
	err := m.LoadErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.MemoryStore.Load(ctx, key)
}

func (m *MockStore) Save(ctx context.Context, key repository.ScopeKey, doc []byte) error {
	m.mu.Lock()
	err := m.SaveErr
	if m.failKeys[key.Collection] {
		err = errStoreDown
	}
	if err == nil {
		m.Saves[key.Collection]++
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.MemoryStore.Save(ctx, key, doc)
}

func (m *MockStore) SaveCount(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Saves[collection]
}

// MockOrders implements repository.OrderRepository for testing.
type MockOrders struct {
	mu        sync.Mutex
	AppendErr error
	// LostAckErr is returned after the order was stored, like a write whose
	// acknowledgement timed out.
	LostAckErr error
	Appended   []domain.Order
	inner      *repository.StoreOrderRepository
}

func NewMockOrders() *MockOrders {
	return &MockOrders{inner: repository.NewStoreOrderRepository(repository.NewMemoryStore())}
}

func (m *MockOrders) Append(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	err := m.AppendErr
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if err := m.inner.Append(ctx, order); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Appended = append(m.Appended, order)
	if m.LostAckErr != nil {
		err := m.LostAckErr
		m.LostAckErr = nil
		return err
	}
	return nil
}

func (m *MockOrders) List(ctx context.Context, userID string) ([]domain.Order, error) {
	return m.inner.List(ctx, userID)
}

func (m *MockOrders) UpdateStatus(ctx context.Context, userID, orderID string, status domain.OrderStatus) (domain.Order, error) {
	return m.inner.UpdateStatus(ctx, userID, orderID, status)
}

func (m *MockOrders) AppendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Appended)
}

// MockGateway implements PaymentGateway for testing.
type MockGateway struct {
	mu           sync.Mutex
	Outcome      domain.PaymentOutcome
	InitiateErr  error
	ConfirmErr   error
	Requests     []domain.PaymentRequest
	Confirms     []domain.PaymentConfirmation
	nextIntentID int
}

func (m *MockGateway) Initiate(_ context.Context, req domain.PaymentRequest) (domain.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InitiateErr != nil {
		return domain.PaymentIntent{}, m.InitiateErr
	}
	m.Requests = append(m.Requests, req)
	m.nextIntentID++
	return domain.PaymentIntent{
		ID:        fmt.Sprintf("intent_%d", m.nextIntentID),
		Amount:    req.Amount,
		Currency:  req.Currency,
		Method:    req.Method,
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil
}

func (m *MockGateway) Confirm(_ context.Context, conf domain.PaymentConfirmation) (domain.PaymentOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Confirms = append(m.Confirms, conf)
	if m.ConfirmErr != nil {
		return domain.PaymentOutcome{}, m.ConfirmErr
	}
	return m.Outcome, nil
}

func (m *MockGateway) ConfirmCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Confirms)
}

// MockCatalog implements Catalog for testing.
type MockCatalog struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	loaded   bool
	ListErr  error
}

func NewMockCatalog(products ...domain.Product) *MockCatalog {
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &MockCatalog{products: byID}
}

func (m *MockCatalog) Products(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.loaded = true
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *MockCatalog) Lookup(id int64) (domain.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return domain.Product{}, false
	}
	p, ok := m.products[id]
	return p, ok
}

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	Err    error
	Events []publisher.Event
}

func (m *MockPublisher) Publish(_ context.Context, event publisher.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return m.Err
}

func (m *MockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Type
	}
	return types
}

// MockIdentity implements IdentityProvider for testing.
type MockIdentity struct {
	mu          sync.Mutex
	current     string
	subscribers []func(string)
}

func (m *MockIdentity) CurrentUserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *MockIdentity) Subscribe(fn func(string)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
	i := len(m.subscribers) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.subscribers[i] = nil
	}
}

func (m *MockIdentity) Switch(userID string) {
	m.mu.Lock()
	m.current = userID
	fns := append([]func(string){}, m.subscribers...)
	m.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(userID)
		}
	}
}

var (
	productA = domain.Product{ID: 1, Title: "Backpack", Price: 10000, Category: "bags"}
	productB = domain.Product{ID: 2, Title: "T-shirt", Price: 5000, Category: "clothing"}
)

type testEnv struct {
	store     *MockStore
	orders    *MockOrders
	gateway   *MockGateway
	catalog   *MockCatalog
	publisher *MockPublisher
	deps      Deps
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:     NewMockStore(),
		orders:    NewMockOrders(),
		gateway:   &MockGateway{Outcome: domain.PaymentSucceeded("pay_1")},
		catalog:   NewMockCatalog(productA, productB),
		publisher: &MockPublisher{},
	}
	env.deps = Deps{
		Store:     NewStoreHandler(env.store, time.Second),
		Orders:    NewOrdersHandler(env.orders, time.Second),
		Payment:   NewPaymentHandler(env.gateway, time.Second),
		Catalog:   NewCatalogHandler(env.catalog, time.Second),
		Publisher: env.publisher,
		Now:       func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
	return env
}

var validAddress = domain.AddressInput{
	FullName:     "Asha Rao",
	Phone:        "9876543210",
	AddressLine1: "12 MG Road",
	City:         "Bengaluru",
	State:        "KA",
	Pincode:      "560001",
}
