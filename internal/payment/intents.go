package payment

import (
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
)

const (
	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = 30 * time.Second

	// settledRetention keeps finished intents around so a repeated confirm
	// is rejected instead of reported as unknown.
	settledRetention = time.Hour
)

type intentState int

const (
	intentOpen intentState = iota
	intentSettled
	intentExpired
)

type intentRecord struct {
	intent domain.PaymentIntent
	state  intentState
	// closedAt is set when the intent leaves the open state
	closedAt time.Time
}

// IntentStore tracks payment intents between Initiate and Confirm. Intents
// that are not confirmed before ExpiresAt are expired by a background loop
// and confirm as cancelled.
type IntentStore struct {
	mu      sync.Mutex
	intents map[string]*intentRecord
	ttl     time.Duration
	now     func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewIntentStore(ttl time.Duration) *IntentStore {
	return newIntentStore(ttl, time.Now)
}

func newIntentStore(ttl time.Duration, now func() time.Time) *IntentStore {
	s := &IntentStore{
		intents:     make(map[string]*intentRecord),
		ttl:         ttl,
		now:         now,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *IntentStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireIntents()
		case <-s.stopCleanup:
			return
		}
	}
}

// expireIntents marks open intents past their TTL as expired and forgets
// intents that were closed long ago.
func (s *IntentStore) expireIntents() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, rec := range s.intents {
		switch {
		case rec.state == intentOpen && !now.Before(rec.intent.ExpiresAt):
			rec.state = intentExpired
			rec.closedAt = now
		case rec.state != intentOpen && now.Sub(rec.closedAt) > settledRetention:
			delete(s.intents, id)
		}
	}
}

// Open records a new intent with the store's TTL.
func (s *IntentStore) Open(id string, req domain.PaymentRequest) domain.PaymentIntent {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent := domain.PaymentIntent{
		ID:        id,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Method:    req.Method,
		ExpiresAt: s.now().Add(s.ttl),
	}
	s.intents[id] = &intentRecord{intent: intent, state: intentOpen}
	return intent
}

// Take closes the intent for confirmation. expired is true when the intent
// timed out; an unknown or already confirmed intent is an error.
func (s *IntentStore) Take(id string) (intent domain.PaymentIntent, expired bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.intents[id]
	if !ok || rec.state == intentSettled {
		return domain.PaymentIntent{}, false, domain.ErrPaymentIntentNotFound
	}

	now := s.now()
	if rec.state == intentOpen && !now.Before(rec.intent.ExpiresAt) {
		rec.state = intentExpired
		rec.closedAt = now
	}
	if rec.state == intentExpired {
		return rec.intent, true, nil
	}

	rec.state = intentSettled
	rec.closedAt = now
	return rec.intent, false, nil
}

// Len reports how many intents are tracked.
func (s *IntentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.intents)
}

// Close stops the background cleanup and waits for it to finish
func (s *IntentStore) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}
