package service

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Manager keeps the sessions of recently active users in a bounded LRU.
// Evicting a session closes it, dropping its bundle from memory; the next
// request for that user loads it again from the store.
type Manager struct {
	deps     Deps
	sessions *lru.Cache
	sfg      singleflight.Group // one load per user at a time
}

func NewManager(deps Deps, size int) (*Manager, error) {
	deps = deps.withDefaults()
	sessions, err := lru.NewWithEvict(size, func(key, value interface{}) {
		value.(*Session).Close()
		deps.Log.Debug("session evicted", zap.String("user_id", key.(string)))
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Manager{deps: deps, sessions: sessions}, nil
}

// Session returns the user's open session, loading it on first use.
func (m *Manager) Session(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrNoIdentity
	}
	if v, ok := m.sessions.Get(userID); ok {
		return v.(*Session), nil
	}

	v, err, _ := m.sfg.Do(userID, func() (interface{}, error) {
		if v, ok := m.sessions.Get(userID); ok {
			return v, nil
		}
		s, err := OpenSession(ctx, m.deps, userID)
		if err != nil {
			return nil, err
		}
		m.sessions.Add(userID, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Do runs fn against the user's session. A session evicted between lookup
// and use is reopened once.
func (m *Manager) Do(ctx context.Context, userID string, fn func(s *Session) error) error {
	for attempt := 0; ; attempt++ {
		s, err := m.Session(ctx, userID)
		if err != nil {
			return err
		}
		err = fn(s)
		if errors.Is(err, ErrSessionClosed) && attempt == 0 {
			m.sessions.Remove(userID)
			continue
		}
		return err
	}
}

// Release closes and forgets the user's session.
func (m *Manager) Release(userID string) {
	m.sessions.Remove(userID)
}

func (m *Manager) Len() int {
	return m.sessions.Len()
}

// Close closes every open session.
func (m *Manager) Close() {
	m.sessions.Purge()
}
