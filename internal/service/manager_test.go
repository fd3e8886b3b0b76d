package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ReusesSession(t *testing.T) {
	m, err := NewManager(newTestEnv().deps, 4)
	require.NoError(t, err)
	ctx := context.Background()

	a, err := m.Session(ctx, "user-1")
	require.NoError(t, err)
	b, err := m.Session(ctx, "user-1")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, m.Len())
}

func TestManager_ConcurrentOpenLoadsOnce(t *testing.T) {
	m, err := NewManager(newTestEnv().deps, 4)
	require.NoError(t, err)

	var wg sync.WaitGroup
	sessions := make([]*Session, 10)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Session(context.Background(), "user-1")
			assert.NoError(t, err)
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range sessions[1:] {
		assert.Same(t, sessions[0], s)
	}
}

func TestManager_EvictionClosesSession(t *testing.T) {
	env := newTestEnv()
	m, err := NewManager(env.deps, 1)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := m.Session(ctx, "user-1")
	require.NoError(t, err)
	_, err = first.AddToCart(ctx, productA.ID, 3)
	require.NoError(t, err)

	_, err = m.Session(ctx, "user-2")
	require.NoError(t, err)

	_, err = first.Cart()
	assert.ErrorIs(t, err, ErrSessionClosed)

	reopened, err := m.Session(ctx, "user-1")
	require.NoError(t, err)
	lines, err := reopened.Cart()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestManager_DoRetriesClosedSession(t *testing.T) {
	m, err := NewManager(newTestEnv().deps, 4)
	require.NoError(t, err)
	ctx := context.Background()
	stale, _ := m.Session(ctx, "user-1")
	stale.Close()

	calls := 0
	err = m.Do(ctx, "user-1", func(s *Session) error {
		calls++
		_, err := s.Cart()
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestManager_NoIdentity(t *testing.T) {
	m, err := NewManager(newTestEnv().deps, 4)
	require.NoError(t, err)

	_, err = m.Session(context.Background(), "")

	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestActive_FollowsIdentity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	identity := &MockIdentity{}
	active := NewActive(ctx, env.deps, identity, time.Second)
	defer active.Close()

	_, err := active.Session()
	assert.ErrorIs(t, err, ErrNoIdentity)

	identity.Switch("user-1")
	s1, err := active.Session()
	require.NoError(t, err)
	assert.Equal(t, "user-1", s1.UserID())
	_, err = s1.AddToCart(ctx, productA.ID, 2)
	require.NoError(t, err)

	identity.Switch("user-2")
	s2, err := active.Session()
	require.NoError(t, err)
	assert.Equal(t, "user-2", s2.UserID())
	lines, _ := s2.Cart()
	assert.Empty(t, lines)
	_, err = s1.Cart()
	assert.ErrorIs(t, err, ErrSessionClosed)

	identity.Switch("")
	_, err = active.Session()
	assert.ErrorIs(t, err, ErrNoIdentity)

	identity.Switch("user-1")
	s1again, err := active.Session()
	require.NoError(t, err)
	lines, _ = s1again.Cart()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestActive_StartsWithCurrentUser(t *testing.T) {
	identity := &MockIdentity{current: "user-1"}
	active := NewActive(context.Background(), newTestEnv().deps, identity, time.Second)

	s, err := active.Session()
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.UserID())

	active.Close()
	_, err = s.Cart()
	assert.ErrorIs(t, err, ErrSessionClosed)
}
