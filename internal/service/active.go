package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Active follows an IdentityProvider and keeps exactly the session of the
// signed-in user open. Each identity change closes the old session and opens
// the new one; with nobody signed in there is no session.
type Active struct {
	deps        Deps
	loadTimeout time.Duration

	mu          sync.Mutex
	current     *Session
	unsubscribe func()
}

func NewActive(ctx context.Context, deps Deps, identity IdentityProvider, loadTimeout time.Duration) *Active {
	a := &Active{deps: deps.withDefaults(), loadTimeout: loadTimeout}
	a.unsubscribe = identity.Subscribe(a.switchTo)
	a.open(ctx, identity.CurrentUserID())
	return a
}

// Session returns the signed-in user's session.
func (a *Active) Session() (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil, ErrNoIdentity
	}
	return a.current, nil
}

func (a *Active) switchTo(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.loadTimeout)
	defer cancel()
	a.open(ctx, userID)
}

func (a *Active) open(ctx context.Context, userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current != nil {
		if a.current.UserID() == userID {
			return
		}
		a.current.Close()
		a.current = nil
	}
	if userID == "" {
		return
	}

	s, err := OpenSession(ctx, a.deps, userID)
	if err != nil {
		a.deps.Log.Error("failed to open session for signed-in user",
			zap.String("user_id", userID), zap.Error(err))
		return
	}
	a.current = s
}

// Close stops following identity changes and closes the open session.
func (a *Active) Close() {
	a.unsubscribe()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		a.current.Close()
		a.current = nil
	}
}
