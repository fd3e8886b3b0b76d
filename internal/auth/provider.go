package auth

import "sync"

// Provider holds the identity signed in on this client and tells
// subscribers whenever it changes. An empty id means nobody is signed in.
type Provider struct {
	verifier *Verifier

	mu          sync.Mutex
	current     string
	nextID      int
	subscribers map[int]func(userID string)
}

func NewProvider(verifier *Verifier) *Provider {
	return &Provider{
		verifier:    verifier,
		subscribers: make(map[int]func(string)),
	}
}

func (p *Provider) CurrentUserID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// SignIn verifies token and makes its user current.
func (p *Provider) SignIn(token string) (string, error) {
	userID, err := p.verifier.Verify(token)
	if err != nil {
		return "", err
	}
	p.set(userID)
	return userID, nil
}

func (p *Provider) SignOut() {
	p.set("")
}

// Subscribe registers fn for identity changes and returns a function that
// removes it.
func (p *Provider) Subscribe(fn func(userID string)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

func (p *Provider) set(userID string) {
	p.mu.Lock()
	if p.current == userID {
		p.mu.Unlock()
		return
	}
	p.current = userID
	fns := make([]func(string), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(userID)
	}
}
