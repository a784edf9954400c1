// Package session abstracts the primary-auth state the rest of the client
// depends on. The gate and the method registry take a Provider, never a
// concrete auth global, so tests can swap in a fake.
package session

import "sync"

// User identifies the primary-authenticated account.
type User struct {
	ID    string
	Email string
}

// Provider exposes the current primary session and change notifications.
//
// CurrentUser returns nil when nobody is signed in. OnChange registers a
// callback invoked with the new user (nil on sign-out) and returns an
// unsubscribe function.
type Provider interface {
	CurrentUser() *User
	AccessToken() string
	OnChange(fn func(*User)) (unsubscribe func())
}

// notifier implements listener bookkeeping shared by Provider implementations.
type notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(*User)
}

func (n *notifier) subscribe(fn func(*User)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[int]func(*User))
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

func (n *notifier) notify(u *User) {
	n.mu.Lock()
	fns := make([]func(*User), 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}

// MemoryProvider is an in-memory Provider for tests and local tooling.
type MemoryProvider struct {
	notifier

	mu    sync.Mutex
	user  *User
	token string
}

func NewMemoryProvider() *MemoryProvider { return &MemoryProvider{} }

func (p *MemoryProvider) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user
}

func (p *MemoryProvider) AccessToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

func (p *MemoryProvider) OnChange(fn func(*User)) func() {
	return p.subscribe(fn)
}

// SignIn sets the current user and notifies listeners.
func (p *MemoryProvider) SignIn(u *User, token string) {
	p.mu.Lock()
	p.user, p.token = u, token
	p.mu.Unlock()
	p.notify(u)
}

// SignOut clears the session and notifies listeners with nil.
func (p *MemoryProvider) SignOut() {
	p.mu.Lock()
	p.user, p.token = nil, ""
	p.mu.Unlock()
	p.notify(nil)
}
