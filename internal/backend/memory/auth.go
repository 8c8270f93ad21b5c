package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"mythoughts/internal/backend"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already in use")
)

type account struct {
	uid      string
	password string
}

// Auth is an in-memory backend.AuthService. Listeners are called
// synchronously from the goroutine causing the transition.
type Auth struct {
	mu        sync.Mutex
	accounts  map[string]account
	current   *backend.Identity
	seq       int
	listeners map[int]func(*backend.Identity)
}

func NewAuth() *Auth {
	return &Auth{
		accounts:  map[string]account{},
		listeners: map[int]func(*backend.Identity){},
	}
}

// Register creates an account without signing in and returns its uid.
func (a *Auth) Register(email, password string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	uid := uuid.NewString()
	a.accounts[email] = account{uid: uid, password: password}
	return uid
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (backend.Identity, error) {
	a.mu.Lock()
	acc, ok := a.accounts[email]
	if !ok || acc.password != password {
		a.mu.Unlock()
		return backend.Identity{}, ErrInvalidCredentials
	}
	id := backend.Identity{UID: acc.uid, Email: email}
	a.current = &id
	a.mu.Unlock()

	a.fire(&id)
	return id, nil
}

func (a *Auth) SignUp(ctx context.Context, email, password string) (backend.Identity, error) {
	a.mu.Lock()
	if _, ok := a.accounts[email]; ok {
		a.mu.Unlock()
		return backend.Identity{}, ErrEmailTaken
	}
	uid := uuid.NewString()
	a.accounts[email] = account{uid: uid, password: password}
	id := backend.Identity{UID: uid, Email: email}
	a.current = &id
	a.mu.Unlock()

	a.fire(&id)
	return id, nil
}

func (a *Auth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	wasSignedIn := a.current != nil
	a.current = nil
	a.mu.Unlock()

	if wasSignedIn {
		a.fire(nil)
	}
	return nil
}

func (a *Auth) CurrentIdentity() (backend.Identity, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return backend.Identity{}, false
	}
	return *a.current, true
}

func (a *Auth) OnIdentityChanged(fn func(*backend.Identity)) func() {
	a.mu.Lock()
	a.seq++
	key := a.seq
	a.listeners[key] = fn
	var cur *backend.Identity
	if a.current != nil {
		c := *a.current
		cur = &c
	}
	a.mu.Unlock()

	fn(cur)
	return func() {
		a.mu.Lock()
		delete(a.listeners, key)
		a.mu.Unlock()
	}
}

func (a *Auth) fire(id *backend.Identity) {
	a.mu.Lock()
	fns := make([]func(*backend.Identity), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		var arg *backend.Identity
		if id != nil {
			c := *id
			arg = &c
		}
		fn(arg)
	}
}
