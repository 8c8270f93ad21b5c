package remote

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mythoughts/internal/backend"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (backend.Identity, error) {
	return c.authenticate(ctx, "/v1/auth/login", email, password)
}

func (c *Client) SignUp(ctx context.Context, email, password string) (backend.Identity, error) {
	return c.authenticate(ctx, "/v1/auth/register", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (backend.Identity, error) {
	var id backend.Identity
	if err := c.do(ctx, http.MethodPost, path, credentials{Email: email, Password: password}, nil, &id); err != nil {
		return backend.Identity{}, err
	}
	if err := c.session.save(id); err != nil {
		c.log.Warn("session not persisted", zap.Error(err))
	}
	c.setIdentity(&id)
	return id, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.setIdentity(nil)
	return nil
}

func (c *Client) CurrentIdentity() (backend.Identity, bool) {
	c.restore.Do(c.restoreSession)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return backend.Identity{}, false
	}
	return *c.identity, true
}

// OnIdentityChanged restores a saved session on first use, so fn's
// first call reflects it.
func (c *Client) OnIdentityChanged(fn func(*backend.Identity)) func() {
	c.restore.Do(c.restoreSession)

	c.mu.Lock()
	c.seq++
	key := c.seq
	c.listeners[key] = fn
	cur := copyIdentity(c.identity)
	c.mu.Unlock()

	fn(cur)
	return func() {
		c.mu.Lock()
		delete(c.listeners, key)
		c.mu.Unlock()
	}
}

func (c *Client) restoreSession() {
	id, ok, err := c.session.load()
	if err != nil {
		c.log.Warn("session file unreadable", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	c.mu.Lock()
	c.identity = &id
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var me backend.Identity
	err = c.do(ctx, http.MethodGet, "/v1/me", nil, nil, &me)
	switch {
	case err == nil:
		c.log.Info("session restored", zap.String("uid", me.UID))
	case errors.Is(err, ErrSessionExpired):
	default:
		// Offline: keep the saved identity and let later calls fail.
		c.log.Warn("session not verified", zap.Error(err))
	}
}

func (c *Client) setIdentity(id *backend.Identity) {
	if fire := c.swapIdentity(id); fire != nil {
		fire()
	}
}

// swapIdentity stores id and returns the listener notification, or nil
// when nothing changed. Each swap starts a new generation; a
// notification that runs after a later swap does nothing.
func (c *Client) swapIdentity(id *backend.Identity) func() {
	c.mu.Lock()
	was := c.identity != nil
	c.identity = copyIdentity(id)
	c.gen++
	gen := c.gen
	fns := make([]func(*backend.Identity), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	if id == nil {
		if err := c.session.clear(); err != nil {
			c.log.Warn("session file not removed", zap.Error(err))
		}
		if !was {
			return nil
		}
	}
	return func() {
		for _, fn := range fns {
			if !c.current(gen) {
				c.log.Debug("stale identity notification dropped")
				return
			}
			fn(copyIdentity(id))
		}
	}
}

func (c *Client) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

func copyIdentity(id *backend.Identity) *backend.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
