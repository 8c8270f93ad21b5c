// Package app is the client core: it keeps the view state consistent with
// the live thoughts collection and the user's in-flight edits.
package app

import (
	"context"

	"go.uber.org/zap"

	"mythoughts/internal/backend"
)

// Client wires the core components around one auth service and store.
type Client struct {
	Session     *Session
	Feed        *Feed
	Composer    *Composer
	Dispatcher  *Dispatcher
	Search      *AuthorSearch
	Profiles    *Profiles
	Credentials *Credentials
	Nav         *Navigator
}

// NewClient builds the core. notify receives events from collaborator
// goroutines and may be nil.
func NewClient(auth backend.AuthService, store backend.DocumentStore, log *zap.Logger, notify Emitter) *Client {
	feed := NewFeed(store, log.Named("feed"), notify)
	search := NewAuthorSearch(store, log.Named("search"))
	composer := NewComposer()
	profiles := NewProfiles(auth, store, log.Named("profile"))
	nav := NewNavigator(search)

	return &Client{
		Session: NewSession(SessionDeps{
			Auth:     auth,
			Feed:     feed,
			Profiles: profiles,
			Search:   search,
			Composer: composer,
			Nav:      nav,
			Log:      log.Named("session"),
			Notify:   notify,
		}),
		Feed:        feed,
		Composer:    composer,
		Dispatcher:  NewDispatcher(auth, store, log.Named("dispatch")),
		Search:      search,
		Profiles:    profiles,
		Credentials: NewCredentials(auth, log.Named("auth")),
		Nav:         nav,
	}
}

// Start begins observing the auth service.
func (c *Client) Start(ctx context.Context) { c.Session.Start(ctx) }

// Close releases the subscription and the auth listener.
func (c *Client) Close() { c.Session.Close() }

// Displayed is what the feed area shows right now.
func (c *Client) Displayed() []Thought {
	return c.Search.Displayed(c.Feed.Thoughts())
}
