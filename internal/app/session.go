package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"mythoughts/internal/backend"
)

// Session is the gate between the auth service and the rest of the core.
// It attaches the feed while an identity exists and tears the session
// state down when it goes away.
type Session struct {
	auth     backend.AuthService
	feed     *Feed
	profiles *Profiles
	search   *AuthorSearch
	composer *Composer
	nav      *Navigator
	log      *zap.Logger
	notify   Emitter

	// transition serializes identity changes
	transition sync.Mutex

	mu       sync.Mutex
	identity *backend.Identity
	epoch    uint64
	stop     func()
}

// SessionDeps lists the components the gate drives.
type SessionDeps struct {
	Auth     backend.AuthService
	Feed     *Feed
	Profiles *Profiles
	Search   *AuthorSearch
	Composer *Composer
	Nav      *Navigator
	Log      *zap.Logger
	Notify   Emitter
}

func NewSession(d SessionDeps) *Session {
	return &Session{
		auth:     d.Auth,
		feed:     d.Feed,
		profiles: d.Profiles,
		search:   d.Search,
		composer: d.Composer,
		nav:      d.Nav,
		log:      d.Log,
		notify:   d.Notify,
	}
}

// Start registers with the auth service. The current state is processed
// before Start returns.
func (s *Session) Start(ctx context.Context) {
	stop := s.auth.OnIdentityChanged(func(id *backend.Identity) {
		s.handle(ctx, id)
	})
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
}

// Close unregisters from the auth service and releases the feed.
func (s *Session) Close() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
	s.feed.Detach()
}

// Identity is the current identity, if any.
func (s *Session) Identity() (backend.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return backend.Identity{}, false
	}
	return *s.identity, true
}

// Epoch changes on every session transition. Asynchronous completions
// compare it to drop results that belong to a torn-down session.
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *Session) handle(ctx context.Context, id *backend.Identity) {
	s.transition.Lock()
	defer s.transition.Unlock()

	s.mu.Lock()
	prev := s.identity
	if id == nil && prev == nil && s.epoch > 0 {
		s.mu.Unlock()
		return
	}
	if id != nil && prev != nil && id.UID == prev.UID {
		// token refresh, same principal
		s.identity = id
		s.mu.Unlock()
		return
	}
	s.epoch++
	epoch := s.epoch
	s.identity = id
	s.mu.Unlock()

	if prev != nil || id == nil {
		s.teardown()
	}
	if id == nil {
		s.log.Info("session ended", zap.Uint64("epoch", epoch))
		s.notify.emit(SessionEnded{Epoch: epoch})
		return
	}

	s.log.Info("session started", zap.String("uid", id.UID), zap.Uint64("epoch", epoch))
	s.notify.emit(SessionStarted{Identity: *id, Epoch: epoch})

	prof, err := s.profiles.Hydrate(ctx, *id)
	if err != nil {
		s.log.Warn("profile hydration failed, using defaults", zap.Error(err))
	}
	if s.Epoch() != epoch {
		return
	}
	s.notify.emit(ProfileLoaded{Profile: prof, Epoch: epoch})

	if err := s.feed.Attach(ctx); err != nil {
		s.notify.emit(FeedFailed{Err: err})
	}
}

func (s *Session) teardown() {
	s.feed.Detach()
	s.search.Clear()
	s.composer.Discard()
	s.profiles.Reset()
	s.nav.Reset()
}
