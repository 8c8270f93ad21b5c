package app

import "mythoughts/internal/backend"

// Event is a state change the core reports to the view layer. Events are
// emitted from collaborator goroutines; the view layer serializes them.
type Event interface {
	event()
}

// Emitter receives events. It must not block for long.
type Emitter func(Event)

// SessionStarted fires when an identity becomes available.
type SessionStarted struct {
	Identity backend.Identity
	Epoch    uint64
}

// SessionEnded fires when the identity goes away.
type SessionEnded struct {
	Epoch uint64
}

// ProfileLoaded carries the hydrated profile of the session.
type ProfileLoaded struct {
	Profile Profile
	Epoch   uint64
}

// FeedUpdated fires after the feed was replaced by a snapshot.
type FeedUpdated struct {
	Thoughts []Thought
}

// FeedFailed fires after a push error cleared the feed.
type FeedFailed struct {
	Err error
}

func (SessionStarted) event() {}
func (SessionEnded) event()   {}
func (ProfileLoaded) event()  {}
func (FeedUpdated) event()    {}
func (FeedFailed) event()     {}

func (e Emitter) emit(ev Event) {
	if e != nil {
		e(ev)
	}
}
