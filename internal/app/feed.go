package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"mythoughts/internal/backend"
)

// Feed is the live view of the thoughts collection. Snapshot callbacks are
// its only writer; every snapshot replaces the cached sequence wholesale.
type Feed struct {
	store  backend.DocumentStore
	log    *zap.Logger
	notify Emitter

	mu       sync.RWMutex
	thoughts []Thought
	sub      backend.Subscription
	gen      uint64
}

func NewFeed(store backend.DocumentStore, log *zap.Logger, notify Emitter) *Feed {
	return &Feed{store: store, log: log, notify: notify}
}

// Attach opens the subscription, replacing any previous one. The first
// snapshot may be delivered before Attach returns.
func (f *Feed) Attach(ctx context.Context) error {
	f.mu.Lock()
	old := f.sub
	f.sub = nil
	f.gen++
	gen := f.gen
	f.mu.Unlock()
	if old != nil {
		old.Unsubscribe()
	}

	sub, err := f.store.Subscribe(ctx, backend.Thoughts, feedOrder,
		func(s backend.Snapshot) { f.apply(gen, s) },
		func(err error) { f.fail(gen, err) },
	)
	if err != nil {
		f.log.Error("feed subscribe failed", zap.Error(err))
		return backendErr("subscribe", err)
	}

	f.mu.Lock()
	if f.gen != gen {
		// detached or re-attached while subscribing
		f.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	f.sub = sub
	f.mu.Unlock()

	f.log.Debug("feed attached", zap.Uint64("gen", gen))
	return nil
}

// Detach releases the subscription and empties the feed. It is safe to
// call when nothing is attached.
func (f *Feed) Detach() {
	f.mu.Lock()
	sub := f.sub
	f.sub = nil
	f.gen++
	f.thoughts = nil
	f.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
		f.log.Debug("feed detached")
	}
}

// Attached reports whether a subscription is open.
func (f *Feed) Attached() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sub != nil
}

// Thoughts returns a copy of the current feed, newest first.
func (f *Feed) Thoughts() []Thought {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Thought(nil), f.thoughts...)
}

func (f *Feed) apply(gen uint64, snap backend.Snapshot) {
	next := make([]Thought, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		t, err := decodeThought(d)
		if err != nil {
			f.log.Warn("skipping undecodable thought", zap.String("id", d.ID), zap.Error(err))
			continue
		}
		next = append(next, t)
	}
	sortNewestFirst(next)

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.thoughts = next
	f.mu.Unlock()

	f.notify.emit(FeedUpdated{Thoughts: append([]Thought(nil), next...)})
}

func (f *Feed) fail(gen uint64, err error) {
	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.thoughts = nil
	f.mu.Unlock()

	f.log.Error("feed snapshot error", zap.Error(err))
	f.notify.emit(FeedFailed{Err: err})
}
