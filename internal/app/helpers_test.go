package app

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mythoughts/internal/backend"
	"mythoughts/internal/backend/memory"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) emit(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) count(match func(Event) bool) int {
	n := 0
	for _, ev := range r.all() {
		if match(ev) {
			n++
		}
	}
	return n
}

type fixture struct {
	auth   *memory.Auth
	store  *memory.Store
	client *Client
	events *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	auth := memory.NewAuth()
	store := memory.NewStore()
	base := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	var tick int
	store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	rec := &recorder{}
	c := NewClient(auth, store, zap.NewNop(), rec.emit)
	return &fixture{auth: auth, store: store, client: c, events: rec}
}

func (f *fixture) signIn(t *testing.T, email string) backend.Identity {
	t.Helper()
	f.auth.Register(email, "secret1")
	id, err := f.auth.SignIn(t.Context(), email, "secret1")
	require.NoError(t, err)
	return id
}

func at(minute int) *time.Time {
	ts := time.Date(2025, 3, 1, 10, minute, 0, 0, time.UTC)
	return &ts
}

func thoughtDoc(t *testing.T, id, description, uid string, createdAt *time.Time) backend.Document {
	t.Helper()
	body := map[string]any{
		"description": description,
		"createdBy":   map[string]any{"uid": uid, "email": uid + "@example.com"},
	}
	if createdAt != nil {
		body["createdAt"] = createdAt
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return backend.Document{ID: id, Data: raw}
}

func ids(ts []Thought) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}
