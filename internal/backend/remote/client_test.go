package remote

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mythoughts/internal/backend"
)

type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	live     chan *websocket.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{live: make(chan *websocket.Conn, 1)}
	mux := http.NewServeMux()
	authed := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer good"
	}

	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var c credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if c.Password != "secret1" {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(backend.Identity{UID: "u1", Email: c.Email, Token: "good"})
	})
	mux.HandleFunc("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"uid":"u1","email":"ana@example.com"}`)
	})
	mux.HandleFunc("GET /v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("/v1/thoughts", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":"01HNEW"}`)
			return
		}
		_, _ = io.WriteString(w, `{"docs":[{"id":"a","data":{"description":"one"}}]}`)
	})
	mux.HandleFunc("PATCH /v1/thoughts/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	up := websocket.Upgrader{}
	mux.HandleFunc("GET /v1/live/thoughts", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		f.record(r)
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.live <- conn
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeServer) record(r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, string(b))
}

func (f *fakeServer) last() (*http.Request, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.requests) - 1
	return f.requests[n], f.bodies[n]
}

func signedIn(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	c := New(f.URL, filepath.Join(t.TempDir(), "session.json"), zap.NewNop())
	_, err := c.SignIn(t.Context(), "ana@example.com", "secret1")
	require.NoError(t, err)
	return c
}

func TestSignInPersistsAndRestores(t *testing.T) {
	f := newFakeServer(t)
	path := filepath.Join(t.TempDir(), "session.json")

	c := New(f.URL, path, zap.NewNop())
	var seen []*backend.Identity
	c.OnIdentityChanged(func(id *backend.Identity) { seen = append(seen, id) })
	id, err := c.SignIn(t.Context(), "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UID)
	require.Len(t, seen, 2)
	assert.Nil(t, seen[0])
	assert.Equal(t, "u1", seen[1].UID)

	restored := New(f.URL, path, zap.NewNop())
	var first *backend.Identity
	restored.OnIdentityChanged(func(id *backend.Identity) { first = id })
	require.NotNil(t, first)
	assert.Equal(t, "ana@example.com", first.Email)
}

func TestRestoreDropsRejectedToken(t *testing.T) {
	f := newFakeServer(t)
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, sessionFile{path: path}.save(backend.Identity{UID: "u1", Token: "stale"}))

	c := New(f.URL, path, zap.NewNop())

	_, ok := c.CurrentIdentity()
	assert.False(t, ok)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSignInFailureCarriesServerMessage(t *testing.T) {
	f := newFakeServer(t)
	c := New(f.URL, "", zap.NewNop())

	_, err := c.SignIn(t.Context(), "ana@example.com", "nope")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", err.Error())
	_, ok := c.CurrentIdentity()
	assert.False(t, ok)
}

func TestSignOutNotifiesOnce(t *testing.T) {
	f := newFakeServer(t)
	c := signedIn(t, f)
	var calls int
	c.OnIdentityChanged(func(*backend.Identity) { calls++ })

	require.NoError(t, c.SignOut(t.Context()))
	require.NoError(t, c.SignOut(t.Context()))

	assert.Equal(t, 2, calls, "registration plus one transition")
}

func TestGetMapsNotFound(t *testing.T) {
	f := newFakeServer(t)
	c := signedIn(t, f)

	_, err := c.Get(t.Context(), backend.Users, "nobody")

	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestAddSendsSentinelAndIdempotencyKey(t *testing.T) {
	f := newFakeServer(t)
	c := signedIn(t, f)

	id, err := c.Add(t.Context(), backend.Thoughts, backend.Fields{
		"description": "hi",
		"createdAt":   backend.ServerTimestamp,
	})

	require.NoError(t, err)
	assert.Equal(t, "01HNEW", id)
	req, body := f.last()
	assert.NotEmpty(t, req.Header.Get("Idempotency-Key"))
	assert.JSONEq(t, `{"description":"hi","createdAt":{".sv":"timestamp"}}`, body)
}

func TestUpdateForbidden(t *testing.T) {
	f := newFakeServer(t)
	c := signedIn(t, f)

	err := c.Update(t.Context(), backend.Thoughts, "a", backend.Fields{"epiphany": true})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestQueryWhere(t *testing.T) {
	f := newFakeServer(t)
	c := signedIn(t, f)

	docs, err := c.QueryWhere(t.Context(), backend.Thoughts, "createdBy.uid", "u2", backend.OrderBy{Field: "createdAt", Desc: true})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	req, _ := f.last()
	q := req.URL.Query()
	assert.Equal(t, "createdBy.uid", q.Get("where"))
	assert.Equal(t, "u2", q.Get("eq"))
	assert.Equal(t, "createdAt", q.Get("orderBy"))
	assert.Equal(t, "desc", q.Get("dir"))
}

func TestExpiredTokenSignsOut(t *testing.T) {
	f := newFakeServer(t)
	c := signedIn(t, f)
	c.mu.Lock()
	c.identity.Token = "revoked"
	c.mu.Unlock()
	gone := make(chan struct{})
	c.OnIdentityChanged(func(id *backend.Identity) {
		if id == nil {
			close(gone)
		}
	})

	_, err := c.QueryWhere(t.Context(), backend.Thoughts, "createdBy.uid", "u1", backend.OrderBy{})

	assert.ErrorIs(t, err, ErrSessionExpired)
	select {
	case <-gone:
	case <-time.After(2 * time.Second):
		t.Fatal("listeners not told about expiry")
	}
}

func TestLateExpiryDoesNotEndNewSession(t *testing.T) {
	f := newFakeServer(t)
	c := signedIn(t, f)
	var mu sync.Mutex
	var seen []*backend.Identity
	c.OnIdentityChanged(func(id *backend.Identity) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, id)
	})

	expired := c.swapIdentity(nil)
	require.NotNil(t, expired)
	_, err := c.SignIn(t.Context(), "ana@example.com", "secret1")
	require.NoError(t, err)
	expired()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, "u1", seen[0].UID)
	assert.Equal(t, "u1", seen[1].UID, "the superseded sign-out never reaches listeners")
	_, ok := c.CurrentIdentity()
	assert.True(t, ok)
}

func TestSubscribe(t *testing.T) {
	f := newFakeServer(t)
	c := signedIn(t, f)
	snaps := make(chan backend.Snapshot, 2)
	errs := make(chan error, 2)

	sub, err := c.Subscribe(t.Context(), backend.Thoughts, backend.OrderBy{Field: "createdAt", Desc: true},
		func(s backend.Snapshot) { snaps <- s },
		func(err error) { errs <- err })
	require.NoError(t, err)
	srv := <-f.live
	req, _ := f.last()
	assert.Equal(t, "desc", req.URL.Query().Get("dir"))

	require.NoError(t, srv.WriteJSON(map[string]any{
		"type": "snapshot",
		"docs": []map[string]any{{"id": "a", "data": map[string]any{"description": "one"}}},
	}))
	select {
	case s := <-snaps:
		require.Len(t, s.Docs, 1)
		assert.Equal(t, "a", s.Docs[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot")
	}

	require.NoError(t, srv.WriteJSON(map[string]any{"type": "error", "error": "snapshot unavailable"}))
	select {
	case err := <-errs:
		assert.EqualError(t, err, "snapshot unavailable")
	case <-time.After(2 * time.Second):
		t.Fatal("no error")
	}

	sub.Unsubscribe()
	sub.Unsubscribe()
	srv.Close()
	select {
	case err := <-errs:
		t.Fatalf("error after unsubscribe: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeLostConnectionReportsError(t *testing.T) {
	f := newFakeServer(t)
	c := signedIn(t, f)
	errs := make(chan error, 1)

	_, err := c.Subscribe(t.Context(), backend.Thoughts, backend.OrderBy{},
		func(backend.Snapshot) {},
		func(err error) { errs <- err })
	require.NoError(t, err)
	srv := <-f.live
	srv.Close()

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("lost connection not reported")
	}
}

func TestSubscribeRejectsOtherCollections(t *testing.T) {
	c := New("http://127.0.0.1:1", "", zap.NewNop())

	_, err := c.Subscribe(t.Context(), backend.Users, backend.OrderBy{}, nil, nil)

	assert.True(t, err != nil && strings.Contains(err.Error(), "unsupported"))
	assert.False(t, errors.Is(err, backend.ErrNotFound))
}
