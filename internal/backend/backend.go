// Package backend defines the contracts of the managed backend the client
// delegates to: a credential-based auth service and a document store with
// live-query subscriptions.
package backend

import (
	"context"
	"encoding/json"
	"errors"
)

// Collections.
const (
	Thoughts = "thoughts"
	Users    = "users"
)

// ErrNotFound is returned by Get when the document does not exist.
var ErrNotFound = errors.New("not found")

// Identity is an authenticated principal.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

// AuthService is the credential-based auth collaborator.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignOut(ctx context.Context) error
	CurrentIdentity() (Identity, bool)
	// OnIdentityChanged registers fn and calls it once with the current
	// state, then on every transition. A nil identity means signed out.
	// The returned func unregisters fn.
	OnIdentityChanged(fn func(*Identity)) func()
}

// Fields is a partial document used for writes.
type Fields map[string]any

// Document is one stored document as returned by reads and snapshots.
type Document struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// DataTo decodes the document body into v and sets nothing else.
func (d Document) DataTo(v any) error {
	if len(d.Data) == 0 {
		return nil
	}
	return json.Unmarshal(d.Data, v)
}

// Snapshot is one complete push of a collection query.
type Snapshot struct {
	Docs []Document
}

// OrderBy selects the ordering of a query.
type OrderBy struct {
	Field string
	Desc  bool
}

// Subscription is a live query handle.
type Subscription interface {
	// Unsubscribe stops delivery. Calling it more than once is a no-op.
	Unsubscribe()
}

// DocumentStore is the document database collaborator.
type DocumentStore interface {
	Subscribe(ctx context.Context, collection string, order OrderBy, onSnapshot func(Snapshot), onError func(error)) (Subscription, error)
	Add(ctx context.Context, collection string, fields Fields) (string, error)
	Update(ctx context.Context, collection, id string, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
	Get(ctx context.Context, collection, id string) (Document, error)
	UpsertMerge(ctx context.Context, collection, id string, fields Fields) error
	// RangeQuery returns documents with lower <= field < upper in the
	// store's natural order for that field.
	RangeQuery(ctx context.Context, collection, field, lower, upper string) ([]Document, error)
	QueryWhere(ctx context.Context, collection, field string, value any, order OrderBy) ([]Document, error)
}
