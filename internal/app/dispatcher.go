package app

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"mythoughts/internal/backend"
)

// Dispatcher turns user intents into single remote writes. It never
// touches the feed: the next snapshot is the only source of truth.
type Dispatcher struct {
	auth  backend.AuthService
	store backend.DocumentStore
	log   *zap.Logger
}

func NewDispatcher(auth backend.AuthService, store backend.DocumentStore, log *zap.Logger) *Dispatcher {
	return &Dispatcher{auth: auth, store: store, log: log}
}

func (d *Dispatcher) identity() (backend.Identity, error) {
	id, ok := d.auth.CurrentIdentity()
	if !ok {
		return backend.Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// Submit validates the composer's draft and writes it: an update when the
// draft references a thought, a creation otherwise. On success the form
// is cleared and hidden; on failure it stays open with a message.
func (d *Dispatcher) Submit(ctx context.Context, c *Composer) error {
	c.setMessage("")
	draft := c.Draft()

	description := strings.TrimSpace(draft.Description)
	if description == "" {
		err := &ValidationError{Field: fieldDescription, Message: "Please write your thought."}
		c.setMessage(err.Message)
		return err
	}

	id, err := d.identity()
	if err != nil {
		return err
	}

	fields := backend.Fields{
		fieldDescription: draft.Description,
		fieldEpiphany:    draft.Epiphany,
	}
	title, tag := strings.TrimSpace(draft.Title), strings.TrimSpace(draft.Tag)

	if draft.Editing() {
		fields[fieldTitle] = title
		fields[fieldTag] = tag
		if err := d.store.Update(ctx, backend.Thoughts, draft.EditingID, fields); err != nil {
			d.log.Error("update thought failed", zap.String("id", draft.EditingID), zap.Error(err))
			c.setMessage(err.Error())
			return backendErr("update thought", err)
		}
		c.committed(draft, "Thought updated successfully!")
		return nil
	}

	if title != "" {
		fields[fieldTitle] = title
	}
	if tag != "" {
		fields[fieldTag] = tag
	}
	fields[fieldCreatedBy] = backend.Fields{"uid": id.UID, "email": id.Email}
	fields[fieldCreatedAt] = backend.ServerTimestamp
	newID, err := d.store.Add(ctx, backend.Thoughts, fields)
	if err != nil {
		d.log.Error("add thought failed", zap.Error(err))
		c.setMessage(err.Error())
		return backendErr("add thought", err)
	}
	d.log.Debug("thought added", zap.String("id", newID))
	c.committed(draft, "Thought submitted successfully!")
	return nil
}

// ToggleEpiphany flips the flag as seen on t. Two toggles against the same
// stale copy race at the backend; the last write wins.
func (d *Dispatcher) ToggleEpiphany(ctx context.Context, t Thought) error {
	if _, err := d.identity(); err != nil {
		return err
	}
	err := d.store.Update(ctx, backend.Thoughts, t.ID, backend.Fields{fieldEpiphany: !t.Epiphany})
	if err != nil {
		d.log.Error("toggle epiphany failed", zap.String("id", t.ID), zap.Error(err))
		return backendErr("update thought", err)
	}
	return nil
}

// RequestDelete starts the confirmation step. Nothing is written until
// Confirm is called on the returned request.
func (d *Dispatcher) RequestDelete(thoughtID string) *DeleteRequest {
	return &DeleteRequest{d: d, ThoughtID: thoughtID}
}

// DeleteRequest is a pending, unconfirmed delete.
type DeleteRequest struct {
	ThoughtID string

	d    *Dispatcher
	once sync.Once
}

// Confirm issues the delete. Only the first Confirm or Cancel counts.
func (r *DeleteRequest) Confirm(ctx context.Context) error {
	var err error
	r.once.Do(func() {
		if _, err = r.d.identity(); err != nil {
			return
		}
		if derr := r.d.store.Delete(ctx, backend.Thoughts, r.ThoughtID); derr != nil {
			r.d.log.Error("delete thought failed", zap.String("id", r.ThoughtID), zap.Error(derr))
			err = backendErr("delete thought", derr)
		}
	})
	return err
}

// Cancel abandons the request.
func (r *DeleteRequest) Cancel() {
	r.once.Do(func() {})
}
