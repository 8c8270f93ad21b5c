package app

import (
	"sort"
	"time"

	"mythoughts/internal/backend"
)

// Field names shared with the store.
const (
	fieldDescription = "description"
	fieldEpiphany    = "epiphany"
	fieldTitle       = "title"
	fieldTag         = "tag"
	fieldCreatedBy   = "createdBy"
	fieldCreatedAt   = "createdAt"
	fieldCreatedByID = "createdBy.uid"
)

var feedOrder = backend.OrderBy{Field: fieldCreatedAt, Desc: true}

// Author is the denormalized authorship of a Thought.
type Author struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// Thought is a user-authored note. Title and Tag are only present in
// documents written by clients that know about them.
type Thought struct {
	ID          string     `json:"-"`
	Description string     `json:"description"`
	Epiphany    bool       `json:"epiphany,omitempty"`
	Title       string     `json:"title,omitempty"`
	Tag         string     `json:"tag,omitempty"`
	CreatedBy   Author     `json:"createdBy"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// Pending reports whether the server has not acknowledged the write yet.
func (t Thought) Pending() bool { return t.CreatedAt == nil }

func decodeThought(d backend.Document) (Thought, error) {
	var t Thought
	if err := d.DataTo(&t); err != nil {
		return Thought{}, err
	}
	t.ID = d.ID
	return t, nil
}

// sortNewestFirst orders by creation time descending. Unacknowledged
// thoughts are the newest. The sort is stable, so a snapshot the store
// already ordered keeps its order.
func sortNewestFirst(ts []Thought) {
	sort.SliceStable(ts, func(i, j int) bool {
		a, b := ts[i].CreatedAt, ts[j].CreatedAt
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.After(*b)
		}
	})
}
