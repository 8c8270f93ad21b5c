// Package memory implements the backend contracts in process. Snapshots are
// delivered synchronously from the goroutine that committed the write.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"mythoughts/internal/backend"
)

// Write records one committed mutation.
type Write struct {
	Op         string
	Collection string
	ID         string
	Fields     backend.Fields
}

type doc struct {
	id   string
	seq  uint64
	data map[string]any
}

type subscriber struct {
	id         uint64
	collection string
	order      backend.OrderBy
	onSnapshot func(backend.Snapshot)
	onError    func(error)
}

// Store is an in-memory backend.DocumentStore.
type Store struct {
	mu     sync.Mutex
	now    func() time.Time
	seq    uint64
	colls  map[string]map[string]*doc
	subs   map[uint64]*subscriber
	writes []Write
	fail   map[string]error

	subscribeCalls   int
	unsubscribeCalls int
}

// NewStore returns an empty store using the wall clock for server
// timestamps.
func NewStore() *Store {
	return &Store{
		now:   time.Now,
		colls: map[string]map[string]*doc{},
		subs:  map[uint64]*subscriber{},
		fail:  map[string]error{},
	}
}

// SetClock replaces the clock used to resolve server timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// FailNext makes the next call of op ("add", "update", "delete", "get",
// "upsert", "range", "where", "subscribe") return err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	s.fail[op] = err
	s.mu.Unlock()
}

// Writes returns every committed mutation in order.
func (s *Store) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Write(nil), s.writes...)
}

// ActiveSubscriptions is the number of live subscriptions.
func (s *Store) ActiveSubscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// SubscribeCalls and UnsubscribeCalls count effective attach and detach
// operations.
func (s *Store) SubscribeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribeCalls
}

func (s *Store) UnsubscribeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribeCalls
}

// Seed inserts a document without recording a write or notifying.
func (s *Store) Seed(collection, id string, fields backend.Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.collection(collection)[id] = &doc{id: id, seq: s.seq, data: s.resolve(fields)}
}

// FailSubscribers delivers err to every subscriber of collection.
func (s *Store) FailSubscribers(collection string, err error) {
	s.mu.Lock()
	var targets []*subscriber
	for _, sub := range s.subs {
		if sub.collection == collection {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()
	for _, sub := range targets {
		if sub.onError != nil {
			sub.onError(err)
		}
	}
}

func (s *Store) Subscribe(ctx context.Context, collection string, order backend.OrderBy, onSnapshot func(backend.Snapshot), onError func(error)) (backend.Subscription, error) {
	s.mu.Lock()
	if err := s.takeFailure("subscribe"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.seq++
	sub := &subscriber{id: s.seq, collection: collection, order: order, onSnapshot: onSnapshot, onError: onError}
	s.subs[sub.id] = sub
	s.subscribeCalls++
	snap := s.snapshot(collection, order)
	s.mu.Unlock()

	onSnapshot(snap)
	return &subscription{store: s, id: sub.id}, nil
}

type subscription struct {
	store *Store
	id    uint64
	once  sync.Once
}

func (u *subscription) Unsubscribe() {
	u.once.Do(func() {
		u.store.mu.Lock()
		delete(u.store.subs, u.id)
		u.store.unsubscribeCalls++
		u.store.mu.Unlock()
	})
}

func (s *Store) Add(ctx context.Context, collection string, fields backend.Fields) (string, error) {
	s.mu.Lock()
	if err := s.takeFailure("add"); err != nil {
		s.mu.Unlock()
		return "", err
	}
	id := ulid.Make().String()
	s.seq++
	s.collection(collection)[id] = &doc{id: id, seq: s.seq, data: s.resolve(fields)}
	s.writes = append(s.writes, Write{Op: "add", Collection: collection, ID: id, Fields: fields})
	s.mu.Unlock()

	s.notify(collection)
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields backend.Fields) error {
	s.mu.Lock()
	if err := s.takeFailure("update"); err != nil {
		s.mu.Unlock()
		return err
	}
	d, ok := s.collection(collection)[id]
	if !ok {
		s.mu.Unlock()
		return backend.ErrNotFound
	}
	for k, v := range s.resolve(fields) {
		d.data[k] = v
	}
	s.writes = append(s.writes, Write{Op: "update", Collection: collection, ID: id, Fields: fields})
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	if err := s.takeFailure("delete"); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.collection(collection), id)
	s.writes = append(s.writes, Write{Op: "delete", Collection: collection, ID: id})
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (backend.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("get"); err != nil {
		return backend.Document{}, err
	}
	d, ok := s.collection(collection)[id]
	if !ok {
		return backend.Document{}, backend.ErrNotFound
	}
	return encode(d), nil
}

func (s *Store) UpsertMerge(ctx context.Context, collection, id string, fields backend.Fields) error {
	s.mu.Lock()
	if err := s.takeFailure("upsert"); err != nil {
		s.mu.Unlock()
		return err
	}
	c := s.collection(collection)
	d, ok := c[id]
	if !ok {
		s.seq++
		d = &doc{id: id, seq: s.seq, data: map[string]any{}}
		c[id] = d
	}
	for k, v := range s.resolve(fields) {
		d.data[k] = v
	}
	s.writes = append(s.writes, Write{Op: "upsert", Collection: collection, ID: id, Fields: fields})
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) RangeQuery(ctx context.Context, collection, field, lower, upper string) ([]backend.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("range"); err != nil {
		return nil, err
	}
	var out []*doc
	for _, d := range s.collection(collection) {
		v, ok := lookup(d.data, field).(string)
		if ok && v >= lower && v < upper {
			out = append(out, d)
		}
	}
	sortDocs(out, backend.OrderBy{Field: field})
	return encodeAll(out), nil
}

func (s *Store) QueryWhere(ctx context.Context, collection, field string, value any, order backend.OrderBy) ([]backend.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("where"); err != nil {
		return nil, err
	}
	var out []*doc
	for _, d := range s.collection(collection) {
		if lookup(d.data, field) == value {
			out = append(out, d)
		}
	}
	sortDocs(out, order)
	return encodeAll(out), nil
}

func (s *Store) notify(collection string) {
	s.mu.Lock()
	type delivery struct {
		fn   func(backend.Snapshot)
		snap backend.Snapshot
	}
	var pending []delivery
	for _, sub := range s.subs {
		if sub.collection == collection {
			pending = append(pending, delivery{fn: sub.onSnapshot, snap: s.snapshot(collection, sub.order)})
		}
	}
	s.mu.Unlock()
	for _, p := range pending {
		p.fn(p.snap)
	}
}

func (s *Store) snapshot(collection string, order backend.OrderBy) backend.Snapshot {
	docs := make([]*doc, 0, len(s.collection(collection)))
	for _, d := range s.collection(collection) {
		docs = append(docs, d)
	}
	sortDocs(docs, order)
	return backend.Snapshot{Docs: encodeAll(docs)}
}

func (s *Store) collection(name string) map[string]*doc {
	c, ok := s.colls[name]
	if !ok {
		c = map[string]*doc{}
		s.colls[name] = c
	}
	return c
}

func (s *Store) takeFailure(op string) error {
	err, ok := s.fail[op]
	if !ok {
		return nil
	}
	delete(s.fail, op)
	return err
}

// resolve deep-copies fields, replacing server timestamp sentinels.
func (s *Store) resolve(fields backend.Fields) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = s.resolveValue(v)
	}
	return out
}

func (s *Store) resolveValue(v any) any {
	switch t := v.(type) {
	case backend.Fields:
		return s.resolve(t)
	case map[string]any:
		return s.resolve(t)
	default:
		if v == any(backend.ServerTimestamp) {
			return s.now().UTC()
		}
		return v
	}
}

func lookup(data map[string]any, path string) any {
	var cur any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func sortDocs(docs []*doc, order backend.OrderBy) {
	sort.SliceStable(docs, func(i, j int) bool {
		if order.Field == "" {
			return docs[i].seq < docs[j].seq
		}
		c := compare(lookup(docs[i].data, order.Field), lookup(docs[j].data, order.Field))
		if c == 0 {
			c = compareSeq(docs[i].seq, docs[j].seq)
		}
		if order.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareSeq(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compare(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	}
	// missing values sort first
	switch {
	case a == nil && b != nil:
		return -1
	case a != nil && b == nil:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func encode(d *doc) backend.Document {
	raw, err := json.Marshal(d.data)
	if err != nil {
		raw = []byte("{}")
	}
	return backend.Document{ID: d.id, Data: raw}
}

func encodeAll(docs []*doc) []backend.Document {
	out := make([]backend.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, encode(d))
	}
	return out
}
