// Package live pushes thought snapshots to websocket subscribers.
package live

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mythoughts/internal/metrics"
	"mythoughts/internal/thought"
)

const (
	loadTimeout = 5 * time.Second
	resyncEvery = 30 * time.Second
)

// Loader reads the current ordered contents of the thoughts table.
type Loader interface {
	List(ctx context.Context, q thought.Query) ([]thought.Thought, error)
}

// Message is one frame sent to a subscriber.
type Message struct {
	Type  string        `json:"type"`
	Docs  []thought.Doc `json:"docs"`
	Error string        `json:"error,omitempty"`
}

// Subscriber receives full snapshots. Only the newest undelivered
// snapshot is kept.
type Subscriber struct {
	id    string
	query thought.Query
	send  chan []byte
	done  chan struct{}
}

func NewSubscriber(q thought.Query) *Subscriber {
	return &Subscriber{
		id:    uuid.NewString(),
		query: q,
		send:  make(chan []byte, 1),
		done:  make(chan struct{}),
	}
}

func (s *Subscriber) ID() string            { return s.id }
func (s *Subscriber) Send() <-chan []byte   { return s.send }
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// deliver is only called from the hub loop.
func (s *Subscriber) deliver(msg []byte) {
	select {
	case s.send <- msg:
		return
	default:
	}
	select {
	case <-s.send:
	default:
	}
	s.send <- msg
}

type Hub struct {
	loader Loader
	log    *zap.Logger
	resync time.Duration

	register   chan *Subscriber
	unregister chan *Subscriber
	changed    chan struct{}
	stopped    chan struct{}

	subs map[*Subscriber]struct{}
}

func NewHub(loader Loader, log *zap.Logger) *Hub {
	return &Hub{
		loader:     loader,
		log:        log,
		resync:     resyncEvery,
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		changed:    make(chan struct{}, 1),
		stopped:    make(chan struct{}),
		subs:       make(map[*Subscriber]struct{}),
	}
}

func (h *Hub) Register(s *Subscriber) {
	select {
	case h.register <- s:
	case <-h.stopped:
		close(s.done)
	}
}

func (h *Hub) Unregister(s *Subscriber) {
	select {
	case h.unregister <- s:
	case <-h.stopped:
	}
}

// Changed schedules a broadcast. Calls made while one is pending
// collapse into it.
func (h *Hub) Changed() {
	select {
	case h.changed <- struct{}{}:
	default:
	}
}

func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.resync)
	defer ticker.Stop()
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-h.register:
			h.subs[s] = struct{}{}
			metrics.LiveSubscribers.Set(float64(len(h.subs)))
			h.log.Debug("subscriber registered", zap.String("subscriber", s.id))
			h.push(ctx, []*Subscriber{s})
		case s := <-h.unregister:
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				close(s.done)
				metrics.LiveSubscribers.Set(float64(len(h.subs)))
				h.log.Debug("subscriber unregistered", zap.String("subscriber", s.id))
			}
		case <-h.changed:
			h.push(ctx, h.all())
		case <-ticker.C:
			// Covers notifications lost while the listener reconnects.
			h.log.Debug("resync", zap.Int("subscribers", len(h.subs)))
			h.push(ctx, h.all())
		}
	}
}

func (h *Hub) all() []*Subscriber {
	subs := make([]*Subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	return subs
}

// push loads one snapshot per distinct query and delivers it.
func (h *Hub) push(ctx context.Context, subs []*Subscriber) {
	frames := map[thought.Query][]byte{}
	for _, s := range subs {
		msg, ok := frames[s.query]
		if !ok {
			msg = h.load(ctx, s.query)
			frames[s.query] = msg
		}
		s.deliver(msg)
	}
}

func (h *Hub) load(ctx context.Context, q thought.Query) []byte {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	m := Message{Type: "snapshot"}
	ts, err := h.loader.List(ctx, q)
	if err != nil {
		h.log.Error("snapshot load failed", zap.Error(err))
		metrics.Snapshots.WithLabelValues("error").Inc()
		m = Message{Type: "error", Error: "snapshot unavailable"}
	} else {
		metrics.Snapshots.WithLabelValues("ok").Inc()
		m.Docs = thought.Docs(ts)
	}
	b, _ := json.Marshal(m)
	return b
}

func (h *Hub) shutdown() {
	close(h.stopped)
	for s := range h.subs {
		close(s.done)
		delete(h.subs, s)
	}
	metrics.LiveSubscribers.Set(0)
	h.log.Info("live hub stopped")
}
