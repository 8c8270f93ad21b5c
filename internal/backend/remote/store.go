package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mythoughts/internal/backend"
)

func docPath(collection, id string) string {
	return "/v1/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
}

func (c *Client) Add(ctx context.Context, collection string, fields backend.Fields) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	hdr := http.Header{"Idempotency-Key": {uuid.NewString()}}
	if err := c.do(ctx, http.MethodPost, "/v1/"+url.PathEscape(collection), fields, hdr, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) Update(ctx context.Context, collection, id string, fields backend.Fields) error {
	return c.do(ctx, http.MethodPatch, docPath(collection, id), fields, nil, nil)
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, docPath(collection, id), nil, nil, nil)
}

func (c *Client) Get(ctx context.Context, collection, id string) (backend.Document, error) {
	var doc backend.Document
	err := c.do(ctx, http.MethodGet, docPath(collection, id), nil, nil, &doc)
	return doc, err
}

func (c *Client) UpsertMerge(ctx context.Context, collection, id string, fields backend.Fields) error {
	return c.do(ctx, http.MethodPut, docPath(collection, id), fields, nil, nil)
}

func (c *Client) RangeQuery(ctx context.Context, collection, field, lower, upper string) ([]backend.Document, error) {
	q := url.Values{"field": {field}, "gte": {lower}, "lt": {upper}}
	return c.list(ctx, collection, q)
}

func (c *Client) QueryWhere(ctx context.Context, collection, field string, value any, order backend.OrderBy) ([]backend.Document, error) {
	q := orderValues(order)
	q.Set("where", field)
	q.Set("eq", fmt.Sprint(value))
	return c.list(ctx, collection, q)
}

func (c *Client) list(ctx context.Context, collection string, q url.Values) ([]backend.Document, error) {
	var out struct {
		Docs []backend.Document `json:"docs"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/"+url.PathEscape(collection)+"?"+q.Encode(), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Docs, nil
}

func orderValues(o backend.OrderBy) url.Values {
	q := url.Values{}
	if o.Field != "" {
		q.Set("orderBy", o.Field)
	}
	if o.Desc {
		q.Set("dir", "desc")
	} else {
		q.Set("dir", "asc")
	}
	return q
}

type frame struct {
	Type  string             `json:"type"`
	Docs  []backend.Document `json:"docs"`
	Error string             `json:"error"`
}

type subscription struct {
	conn *websocket.Conn
	once sync.Once
	done chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = s.conn.Close()
	})
}

func (s *subscription) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Subscribe opens a live query. Only the thoughts collection is live.
func (c *Client) Subscribe(ctx context.Context, collection string, order backend.OrderBy, onSnapshot func(backend.Snapshot), onError func(error)) (backend.Subscription, error) {
	if collection != backend.Thoughts {
		return nil, fmt.Errorf("live queries unsupported for %q", collection)
	}
	tok := c.token()
	if tok == "" {
		return nil, errors.New("not signed in")
	}

	u := "ws" + strings.TrimPrefix(c.base, "http") + "/v1/live/" + collection + "?" + orderValues(order).Encode()
	conn, res, err := c.dialer.DialContext(ctx, u, http.Header{"Authorization": {"Bearer " + tok}})
	if err != nil {
		if res != nil {
			return nil, c.statusError(res.StatusCode, "live feed unavailable", true)
		}
		return nil, err
	}

	sub := &subscription{conn: conn, done: make(chan struct{})}
	go c.readLoop(sub, onSnapshot, onError)
	return sub, nil
}

func (c *Client) readLoop(sub *subscription, onSnapshot func(backend.Snapshot), onError func(error)) {
	for {
		var f frame
		if err := sub.conn.ReadJSON(&f); err != nil {
			if sub.closed() {
				return
			}
			c.log.Warn("live connection lost", zap.Error(err))
			sub.Unsubscribe()
			onError(err)
			return
		}
		if sub.closed() {
			return
		}
		switch f.Type {
		case "snapshot":
			onSnapshot(backend.Snapshot{Docs: f.Docs})
		case "error":
			onError(errors.New(f.Error))
		default:
			c.log.Debug("unknown live frame", zap.String("type", f.Type))
		}
	}
}
