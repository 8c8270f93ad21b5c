// Package remote implements the backend contracts against thoughtsd
// over HTTP and websockets.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mythoughts/internal/backend"
)

var ErrSessionExpired = errors.New("your session has expired, please sign in again")

// APIError is a non-2xx response. Message is the server's text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client is both the AuthService and the DocumentStore.
type Client struct {
	base    string
	http    *http.Client
	dialer  *websocket.Dialer
	log     *zap.Logger
	session sessionFile

	restore sync.Once

	mu        sync.Mutex
	identity  *backend.Identity
	listeners map[int]func(*backend.Identity)
	seq       int
	gen       uint64
}

var (
	_ backend.AuthService   = (*Client)(nil)
	_ backend.DocumentStore = (*Client)(nil)
)

func New(baseURL, sessionPath string, log *zap.Logger) *Client {
	return &Client{
		base:      strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 15 * time.Second},
		dialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:       log,
		session:   sessionFile{path: sessionPath},
		listeners: make(map[int]func(*backend.Identity)),
	}
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return ""
	}
	return c.identity.Token
}

func (c *Client) do(ctx context.Context, method, path string, body any, hdr http.Header, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	for k, v := range hdr {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tok := c.token()
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return c.statusError(res.StatusCode, strings.TrimSpace(string(msg)), tok != "")
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) statusError(status int, msg string, authed bool) error {
	switch {
	case status == http.StatusNotFound:
		return backend.ErrNotFound
	case status == http.StatusUnauthorized && authed:
		c.expire()
		return ErrSessionExpired
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

// expire drops a session the server no longer accepts. Listeners run
// on their own goroutine since the failing call may be inside one.
func (c *Client) expire() {
	c.log.Warn("session rejected by server")
	if fire := c.swapIdentity(nil); fire != nil {
		go fire()
	}
}
