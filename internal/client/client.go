// Package client talks to a wiggler instance started with --listen.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stigoleg/wiggler/internal/api"
	"github.com/stigoleg/wiggler/internal/config"
	"github.com/stigoleg/wiggler/internal/events"
	"github.com/stigoleg/wiggler/internal/wiggle"
)

// ErrServer is matched by every error the server reported itself.
var ErrServer = errors.New("wiggler server error")

// ServerError is a non-2xx reply.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is matches ErrServer, and the engine errors the status stands for.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrServer:
		return true
	case config.ErrInvalidConfig:
		return e.Status == http.StatusBadRequest && strings.Contains(e.Message, config.ErrInvalidConfig.Error())
	case wiggle.ErrNotReady:
		return e.Status == http.StatusServiceUnavailable
	}
	return false
}

// Client is safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	dialer *websocket.Dialer
}

// New accepts host:port or a full http URL.
func New(addr string) (*Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", addr, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server address %q: scheme must be http or https", addr)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server address %q: missing host", addr)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	return &Client{
		base:   u,
		http:   &http.Client{Timeout: 10 * time.Second},
		dialer: &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
	}, nil
}

// BaseURL returns the server root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &ServerError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Health fails unless the server answers.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

// State returns the full engine snapshot.
func (c *Client) State(ctx context.Context) (api.State, error) {
	var st api.State
	err := c.do(ctx, http.MethodGet, "/api/state", nil, &st)
	return st, err
}

func (c *Client) StartWiggle(ctx context.Context) error {
	return c.StartTimed(ctx, 0)
}

// StartTimed starts a session that ends after d; zero runs until stopped.
func (c *Client) StartTimed(ctx context.Context, d time.Duration) error {
	var req any
	if d > 0 {
		req = api.StartRequest{Duration: d.String()}
	}
	return c.do(ctx, http.MethodPost, "/api/wiggle/start", req, nil)
}

func (c *Client) StopWiggle(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/wiggle/stop", nil, nil)
}

func (c *Client) IsWiggling(ctx context.Context) (bool, error) {
	var out struct {
		Wiggling bool `json:"wiggling"`
	}
	err := c.do(ctx, http.MethodGet, "/api/wiggle", nil, &out)
	return out.Wiggling, err
}

func (c *Client) GetConfig(ctx context.Context) (config.Wiggle, error) {
	var w config.Wiggle
	err := c.do(ctx, http.MethodGet, "/api/config", nil, &w)
	return w, err
}

func (c *Client) SetConfig(ctx context.Context, move, wait float64) error {
	return c.do(ctx, http.MethodPut, "/api/config", config.Wiggle{MoveSeconds: move, WaitSeconds: wait}, nil)
}

func (c *Client) GetMoveSpeed(ctx context.Context) (float64, error) {
	var out struct {
		MoveSeconds float64 `json:"moveSeconds"`
	}
	err := c.do(ctx, http.MethodGet, "/api/config/move-speed", nil, &out)
	return out.MoveSeconds, err
}

func (c *Client) GetWaitTime(ctx context.Context) (float64, error) {
	var out struct {
		WaitSeconds float64 `json:"waitSeconds"`
	}
	err := c.do(ctx, http.MethodGet, "/api/config/wait-time", nil, &out)
	return out.WaitSeconds, err
}

func (c *Client) SetWindowSmall(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/window/small", nil, nil)
}

func (c *Client) SetWindowLarge(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/window/large", nil, nil)
}

// Subscribe opens the event stream. The channel closes when ctx is done or
// the server goes away.
func (c *Client) Subscribe(ctx context.Context) (<-chan events.Event, error) {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/api/events"

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, &ServerError{Status: resp.StatusCode, Message: err.Error()}
		}
		return nil, fmt.Errorf("connect to event stream: %w", err)
	}

	out := make(chan events.Event, 16)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		case <-done:
		}
		_ = conn.Close()
	}()
	go func() {
		defer close(out)
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			e, err := DecodeEvent(data)
			if err != nil {
				continue
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// DecodeEvent parses a stream frame, typing Data for the events that carry
// a payload.
func DecodeEvent(data []byte) (events.Event, error) {
	var raw struct {
		Name events.Name     `json:"name"`
		Data json.RawMessage `json:"data"`
		Time time.Time       `json:"time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return events.Event{}, fmt.Errorf("decode event: %w", err)
	}

	e := events.Event{Name: raw.Name, Time: raw.Time}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return e, nil
	}

	switch raw.Name {
	case events.ConfigSet:
		var p events.ConfigPayload
		if err := json.Unmarshal(raw.Data, &p); err != nil {
			return e, fmt.Errorf("decode %s payload: %w", raw.Name, err)
		}
		e.Data = p
	case events.WindowResized:
		var p events.WindowPayload
		if err := json.Unmarshal(raw.Data, &p); err != nil {
			return e, fmt.Errorf("decode %s payload: %w", raw.Name, err)
		}
		e.Data = p
	default:
		var v any
		_ = json.Unmarshal(raw.Data, &v)
		e.Data = v
	}
	return e, nil
}
