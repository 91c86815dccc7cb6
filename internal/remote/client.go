// Package remote talks to the REST service that mirrors each entity
// collection: GET/POST on the collection path, GET/PUT/DELETE on /:id.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnavailable matches transport failures and non-2xx statuses.
	ErrUnavailable = errors.New("remote service unavailable")
	// ErrTimeout matches calls that exceeded their deadline.
	ErrTimeout = errors.New("remote service timed out")
	// ErrNotFound additionally matches 404 responses.
	ErrNotFound = errors.New("remote record not found")
)

// Error describes one failed remote call.
type Error struct {
	Entity string
	Op     string
	Status int
	Kind   error
	Cause  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("remote %s %s: %v", e.Entity, e.Op, e.Kind)
	if e.Status != 0 {
		msg += " (status " + strconv.Itoa(e.Status) + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Is reports 404 responses as ErrNotFound as well as ErrUnavailable.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Observer receives call outcomes ("ok", "error", "timeout").
type Observer interface {
	ObserveRemoteRequest(entity, op, outcome string, d time.Duration)
}

// Config identifies one entity endpoint.
type Config struct {
	BaseURL    string
	Path       string
	Entity     string
	HTTPClient *http.Client
	Observer   Observer
}

// Client is a typed REST client for records of type T.
type Client[T any] struct {
	endpoint   string
	entity     string
	httpClient *http.Client
	observer   Observer
}

// NewClient builds a client for cfg. Per-call deadlines come from the context.
func NewClient[T any](cfg Config) *Client[T] {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	entity := cfg.Entity
	if entity == "" {
		entity = strings.Trim(cfg.Path, "/")
	}
	return &Client[T]{
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.Trim(cfg.Path, "/"),
		entity:     entity,
		httpClient: httpClient,
		observer:   cfg.Observer,
	}
}

// Endpoint returns the collection URL.
func (c *Client[T]) Endpoint() string { return c.endpoint }

// List fetches the whole collection.
func (c *Client[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := c.do(ctx, "list", http.MethodGet, c.endpoint, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Get fetches a single record.
func (c *Client[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := c.do(ctx, "get", http.MethodGet, c.recordURL(id), nil, &out)
	return out, err
}

// Create posts record without its id so the service assigns one.
func (c *Client[T]) Create(ctx context.Context, record T) (T, error) {
	var out T
	body, err := withoutID(record)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, "create", http.MethodPost, c.endpoint, body, &out)
	return out, err
}

// Update replaces the record stored under id and returns the service's copy.
func (c *Client[T]) Update(ctx context.Context, id int64, record T) (T, error) {
	var out T
	body, err := json.Marshal(record)
	if err != nil {
		return out, fmt.Errorf("encode %s: %w", c.entity, err)
	}
	err = c.do(ctx, "update", http.MethodPut, c.recordURL(id), body, &out)
	return out, err
}

// Delete removes the record stored under id.
func (c *Client[T]) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, c.recordURL(id), nil, nil)
}

func (c *Client[T]) recordURL(id int64) string {
	return c.endpoint + "/" + strconv.FormatInt(id, 10)
}

func (c *Client[T]) do(ctx context.Context, op, method, url string, body []byte, out interface{}) (err error) {
	start := time.Now()
	defer func() { c.observe(op, start, err) }()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &Error{Entity: c.entity, Op: op, Kind: ErrUnavailable, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		var cause error
		if trimmed := strings.TrimSpace(string(snippet)); trimmed != "" {
			cause = errors.New(trimmed)
		}
		return &Error{Entity: c.entity, Op: op, Status: resp.StatusCode, Kind: ErrUnavailable, Cause: cause}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &Error{Entity: c.entity, Op: op, Status: resp.StatusCode, Kind: ErrUnavailable, Cause: errors.New("empty response body")}
		}
		return c.transportError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client[T]) transportError(op string, err error) error {
	kind := ErrUnavailable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = ErrTimeout
	}
	return &Error{Entity: c.entity, Op: op, Kind: kind, Cause: err}
}

func (c *Client[T]) observe(op string, start time.Time, err error) {
	if c.observer == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, ErrTimeout):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	c.observer.ObserveRemoteRequest(c.entity, op, outcome, time.Since(start))
}

func withoutID(record interface{}) ([]byte, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return raw, nil
	}
	delete(fields, "id")
	return json.Marshal(fields)
}
