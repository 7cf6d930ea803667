// Package webapi reads organization metadata from an HTTP metadata gateway.
//
// The gateway exposes four endpoints below its base URL:
//
//	GET  entities?name=a&name=b   JSON array of entities (all when no name)
//	GET  optionsets               JSON array of global option sets
//	GET  organization             JSON object {"languageCode": 1033}
//	POST fetch                    fetch document in, result set envelope out
//
// Transient failures (transport errors, 429 and 5xx responses) are retried
// with exponential backoff. A circuit breaker stops calling a gateway that
// keeps failing.
package webapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxErrorBody bounds the response text kept in a StatusError.
const maxErrorBody = 512

// StatusError is a non-2xx gateway response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

// Error returns the error string.
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("webapi: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Client talks to a metadata gateway.
type Client struct {
	base       *url.URL
	http       *http.Client
	token      string
	maxRetries uint64
	interval   time.Duration
	maxElapsed time.Duration
	breaker    *gobreaker.CircuitBreaker
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRetry sets the number of retries of a transient failure and the
// first backoff interval.
func WithRetry(retries uint64, interval time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = retries
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a client for the gateway at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("webapi: base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webapi: base url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	c := &Client{
		base:       u,
		http:       &http.Client{Timeout: 2 * time.Minute},
		maxRetries: 4,
		interval:   500 * time.Millisecond,
		maxElapsed: 5 * time.Minute,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "webapi " + u.Host,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !transient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state change", zap.String("name", name), zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})
	return c, nil
}

// transient reports whether err is worth retrying.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

// do sends one request, retrying transient failures. body may be nil.
func (c *Client) do(ctx context.Context, method, path, contentType string, query url.Values, body []byte) ([]byte, error) {
	ref := &url.URL{Path: path}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	target := c.base.ResolveReference(ref).String()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.interval
	b.MaxElapsedTime = c.maxElapsed
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	var out []byte
	attempt := 0
	op := func() error {
		attempt++
		res, err := c.breaker.Execute(func() (any, error) {
			return c.send(ctx, method, target, contentType, body)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) || !transient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = res.([]byte)
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.log.Warn("gateway request failed, retrying",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	c.log.Debug("gateway request", zap.String("method", method), zap.String("path", path), zap.Int("bytes", len(out)))
	return out, nil
}

func (c *Client) send(ctx context.Context, method, target, contentType string, body []byte) ([]byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, fmt.Errorf("webapi: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webapi: %s %s: %w", method, req.URL.Path, err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("webapi: %s %s: read body: %w", method, req.URL.Path, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		text := strings.TrimSpace(string(data))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &StatusError{Method: method, Path: req.URL.Path, StatusCode: res.StatusCode, Body: text}
	}
	return data, nil
}

// getJSON decodes the JSON response of a GET request into v.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	data, err := c.do(ctx, http.MethodGet, path, "", query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("webapi: decode %s: %w", path, err)
	}
	return nil
}
