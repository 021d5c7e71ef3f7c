// Package api implements the JSON-over-HTTP client for the infoplan server.
// Persistence, authorization and the initial plan rendering all live on the
// server side; this client only reads and mutates marker data.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// StatusError reports a non-200 response. Per the interaction layer's error
// policy it is logged and otherwise swallowed unless the caller supplied an
// explicit error handler.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s returned status %d", e.URL, e.Code)
}

// Client talks to one infoplan server.
type Client struct {
	base  string
	token string
	http  *http.Client
	log   zerolog.Logger
}

// Option modifies a Client during creation.
type Option func(*Client)

// WithToken sets the bearer token used for authenticated (editor) calls.
func WithToken(token string) Option { return func(c *Client) { c.token = token } }

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger replaces the structured request logger.
func WithLogger(log zerolog.Logger) Option { return func(c *Client) { c.log = log } }

// NewClient creates a client for the server at base, e.g.
// "https://plans.example.com".
func NewClient(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
		log:  NewLogger("info"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewLogger builds the structured logger used by the client. The level
// string accepts the usual zerolog names; anything unknown means info.
func NewLogger(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Str("component", "api").Logger()
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) url(path string) string {
	return c.base + "/viewer/api" + path
}

// doJSON performs one request with a JSON body (when in != nil) and decodes
// a JSON response into out (when out != nil). Non-200 statuses become a
// StatusError carrying the response body.
func (c *Client) doJSON(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, url, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Str("method", method).Str("url", url).Err(err).Msg("request failed")
		return fmt.Errorf("api: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		serr := &StatusError{Code: resp.StatusCode, URL: url, Body: string(raw)}
		c.log.Error().Str("url", url).Int("status", resp.StatusCode).Msg("non-200 response")
		return serr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, url, err)
	}
	return nil
}

// Ping performs the liveness check used by the status indicator.
func (c *Client) Ping(ctx context.Context) error {
	var rep struct {
		Status string `json:"status"`
	}
	return c.doJSON(ctx, http.MethodGet, c.url("/ping/"), nil, &rep)
}
