// Package apiclient is the console's data client: thin JSON wrappers over
// the Courseboard REST API. Each call is a single attempt — no retries,
// no backoff — and any failure is logged before it is returned.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// TokenSource supplies the bearer token for authenticated requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *envelopeError  `json:"error"`
}

type envelopeError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// StatusError reports a non-2xx response, carrying the server's error
// code and message when the body could be decoded.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed: %s", http.StatusText(e.StatusCode))
}

// Client issues requests against the API base URL.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    zerolog.Logger
}

// New creates a Client for the given base URL (e.g. "http://host:8080/api/v1").
func New(base string, log zerolog.Logger) *Client {
	return &Client{
		base: base,
		http: &http.Client{},
		log:  log.With().Str("component", "apiclient").Logger(),
	}
}

// SetTokenSource wires the session store in after construction; the store
// itself needs the client to authenticate.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// Get issues a GET request and decodes the response data into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON payload.
func (c *Client) Post(ctx context.Context, path string, payload, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, payload, out)
}

// Put issues a PUT request with a JSON payload.
func (c *Client) Put(ctx context.Context, path string, payload, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, payload, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("Request failed")
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("Read response failed")
		return err
	}

	var env envelope
	_ = json.Unmarshal(raw, &env) // Best effort; status code decides success

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			statusErr.Code = env.Error.Code
			statusErr.Message = env.Error.Message
		}
		c.log.Error().
			Int("status", resp.StatusCode).
			Str("code", statusErr.Code).
			Str("method", method).
			Str("path", path).
			Msg("Request rejected")
		return statusErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.log.Error().Err(err).Str("path", path).Msg("Decode response failed")
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
