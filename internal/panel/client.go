package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sobhan-h/subpanel-client/internal/config"
)

// Doer executes one HTTP round trip. *http.Client satisfies it; tests
// substitute fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the subscription panel. It holds no persisted state and
// is safe for concurrent use; every call is a single round trip.
type Client struct {
	baseURL string
	http    Doer
	log     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying request executor.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithLogger sets the structured logger used for request tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a Client from configuration. The default executor bounds
// connection establishment and the full round trip separately, so a stalled
// dial or a slow response both resolve as failures instead of hanging.
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		baseURL: cfg.BaseURL,
		log:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: cfg.ConnectTimeout,
				}).DialContext,
				TLSHandshakeTimeout: cfg.ConnectTimeout,
			},
			Timeout: cfg.ConnectTimeout + cfg.ReadTimeout,
		}
	}

	return c
}

// do performs one JSON round trip against the panel. A nil body sends no
// request body at all (logout has none); pass an empty struct for "{}".
// It returns the status code and the fully read body; any failure below the
// HTTP layer comes back as a network APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, localError("failed to encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, localError("failed to create request", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("panel request failed",
			"method", method, "path", path, "error", err)
		return 0, nil, networkError(method+" "+path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, networkError(method+" "+path, err)
	}

	c.log.Debug("panel request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	return resp.StatusCode, data, nil
}

// fail maps a non-2xx response to an APIError, extracting the panel's
// message/error fields when the body parses.
func fail(status int, body []byte) *APIError {
	msg := extractMessage(status, body)
	if status == http.StatusUnauthorized {
		return &APIError{
			Kind:       KindUnauthorized,
			StatusCode: status,
			Message:    msg,
			Err:        ErrUnauthorized,
		}
	}
	return &APIError{
		Kind:       KindServer,
		StatusCode: status,
		Message:    msg,
	}
}

// extractMessage pulls a display message out of an error body: "message"
// first, then "error", then a generic status line.
func extractMessage(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return fmt.Sprintf("HTTP status %d", status)
}

func success(status int) bool {
	return status >= 200 && status <= 299
}
