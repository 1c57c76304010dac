// Package transport provides the shared HTTP plumbing for the external
// systems the dashboard talks to: per-call timeouts, authentication, and
// JSON decoding with the error taxonomy applied.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
)

// DefaultTimeout is the default per-call timeout. Each individual external
// call carries this; a whole batch deliberately has none.
const DefaultTimeout = 30 * time.Second

// Client provides HTTP client functionality with authentication.
type Client struct {
	http       *http.Client
	auth       Authenticator
	credential string
	system     string
}

// New creates a transport client for a named external system.
func New(system string, auth Authenticator, credential string) *Client {
	return &Client{
		http:       &http.Client{Timeout: DefaultTimeout},
		auth:       auth,
		credential: credential,
		system:     system,
	}
}

// WithTimeout overrides the per-call timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.http.Timeout = d
	return c
}

// Do performs an HTTP request with authentication applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.auth != nil && c.credential != "" {
		c.auth.Apply(req, c.credential)
	}

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WrapAPI(c.system, 0, err)
	}
	return c.doJSON(req, out)
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into out. A nil out discards the response body.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, url, body, out)
}

// PutJSON performs a PUT request with a JSON body and decodes the JSON
// response into out. A nil out discards the response body.
func (c *Client) PutJSON(ctx context.Context, url string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPut, url, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.WrapParse("json", "", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.WrapAPI(c.system, 0, err)
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return errors.WrapAPI(c.system, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &errors.APIError{
			System:     c.system,
			StatusCode: resp.StatusCode,
			Endpoint:   req.URL.Path,
			Message:    string(snippet),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WrapParse("json", req.URL.Path, err)
	}
	return nil
}
