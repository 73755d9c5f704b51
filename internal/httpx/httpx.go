// Package httpx provides the authenticated JSON request helper shared by the
// AAP, EDA and Insights API clients.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ansible-mcp/ansiblemcp/internal/errors"
)

// DefaultTimeout bounds a single upstream API request.
const DefaultTimeout = 30 * time.Second

// BearerFunc returns the bearer token to attach to a request. Implementations
// may fetch or refresh tokens lazily.
type BearerFunc func(ctx context.Context) (string, error)

// StaticBearer returns a BearerFunc for a fixed token.
func StaticBearer(token string) BearerFunc {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// Client issues authenticated JSON requests against a single API base URL.
type Client struct {
	baseURL string
	bearer  BearerFunc
	http    *http.Client
}

// NewClient creates a client for the given base URL. A nil httpClient uses
// a default with DefaultTimeout.
func NewClient(baseURL string, bearer BearerFunc, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bearer:  bearer,
		http:    httpClient,
	}
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do issues a request and returns the response body as raw JSON. Non-JSON
// response bodies (job logs, playbook YAML) are returned as a JSON string.
// Non-2xx statuses return an UPSTREAM_ERROR carrying status and body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.bearer != nil {
		token, err := c.bearer(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.UpstreamWrap(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.UpstreamWrap(err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
	default:
		return nil, errors.Upstream(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if len(respBody) == 0 {
		return json.RawMessage("null"), nil
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return json.RawMessage(respBody), nil
	}

	// Plain-text payload, wrap as a JSON string so callers always get JSON.
	wrapped, err := json.Marshal(string(respBody))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap text response: %w", err)
	}
	return json.RawMessage(wrapped), nil
}

// DoInto issues a request and decodes the JSON response into out.
func (c *Client) DoInto(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
