// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

// package api is the HTTP client for the TerraDesk REST API. It owns request
// construction (auth header, request IDs, timeouts), the error taxonomy, and
// one resource service per entity type. All state lives server-side; every
// call here is a plain request/response mapping.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terradesk/terradesk/internal/logging"
)

// DefaultTimeout is the blanket per-request timeout.
const DefaultTimeout = 15 * time.Second

// loginPath is exempt from the 401 invalidation hook so that bad credentials
// don't tear down the session and loop back to the login view.
const loginPath = "/auth/login"

// TokenSource supplies the bearer token attached to requests. The session
// guard is the only implementation; an empty token means unauthenticated.
type TokenSource interface {
	Token() string
}

// InvalidateReason says why the API layer considers the session dead.
type InvalidateReason int

const (
	// InvalidateUnauthorized is a 401 outside the login endpoint: the token
	// expired or was revoked.
	InvalidateUnauthorized InvalidateReason = iota
	// InvalidateForbidden is a 403: the account lost a required privilege.
	InvalidateForbidden
)

// Config holds the client settings.
type Config struct {
	BaseURL            string
	Timeout            time.Duration
	UserAgent          string
	InsecureSkipVerify bool
}

// Client is the TerraDesk API client. It is safe for concurrent use.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	baseURL      *url.URL
	tokens       TokenSource
	onInvalidate func(InvalidateReason)
}

// NewClient builds a client for the given base URL. tokens may be nil until
// SetTokenSource is called (e.g. before the session guard exists).
func NewClient(cfg Config, tokens TokenSource) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "terradesk-console"
	}

	baseURL, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	// url.Parse reads "localhost:8080" as scheme "localhost", so a
	// non-empty scheme alone proves nothing.
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", cfg.BaseURL)
	}
	if baseURL.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", cfg.BaseURL)
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		},
	}

	return &Client{
		cfg:     cfg,
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// SetTokenSource wires the session guard in after construction.
func (c *Client) SetTokenSource(tokens TokenSource) { c.tokens = tokens }

// OnInvalidate registers the hook called when a response signals that the
// session is no longer valid. The login endpoint never triggers it.
func (c *Client) OnInvalidate(fn func(InvalidateReason)) { c.onInvalidate = fn }

// Request performs an API call. endpoint is relative to the base URL; query
// may be nil; body (marshalled as JSON) and result may be nil.
func (c *Client) Request(ctx context.Context, method, endpoint string, query url.Values, body, result interface{}) error {
	reqURL := *c.baseURL
	reqURL.Path = strings.TrimRight(reqURL.Path, "/") + endpoint
	if query != nil {
		reqURL.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := decodeAPIError(resp)
		apiErr.RequestID = requestID
		logging.Debugf("api: %s %s -> %d (%s)", method, endpoint, resp.StatusCode, apiErr.Code)
		c.maybeInvalidate(endpoint, apiErr)
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// maybeInvalidate fires the session-teardown hook on 401/403 responses.
// Bad credentials on the login endpoint stay a local error.
func (c *Client) maybeInvalidate(endpoint string, apiErr *Error) {
	if c.onInvalidate == nil || endpoint == loginPath {
		return
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		c.onInvalidate(InvalidateUnauthorized)
	case http.StatusForbidden:
		c.onInvalidate(InvalidateForbidden)
	}
}

// get is a convenience wrapper for GET requests.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, result interface{}) error {
	return c.Request(ctx, http.MethodGet, endpoint, query, nil, result)
}

// Page carries the standard listing parameters every list endpoint accepts.
type Page struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Order  string
	// Filters holds entity-specific filters, e.g. role=admin or level=error.
	Filters map[string]string
}

// Query renders the page as URL query values.
func (p Page) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
		order := p.Order
		if order == "" {
			order = "asc"
		}
		q.Set("order", order)
	}
	for k, v := range p.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// List is the standard paginated response envelope.
type List[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// list fetches a paginated collection from endpoint.
func list[T any](ctx context.Context, c *Client, endpoint string, p Page) (List[T], error) {
	var out List[T]
	err := c.get(ctx, endpoint, p.Query(), &out)
	return out, err
}

// wrapTransportError normalizes transport-level failures into *Error values
// so callers see a single error type for the whole taxonomy.
func wrapTransportError(err error) error {
	kind := KindNetwork
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		kind = KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &Error{kind: kind, Message: err.Error(), cause: err}
}
