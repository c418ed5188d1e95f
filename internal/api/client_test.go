// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/terradesk/terradesk/internal/model"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL}, staticTokens("tok-123"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv
}

func TestRequestSetsHeaders(t *testing.T) {
	var got http.Header
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))

	if err := c.Request(context.Background(), http.MethodGet, "/health", nil, nil, nil); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got.Get("Authorization") != "Bearer tok-123" {
		t.Fatalf("missing bearer token, got %q", got.Get("Authorization"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Fatalf("missing request ID")
	}
	if got.Get("Accept") != "application/json" {
		t.Fatalf("missing accept header")
	}
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL}, staticTokens(""))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := c.Request(context.Background(), http.MethodGet, "/health", nil, nil, nil); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got != "" {
		t.Fatalf("unauthenticated request carried auth header %q", got)
	}
}

func TestErrorEnvelopeDecoding(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":"duplicate_name","message":"name already taken"}`))
	}))

	err := c.Request(context.Background(), http.MethodPost, "/groups", nil, map[string]string{"name": "ops"}, nil)
	if !IsConflict(err) {
		t.Fatalf("expected a conflict error, got %v", err)
	}
	apiErr := err.(*Error)
	if apiErr.Code != "duplicate_name" || apiErr.Message != "name already taken" {
		t.Fatalf("envelope not decoded: %+v", apiErr)
	}
	if apiErr.RequestID == "" {
		t.Fatalf("request ID not attached to the error")
	}
}

func TestValidationFieldsDecoding(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"validation failed","fields":{"email":"not an email address"}}`))
	}))

	err := c.Request(context.Background(), http.MethodPost, "/users", nil, map[string]string{}, nil)
	if !IsValidation(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if err.(*Error).Fields["email"] != "not an email address" {
		t.Fatalf("field messages not decoded: %+v", err.(*Error).Fields)
	}
}

func TestNonJSONErrorBodyDegradesToStatusText(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>proxy error</html>"))
	}))

	err := c.Request(context.Background(), http.MethodGet, "/health", nil, nil, nil)
	if !IsKind(err, KindServer) {
		t.Fatalf("expected a server error, got %v", err)
	}
	if err.(*Error).Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("expected status text fallback, got %q", err.(*Error).Message)
	}
}

func TestUnauthorizedTriggersInvalidation(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))

	var fired []InvalidateReason
	c.OnInvalidate(func(r InvalidateReason) { fired = append(fired, r) })

	err := c.Request(context.Background(), http.MethodGet, "/users", nil, nil, nil)
	if !IsUnauthorized(err) {
		t.Fatalf("expected a 401 error, got %v", err)
	}
	if len(fired) != 1 || fired[0] != InvalidateUnauthorized {
		t.Fatalf("invalidation hook fired %v", fired)
	}
}

func TestForbiddenTriggersInvalidation(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	var fired []InvalidateReason
	c.OnInvalidate(func(r InvalidateReason) { fired = append(fired, r) })

	_ = c.Request(context.Background(), http.MethodGet, "/users", nil, nil, nil)
	if len(fired) != 1 || fired[0] != InvalidateForbidden {
		t.Fatalf("invalidation hook fired %v", fired)
	}
}

func TestLoginEndpointIsExemptFromInvalidation(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"bad credentials"}`))
	}))

	var fired []InvalidateReason
	c.OnInvalidate(func(r InvalidateReason) { fired = append(fired, r) })

	_, err := c.Login(context.Background(), "alice", "wrong")
	if !IsUnauthorized(err) {
		t.Fatalf("expected a 401 error, got %v", err)
	}
	if len(fired) != 0 {
		t.Fatalf("bad credentials must not tear down the session, fired %v", fired)
	}
}

func TestTimeoutErrorKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	err = c.Request(context.Background(), http.MethodGet, "/health", nil, nil, nil)
	if !IsKind(err, KindTimeout) {
		t.Fatalf("expected a timeout error, got %v", err)
	}
}

func TestListPassesPageParameters(t *testing.T) {
	var query map[string][]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"items":[{"id":1,"username":"alice"}],"total":42}`))
	}))

	res, err := c.ListUsers(context.Background(), Page{
		Page:    2,
		Limit:   25,
		Search:  "ali",
		Sort:    "username",
		Order:   "desc",
		Filters: map[string]string{"role": "admin"},
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if res.Total != 42 || len(res.Items) != 1 || res.Items[0].Username != "alice" {
		t.Fatalf("unexpected result %+v", res)
	}
	want := map[string]string{
		"page": "2", "limit": "25", "search": "ali",
		"sort": "username", "order": "desc", "role": "admin",
	}
	for k, v := range want {
		if len(query[k]) != 1 || query[k][0] != v {
			t.Fatalf("query %s = %v, want %s", k, query[k], v)
		}
	}
}

func TestPageQueryDefaultsOrderToAsc(t *testing.T) {
	q := Page{Page: 0, Limit: 10, Sort: "name"}.Query()
	if q.Get("order") != "asc" {
		t.Fatalf("sorted page without explicit order should default to asc, got %q", q.Get("order"))
	}
	q = Page{Page: 0, Limit: 10}.Query()
	if q.Get("sort") != "" || q.Get("order") != "" {
		t.Fatalf("unsorted page must not send sort parameters")
	}
}

func TestLoginReturnsTokenAndUser(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"token":"tok-9","user":{"id":1,"username":"alice","role":"admin"}}`))
	}))

	res, err := c.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token != "tok-9" || res.User.Role != model.RoleAdmin {
		t.Fatalf("unexpected login result %+v", res)
	}
}

func TestBaseURLValidation(t *testing.T) {
	// url.Parse reads the host:port form as a scheme, so this must be
	// caught by the scheme whitelist, not an empty-scheme check.
	if _, err := NewClient(Config{BaseURL: "localhost:8080"}, nil); err == nil {
		t.Fatalf("base URL without scheme must be rejected")
	}
	if _, err := NewClient(Config{BaseURL: "://bad"}, nil); err == nil {
		t.Fatalf("unparsable base URL must be rejected")
	}
	if _, err := NewClient(Config{BaseURL: "ftp://example.com"}, nil); err == nil {
		t.Fatalf("non-http scheme must be rejected")
	}
	if _, err := NewClient(Config{BaseURL: "http://"}, nil); err == nil {
		t.Fatalf("base URL without host must be rejected")
	}
	if _, err := NewClient(Config{BaseURL: "https://example.com/api"}, nil); err != nil {
		t.Fatalf("valid https base URL rejected: %v", err)
	}
}
