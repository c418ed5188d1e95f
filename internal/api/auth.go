// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"context"
	"net/http"

	"github.com/terradesk/terradesk/internal/model"
)

// LoginResult is the payload returned by a successful login.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a bearer token. A 401 here means bad
// credentials and deliberately does not trigger the invalidation hook.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"username": username, "password": password}
	err := c.Request(ctx, http.MethodPost, loginPath, nil, body, &out)
	return out, err
}

// Logout invalidates the current token server-side. Errors are reported but
// the local session is torn down regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.Request(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Validate asks the server whether the current token is still good and
// returns the account it belongs to.
func (c *Client) Validate(ctx context.Context) (model.User, error) {
	var out model.User
	err := c.get(ctx, "/auth/validate", nil, &out)
	return out, err
}

// Health fetches the server health/metrics summary for the dashboard.
func (c *Client) Health(ctx context.Context) (model.Health, error) {
	var out model.Health
	err := c.get(ctx, "/health", nil, &out)
	return out, err
}
