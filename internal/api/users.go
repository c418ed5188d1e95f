// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/terradesk/terradesk/internal/model"
)

// UserRequest is the mutation payload for creating or updating a user.
type UserRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	IsActive bool       `json:"is_active"`
	// Password is only honored on create; resets go through RotateAPIKey
	// or the server's own reset flow.
	Password string `json:"password,omitempty"`
}

// ListUsers returns one page of users. Supported filters: role, active.
func (c *Client) ListUsers(ctx context.Context, p Page) (List[model.User], error) {
	return list[model.User](ctx, c, "/users", p)
}

// GetUser fetches a single user by id.
func (c *Client) GetUser(ctx context.Context, id int) (model.User, error) {
	var out model.User
	err := c.get(ctx, fmt.Sprintf("/users/%d", id), nil, &out)
	return out, err
}

// CreateUser creates a user and returns the server's copy.
func (c *Client) CreateUser(ctx context.Context, req UserRequest) (model.User, error) {
	var out model.User
	err := c.Request(ctx, http.MethodPost, "/users", nil, req, &out)
	return out, err
}

// UpdateUser updates a user and returns the server's copy.
func (c *Client) UpdateUser(ctx context.Context, id int, req UserRequest) (model.User, error) {
	var out model.User
	err := c.Request(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, req, &out)
	return out, err
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.Request(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, nil)
}

// RotateAPIKey issues a fresh API key for the user. The full key is only
// present in this response; afterwards the server stores a hash.
func (c *Client) RotateAPIKey(ctx context.Context, id int) (string, error) {
	var out struct {
		APIKey string `json:"api_key"`
	}
	err := c.Request(ctx, http.MethodPost, fmt.Sprintf("/users/%d/api-key", id), nil, nil, &out)
	return out.APIKey, err
}
