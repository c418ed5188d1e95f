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

// GroupRequest is the mutation payload for creating or updating a group.
type GroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListGroups returns one page of groups.
func (c *Client) ListGroups(ctx context.Context, p Page) (List[model.Group], error) {
	return list[model.Group](ctx, c, "/groups", p)
}

// CreateGroup creates a group and returns the server's copy.
func (c *Client) CreateGroup(ctx context.Context, req GroupRequest) (model.Group, error) {
	var out model.Group
	err := c.Request(ctx, http.MethodPost, "/groups", nil, req, &out)
	return out, err
}

// UpdateGroup updates a group and returns the server's copy.
func (c *Client) UpdateGroup(ctx context.Context, id int, req GroupRequest) (model.Group, error) {
	var out model.Group
	err := c.Request(ctx, http.MethodPut, fmt.Sprintf("/groups/%d", id), nil, req, &out)
	return out, err
}

// DeleteGroup removes a group. Membership rows go with it; granted
// permissions are revoked server-side.
func (c *Client) DeleteGroup(ctx context.Context, id int) error {
	return c.Request(ctx, http.MethodDelete, fmt.Sprintf("/groups/%d", id), nil, nil, nil)
}

// AddGroupMember adds a user to a group.
func (c *Client) AddGroupMember(ctx context.Context, groupID int, username string) error {
	body := map[string]string{"username": username}
	return c.Request(ctx, http.MethodPost, fmt.Sprintf("/groups/%d/members", groupID), nil, body, nil)
}

// RemoveGroupMember removes a user from a group.
func (c *Client) RemoveGroupMember(ctx context.Context, groupID int, username string) error {
	return c.Request(ctx, http.MethodDelete, fmt.Sprintf("/groups/%d/members/%s", groupID, username), nil, nil, nil)
}
