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

// PermissionGrant names a user or group (exactly one) to grant or revoke.
type PermissionGrant struct {
	User  string `json:"user,omitempty"`
	Group string `json:"group,omitempty"`
}

// ListZones returns one page of zones. Geometry is omitted from list
// responses; GetZone returns it in full.
func (c *Client) ListZones(ctx context.Context, p Page) (List[model.Zone], error) {
	return list[model.Zone](ctx, c, "/zones", p)
}

// GetZone fetches a single zone including its GeoJSON geometry.
func (c *Client) GetZone(ctx context.Context, id int) (model.Zone, error) {
	var out model.Zone
	err := c.get(ctx, fmt.Sprintf("/zones/%d", id), nil, &out)
	return out, err
}

// DeleteZone removes a zone and its permission grants.
func (c *Client) DeleteZone(ctx context.Context, id int) error {
	return c.Request(ctx, http.MethodDelete, fmt.Sprintf("/zones/%d", id), nil, nil, nil)
}

// GrantZone grants a user or group access to a zone.
func (c *Client) GrantZone(ctx context.Context, id int, grant PermissionGrant) error {
	return c.Request(ctx, http.MethodPost, fmt.Sprintf("/zones/%d/permissions", id), nil, grant, nil)
}

// RevokeZone revokes a user's or group's access to a zone.
func (c *Client) RevokeZone(ctx context.Context, id int, grant PermissionGrant) error {
	return c.Request(ctx, http.MethodDelete, fmt.Sprintf("/zones/%d/permissions", id), nil, grant, nil)
}
