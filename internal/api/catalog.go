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

// ListCatalogModels returns one page of catalog models. Supported filters:
// access, type.
func (c *Client) ListCatalogModels(ctx context.Context, p Page) (List[model.CatalogModel], error) {
	return list[model.CatalogModel](ctx, c, "/catalog/models", p)
}

// SetModelAccess flips a model between public and private.
func (c *Client) SetModelAccess(ctx context.Context, id int, access model.AccessLevel) error {
	body := map[string]model.AccessLevel{"access": access}
	return c.Request(ctx, http.MethodPut, fmt.Sprintf("/catalog/models/%d/access", id), nil, body, nil)
}

// GrantModel grants a user or group access to a model.
func (c *Client) GrantModel(ctx context.Context, id int, grant PermissionGrant) error {
	return c.Request(ctx, http.MethodPost, fmt.Sprintf("/catalog/models/%d/permissions", id), nil, grant, nil)
}

// RevokeModel revokes a user's or group's access to a model.
func (c *Client) RevokeModel(ctx context.Context, id int, grant PermissionGrant) error {
	return c.Request(ctx, http.MethodDelete, fmt.Sprintf("/catalog/models/%d/permissions", id), nil, grant, nil)
}
