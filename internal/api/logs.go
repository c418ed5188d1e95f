// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"context"

	"github.com/terradesk/terradesk/internal/model"
)

// ListLogs returns one page of system log entries. Supported filters:
// level, category.
func (c *Client) ListLogs(ctx context.Context, p Page) (List[model.LogEntry], error) {
	return list[model.LogEntry](ctx, c, "/logs", p)
}

// ListAudit returns one page of audit entries. Supported filters: action,
// actor, target_type.
func (c *Client) ListAudit(ctx context.Context, p Page) (List[model.AuditEntry], error) {
	return list[model.AuditEntry](ctx, c, "/audit", p)
}
