// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the API-shaped records the console works with. The
// server owns all authoritative state; these are transient read projections.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role is the coarse permission level attached to a user account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// AccessLevel is the public/private visibility flag on a catalog model,
// independent of per-user/per-group grants.
type AccessLevel string

const (
	AccessPublic  AccessLevel = "public"
	AccessPrivate AccessLevel = "private"
)

// User is a platform account.
type User struct {
	ID        int        `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"is_active"`
	Groups    []string   `json:"groups,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	// APIKeyPrefix is the displayable prefix of the user's API key; the full
	// key is only returned on creation or explicit reveal.
	APIKeyPrefix string     `json:"api_key_prefix,omitempty"`
	APIKeyIssued *time.Time `json:"api_key_issued,omitempty"`
}

// String returns the username, the common display form.
func (u User) String() string { return u.Username }

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Group is a named collection of users carrying shared permissions.
type Group struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"members,omitempty"`
	ModelCount  int      `json:"model_count"`
	ZoneCount   int      `json:"zone_count"`
}

func (g Group) String() string { return g.Name }

// Zone is a geographic region with per-user/per-group access grants. The
// geometry is carried verbatim as GeoJSON; the console never interprets it
// beyond display.
type Zone struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Geometry json.RawMessage `json:"geometry,omitempty"`
	// AreaKm2 is computed server-side from the geometry.
	AreaKm2 float64  `json:"area_km2"`
	Users   []string `json:"users,omitempty"`
	Groups  []string `json:"groups,omitempty"`
}

func (z Zone) String() string { return z.Name }

// CatalogModel is a 3D model in the platform catalog.
type CatalogModel struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Access AccessLevel `json:"access"`
	Users  []string    `json:"users,omitempty"`
	Groups []string    `json:"groups,omitempty"`
}

func (m CatalogModel) String() string { return m.Name }

// LogEntry is one line of the server's system log.
type LogEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Category  string          `json:"category"`
	Message   string          `json:"message"`
	Detail    json.RawMessage `json:"detail,omitempty"`
}

// AuditTarget identifies the object an administrative action touched.
type AuditTarget struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

func (t AuditTarget) String() string {
	if t.Name != "" {
		return fmt.Sprintf("%s:%s", t.Type, t.Name)
	}
	return fmt.Sprintf("%s:%d", t.Type, t.ID)
}

// AuditEntry is an immutable record of an administrative action.
type AuditEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Action    string          `json:"action"`
	Actor     string          `json:"actor"`
	Target    *AuditTarget    `json:"target,omitempty"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	IP        string          `json:"ip,omitempty"`
	UserAgent string          `json:"user_agent,omitempty"`
}

// Health is the server's health/metrics summary shown on the dashboard.
type Health struct {
	Status     string `json:"status"`
	Version    string `json:"version,omitempty"`
	UserCount  int    `json:"user_count"`
	GroupCount int    `json:"group_count"`
	ZoneCount  int    `json:"zone_count"`
	ModelCount int    `json:"model_count"`
}
