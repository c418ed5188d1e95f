// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

// package statestore is the durable client-side storage for the console:
// the bearer token, the theme mode and the language choice. It is a small
// bun-backed key/value table; sqlite is the default backend, with mysql and
// postgres selectable by DSN for setups that share preferences on a server.
package statestore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage keys. The token key is written only by the session guard.
const (
	KeyToken    = "session.token"
	KeyTheme    = "ui.theme"
	KeyLanguage = "ui.language"
)

// Store is the interface the rest of the console depends on.
type Store interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error

	Theme() (string, error)
	SetTheme(mode string) error

	Language() (string, error)
	SetLanguage(lang string) error

	Close() error
}

// New opens a store for the given backend type and DSN.
func New(dbType, dsn string) (Store, error) {
	switch dbType {
	case "sqlite", "mysql", "postgres":
		return newBunStore(dbType, dsn)
	default:
		return nil, fmt.Errorf("unsupported state store type %q", dbType)
	}
}

// DefaultDSN returns the sqlite path under the user config directory.
func DefaultDSN() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "./terradesk.db"
	}
	return filepath.Join(configDir, "terradesk", "terradesk.db")
}
