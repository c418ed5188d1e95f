// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package statestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	// SQL drivers for the supported backends.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// settingRow is the single key/value table backing the store.
type settingRow struct {
	bun.BaseModel `bun:"table:settings"`
	Key           string    `bun:"key,pk"`
	Value         string    `bun:"value"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// bunStore implements Store on top of a bun.DB.
type bunStore struct {
	db *bun.DB
}

// opTimeout bounds every store operation; local storage should never hang
// the UI.
const opTimeout = 5 * time.Second

func newBunStore(dbType, dsn string) (*bunStore, error) {
	var (
		sqlDB *sql.DB
		err   error
	)
	var dialect schema.Dialect
	switch dbType {
	case "sqlite":
		// Create the parent directory for file-backed databases.
		if dsn != ":memory:" {
			if mkErr := os.MkdirAll(filepath.Dir(dsn), 0700); mkErr != nil {
				return nil, fmt.Errorf("create state directory: %w", mkErr)
			}
		}
		sqlDB, err = sql.Open("sqlite", dsn)
		dialect = sqlitedialect.New()
	case "mysql":
		sqlDB, err = sql.Open("mysql", dsn)
		dialect = mysqldialect.New()
	case "postgres":
		sqlDB, err = sql.Open("pgx", dsn)
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("unsupported state store type %q", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	db := bun.NewDB(sqlDB, dialect)
	s := &bunStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("state store migration: %w", err)
	}
	return s, nil
}

func (s *bunStore) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_, err := s.db.NewCreateTable().
		Model((*settingRow)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (s *bunStore) get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	row := new(settingRow)
	err := s.db.NewSelect().
		Model(row).
		Where("\"key\" = ?", key).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Value, nil
}

func (s *bunStore) set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	row := &settingRow{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	// An existence check keeps the statement portable across all three
	// dialects: mysql has no ON CONFLICT clause, and it reports zero
	// affected rows for a no-change UPDATE, so rows-affected cannot
	// drive an insert fallback.
	exists, err := s.db.NewSelect().
		Model((*settingRow)(nil)).
		Where("\"key\" = ?", key).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		_, err = s.db.NewUpdate().
			Model(row).
			Column("value", "updated_at").
			Where("\"key\" = ?", key).
			Exec(ctx)
		return err
	}
	_, err = s.db.NewInsert().Model(row).Exec(ctx)
	return err
}

func (s *bunStore) delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_, err := s.db.NewDelete().
		Model((*settingRow)(nil)).
		Where("\"key\" = ?", key).
		Exec(ctx)
	return err
}

func (s *bunStore) Token() (string, error)        { return s.get(KeyToken) }
func (s *bunStore) SetToken(token string) error   { return s.set(KeyToken, token) }
func (s *bunStore) ClearToken() error             { return s.delete(KeyToken) }
func (s *bunStore) Theme() (string, error)        { return s.get(KeyTheme) }
func (s *bunStore) SetTheme(mode string) error    { return s.set(KeyTheme, mode) }
func (s *bunStore) Language() (string, error)     { return s.get(KeyLanguage) }
func (s *bunStore) SetLanguage(lang string) error { return s.set(KeyLanguage, lang) }

func (s *bunStore) Close() error { return s.db.Close() }
