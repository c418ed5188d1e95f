// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package statestore

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	s, err := New("sqlite", filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUnsupportedBackend(t *testing.T) {
	if _, err := New("oracle", "dsn"); err == nil {
		t.Fatalf("unsupported backend must be rejected")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Token()
	if err != nil {
		t.Fatalf("read empty token: %v", err)
	}
	if got != "" {
		t.Fatalf("fresh store should have no token, got %q", got)
	}

	if err := s.SetToken("tok-abc"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	got, err = s.Token()
	if err != nil || got != "tok-abc" {
		t.Fatalf("token round trip failed: %q, %v", got, err)
	}

	// Overwrite.
	if err := s.SetToken("tok-def"); err != nil {
		t.Fatalf("overwrite token: %v", err)
	}
	if got, _ := s.Token(); got != "tok-def" {
		t.Fatalf("overwrite not visible, got %q", got)
	}

	if err := s.ClearToken(); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if got, _ := s.Token(); got != "" {
		t.Fatalf("token not cleared, got %q", got)
	}
	// Clearing an already empty token is fine.
	if err := s.ClearToken(); err != nil {
		t.Fatalf("double clear: %v", err)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetTheme("light"); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if err := s.SetLanguage("de"); err != nil {
		t.Fatalf("set language: %v", err)
	}

	if theme, _ := s.Theme(); theme != "light" {
		t.Fatalf("theme round trip failed, got %q", theme)
	}
	if lang, _ := s.Language(); lang != "de" {
		t.Fatalf("language round trip failed, got %q", lang)
	}

	// Keys are independent: clearing the token leaves preferences alone.
	if err := s.SetToken("tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := s.ClearToken(); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if theme, _ := s.Theme(); theme != "light" {
		t.Fatalf("clearing the token wiped the theme")
	}
}

func TestRewriteSameValue(t *testing.T) {
	s := newTestStore(t)

	// Saving an unchanged value must stay an update, not fall through to
	// an insert on the existing key.
	if err := s.SetTheme("dark"); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if err := s.SetTheme("dark"); err != nil {
		t.Fatalf("re-saving the same theme: %v", err)
	}
	if err := s.SetTheme("dark"); err != nil {
		t.Fatalf("third save of the same theme: %v", err)
	}
	if theme, _ := s.Theme(); theme != "dark" {
		t.Fatalf("theme lost after rewrite, got %q", theme)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := New("sqlite", path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.SetToken("tok-persist"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	s, err = New("sqlite", path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = s.Close() }()
	if got, _ := s.Token(); got != "tok-persist" {
		t.Fatalf("token lost across reopen, got %q", got)
	}
}
