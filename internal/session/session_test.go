// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/model"
)

// memStore is an in-memory token store.
type memStore struct {
	token   string
	readErr error
}

func (s *memStore) Token() (string, error) {
	if s.readErr != nil {
		return "", s.readErr
	}
	return s.token, nil
}
func (s *memStore) SetToken(token string) error { s.token = token; return nil }
func (s *memStore) ClearToken() error           { s.token = ""; return nil }

// signedToken builds a real HS256 token with the given expiry.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestLoginPersistsToken(t *testing.T) {
	store := &memStore{}
	g := NewGuard(store)

	g.Login("tok-1", model.User{Username: "alice", Role: model.RoleAdmin})
	if g.State() != Authenticated {
		t.Fatalf("expected authenticated state")
	}
	if g.Token() != "tok-1" {
		t.Fatalf("token not held")
	}
	if store.token != "tok-1" {
		t.Fatalf("token not persisted")
	}
	if !g.IsAdmin() {
		t.Fatalf("admin role lost")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	store := &memStore{}
	g := NewGuard(store)
	g.Login("tok-1", model.User{Username: "alice"})

	g.Logout(ReasonManual)
	if g.State() != Unauthenticated || g.Token() != "" {
		t.Fatalf("logout left session state behind")
	}
	if store.token != "" {
		t.Fatalf("persisted token not cleared")
	}
	if g.LastReason() != ReasonManual {
		t.Fatalf("reason not recorded")
	}
	if g.CurrentUser().Username != "" {
		t.Fatalf("user identity not cleared")
	}
}

func TestRestoresValidStoredToken(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	store := &memStore{token: token}
	g := NewGuard(store)

	if !g.HasStoredToken() {
		t.Fatalf("valid stored token should be restored for validation")
	}
	if g.State() != Unauthenticated {
		t.Fatalf("restore must not authenticate before server validation")
	}

	g.Resume(model.User{Username: "alice", Role: model.RoleUser})
	if g.State() != Authenticated || g.CurrentUser().Username != "alice" {
		t.Fatalf("resume did not authenticate")
	}
	if g.IsAdmin() {
		t.Fatalf("plain user must not be admin")
	}
}

func TestDiscardsExpiredStoredToken(t *testing.T) {
	token := signedToken(t, time.Now().Add(-time.Hour))
	store := &memStore{token: token}
	g := NewGuard(store)

	if g.HasStoredToken() {
		t.Fatalf("expired token should be discarded")
	}
	if store.token != "" {
		t.Fatalf("expired token should be cleared from the store")
	}
}

func TestStoreReadErrorLeavesGuardUnauthenticated(t *testing.T) {
	store := &memStore{readErr: errors.New("disk gone")}
	g := NewGuard(store)
	if g.HasStoredToken() || g.Token() != "" {
		t.Fatalf("unreadable store must not produce a token")
	}
}

func TestResumeWithoutTokenIsNoop(t *testing.T) {
	g := NewGuard(&memStore{})
	g.Resume(model.User{Username: "alice"})
	if g.State() != Unauthenticated {
		t.Fatalf("resume without a token must not authenticate")
	}
}

func TestInactivityTimeout(t *testing.T) {
	g := NewGuard(&memStore{}, WithTimeout(10*time.Millisecond))
	g.Login("tok", model.User{Username: "alice"})

	if g.IdleExpired(time.Now()) {
		t.Fatalf("fresh session must not be idle")
	}
	if !g.IdleExpired(time.Now().Add(time.Second)) {
		t.Fatalf("idle window elapsed but not reported")
	}

	// Activity resets the clock.
	g.Touch()
	if g.IdleExpired(time.Now()) {
		t.Fatalf("touch should reset the idle clock")
	}

	g.Logout(ReasonInactivity)
	if g.IdleExpired(time.Now().Add(time.Hour)) {
		t.Fatalf("unauthenticated guard can never be idle-expired")
	}
}

func TestHandleInvalidationMapsReasons(t *testing.T) {
	cases := []struct {
		in   api.InvalidateReason
		want Reason
	}{
		{api.InvalidateUnauthorized, ReasonExpired},
		{api.InvalidateForbidden, ReasonForbidden},
	}
	for _, tc := range cases {
		g := NewGuard(&memStore{})
		g.Login("tok", model.User{Username: "alice"})
		g.HandleInvalidation(tc.in)
		if g.State() != Unauthenticated {
			t.Fatalf("invalidation must log out")
		}
		if g.LastReason() != tc.want {
			t.Fatalf("reason %v mapped to %v, want %v", tc.in, g.LastReason(), tc.want)
		}
	}
}

func TestTokenExpiredHelper(t *testing.T) {
	now := time.Now()
	if expired, err := tokenExpired(signedToken(t, now.Add(time.Hour)), now); err != nil || expired {
		t.Fatalf("future token reported expired (err=%v)", err)
	}
	if expired, _ := tokenExpired(signedToken(t, now.Add(-time.Minute)), now); !expired {
		t.Fatalf("past token not reported expired")
	}
	if _, err := tokenExpired("not-a-jwt", now); err == nil {
		t.Fatalf("malformed token should error")
	}
}
