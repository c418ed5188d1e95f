// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

// package session holds the authenticated identity and bearer token for the
// running console. It is the single writer of the persisted token: login
// stores it, every other transition clears it. Reads (the API client pulling
// the token per request) are concurrency-safe.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/logging"
	"github.com/terradesk/terradesk/internal/model"
)

// InactivityTimeout is how long the console may sit without key or mouse
// input before the session is dropped.
const InactivityTimeout = 30 * time.Minute

// State is the session lifecycle state.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

// Reason records why a session ended.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonManual is a user-initiated logout.
	ReasonManual
	// ReasonExpired is a 401: the token expired or was revoked.
	ReasonExpired
	// ReasonForbidden is a 403: a required privilege was lost.
	ReasonForbidden
	// ReasonInactivity is the idle timeout firing.
	ReasonInactivity
)

// Store persists the token between runs. The statestore package implements it.
type Store interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// Guard is the session state machine. It implements api.TokenSource.
type Guard struct {
	mu           sync.RWMutex
	store        Store
	state        State
	user         model.User
	token        string
	timeout      time.Duration
	lastActivity time.Time
	lastReason   Reason
}

// Option tweaks a guard at construction time.
type Option func(*Guard)

// WithTimeout overrides the inactivity timeout; tests use a short value.
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) { g.timeout = d }
}

// NewGuard builds a guard, restoring a previously persisted token if it is
// still plausibly valid. A token whose JWT expiry has already passed is
// discarded instead of attempted against the API.
func NewGuard(store Store, opts ...Option) *Guard {
	g := &Guard{
		store:   store,
		timeout: InactivityTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}

	if store == nil {
		return g
	}
	token, err := store.Token()
	if err != nil {
		logging.Warnf("session: could not read persisted token: %v", err)
		return g
	}
	if token == "" {
		return g
	}
	if expired, _ := tokenExpired(token, time.Now()); expired {
		logging.Debugf("session: persisted token already expired, discarding")
		_ = store.ClearToken()
		return g
	}
	// The token still has to pass server-side validation; holding it here
	// only pre-fills the API client so Validate can run.
	g.token = token
	return g
}

// tokenExpired inspects the unverified exp claim. Signature verification is
// the server's job; the client only avoids sending obviously dead tokens.
func tokenExpired(token string, now time.Time) (bool, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return false, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, err
	}
	return exp.Before(now), nil
}

// Token returns the current bearer token ("" when unauthenticated).
func (g *Guard) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// HasStoredToken reports whether a restored token is waiting for validation.
func (g *Guard) HasStoredToken() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state == Unauthenticated && g.token != ""
}

// State returns the lifecycle state.
func (g *Guard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// CurrentUser returns the authenticated identity (zero value otherwise).
func (g *Guard) CurrentUser() model.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user
}

// IsAdmin reports whether the authenticated user carries the admin role.
func (g *Guard) IsAdmin() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state == Authenticated && g.user.IsAdmin()
}

// Login enters the authenticated state and persists the token.
func (g *Guard) Login(token string, user model.User) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Authenticated
	g.token = token
	g.user = user
	g.lastReason = ReasonNone
	g.lastActivity = time.Now()
	if g.store != nil {
		if err := g.store.SetToken(token); err != nil {
			logging.Warnf("session: could not persist token: %v", err)
		}
	}
}

// Resume enters the authenticated state using the restored token after a
// successful server-side validation.
func (g *Guard) Resume(user model.User) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token == "" {
		return
	}
	g.state = Authenticated
	g.user = user
	g.lastReason = ReasonNone
	g.lastActivity = time.Now()
}

// Logout leaves the authenticated state, recording why, and clears the
// persisted token.
func (g *Guard) Logout(reason Reason) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Unauthenticated
	g.token = ""
	g.user = model.User{}
	g.lastReason = reason
	if g.store != nil {
		if err := g.store.ClearToken(); err != nil {
			logging.Warnf("session: could not clear persisted token: %v", err)
		}
	}
}

// LastReason returns why the previous session ended; the login view uses it
// to show "session expired" style notices.
func (g *Guard) LastReason() Reason {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastReason
}

// Touch resets the inactivity clock. Called on every key and mouse event
// while authenticated.
func (g *Guard) Touch() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Authenticated {
		g.lastActivity = time.Now()
	}
}

// IdleExpired reports whether the inactivity window has elapsed. The caller
// decides when to check (the TUI does so on a periodic tick).
func (g *Guard) IdleExpired(now time.Time) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state == Authenticated && now.Sub(g.lastActivity) >= g.timeout
}

// HandleInvalidation is wired to the API client's invalidation hook and maps
// it onto a logout transition.
func (g *Guard) HandleInvalidation(reason api.InvalidateReason) {
	switch reason {
	case api.InvalidateForbidden:
		g.Logout(ReasonForbidden)
	default:
		g.Logout(ReasonExpired)
	}
}
