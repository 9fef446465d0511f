// Package session holds the dashboard's authentication state.
//
// A Session is either unauthenticated or authenticated with an opaque bearer token.
// Every change goes through Gate.apply, which also persists the token to a TokenStore.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
)

// State of a session
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is an immutable snapshot of the authentication state
type Session struct {
	state State
	token string
}

func (s Session) State() State {
	return s.state
}

// Token is empty unless the session is authenticated
func (s Session) Token() string {
	return s.token
}

func (s Session) Authenticated() bool {
	return s.state == Authenticated
}

// ID is a stable, non-reversible identifier derived from the token.
// Empty for unauthenticated sessions.
func (s Session) ID() string {
	if !s.Authenticated() {
		return ""
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(s.token)).String()
}

type event interface {
	isEvent()
}

type loginEvent struct{ token string }
type logoutEvent struct{}
type initEvent struct{}

func (loginEvent) isEvent()  {}
func (logoutEvent) isEvent() {}
func (initEvent) isEvent()   {}

// Gate owns the current Session and the store it is persisted in
type Gate struct {
	store   TokenStore
	current Session
}

// NewGate creates an unauthenticated gate over store. Call Init to pick up a stored token.
func NewGate(store TokenStore) *Gate {
	return &Gate{store: store}
}

// Session returns the current session
func (g *Gate) Session() Session {
	return g.current
}

// Init loads the session from the store. A missing or unreadable token leaves the gate unauthenticated.
func (g *Gate) Init() (Session, error) {
	return g.apply(initEvent{})
}

// Login moves the gate to authenticated with token and persists it
func (g *Gate) Login(token string) (Session, error) {
	return g.apply(loginEvent{token: token})
}

// Logout clears the stored token and moves the gate to unauthenticated
func (g *Gate) Logout() (Session, error) {
	return g.apply(logoutEvent{})
}

// apply is the only place the session changes
func (g *Gate) apply(ev event) (Session, error) {
	prev := g.current
	var next Session

	switch e := ev.(type) {
	case initEvent:
		token, err := g.store.Load()
		if err != nil {
			if !errors.Is(err, ErrNoToken) {
				logger.GetLogger().Warn().Err(err).Msg("discarding stored token")
				if clearErr := g.store.Clear(); clearErr != nil {
					return prev, fmt.Errorf("failed to clear token: %w", clearErr)
				}
			}
			next = Session{state: Unauthenticated}
		} else {
			next = Session{state: Authenticated, token: token}
		}
	case loginEvent:
		if e.token == "" {
			return prev, ErrNoToken
		}
		if err := g.store.Save(e.token); err != nil {
			return prev, fmt.Errorf("failed to save token: %w", err)
		}
		next = Session{state: Authenticated, token: e.token}
	case logoutEvent:
		if err := g.store.Clear(); err != nil {
			return prev, fmt.Errorf("failed to clear token: %w", err)
		}
		next = Session{state: Unauthenticated}
	default:
		panic(fmt.Sprintf("unhandled session event %T", ev))
	}

	if prev.state != next.state {
		logger.GetLogger().Debug().
			Stringer("from", prev.state).
			Stringer("to", next.state).
			Msg("session transition")
	}
	g.current = next
	return next, nil
}
