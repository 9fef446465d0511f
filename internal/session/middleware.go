package session

import (
	"context"
	"net/http"

	"github.com/AlexZinkM/wallet-dashboard/internal/crypto"
	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
)

type ctxKey struct{}

// Manager opens a Gate per request over the sealed cookie
type Manager struct {
	sealer *crypto.Sealer
	secure bool
}

func NewManager(sealer *crypto.Sealer, secure bool) *Manager {
	return &Manager{sealer: sealer, secure: secure}
}

// Open returns an initialized gate for the request
func (m *Manager) Open(w http.ResponseWriter, r *http.Request) *Gate {
	g := NewGate(NewCookieStore(m.sealer, m.secure, w, r))
	if _, err := g.Init(); err != nil {
		logger.GetLogger().Error().Err(err).Msg("failed to init session")
	}
	return g
}

// Middleware opens the gate and makes it available through GateFrom
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g := m.Open(w, r)
		ctx := context.WithValue(r.Context(), ctxKey{}, g)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GateFrom returns the request's gate, nil outside Middleware
func GateFrom(ctx context.Context) *Gate {
	g, _ := ctx.Value(ctxKey{}).(*Gate)
	return g
}

// FromContext returns the request's current session
func FromContext(ctx context.Context) Session {
	g := GateFrom(ctx)
	if g == nil {
		return Session{}
	}
	return g.Session()
}

// Require redirects unauthenticated requests to the landing page
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).Authenticated() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPI answers 401 with a JSON body instead of redirecting
func RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).Authenticated() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"not authenticated","code":"UNAUTHORIZED"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
