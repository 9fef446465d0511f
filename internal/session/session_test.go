package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/wallet-dashboard/internal/backendtest"
	"github.com/AlexZinkM/wallet-dashboard/internal/client"
	"github.com/AlexZinkM/wallet-dashboard/internal/crypto"
)

type memStore struct {
	token   string
	loadErr error
	saveErr error
	cleared int
}

func (s *memStore) Load() (string, error) {
	if s.loadErr != nil {
		return "", s.loadErr
	}
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

func (s *memStore) Save(token string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.token = token
	return nil
}

func (s *memStore) Clear() error {
	s.token = ""
	s.cleared++
	return nil
}

func TestGate_Transitions(t *testing.T) {
	store := &memStore{}
	g := NewGate(store)

	s, err := g.Init()
	require.NoError(t, err)
	require.Equal(t, Unauthenticated, s.State())
	require.Empty(t, s.ID())

	// When
	s, err = g.Login("abc")

	// Then
	require.NoError(t, err)
	require.True(t, s.Authenticated())
	require.Equal(t, "abc", s.Token())
	require.Equal(t, "abc", store.token)
	require.NotEmpty(t, s.ID())

	s, err = g.Logout()
	require.NoError(t, err)
	require.Equal(t, Unauthenticated, s.State())
	require.Empty(t, s.Token())
	require.Empty(t, store.token)
}

func TestGate_InitFromStore(t *testing.T) {
	g := NewGate(&memStore{token: "stored"})

	s, err := g.Init()
	require.NoError(t, err)
	require.True(t, s.Authenticated())
	require.Equal(t, "stored", s.Token())
}

func TestGate_InitBadTokenClears(t *testing.T) {
	store := &memStore{loadErr: errors.New("garbled")}
	g := NewGate(store)

	s, err := g.Init()
	require.NoError(t, err)
	require.False(t, s.Authenticated())
	require.Equal(t, 1, store.cleared)
}

func TestGate_LoginEmptyToken(t *testing.T) {
	g := NewGate(&memStore{})

	_, err := g.Login("")
	require.ErrorIs(t, err, ErrNoToken)
	require.False(t, g.Session().Authenticated())
}

func TestGate_SaveFailureKeepsState(t *testing.T) {
	g := NewGate(&memStore{saveErr: errors.New("disk full")})

	_, err := g.Login("abc")
	require.Error(t, err)
	require.False(t, g.Session().Authenticated())
}

func TestSession_IDStable(t *testing.T) {
	a, _ := NewGate(&memStore{}).Login("abc")
	b, _ := NewGate(&memStore{}).Login("abc")
	c, _ := NewGate(&memStore{}).Login("xyz")

	require.Equal(t, a.ID(), b.ID())
	require.NotEqual(t, a.ID(), c.ID())
	require.NotContains(t, a.ID(), "abc")
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walletdash", "token")
	store := NewFileStore(path)
	require.Equal(t, path, store.Path())

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.Save("abc"))
	token, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "abc", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNoToken)
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	sealer, err := crypto.NewSealer(nil, nil)
	require.NoError(t, err)
	return NewManager(sealer, false)
}

func TestCookieRoundTrip(t *testing.T) {
	m := newManager(t)

	// When
	rec := httptest.NewRecorder()
	g := m.Open(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	_, err := g.Login("tok-alice")
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.NotContains(t, cookies[0].Value, "tok-alice")
	require.True(t, cookies[0].HttpOnly)

	// Then
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	g = m.Open(httptest.NewRecorder(), req)
	require.True(t, g.Session().Authenticated())
	require.Equal(t, "tok-alice", g.Session().Token())
}

func TestCookie_ForeignValueIsCleared(t *testing.T) {
	m := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	rec := httptest.NewRecorder()

	g := m.Open(rec, req)

	require.False(t, g.Session().Authenticated())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, -1, cookies[0].MaxAge)
}

func TestRequire_RedirectsWithoutCallingHandler(t *testing.T) {
	m := newManager(t)
	called := false
	h := m.Middleware(Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallet", nil))

	require.False(t, called)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRequireAPI_Unauthorized(t *testing.T) {
	m := newManager(t)
	h := m.Middleware(RequireAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/balances", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"not authenticated","code":"UNAUTHORIZED"}`, rec.Body.String())
}

func TestFromContext_NoGate(t *testing.T) {
	require.False(t, FromContext(context.Background()).Authenticated())
	require.Nil(t, GateFrom(context.Background()))
}

func TestSignInSignUp(t *testing.T) {
	fake := backendtest.New()
	t.Cleanup(fake.Close)
	fake.AddUser("alice", "pw", "user")
	c := client.NewBackendClient(fake.URL(), 0)

	g := NewGate(&memStore{})
	s, err := g.SignIn(context.Background(), c, "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, "tok-alice", s.Token())

	g = NewGate(&memStore{})
	_, err = g.SignIn(context.Background(), c, "alice", "nope")
	require.True(t, client.IsUnauthorized(err))
	require.False(t, g.Session().Authenticated())

	// registration without a token leaves the gate closed
	s, resp, err := g.SignUp(context.Background(), c, "bob", "pw")
	require.NoError(t, err)
	require.Equal(t, "registered", resp.Message)
	require.False(t, s.Authenticated())

	fake.SetRegisterIssuesToken(true)
	s, _, err = g.SignUp(context.Background(), c, "carol", "pw")
	require.NoError(t, err)
	require.Equal(t, "tok-carol", s.Token())
}
