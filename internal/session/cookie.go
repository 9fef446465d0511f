package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AlexZinkM/wallet-dashboard/internal/crypto"
)

// CookieName is the fixed name of the browser-side token cookie
const CookieName = "token"

const cookieMaxAge = 30 * 24 * time.Hour

// CookieStore keeps the token sealed in a cookie for one request/response pair
type CookieStore struct {
	sealer *crypto.Sealer
	secure bool
	w      http.ResponseWriter
	r      *http.Request
}

func NewCookieStore(sealer *crypto.Sealer, secure bool, w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{sealer: sealer, secure: secure, w: w, r: r}
}

func (s *CookieStore) Load() (string, error) {
	c, err := s.r.Cookie(CookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNoToken
		}
		return "", err
	}

	token, err := s.sealer.Open(c.Value)
	if err != nil {
		return "", fmt.Errorf("failed to open cookie: %w", err)
	}
	if len(token) == 0 {
		return "", ErrNoToken
	}
	return string(token), nil
}

func (s *CookieStore) Save(token string) error {
	sealed, err := s.sealer.Seal([]byte(token))
	if err != nil {
		return err
	}

	http.SetCookie(s.w, &http.Cookie{
		Name:     CookieName,
		Value:    sealed,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *CookieStore) Clear() error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
