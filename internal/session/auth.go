package session

import (
	"context"

	"github.com/AlexZinkM/wallet-dashboard/internal/model"
)

// Authenticator is the part of the backend client the gate needs
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*model.AuthResponse, error)
	Register(ctx context.Context, username, password string) (*model.AuthResponse, error)
}

// SignIn logs in against the backend and stores the returned token
func (g *Gate) SignIn(ctx context.Context, auth Authenticator, username, password string) (Session, error) {
	resp, err := auth.Login(ctx, username, password)
	if err != nil {
		return g.current, err
	}
	return g.Login(resp.Token)
}

// SignUp registers the user. The gate only becomes authenticated if the backend returned a token.
func (g *Gate) SignUp(ctx context.Context, auth Authenticator, username, password string) (Session, *model.AuthResponse, error) {
	resp, err := auth.Register(ctx, username, password)
	if err != nil {
		return g.current, nil, err
	}
	if resp.Token == "" {
		return g.current, resp, nil
	}
	s, err := g.Login(resp.Token)
	return s, resp, err
}
