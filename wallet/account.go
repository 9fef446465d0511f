package wallet

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/AlexZinkM/wallet-dashboard/internal/client"
	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
)

// Overview is what the dashboard shows
type Overview struct {
	User    model.UserProfile
	Address string
	// QRCode is a base64 PNG, empty without a wallet
	QRCode string
}

// HasWallet reports whether the user already generated a wallet
func (o *Overview) HasWallet() bool {
	return o.Address != ""
}

// Overview fetches the profile and the wallet independently. Only an expired token fails the
// wallet side; other wallet errors leave Address empty.
func (s *Service) Overview(ctx context.Context, sess session.Session) (*Overview, error) {
	if _, err := requireToken(sess); err != nil {
		return nil, err
	}

	var (
		out     Overview
		user    *model.UserProfile
		address string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.backend.GetUser(gctx, sess.Token())
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		address, err = s.Address(gctx, sess)
		switch {
		case err == nil, errors.Is(err, ErrNoWallet):
			return nil
		case client.IsUnauthorized(err):
			return err
		default:
			// the profile still renders, with the generate button
			logger.GetLogger().Warn().Err(err).Msg("failed to load wallet for dashboard")
			address = ""
			return nil
		}
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.User = *user
	out.Address = address
	if address != "" {
		qr, err := QRCode(address)
		if err != nil {
			return nil, err
		}
		out.QRCode = qr
	}
	return &out, nil
}

// Profile returns the signed-in user's profile
func (s *Service) Profile(ctx context.Context, sess session.Session) (*model.UserProfile, error) {
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}
	user, err := s.backend.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Users lists all registered users
func (s *Service) Users(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.backend.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}
