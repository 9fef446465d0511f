package wallet

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/AlexZinkM/wallet-dashboard/internal/client"
	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
)

// Generate asks the backend for a new wallet.
// A wallet that already exists is reported as success with Existed set.
func (s *Service) Generate(ctx context.Context, sess session.Session) (*model.GenerateResponse, error) {
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	w, err := s.backend.GenerateWallet(ctx, token)
	if err != nil {
		var existsErr *client.WalletExistsError
		if errors.As(err, &existsErr) {
			logger.GetLogger().Info().Str("address", existsErr.Wallet.Address).Msg("wallet already exists")
			return &model.GenerateResponse{
				Success: true,
				Existed: true,
				Address: existsErr.Wallet.Address,
			}, nil
		}
		return nil, fmt.Errorf("failed to generate wallet: %w", err)
	}

	return &model.GenerateResponse{
		Success: true,
		Address: w.Address,
	}, nil
}

// Address returns the user's wallet address, or ErrNoWallet
func (s *Service) Address(ctx context.Context, sess session.Session) (string, error) {
	token, err := requireToken(sess)
	if err != nil {
		return "", err
	}

	w, err := s.backend.GetWallet(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to get wallet: %w", err)
	}
	if w == nil || w.Address == "" {
		return "", ErrNoWallet
	}
	return w.Address, nil
}

// QRCode renders address as a base64 PNG
func QRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}

// TerminalQRCode renders address for a terminal using half-block characters
func TerminalQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}
	return qr.ToSmallString(false), nil
}
