// Package wallet ties the backend client, the balance book and the transfer selector together.
// Both the web handlers and the CLI go through it.
package wallet

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/awnumar/memguard"

	"github.com/AlexZinkM/wallet-dashboard/internal/balances"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
)

// ErrNoWallet is returned for operations that need a wallet the user has not generated yet
var ErrNoWallet = errors.New("user has no wallet")

// Backend is the part of the API client the service uses
type Backend interface {
	GetUser(ctx context.Context, token string) (*model.UserProfile, error)
	GetUsers(ctx context.Context) ([]model.UserSummary, error)
	GetWallet(ctx context.Context, token string) (*model.Wallet, error)
	WalletKey(ctx context.Context, token string) (*memguard.Enclave, error)
	GenerateWallet(ctx context.Context, token string) (*model.Wallet, error)
	GetBalances(ctx context.Context, token string) (model.Balances, error)
	UpdateBalances(ctx context.Context, token string) (model.Balances, error)
	Transfer(ctx context.Context, token string, payload model.TransferPayload) (json.RawMessage, error)
}

// Service is safe for concurrent use
type Service struct {
	backend  Backend
	book     *balances.Book
	currency string
}

// NewService creates a service. currency labels native transfers (e.g. "MATIC").
func NewService(backend Backend, book *balances.Book, currency string) *Service {
	return &Service{backend: backend, book: book, currency: currency}
}

// Currency returns the native currency label
func (s *Service) Currency() string {
	return s.currency
}

// SignedOut drops per-session state kept for sess
func (s *Service) SignedOut(sess session.Session) {
	if id := sess.ID(); id != "" {
		s.book.Forget(id)
	}
}

func requireToken(sess session.Session) (string, error) {
	if !sess.Authenticated() {
		return "", session.ErrNoToken
	}
	return sess.Token(), nil
}
