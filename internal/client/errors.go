package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/AlexZinkM/wallet-dashboard/internal/model"
)

// TransportError is returned when the backend could not be reached at all
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError is returned for any non-2xx backend answer. Body is kept verbatim.
type HTTPError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized
}

// WalletExistsError is the backend's 400 answer to POST /wallet when the user already owns a wallet.
// It carries the existing wallet so callers can display it.
type WalletExistsError struct {
	Wallet model.Wallet
}

func (e *WalletExistsError) Error() string {
	return "wallet already exists: " + e.Wallet.Address
}

// IsWalletExistsError checks if error is WalletExistsError
func IsWalletExistsError(err error) bool {
	var existsErr *WalletExistsError
	return errors.As(err, &existsErr)
}
