package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/awnumar/memguard"

	"github.com/AlexZinkM/wallet-dashboard/internal/model"
)

const maxBodySize = 4 << 20

// ErrNoWalletKey is returned by WalletKey when the user has no wallet or the backend sent no key
var ErrNoWalletKey = errors.New("wallet has no private key")

// BackendClient client for the custodial wallet API
type BackendClient struct {
	baseURL string
	client  *http.Client
}

// NewBackendClient creates a new client for the API rooted at baseURL (API_BASE + "/api")
func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	return NewBackendClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewBackendClientWithHTTP creates a client over a caller-provided *http.Client
func NewBackendClientWithHTTP(baseURL string, httpClient *http.Client) *BackendClient {
	return &BackendClient{baseURL: baseURL, client: httpClient}
}

// Register creates an account. The backend may answer with a token.
func (c *BackendClient) Register(ctx context.Context, username, password string) (*model.AuthResponse, error) {
	var out model.AuthResponse
	body := model.Credentials{Username: username, Password: password}
	if _, err := c.do(ctx, "register", http.MethodPost, "/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a bearer token
func (c *BackendClient) Login(ctx context.Context, username, password string) (*model.AuthResponse, error) {
	var out model.AuthResponse
	body := model.Credentials{Username: username, Password: password}
	if _, err := c.do(ctx, "login", http.MethodPost, "/login", "", body, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("login: backend returned no token")
	}
	return &out, nil
}

// GetUser gets the authenticated user's profile
func (c *BackendClient) GetUser(ctx context.Context, token string) (*model.UserProfile, error) {
	var out model.UserProfile
	if _, err := c.do(ctx, "get user", http.MethodGet, "/user", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUsers lists all users
func (c *BackendClient) GetUsers(ctx context.Context) ([]model.UserSummary, error) {
	var out []model.UserSummary
	if _, err := c.do(ctx, "get users", http.MethodGet, "/users", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWallet gets the user's wallet including its private key.
// Returns nil wallet when the user has none yet.
func (c *BackendClient) GetWallet(ctx context.Context, token string) (*model.Wallet, error) {
	var out model.WalletResponse
	if _, err := c.do(ctx, "get wallet", http.MethodGet, "/wallet", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Wallet, nil
}

// WalletKey fetches the wallet and seals its private key in an enclave.
// The key is decoded into bytes, never a string, and the response body is wiped before returning.
func (c *BackendClient) WalletKey(ctx context.Context, token string) (*memguard.Enclave, error) {
	body, err := c.do(ctx, "get wallet", http.MethodGet, "/wallet", token, nil, nil)
	if err != nil {
		return nil, err
	}
	defer clear(body)

	var out struct {
		Wallet *struct {
			PrivateKey secretBytes `json:"private_key"`
		} `json:"wallet"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("get wallet: failed to decode response: %w", err)
	}
	if out.Wallet == nil || len(out.Wallet.PrivateKey) == 0 {
		return nil, ErrNoWalletKey
	}
	// NewEnclave wipes the decoded key
	return memguard.NewEnclave(out.Wallet.PrivateKey), nil
}

// GenerateWallet asks the backend to create the user's wallet.
// When one already exists the backend answers 400 with the wallet embedded; that case returns *WalletExistsError.
func (c *BackendClient) GenerateWallet(ctx context.Context, token string) (*model.Wallet, error) {
	var out model.WalletResponse
	_, err := c.do(ctx, "generate wallet", http.MethodPost, "/wallet", token, struct{}{}, &out)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusBadRequest {
			var existing model.WalletResponse
			if json.Unmarshal(httpErr.Body, &existing) == nil && existing.Wallet != nil && existing.Wallet.Address != "" {
				return nil, &WalletExistsError{Wallet: *existing.Wallet}
			}
		}
		return nil, err
	}
	if out.Wallet == nil {
		return nil, errors.New("generate wallet: backend returned no wallet")
	}
	return out.Wallet, nil
}

// GetBalances gets the stored balances of the user's wallet
func (c *BackendClient) GetBalances(ctx context.Context, token string) (model.Balances, error) {
	var out model.BalancesResponse
	if _, err := c.do(ctx, "get balances", http.MethodGet, "/wallet/balances", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Balances, nil
}

// UpdateBalances asks the backend to resync and returns the fresh balances
func (c *BackendClient) UpdateBalances(ctx context.Context, token string) (model.Balances, error) {
	var out model.BalancesResponse
	if _, err := c.do(ctx, "update balances", http.MethodGet, "/wallet/update/balances", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Balances, nil
}

// Transfer submits one transfer payload and returns the backend's body verbatim
func (c *BackendClient) Transfer(ctx context.Context, token string, payload model.TransferPayload) (json.RawMessage, error) {
	if payload == nil {
		return nil, errors.New("transfer: nil payload")
	}
	raw, err := c.do(ctx, "transfer", http.MethodPost, "/transferir", token, payload, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// do sends one request. A non-empty token is sent as a bearer header.
// The raw body is returned; when out is non-nil it is also decoded into out.
func (c *BackendClient) do(ctx context.Context, op, method, path, token string, in, out any) ([]byte, error) {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		// transfer bodies carry the private key
		defer clear(payload)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Op: op, StatusCode: resp.StatusCode, Body: body}
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
		}
	}
	return body, nil
}

// secretBytes decodes a JSON string into a byte slice the caller can wipe.
// Escape sequences are rejected rather than unquoted through an intermediate string.
type secretBytes []byte

func (s *secretBytes) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("private key must be a JSON string")
	}
	inner := data[1 : len(data)-1]
	if bytes.IndexByte(inner, '\\') >= 0 {
		return errors.New("private key contains escape sequences")
	}
	*s = append(secretBytes(nil), inner...)
	return nil
}
