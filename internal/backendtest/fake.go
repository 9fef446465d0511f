// Package backendtest provides an in-memory stand-in for the custodial wallet API.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/AlexZinkM/wallet-dashboard/internal/model"
)

// Fake is an httptest server speaking the backend's REST dialect under /api
type Fake struct {
	Server *httptest.Server

	mu        sync.Mutex
	passwords map[string]string
	roles     map[string]string
	tokens    map[string]string
	wallets   map[string]model.Wallet
	balances  map[string]model.Balances
	transfers []json.RawMessage
	calls     map[string]int

	registerIssuesToken bool
	failTransfers       bool
	updateHook          func()
	balancesHook        func()
	failures            map[string]int
}

// New starts a fake backend. Close it with t.Cleanup(f.Close).
func New() *Fake {
	f := &Fake{
		passwords: map[string]string{},
		roles:     map[string]string{},
		tokens:    map[string]string{},
		wallets:   map[string]model.Wallet{},
		balances:  map[string]model.Balances{},
		calls:     map[string]int{},
		failures:  map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", f.register)
	mux.HandleFunc("POST /api/login", f.login)
	mux.HandleFunc("GET /api/users", f.users)
	mux.HandleFunc("GET /api/user", f.authed(f.user))
	mux.HandleFunc("GET /api/wallet", f.authed(f.wallet))
	mux.HandleFunc("POST /api/wallet", f.authed(f.generate))
	mux.HandleFunc("GET /api/wallet/balances", f.authed(f.loadBalances))
	mux.HandleFunc("GET /api/wallet/update/balances", f.authed(f.updateBalances))
	mux.HandleFunc("POST /api/transferir", f.authed(f.transfer))
	f.Server = httptest.NewServer(mux)
	return f
}

// URL returns the API root (server URL + "/api")
func (f *Fake) URL() string {
	return f.Server.URL + "/api"
}

// Close stops the server
func (f *Fake) Close() {
	f.Server.Close()
}

// AddUser registers a user and returns a ready bearer token
func (f *Fake) AddUser(username, password, role string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[username] = password
	f.roles[username] = role
	token := "tok-" + username
	f.tokens[token] = username
	return token
}

// RevokeToken makes the backend answer 401 for token
func (f *Fake) RevokeToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
}

// SetWallet assigns a wallet to a user
func (f *Fake) SetWallet(username string, w model.Wallet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets[username] = w
}

// SetBalances replaces a user's balances
func (f *Fake) SetBalances(username string, bs model.Balances) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[username] = bs
}

// SetRegisterIssuesToken makes POST /register answer with a token
func (f *Fake) SetRegisterIssuesToken(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerIssuesToken = v
}

// SetFailTransfers makes POST /transferir answer 500
func (f *Fake) SetFailTransfers(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failTransfers = v
}

// SetUpdateHook runs hook inside GET /wallet/update/balances before it answers
func (f *Fake) SetUpdateHook(hook func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateHook = hook
}

// SetBalancesHook runs hook inside GET /wallet/balances before it reads the balances
func (f *Fake) SetBalancesHook(hook func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balancesHook = hook
}

// FailRoute makes an authenticated route answer status, e.g. FailRoute("GET /wallet", 404).
// A zero status restores normal handling.
func (f *Fake) FailRoute(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.failures, route)
		return
	}
	f.failures[route] = status
}

// Transfers returns the raw transfer bodies received so far
func (f *Fake) Transfers() []json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]json.RawMessage(nil), f.transfers...)
}

// Calls returns how many times the named route was hit, e.g. "GET /wallet/balances"
func (f *Fake) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *Fake) count(r *http.Request) {
	f.mu.Lock()
	f.calls[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]++
	f.mu.Unlock()
}

func (f *Fake) authed(next func(w http.ResponseWriter, r *http.Request, username string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		username, ok := f.tokens[token]
		status := f.failures[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			return
		}
		if status != 0 {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next(w, r, username)
	}
}

func (f *Fake) register(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.passwords[creds.Username]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "user exists"})
		return
	}
	f.passwords[creds.Username] = creds.Password
	f.roles[creds.Username] = "user"
	resp := model.AuthResponse{Message: "registered"}
	if f.registerIssuesToken {
		resp.Token = "tok-" + creds.Username
		f.tokens[resp.Token] = creds.Username
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (f *Fake) login(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.passwords[creds.Username]; !ok || pw != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}
	token := "tok-" + creds.Username
	f.tokens[token] = creds.Username
	writeJSON(w, http.StatusOK, model.AuthResponse{Token: token})
}

func (f *Fake) users(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.UserSummary, 0, len(f.roles))
	for name, role := range f.roles {
		out = append(out, model.UserSummary{Username: name, Role: role})
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *Fake) user(w http.ResponseWriter, _ *http.Request, username string) {
	f.mu.Lock()
	role := f.roles[username]
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, model.UserProfile{Username: username, Role: role})
}

func (f *Fake) wallet(w http.ResponseWriter, _ *http.Request, username string) {
	f.mu.Lock()
	wallet, ok := f.wallets[username]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusOK, model.WalletResponse{})
		return
	}
	writeJSON(w, http.StatusOK, model.WalletResponse{Wallet: &wallet})
}

func (f *Fake) generate(w http.ResponseWriter, _ *http.Request, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.wallets[username]; ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "wallet already exists",
			"wallet":  model.Wallet{Address: existing.Address},
		})
		return
	}
	wallet := model.Wallet{
		Address:    fmt.Sprintf("0x%040x", len(f.wallets)+1),
		PrivateKey: fmt.Sprintf("pk-%s", username),
	}
	f.wallets[username] = wallet
	writeJSON(w, http.StatusOK, model.WalletResponse{Wallet: &model.Wallet{Address: wallet.Address}})
}

func (f *Fake) getBalances(w http.ResponseWriter, _ *http.Request, username string) {
	f.mu.Lock()
	bs := f.balances[username]
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, model.BalancesResponse{Balances: bs})
}

func (f *Fake) loadBalances(w http.ResponseWriter, r *http.Request, username string) {
	f.mu.Lock()
	hook := f.balancesHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	f.getBalances(w, r, username)
}

func (f *Fake) updateBalances(w http.ResponseWriter, r *http.Request, username string) {
	f.mu.Lock()
	hook := f.updateHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	f.getBalances(w, r, username)
}

func (f *Fake) transfer(w http.ResponseWriter, r *http.Request, _ string) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	f.mu.Lock()
	f.transfers = append(f.transfers, raw)
	fail := f.failTransfers
	f.mu.Unlock()
	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "transfer failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tx_hash": "0xfeed"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
