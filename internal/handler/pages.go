package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/AlexZinkM/wallet-dashboard/internal/client"
	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
	"github.com/AlexZinkM/wallet-dashboard/internal/view"
	"github.com/AlexZinkM/wallet-dashboard/wallet"
)

// notices shown after a redirect, keyed by the ?notice= value
var notices = map[string]string{
	"registered":       "Account created, you can log in now",
	"wallet_created":   "Wallet generated",
	"wallet_exists":    "You already have a wallet",
	"balances_updated": "Balances updated",
	"transfer_ok":      "Transfer submitted",
}

// PageHandler serves the server-rendered dashboard
type PageHandler struct {
	svc      *wallet.Service
	auth     session.Authenticator
	renderer *view.Renderer
	gateway  string
}

// NewPageHandler creates a new PageHandler. gateway is the IPFS gateway prefix, ending in "/".
func NewPageHandler(svc *wallet.Service, auth session.Authenticator, renderer *view.Renderer, gateway string) *PageHandler {
	return &PageHandler{svc: svc, auth: auth, renderer: renderer, gateway: gateway}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, page view.Page) {
	if page.Notice == "" {
		page.Notice = notices[r.URL.Query().Get("notice")]
	}
	if err := h.renderer.Render(w, status, name, page); err != nil {
		logger.GetLogger().Error().Err(err).Str("page", name).Msg("render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// fail logs err and shows a generic notice. An expired backend session ends the local one.
func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, name string, page view.Page, err error) {
	if client.IsUnauthorized(err) {
		h.endSession(w, r)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	status, _, message := classify(err)
	logger.GetLogger().Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	page.Error = message
	h.render(w, r, status, name, page)
}

func (h *PageHandler) endSession(w http.ResponseWriter, r *http.Request) {
	gate := session.GateFrom(r.Context())
	if gate == nil {
		return
	}
	h.svc.SignedOut(gate.Session())
	if _, err := gate.Logout(); err != nil {
		logger.GetLogger().Error().Err(err).Msg("failed to clear session")
	}
}

func redirectNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	http.Redirect(w, r, path+"?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}

// Landing handles GET /
func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, view.PageLanding, view.Page{})
}

func credentials(r *http.Request) (string, string, bool) {
	if err := r.ParseForm(); err != nil {
		return "", "", false
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	return username, password, username != "" && password != ""
}

// Login handles POST /login
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentials(r)
	if !ok {
		h.render(w, r, http.StatusBadRequest, view.PageLanding, view.Page{Error: "Username and password are required"})
		return
	}

	gate := session.GateFrom(r.Context())
	if _, err := gate.SignIn(r.Context(), h.auth, username, password); err != nil {
		if client.IsUnauthorized(err) {
			h.render(w, r, http.StatusUnauthorized, view.PageLanding, view.Page{Error: "Invalid username or password"})
			return
		}
		h.fail(w, r, view.PageLanding, view.Page{}, err)
		return
	}

	logger.GetLogger().Info().Str("username", username).Msg("user logged in")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Register handles POST /register
func (h *PageHandler) Register(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentials(r)
	if !ok {
		h.render(w, r, http.StatusBadRequest, view.PageLanding, view.Page{Error: "Username and password are required"})
		return
	}

	gate := session.GateFrom(r.Context())
	sess, _, err := gate.SignUp(r.Context(), h.auth, username, password)
	if err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError {
			h.render(w, r, http.StatusBadRequest, view.PageLanding, view.Page{Error: "Registration was rejected, try another username"})
			return
		}
		h.fail(w, r, view.PageLanding, view.Page{}, err)
		return
	}

	logger.GetLogger().Info().Str("username", username).Msg("user registered")
	if sess.Authenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	redirectNotice(w, r, "/", "registered")
}

// Logout handles POST /logout
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Dashboard handles GET /dashboard
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	overview, err := h.svc.Overview(r.Context(), sess)
	if err != nil {
		h.fail(w, r, view.PageDashboard, view.Page{Data: &wallet.Overview{}}, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageDashboard, view.Page{Username: overview.User.Username, Data: overview})
}

// GenerateWallet handles POST /wallet/generate
func (h *PageHandler) GenerateWallet(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	resp, err := h.svc.Generate(r.Context(), sess)
	if err != nil {
		h.fail(w, r, view.PageDashboard, view.Page{Data: &wallet.Overview{}}, err)
		return
	}
	if resp.Existed {
		redirectNotice(w, r, "/dashboard", "wallet_exists")
		return
	}
	redirectNotice(w, r, "/dashboard", "wallet_created")
}

// Wallet handles GET /wallet
func (h *PageHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	user, err := h.svc.Profile(r.Context(), sess)
	if err != nil {
		h.fail(w, r, view.PageWallet, view.Page{}, err)
		return
	}

	snap, err := h.svc.Balances(r.Context(), sess)
	if err != nil {
		h.fail(w, r, view.PageWallet, view.Page{Username: user.Username}, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageWallet, view.Page{
		Username: user.Username,
		Data:     view.GroupBalances(snap.Balances, h.gateway),
	})
}

// RefreshWallet handles POST /wallet/refresh
func (h *PageHandler) RefreshWallet(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if _, err := h.svc.RefreshBalances(r.Context(), sess); err != nil {
		h.fail(w, r, view.PageWallet, view.Page{}, err)
		return
	}
	redirectNotice(w, r, "/wallet", "balances_updated")
}

// TransferForm handles GET /transferir
func (h *PageHandler) TransferForm(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	user, err := h.svc.Profile(r.Context(), sess)
	if err != nil {
		h.fail(w, r, view.PageTransfer, view.Page{Data: view.TransferPage{}}, err)
		return
	}

	snap, err := h.svc.Balances(r.Context(), sess)
	if err != nil {
		h.fail(w, r, view.PageTransfer, view.Page{Username: user.Username, Data: view.TransferPage{}}, err)
		return
	}

	form := model.TransferForm{Asset: r.URL.Query().Get("asset")}
	h.render(w, r, http.StatusOK, view.PageTransfer, view.Page{
		Username: user.Username,
		Data:     view.NewTransferPage(snap.Balances, h.svc.Currency(), h.gateway, form),
	})
}

// Transfer handles POST /transferir
func (h *PageHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, view.PageTransfer, view.Page{Error: "Invalid form", Data: view.TransferPage{}})
		return
	}
	form := model.TransferForm{
		Asset:     r.PostForm.Get("asset"),
		ToAddress: strings.TrimSpace(r.PostForm.Get("to_address")),
		Amount:    strings.TrimSpace(r.PostForm.Get("amount")),
	}

	sess := session.FromContext(r.Context())
	if _, err := h.svc.Transfer(r.Context(), sess, form); err != nil {
		page := view.Page{Data: view.TransferPage{Form: form}}
		if bs, balErr := h.svc.CurrentBalances(r.Context(), sess); balErr == nil {
			page.Data = view.NewTransferPage(bs, h.svc.Currency(), h.gateway, form)
		}
		if user, userErr := h.svc.Profile(r.Context(), sess); userErr == nil {
			page.Username = user.Username
		}
		h.fail(w, r, view.PageTransfer, page, err)
		return
	}

	redirectNotice(w, r, "/transferir", "transfer_ok")
}

// Users handles GET /users
func (h *PageHandler) Users(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	user, err := h.svc.Profile(r.Context(), sess)
	if err != nil {
		h.fail(w, r, view.PageUsers, view.Page{}, err)
		return
	}

	users, err := h.svc.Users(r.Context())
	if err != nil {
		h.fail(w, r, view.PageUsers, view.Page{Username: user.Username}, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageUsers, view.Page{Username: user.Username, Data: users})
}
