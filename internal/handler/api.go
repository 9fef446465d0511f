package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/AlexZinkM/wallet-dashboard/internal/client"
	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
	"github.com/AlexZinkM/wallet-dashboard/wallet"
)

const maxRequestBody = 1 << 20

// APIHandler serves the JSON surface of the dashboard
type APIHandler struct {
	svc *wallet.Service
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(svc *wallet.Service) *APIHandler {
	return &APIHandler{svc: svc}
}

// BalancesResponse represents response for GET /api/balances
type BalancesResponse struct {
	Seq      uint64         `json:"seq"`
	Stale    bool           `json:"stale"`
	Balances model.Balances `json:"balances" swaggertype:"array,object"`
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classify(err)
	if client.IsUnauthorized(err) {
		if gate := session.GateFrom(r.Context()); gate != nil {
			h.svc.SignedOut(gate.Session())
			if _, err := gate.Logout(); err != nil {
				logger.GetLogger().Warn().Err(err).Msg("failed to clear session")
			}
		}
	}
	logger.GetLogger().Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("api request failed")
	respondError(w, status, code, message)
}

// Session handles GET /api/session
// @Summary      Current session
// @Description  Reports whether the caller is logged in and, if so, the user's profile
// @Tags         session
// @Produce      json
// @Success      200  {object}  model.SessionResponse
// @Router       /api/session [get]
func (h *APIHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		respondJSON(w, http.StatusOK, model.SessionResponse{})
		return
	}

	user, err := h.svc.Profile(r.Context(), sess)
	if err != nil {
		if client.IsUnauthorized(err) {
			h.fail(w, r, err)
			return
		}
		// the session is still valid locally, the profile is just unavailable
		logger.GetLogger().Warn().Err(err).Msg("failed to load profile")
		respondJSON(w, http.StatusOK, model.SessionResponse{Authenticated: true})
		return
	}
	respondJSON(w, http.StatusOK, model.SessionResponse{Authenticated: true, User: user})
}

// Balances handles GET /api/balances
// @Summary      Wallet balances
// @Description  Returns the stored balances. With refresh=true the backend resyncs them first.
// @Tags         wallet
// @Produce      json
// @Param        refresh  query     bool  false  "Resync balances before returning them"
// @Success      200      {object}  BalancesResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /api/balances [get]
func (h *APIHandler) Balances(w http.ResponseWriter, r *http.Request) {
	refresh := false
	if raw := r.URL.Query().Get("refresh"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, model.CodeInvalidInput, "refresh must be true or false")
			return
		}
		refresh = v
	}

	sess := session.FromContext(r.Context())
	load := h.svc.Balances
	if refresh {
		load = h.svc.RefreshBalances
	}

	snap, err := load(r.Context(), sess)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, BalancesResponse{Seq: snap.Seq, Stale: snap.Stale, Balances: snap.Balances})
}

// Transfer handles POST /api/transfer
// @Summary      Submit a transfer
// @Description  Validates the form against the current balances and submits native, token or NFT transfers
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.TransferForm  true  "Transfer form"
// @Success      200      {object}  model.TransferResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /api/transfer [post]
func (h *APIHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var form model.TransferForm
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, model.CodeInvalidInput, "invalid request body")
		return
	}

	resp, err := h.svc.Transfer(r.Context(), session.FromContext(r.Context()), form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GenerateWallet handles POST /api/wallet
// @Summary      Generate wallet
// @Description  Creates the user's custodial wallet. An existing wallet is returned with existed=true.
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.GenerateResponse
// @Failure      401  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /api/wallet [post]
func (h *APIHandler) GenerateWallet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Generate(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Health handles GET /healthz
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
