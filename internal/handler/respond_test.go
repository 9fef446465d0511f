package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/wallet-dashboard/internal/client"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
	"github.com/AlexZinkM/wallet-dashboard/internal/transfer"
	"github.com/AlexZinkM/wallet-dashboard/wallet"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no token", session.ErrNoToken, http.StatusUnauthorized, model.CodeUnauthorized},
		{"backend 401", fmt.Errorf("failed to get user: %w", &client.HTTPError{Op: "get user", StatusCode: 401}), http.StatusUnauthorized, model.CodeUnauthorized},
		{"above max", transfer.ErrAmountExceedsMax, http.StatusBadRequest, model.CodeAmountTooLarge},
		{"bad amount", fmt.Errorf("%w: abc", transfer.ErrInvalidAmount), http.StatusBadRequest, model.CodeInvalidInput},
		{"bad recipient", transfer.ErrInvalidRecipient, http.StatusBadRequest, model.CodeInvalidInput},
		{"unknown asset", transfer.ErrAssetNotFound, http.StatusBadRequest, model.CodeInvalidInput},
		{"nothing selected", transfer.ErrNoAssetSelected, http.StatusBadRequest, model.CodeInvalidInput},
		{"no wallet", wallet.ErrNoWallet, http.StatusBadRequest, model.CodeInvalidInput},
		{"backend 500", &client.HTTPError{Op: "transfer", StatusCode: 500, Body: []byte("boom")}, http.StatusBadGateway, model.CodeBackend},
		{"transport", &client.TransportError{Op: "get users", Err: errors.New("refused")}, http.StatusBadGateway, model.CodeBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, message := classify(tt.err)
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.code, code)
			require.NotEmpty(t, message)
		})
	}
}

func TestClassify_HidesBackendBody(t *testing.T) {
	_, _, message := classify(&client.HTTPError{Op: "transfer", StatusCode: 500, Body: []byte("secret stack trace")})
	require.NotContains(t, message, "secret")
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()

	respondError(rec, http.StatusBadRequest, model.CodeInvalidInput, "bad")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"error":"bad","code":"INVALID_INPUT"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()

	Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
