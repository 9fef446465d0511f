package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/wallet-dashboard/internal/client"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
	"github.com/AlexZinkM/wallet-dashboard/internal/transfer"
	"github.com/AlexZinkM/wallet-dashboard/wallet"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends a model.ErrorResponse
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, model.ErrorResponse{Error: message, Code: code})
}

// classify maps an error to a status, an error code and a message safe to show to the user
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, session.ErrNoToken), client.IsUnauthorized(err):
		return http.StatusUnauthorized, model.CodeUnauthorized, "Your session has expired, please log in again"
	case errors.Is(err, transfer.ErrAmountExceedsMax):
		return http.StatusBadRequest, model.CodeAmountTooLarge, "The amount cannot exceed the available balance"
	case errors.Is(err, transfer.ErrInvalidAmount):
		return http.StatusBadRequest, model.CodeInvalidInput, "Enter a positive amount"
	case errors.Is(err, transfer.ErrInvalidRecipient):
		return http.StatusBadRequest, model.CodeInvalidInput, "The recipient address is not valid for this chain"
	case errors.Is(err, transfer.ErrAssetNotFound), errors.Is(err, transfer.ErrNoAssetSelected):
		return http.StatusBadRequest, model.CodeInvalidInput, "Select an asset from your balances"
	case errors.Is(err, wallet.ErrNoWallet):
		return http.StatusBadRequest, model.CodeInvalidInput, "Generate a wallet first"
	default:
		return http.StatusBadGateway, model.CodeBackend, "Something went wrong talking to the wallet service, please try again"
	}
}
