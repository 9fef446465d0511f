package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/wallet-dashboard/internal/client"
	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
	"github.com/AlexZinkM/wallet-dashboard/internal/transfer"
)

// Prepare builds and validates a draft from the form against the current balances.
// No request is sent to the transfer endpoint.
func (s *Service) Prepare(ctx context.Context, sess session.Session, form model.TransferForm) (*transfer.Draft, error) {
	bs, err := s.CurrentBalances(ctx, sess)
	if err != nil {
		return nil, err
	}

	var d transfer.Draft
	if err := d.Select(form.Asset, bs); err != nil {
		return nil, err
	}
	if err := d.SetRecipient(form.ToAddress); err != nil {
		return nil, err
	}
	// NFTs move by token id, the amount field is not used
	if d.TokenID == "" {
		if err := d.SetAmount(form.Amount); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

// Transfer validates the form, submits exactly one payload and re-fetches balances on success
func (s *Service) Transfer(ctx context.Context, sess session.Session, form model.TransferForm) (*model.TransferResponse, error) {
	token, err := requireToken(sess)
	if err != nil {
		return nil, err
	}

	draft, err := s.Prepare(ctx, sess, form)
	if err != nil {
		return nil, err
	}

	enclave, err := s.backend.WalletKey(ctx, token)
	if errors.Is(err, client.ErrNoWalletKey) {
		return nil, ErrNoWallet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	key, err := enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open key enclave: %w", err)
	}
	defer key.Destroy()

	payload, err := draft.Payload(key.String(), s.currency)
	if err != nil {
		return nil, err
	}

	raw, err := s.backend.Transfer(ctx, token, payload)
	if err != nil {
		return nil, fmt.Errorf("transfer failed: %w", err)
	}

	logger.GetLogger().Info().
		Str("shape", payload.Shape()).
		Str("to", draft.ToAddress).
		Msg("transfer submitted")

	if _, err := s.Refetch(ctx, sess); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to re-fetch balances after transfer")
	}

	return &model.TransferResponse{
		Shape:  payload.Shape(),
		Result: raw,
	}, nil
}
