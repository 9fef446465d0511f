// Package transfer turns an asset selection and form fields into one transfer payload.
package transfer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/wallet-dashboard/internal/common"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
)

// NativeKey is the selection value for the chain's base currency
const NativeKey = "native"

// separator between contract address and token id in a composite selection
const separator = "-"

var (
	ErrAssetNotFound    = errors.New("selected asset not found in balances")
	ErrNoAssetSelected  = errors.New("no asset selected")
	ErrAmountExceedsMax = errors.New("amount exceeds available balance")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidRecipient = errors.New("invalid recipient")
)

// Draft is the transfer form state for one submission
type Draft struct {
	// ContractAddress is the raw selection: "native", a token address or "tokenAddress-tokenId"
	ContractAddress string
	TokenID         string
	ToAddress       string
	Amount          string
	IsNative        bool
	MaxAmount       string
	Chain           string
	// PreviewImage is the selected NFT's metadata image, unresolved
	PreviewImage string
}

// Selected reports whether an asset has been picked
func (d *Draft) Selected() bool {
	return d.ContractAddress != ""
}

// Select applies an asset selection against the known balances.
// On ErrAssetNotFound the draft is left unchanged.
func (d *Draft) Select(selection string, balances model.Balances) error {
	contract, tokenID, composite := strings.Cut(selection, separator)
	if !composite {
		b := findSimple(selection, balances)
		if b == nil {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, selection)
		}
		_, native := b.(model.NativeBalance)
		d.ContractAddress = selection
		d.TokenID = ""
		d.IsNative = native
		d.MaxAmount = b.Base().Amount
		d.Chain = b.Base().Chain
		d.PreviewImage = ""
		return nil
	}

	b := findComposite(contract, tokenID, balances)
	if b == nil || tokenID == "" {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, selection)
	}
	d.ContractAddress = selection
	d.TokenID = tokenID
	d.IsNative = false
	d.MaxAmount = b.Base().Amount
	d.Chain = b.Base().Chain
	d.PreviewImage = ""
	if md := model.Metadata(b); md != nil && md.Image != "" {
		d.PreviewImage = md.Image
	}
	return nil
}

func findSimple(selection string, balances model.Balances) model.Balance {
	for _, b := range balances {
		if _, native := b.(model.NativeBalance); native {
			if selection == NativeKey {
				return b
			}
			continue
		}
		if addr := model.TokenAddress(b); addr != "" && addr == selection {
			return b
		}
	}
	return nil
}

func findComposite(contract, tokenID string, balances model.Balances) model.Balance {
	for _, b := range balances {
		if model.TokenAddress(b) == contract && model.TokenID(b) == tokenID {
			return b
		}
	}
	return nil
}

// SetAmount records amount after checking it against the selected asset's maximum.
// A rejected amount leaves the previous one in place.
func (d *Draft) SetAmount(amount string) error {
	if err := d.checkAmount(amount); err != nil {
		return err
	}
	d.Amount = strings.TrimSpace(amount)
	return nil
}

func (d *Draft) checkAmount(amount string) error {
	if !d.Selected() {
		return ErrNoAssetSelected
	}

	value, err := common.ParseAmount(amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !value.IsPositive() {
		return fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}

	if d.MaxAmount == "" {
		return nil
	}
	cmp, err := common.CompareAmounts(amount, d.MaxAmount)
	if err != nil {
		return fmt.Errorf("%w: unreadable balance %q", ErrInvalidAmount, d.MaxAmount)
	}
	if cmp > 0 {
		return fmt.Errorf("%w: %s > %s", ErrAmountExceedsMax, value.String(), d.MaxAmount)
	}
	return nil
}

// SetRecipient validates address for the selected asset's chain and records it
func (d *Draft) SetRecipient(address string) error {
	if !d.Selected() {
		return ErrNoAssetSelected
	}
	if err := ValidateRecipient(d.Chain, address); err != nil {
		return err
	}
	d.ToAddress = strings.TrimSpace(address)
	return nil
}

// Payload builds the request body. Native wins over NFT, NFT wins over token.
func (d *Draft) Payload(privateKey, currency string) (model.TransferPayload, error) {
	if !d.Selected() {
		return nil, ErrNoAssetSelected
	}
	if d.ToAddress == "" {
		return nil, fmt.Errorf("%w: address cannot be empty", ErrInvalidRecipient)
	}

	switch {
	case d.IsNative:
		if err := d.checkAmount(d.Amount); err != nil {
			return nil, err
		}
		return model.NativeTransferPayload{
			PrivateKey: privateKey,
			ToAddress:  d.ToAddress,
			Amount:     d.Amount,
			Currency:   currency,
		}, nil
	case d.TokenID != "":
		contract, _, _ := strings.Cut(d.ContractAddress, separator)
		return model.NFTTransferPayload{
			PrivateKey:      privateKey,
			ContractAddress: contract,
			ToAddress:       d.ToAddress,
			TokenID:         d.TokenID,
		}, nil
	default:
		if err := d.checkAmount(d.Amount); err != nil {
			return nil, err
		}
		return model.TokenTransferPayload{
			PrivateKey:      privateKey,
			ContractAddress: d.ContractAddress,
			ToAddress:       d.ToAddress,
			Amount:          d.Amount,
		}, nil
	}
}
