package transfer

import (
	"fmt"

	"github.com/AlexZinkM/wallet-dashboard/internal/common"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
)

// Option is one entry of the asset picker
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// OptionKey returns the selection value for b, or "" when b cannot be selected.
// NFTs and metadata-only multitoken balances use "tokenAddress-tokenId" so they move by token id;
// fungible and other multitoken balances use the bare address.
func OptionKey(b model.Balance) string {
	switch v := b.(type) {
	case model.NativeBalance:
		return NativeKey
	case model.FungibleBalance:
		return v.TokenAddress
	case model.MultitokenBalance:
		if v.Details == nil && v.Metadata != nil && v.TokenID != "" {
			return v.TokenAddress + separator + v.TokenID
		}
		return v.TokenAddress
	case model.NFTBalance:
		if v.TokenAddress == "" {
			return ""
		}
		return v.TokenAddress + separator + v.TokenID
	default:
		panic(fmt.Sprintf("unhandled balance type %T", b))
	}
}

// Options lists the selectable assets in balance order, one per key
func Options(balances model.Balances, currency string) []Option {
	seen := make(map[string]bool, len(balances))
	out := make([]Option, 0, len(balances))
	for _, b := range balances {
		key := OptionKey(b)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Option{Key: key, Label: label(b, currency)})
	}
	return out
}

func label(b model.Balance, currency string) string {
	switch v := b.(type) {
	case model.NativeBalance:
		return fmt.Sprintf("Native token (%s)", currency)
	case model.FungibleBalance:
		return withTag(v.TokenAddress, v.Details, nil)
	case model.MultitokenBalance:
		return withTag(v.TokenAddress, v.Details, v.Metadata)
	case model.NFTBalance:
		return withTag(v.TokenAddress, nil, v.Metadata)
	default:
		panic(fmt.Sprintf("unhandled balance type %T", b))
	}
}

func withTag(address string, details *model.TokenDetails, md *model.NFTMetadata) string {
	short := common.ShortenAddress(address)
	switch {
	case details != nil:
		return fmt.Sprintf("%s [%s]", short, details.Symbol)
	case md != nil:
		return fmt.Sprintf("%s [%s]", short, md.Name)
	default:
		return short
	}
}
