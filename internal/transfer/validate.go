package transfer

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// Family groups chains that share an address format
type Family string

const (
	FamilyEVM     Family = "evm"
	FamilySolana  Family = "solana"
	FamilyBitcoin Family = "bitcoin"
)

// FamilyOf maps a backend chain name to its address family. Unknown chains are treated as EVM.
func FamilyOf(chain string) Family {
	switch c := strings.ToLower(strings.TrimSpace(chain)); {
	case strings.HasPrefix(c, "solana"), c == "sol":
		return FamilySolana
	case strings.HasPrefix(c, "bitcoin"), c == "btc":
		return FamilyBitcoin
	default:
		return FamilyEVM
	}
}

// ValidateRecipient checks address syntax for the chain the asset lives on
func ValidateRecipient(chain, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("%w: address cannot be empty", ErrInvalidRecipient)
	}

	switch FamilyOf(chain) {
	case FamilySolana:
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return fmt.Errorf("%w: invalid Solana address: %v", ErrInvalidRecipient, err)
		}
	case FamilyBitcoin:
		addr, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams)
		if err != nil {
			return fmt.Errorf("%w: invalid Bitcoin address: %v", ErrInvalidRecipient, err)
		}
		if !addr.IsForNet(&chaincfg.MainNetParams) {
			return fmt.Errorf("%w: not a mainnet Bitcoin address", ErrInvalidRecipient)
		}
	default:
		if !common.IsHexAddress(address) {
			return fmt.Errorf("%w: invalid EVM address", ErrInvalidRecipient)
		}
	}
	return nil
}
