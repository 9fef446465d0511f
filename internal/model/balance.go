package model

import (
	"encoding/json"
	"fmt"
)

// BalanceKind is the backend's balance type tag
type BalanceKind string

const (
	KindNative     BalanceKind = "native"
	KindFungible   BalanceKind = "fungible"
	KindMultitoken BalanceKind = "multitoken"
	KindNFT        BalanceKind = "nft"
)

// NFTMetadata is the resolved token metadata the backend attaches to NFT balances
type NFTMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// TokenDetails is the name/symbol pair the backend attaches to fungible balances
type TokenDetails struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// BalanceBase holds the fields every balance variant carries
type BalanceBase struct {
	Chain                  string `json:"chain"`
	Address                string `json:"address"`
	Amount                 string `json:"balance"`
	LastUpdatedBlockNumber int64  `json:"lastUpdatedBlockNumber"`
}

// Balance is one of NativeBalance, FungibleBalance, MultitokenBalance or NFTBalance.
// Switch on the concrete type; Kind exists for rendering and logging.
type Balance interface {
	Kind() BalanceKind
	Base() BalanceBase
	isBalance()
}

// NativeBalance is the chain's base currency
type NativeBalance struct {
	BalanceBase
}

// FungibleBalance is an ERC-20 style token balance
type FungibleBalance struct {
	BalanceBase
	TokenAddress string
	Details      *TokenDetails
}

// MultitokenBalance is an ERC-1155 style balance
type MultitokenBalance struct {
	BalanceBase
	TokenAddress string
	TokenID      string
	Details      *TokenDetails
	Metadata     *NFTMetadata
}

// NFTBalance is a non-fungible token
type NFTBalance struct {
	BalanceBase
	TokenAddress string
	TokenID      string
	MetadataURI  string
	Metadata     *NFTMetadata
}

func (NativeBalance) Kind() BalanceKind     { return KindNative }
func (FungibleBalance) Kind() BalanceKind   { return KindFungible }
func (MultitokenBalance) Kind() BalanceKind { return KindMultitoken }
func (NFTBalance) Kind() BalanceKind        { return KindNFT }

func (b NativeBalance) Base() BalanceBase     { return b.BalanceBase }
func (b FungibleBalance) Base() BalanceBase   { return b.BalanceBase }
func (b MultitokenBalance) Base() BalanceBase { return b.BalanceBase }
func (b NFTBalance) Base() BalanceBase        { return b.BalanceBase }

func (NativeBalance) isBalance()     {}
func (FungibleBalance) isBalance()   {}
func (MultitokenBalance) isBalance() {}
func (NFTBalance) isBalance()        {}

// TokenAddress returns the contract address of b, empty for native balances
func TokenAddress(b Balance) string {
	switch v := b.(type) {
	case NativeBalance:
		return ""
	case FungibleBalance:
		return v.TokenAddress
	case MultitokenBalance:
		return v.TokenAddress
	case NFTBalance:
		return v.TokenAddress
	default:
		panic(fmt.Sprintf("unhandled balance type %T", b))
	}
}

// TokenID returns the token id of b, empty for native and fungible balances
func TokenID(b Balance) string {
	switch v := b.(type) {
	case NativeBalance, FungibleBalance:
		return ""
	case MultitokenBalance:
		return v.TokenID
	case NFTBalance:
		return v.TokenID
	default:
		panic(fmt.Sprintf("unhandled balance type %T", b))
	}
}

// Metadata returns the NFT metadata of b when the variant carries one
func Metadata(b Balance) *NFTMetadata {
	switch v := b.(type) {
	case NativeBalance, FungibleBalance:
		return nil
	case MultitokenBalance:
		return v.Metadata
	case NFTBalance:
		return v.Metadata
	default:
		panic(fmt.Sprintf("unhandled balance type %T", b))
	}
}

// balanceRecord is the flat wire shape of a balance
type balanceRecord struct {
	BalanceBase
	Type         BalanceKind   `json:"type"`
	TokenID      string        `json:"tokenId,omitempty"`
	TokenAddress string        `json:"tokenAddress,omitempty"`
	MetadataURI  string        `json:"metadataURI,omitempty"`
	Metadata     *NFTMetadata  `json:"metadata,omitempty"`
	Details      *TokenDetails `json:"details,omitempty"`
}

func (r balanceRecord) toBalance() (Balance, error) {
	switch r.Type {
	case KindNative:
		return NativeBalance{BalanceBase: r.BalanceBase}, nil
	case KindFungible:
		return FungibleBalance{BalanceBase: r.BalanceBase, TokenAddress: r.TokenAddress, Details: r.Details}, nil
	case KindMultitoken:
		return MultitokenBalance{
			BalanceBase:  r.BalanceBase,
			TokenAddress: r.TokenAddress,
			TokenID:      r.TokenID,
			Details:      r.Details,
			Metadata:     r.Metadata,
		}, nil
	case KindNFT:
		return NFTBalance{
			BalanceBase:  r.BalanceBase,
			TokenAddress: r.TokenAddress,
			TokenID:      r.TokenID,
			MetadataURI:  r.MetadataURI,
			Metadata:     r.Metadata,
		}, nil
	default:
		return nil, fmt.Errorf("unknown balance type %q", r.Type)
	}
}

func recordOf(b Balance) balanceRecord {
	r := balanceRecord{BalanceBase: b.Base(), Type: b.Kind()}
	switch v := b.(type) {
	case NativeBalance:
	case FungibleBalance:
		r.TokenAddress, r.Details = v.TokenAddress, v.Details
	case MultitokenBalance:
		r.TokenAddress, r.TokenID, r.Details, r.Metadata = v.TokenAddress, v.TokenID, v.Details, v.Metadata
	case NFTBalance:
		r.TokenAddress, r.TokenID, r.MetadataURI, r.Metadata = v.TokenAddress, v.TokenID, v.MetadataURI, v.Metadata
	default:
		panic(fmt.Sprintf("unhandled balance type %T", b))
	}
	return r
}

// Balances is a snapshot of a wallet's balances with tagged JSON decoding
type Balances []Balance

// UnmarshalJSON decodes the backend's type-tagged records.
// An unknown tag fails the whole snapshot.
func (bs *Balances) UnmarshalJSON(data []byte) error {
	var records []balanceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	out := make(Balances, 0, len(records))
	for i, r := range records {
		b, err := r.toBalance()
		if err != nil {
			return fmt.Errorf("balance %d: %w", i, err)
		}
		out = append(out, b)
	}
	*bs = out
	return nil
}

// MarshalJSON encodes balances back into the flat tagged shape
func (bs Balances) MarshalJSON() ([]byte, error) {
	records := make([]balanceRecord, 0, len(bs))
	for _, b := range bs {
		records = append(records, recordOf(b))
	}
	return json.Marshal(records)
}

// BalancesResponse represents response for GET /wallet/balances and GET /wallet/update/balances
type BalancesResponse struct {
	Balances Balances `json:"balances"`
}
