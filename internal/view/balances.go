// Package view turns backend data into what the dashboard pages render.
package view

import (
	"fmt"
	"strings"

	"github.com/AlexZinkM/wallet-dashboard/internal/common"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/transfer"
)

// BalanceRow is one table row on the wallet page
type BalanceRow struct {
	Chain        string
	TokenAddress string
	ShortAddress string
	TokenID      string
	// Name is the token name for fungible and multitoken rows, the metadata name for NFTs
	Name        string
	Amount      string
	Block       int64
	Image       string
	ImageAlt    string
	MetadataURI string
	// Asset is the transfer selection for this row, "" when it cannot be sent
	Asset       string
}

// BalanceGroup is one section on the wallet page
type BalanceGroup struct {
	Title string
	Kind  model.BalanceKind
	Rows  []BalanceRow
}

// ResolveImage rewrites ipfs references through the gateway. Other URLs pass through.
func ResolveImage(image, gateway string) string {
	if !strings.HasPrefix(image, "ipfs") {
		return image
	}
	return gateway + strings.Replace(image, ":/", "", 1)
}

// MetadataLink returns uri when it points at the gateway's ipfs path, "" otherwise
func MetadataLink(uri, gateway string) string {
	if strings.HasPrefix(uri, gateway+"ipfs/") {
		return uri
	}
	return ""
}

var groupOrder = []struct {
	kind  model.BalanceKind
	title string
}{
	{model.KindNative, "Native Tokens"},
	{model.KindMultitoken, "Multitokens"},
	{model.KindFungible, "Fungible Tokens"},
	{model.KindNFT, "NFTs"},
}

// GroupBalances splits balances into Native, Multitokens, Fungible Tokens and NFTs.
// Empty groups are left out.
func GroupBalances(balances model.Balances, gateway string) []BalanceGroup {
	rows := make(map[model.BalanceKind][]BalanceRow, len(groupOrder))
	for _, b := range balances {
		rows[b.Kind()] = append(rows[b.Kind()], rowOf(b, gateway))
	}

	out := make([]BalanceGroup, 0, len(groupOrder))
	for _, g := range groupOrder {
		if len(rows[g.kind]) == 0 {
			continue
		}
		out = append(out, BalanceGroup{Title: g.title, Kind: g.kind, Rows: rows[g.kind]})
	}
	return out
}

func rowOf(b model.Balance, gateway string) BalanceRow {
	base := b.Base()
	row := BalanceRow{
		Chain:  base.Chain,
		Amount: base.Amount,
		Block:  base.LastUpdatedBlockNumber,
		Asset:  transfer.OptionKey(b),
	}

	switch v := b.(type) {
	case model.NativeBalance:
	case model.FungibleBalance:
		row.TokenAddress = v.TokenAddress
		if v.Details != nil {
			row.Name = v.Details.Name
		}
	case model.MultitokenBalance:
		row.TokenAddress = v.TokenAddress
		row.TokenID = v.TokenID
		if v.Details != nil {
			row.Name = v.Details.Name
		}
	case model.NFTBalance:
		row.TokenAddress = v.TokenAddress
		row.TokenID = v.TokenID
		row.MetadataURI = MetadataLink(v.MetadataURI, gateway)
		if md := v.Metadata; md != nil {
			row.Name = md.Name
			if md.Image != "" && md.Description != "" {
				row.Image = ResolveImage(md.Image, gateway)
				row.ImageAlt = md.Description
			}
		}
	default:
		panic(fmt.Sprintf("unhandled balance type %T", b))
	}

	if row.TokenAddress != "" {
		row.ShortAddress = common.ShortenAddress(row.TokenAddress)
	}
	return row
}
