package view

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/wallet-dashboard/internal/model"
)

const gateway = "https://gateway.pinata.cloud/"

func TestResolveImage(t *testing.T) {
	require.Equal(t, "https://gateway.pinata.cloud/ipfs/Qm123", ResolveImage("ipfs://Qm123", gateway))
	require.Equal(t, "https://example.com/a.png", ResolveImage("https://example.com/a.png", gateway))
	require.Equal(t, "", ResolveImage("", gateway))
}

func TestMetadataLink(t *testing.T) {
	require.Equal(t, "https://gateway.pinata.cloud/ipfs/Qm1", MetadataLink("https://gateway.pinata.cloud/ipfs/Qm1", gateway))
	require.Empty(t, MetadataLink("ipfs://Qm1", gateway))
	require.Empty(t, MetadataLink("https://gateway.pinata.cloud/other", gateway))
}

func TestGroupBalances(t *testing.T) {
	bs := model.Balances{
		model.NFTBalance{
			BalanceBase:  model.BalanceBase{Amount: "1", LastUpdatedBlockNumber: 7},
			TokenAddress: "0xbbbb567890abcdef",
			TokenID:      "5",
			MetadataURI:  "https://gateway.pinata.cloud/ipfs/meta",
			Metadata:     &model.NFTMetadata{Name: "Ape", Description: "an ape", Image: "ipfs://img"},
		},
		model.NFTBalance{
			BalanceBase:  model.BalanceBase{Amount: "1"},
			TokenAddress: "0xcccc567890abcdef",
			TokenID:      "6",
			MetadataURI:  "ipfs://meta",
			Metadata:     &model.NFTMetadata{Name: "No description", Image: "ipfs://img"},
		},
		model.FungibleBalance{BalanceBase: model.BalanceBase{Amount: "3"}, TokenAddress: "0x1234567890abcdef", Details: &model.TokenDetails{Name: "USD Coin"}},
		model.NativeBalance{BalanceBase: model.BalanceBase{Chain: "polygon", Amount: "10"}},
	}

	groups := GroupBalances(bs, gateway)

	require.Len(t, groups, 3)
	require.Equal(t, "Native Tokens", groups[0].Title)
	require.Equal(t, "Fungible Tokens", groups[1].Title)
	require.Equal(t, "NFTs", groups[2].Title)

	require.Equal(t, "10", groups[0].Rows[0].Amount)
	require.Empty(t, groups[0].Rows[0].ShortAddress)

	require.Equal(t, "USD Coin", groups[1].Rows[0].Name)
	require.Equal(t, "0x1234...cdef", groups[1].Rows[0].ShortAddress)

	ape := groups[2].Rows[0]
	require.Equal(t, "https://gateway.pinata.cloud/ipfs/img", ape.Image)
	require.Equal(t, "an ape", ape.ImageAlt)
	require.Equal(t, "https://gateway.pinata.cloud/ipfs/meta", ape.MetadataURI)
	require.Equal(t, int64(7), ape.Block)

	plain := groups[2].Rows[1]
	require.Empty(t, plain.Image)
	require.Empty(t, plain.MetadataURI)

	require.Equal(t, "native", groups[0].Rows[0].Asset)
	require.Equal(t, "0x1234567890abcdef", groups[1].Rows[0].Asset)
	require.Equal(t, "0xbbbb567890abcdef-5", ape.Asset)
}

func TestGroupBalances_Empty(t *testing.T) {
	require.Empty(t, GroupBalances(nil, gateway))
}
