package transfer

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/wallet-dashboard/internal/model"
)

const evmRecipient = "0x000000000000000000000000000000000000dEaD"

func base(amount string) model.BalanceBase {
	return model.BalanceBase{Chain: "polygon", Address: "0xowner", Amount: amount}
}

func payloadFields(t *testing.T, p model.TransferPayload) map[string]any {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	return fields
}

func TestSelect_NativeScenario(t *testing.T) {
	balances := model.Balances{
		model.FungibleBalance{BalanceBase: base("3"), TokenAddress: "0xfff"},
		model.NativeBalance{BalanceBase: base("10")},
	}
	var d Draft

	// When
	require.NoError(t, d.Select("native", balances))

	// Then
	require.True(t, d.IsNative)
	require.Equal(t, "10", d.MaxAmount)
	require.Empty(t, d.TokenID)
	require.Equal(t, "polygon", d.Chain)
}

func TestSelect_CompositeScenario(t *testing.T) {
	balances := model.Balances{
		model.NFTBalance{
			BalanceBase:  base("1"),
			TokenAddress: "0xABC",
			TokenID:      "5",
			Metadata:     &model.NFTMetadata{Name: "Ape", Image: "ipfs://x"},
		},
	}
	var d Draft

	// When
	require.NoError(t, d.Select("0xABC-5", balances))

	// Then
	require.Equal(t, "5", d.TokenID)
	require.Equal(t, "0xABC-5", d.ContractAddress)
	require.Equal(t, "ipfs://x", d.PreviewImage)
	require.False(t, d.IsNative)
}

func TestSelect_NotFoundLeavesDraft(t *testing.T) {
	balances := model.Balances{model.FungibleBalance{BalanceBase: base("3"), TokenAddress: "0xfff"}}
	d := Draft{ContractAddress: "0xfff", MaxAmount: "3", Amount: "1"}
	before := d

	require.ErrorIs(t, d.Select("0xnope", balances), ErrAssetNotFound)
	require.ErrorIs(t, d.Select("0xfff-1", balances), ErrAssetNotFound)
	require.ErrorIs(t, d.Select("0xfff-", balances), ErrAssetNotFound)
	require.ErrorIs(t, d.Select("native", balances), ErrAssetNotFound)
	require.Equal(t, before, d)
}

func TestSelect_ClearsPreviousNFT(t *testing.T) {
	balances := model.Balances{
		model.NFTBalance{BalanceBase: base("1"), TokenAddress: "0xABC", TokenID: "5", Metadata: &model.NFTMetadata{Image: "ipfs://x"}},
		model.FungibleBalance{BalanceBase: base("3"), TokenAddress: "0xfff"},
	}
	var d Draft
	require.NoError(t, d.Select("0xABC-5", balances))

	require.NoError(t, d.Select("0xfff", balances))
	require.Empty(t, d.TokenID)
	require.Empty(t, d.PreviewImage)
	require.Equal(t, "3", d.MaxAmount)
}

func TestSetAmount(t *testing.T) {
	var d Draft
	require.ErrorIs(t, d.SetAmount("1"), ErrNoAssetSelected)

	require.NoError(t, d.Select("native", model.Balances{model.NativeBalance{BalanceBase: base("10")}}))
	require.NoError(t, d.SetAmount("10"))
	require.NoError(t, d.SetAmount("0.000000000000000001"))

	require.ErrorIs(t, d.SetAmount("10.000000000000000001"), ErrAmountExceedsMax)
	require.ErrorIs(t, d.SetAmount("0"), ErrInvalidAmount)
	require.ErrorIs(t, d.SetAmount("-1"), ErrInvalidAmount)
	require.ErrorIs(t, d.SetAmount("abc"), ErrInvalidAmount)
	require.ErrorIs(t, d.SetAmount(""), ErrInvalidAmount)
	require.Equal(t, "0.000000000000000001", d.Amount)
}

func TestPayload_Shapes(t *testing.T) {
	balances := model.Balances{
		model.NativeBalance{BalanceBase: base("10")},
		model.FungibleBalance{BalanceBase: base("3"), TokenAddress: "0xfff", Details: &model.TokenDetails{Symbol: "USDC"}},
		model.MultitokenBalance{BalanceBase: base("4"), TokenAddress: "0xmmm", TokenID: "2", Details: &model.TokenDetails{Symbol: "GEM"}},
		model.NFTBalance{BalanceBase: base("1"), TokenAddress: "0xABC", TokenID: "5"},
	}

	tests := []struct {
		name      string
		selection string
		amount    string
		want      model.TransferPayload
	}{
		{
			name:      "native",
			selection: "native",
			amount:    "2.5",
			want:      model.NativeTransferPayload{PrivateKey: "pk", ToAddress: evmRecipient, Amount: "2.5", Currency: "MATIC"},
		},
		{
			name:      "fungible",
			selection: "0xfff",
			amount:    "3",
			want:      model.TokenTransferPayload{PrivateKey: "pk", ContractAddress: "0xfff", ToAddress: evmRecipient, Amount: "3"},
		},
		{
			name:      "multitoken by address",
			selection: "0xmmm",
			amount:    "1",
			want:      model.TokenTransferPayload{PrivateKey: "pk", ContractAddress: "0xmmm", ToAddress: evmRecipient, Amount: "1"},
		},
		{
			name:      "nft strips id suffix",
			selection: "0xABC-5",
			want:      model.NFTTransferPayload{PrivateKey: "pk", ContractAddress: "0xABC", ToAddress: evmRecipient, TokenID: "5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Draft
			require.NoError(t, d.Select(tt.selection, balances))
			require.NoError(t, d.SetRecipient(evmRecipient))
			if tt.amount != "" {
				require.NoError(t, d.SetAmount(tt.amount))
			}

			got, err := d.Payload("pk", "MATIC")
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPayload_Errors(t *testing.T) {
	var d Draft
	_, err := d.Payload("pk", "MATIC")
	require.ErrorIs(t, err, ErrNoAssetSelected)

	require.NoError(t, d.Select("native", model.Balances{model.NativeBalance{BalanceBase: base("10")}}))
	_, err = d.Payload("pk", "MATIC")
	require.ErrorIs(t, err, ErrInvalidRecipient)

	require.NoError(t, d.SetRecipient(evmRecipient))
	_, err = d.Payload("pk", "MATIC")
	require.ErrorIs(t, err, ErrInvalidAmount)

	// amount typed directly past SetAmount is still checked
	d.Amount = "11"
	_, err = d.Payload("pk", "MATIC")
	require.ErrorIs(t, err, ErrAmountExceedsMax)
}

func TestSetRecipient_UsesChain(t *testing.T) {
	balances := model.Balances{
		model.NativeBalance{BalanceBase: model.BalanceBase{Chain: "solana", Amount: "1"}},
	}
	var d Draft
	require.NoError(t, d.Select("native", balances))

	require.ErrorIs(t, d.SetRecipient(evmRecipient), ErrInvalidRecipient)
	require.NoError(t, d.SetRecipient("11111111111111111111111111111111"))
}

func TestSelectorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("selection without separator clears token id", prop.ForAll(
		func(addr string, previousID int) bool {
			balances := model.Balances{
				model.NFTBalance{BalanceBase: base("1"), TokenAddress: "0xprev", TokenID: strconv.Itoa(previousID)},
				model.FungibleBalance{BalanceBase: base("5"), TokenAddress: addr},
			}
			var d Draft
			if err := d.Select("0xprev-"+strconv.Itoa(previousID), balances); err != nil {
				return false
			}
			if err := d.Select(addr, balances); err != nil {
				return false
			}
			return d.TokenID == ""
		},
		gen.Identifier(),
		gen.IntRange(0, 1_000_000),
	))

	properties.Property("composite selection takes the suffix as token id", prop.ForAll(
		func(addr string, id int) bool {
			tokenID := strconv.Itoa(id)
			balances := model.Balances{model.NFTBalance{BalanceBase: base("1"), TokenAddress: addr, TokenID: tokenID}}
			var d Draft
			if err := d.Select(addr+"-"+tokenID, balances); err != nil {
				return false
			}
			return d.TokenID == tokenID
		},
		gen.Identifier(),
		gen.IntRange(0, 1_000_000),
	))

	properties.Property("native payload has currency and no contract", prop.ForAll(
		func(limit, amount int) bool {
			balances := model.Balances{model.NativeBalance{BalanceBase: base(strconv.Itoa(limit))}}
			var d Draft
			if d.Select(NativeKey, balances) != nil || d.SetRecipient(evmRecipient) != nil || d.SetAmount(strconv.Itoa(amount)) != nil {
				return false
			}
			p, err := d.Payload("pk", "MATIC")
			if err != nil {
				return false
			}
			fields := payloadFields(t, p)
			_, hasCurrency := fields["currency"]
			_, hasContract := fields["contract_address"]
			return hasCurrency && !hasContract
		},
		gen.IntRange(1000, 2000),
		gen.IntRange(1, 1000),
	))

	properties.Property("nft payload has token id and no amount", prop.ForAll(
		func(addr string, id int) bool {
			tokenID := strconv.Itoa(id)
			balances := model.Balances{model.NFTBalance{BalanceBase: base("1"), TokenAddress: addr, TokenID: tokenID}}
			var d Draft
			if d.Select(addr+"-"+tokenID, balances) != nil || d.SetRecipient(evmRecipient) != nil {
				return false
			}
			p, err := d.Payload("pk", "MATIC")
			if err != nil {
				return false
			}
			fields := payloadFields(t, p)
			_, hasTokenID := fields["token_id"]
			_, hasAmount := fields["amount"]
			return hasTokenID && !hasAmount && fields["contract_address"] == addr
		},
		gen.Identifier(),
		gen.IntRange(0, 1_000_000),
	))

	properties.Property("token payload has amount and no token id", prop.ForAll(
		func(addr string, amount int) bool {
			balances := model.Balances{model.FungibleBalance{BalanceBase: base("1000"), TokenAddress: addr}}
			var d Draft
			if d.Select(addr, balances) != nil || d.SetRecipient(evmRecipient) != nil || d.SetAmount(strconv.Itoa(amount)) != nil {
				return false
			}
			p, err := d.Payload("pk", "MATIC")
			if err != nil {
				return false
			}
			fields := payloadFields(t, p)
			_, hasTokenID := fields["token_id"]
			_, hasAmount := fields["amount"]
			return hasAmount && !hasTokenID
		},
		gen.Identifier(),
		gen.IntRange(1, 1000),
	))

	properties.Property("amount above the maximum is rejected", prop.ForAll(
		func(limit, excess int) bool {
			balances := model.Balances{model.NativeBalance{BalanceBase: base(strconv.Itoa(limit))}}
			var d Draft
			if d.Select(NativeKey, balances) != nil {
				return false
			}
			err := d.SetAmount(strconv.Itoa(limit + excess))
			return err != nil && d.Amount == ""
		},
		gen.IntRange(0, 1_000_000),
		gen.IntRange(1, 1_000_000),
	))

	properties.TestingRun(t)
}
