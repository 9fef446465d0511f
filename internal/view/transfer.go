package view

import (
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/transfer"
)

// TransferPage is the data of the transfer form
type TransferPage struct {
	Form    model.TransferForm
	Options []transfer.Option
	Draft   transfer.Draft
	// Preview is the selected NFT's image, resolved through the gateway
	Preview string
}

// NewTransferPage builds the form for balances, re-selecting form.Asset when set
func NewTransferPage(balances model.Balances, currency, gateway string, form model.TransferForm) TransferPage {
	p := TransferPage{
		Form:    form,
		Options: transfer.Options(balances, currency),
	}
	if form.Asset != "" && p.Draft.Select(form.Asset, balances) == nil && p.Draft.PreviewImage != "" {
		p.Preview = ResolveImage(p.Draft.PreviewImage, gateway)
	}
	return p
}
