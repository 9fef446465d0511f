package model

import "encoding/json"

// TransferPayload is the body of POST /transferir.
// Exactly one of NativeTransferPayload, TokenTransferPayload or NFTTransferPayload.
type TransferPayload interface {
	Shape() string
	isTransferPayload()
}

// NativeTransferPayload moves the chain's base currency
type NativeTransferPayload struct {
	PrivateKey string `json:"private_key"`
	ToAddress  string `json:"to_address"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
}

// TokenTransferPayload moves fungible or multitoken balances
type TokenTransferPayload struct {
	PrivateKey      string `json:"private_key"`
	ContractAddress string `json:"contract_address"`
	ToAddress       string `json:"to_address"`
	Amount          string `json:"amount"`
}

// NFTTransferPayload moves a single NFT
type NFTTransferPayload struct {
	PrivateKey      string `json:"private_key"`
	ContractAddress string `json:"contract_address"`
	ToAddress       string `json:"to_address"`
	TokenID         string `json:"token_id"`
}

func (NativeTransferPayload) Shape() string { return "native" }
func (TokenTransferPayload) Shape() string  { return "token" }
func (NFTTransferPayload) Shape() string    { return "nft" }

func (NativeTransferPayload) isTransferPayload() {}
func (TokenTransferPayload) isTransferPayload()  {}
func (NFTTransferPayload) isTransferPayload()    {}

// TransferForm represents request for POST /api/transfer
type TransferForm struct {
	Asset     string `json:"asset"`
	ToAddress string `json:"to_address"`
	Amount    string `json:"amount,omitempty"`
}

// TransferResponse represents response for POST /api/transfer
type TransferResponse struct {
	Shape  string          `json:"shape"`
	Result json.RawMessage `json:"result" swaggertype:"object"`
}
