package model

// Wallet represents the custodial wallet record returned by GET /wallet
type Wallet struct {
	Address    string `json:"address"`
	PrivateKey string `json:"private_key,omitempty"`
}

// WalletResponse represents response for GET /wallet and POST /wallet.
// POST /wallet answers 400 with the same shape when the user already has a wallet.
type WalletResponse struct {
	Wallet *Wallet `json:"wallet"`
}

// GenerateResponse represents response for POST /wallet/generate on the dashboard JSON surface
type GenerateResponse struct {
	Success bool   `json:"success"`
	Existed bool   `json:"existed"`
	Address string `json:"address,omitempty"`
}
