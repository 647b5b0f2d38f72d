package domain

// WalletAsset is one token (native or ERC-20) held directly in a wallet,
// with its resolved USD price.
type WalletAsset struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Logo     string  `json:"logo"`
	Address  string  `json:"address"` // empty for the native asset
	Decimals int     `json:"decimals"`
	Balance  float64 `json:"balance"`
	USDPrice float64 `json:"usdPrice"`
	USDValue float64 `json:"usdValue"`
	Native   bool    `json:"native"`
}

// CostBasisEntry is a user-entered purchase price for a token, stored in the
// external spreadsheet-backed cost-basis service.
type CostBasisEntry struct {
	TokenAddress string `json:"tokenAddress"`
	TokenSymbol  string `json:"tokenSymbol"`
	CostPrice    string `json:"costPrice"`
}
