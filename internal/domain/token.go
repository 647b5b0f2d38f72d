package domain

import "fmt"

// ChainID identifies an EVM chain by its numeric chain ID.
type ChainID int64

const (
	ChainEthereum ChainID = 1
	ChainArbitrum ChainID = 42161
)

// Hex returns the chain ID in 0x-prefixed hex form, the encoding expected by
// the Moralis API (e.g. 42161 -> "0xa4b1").
func (c ChainID) Hex() string {
	return fmt.Sprintf("0x%x", int64(c))
}

// Token describes an ERC-20 token tracked by the aggregator. Tokens are
// defined in static configuration and never mutated at runtime.
type Token struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
	LogoURI  string `json:"logoURI"`

	// MarketAddress is the protocol-specific market or receipt-token
	// contract (aToken, Comet market, cToken) that holds the deposit.
	MarketAddress string `json:"marketAddress,omitempty"`

	// PoolID keys the token's pool in the external yield API, for
	// protocols with no on-chain rate read.
	PoolID string `json:"poolId,omitempty"`

	// MinAmount is the smallest sellable amount in token units, used by
	// swap input validation.
	MinAmount string `json:"minAmount,omitempty"`
}
