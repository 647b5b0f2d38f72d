package domain

import "context"

// ProtocolReader reads a wallet's supply positions and the protocol's market
// rates from one lending protocol. Implementations must degrade per token:
// one failing contract call may drop that token from the result but must not
// fail the whole read.
type ProtocolReader interface {
	// Protocol returns the identifier used for registry lookup.
	Protocol() Protocol

	// Meta returns display metadata for the protocol.
	Meta() ProtocolMeta

	// ReadPositions returns the wallet's supplied tokens with raw balances
	// and per-token APY. A chain without a deployment yields an empty
	// slice and a nil error. Zero-balance tokens are omitted.
	ReadPositions(ctx context.Context, wallet string, chain ChainID) ([]PositionToken, error)

	// Markets returns per-asset supply/borrow rates for the protocol's
	// markets on the given chain.
	Markets(ctx context.Context, chain ChainID) ([]MarketRate, error)
}

// PriceSource resolves a token contract address to a USD unit price.
type PriceSource interface {
	TokenPrice(ctx context.Context, address string, chain ChainID) (float64, error)
}

// YieldSource returns the current APY for an externally tracked pool.
type YieldSource interface {
	PoolAPY(ctx context.Context, poolID string) (float64, error)
}
