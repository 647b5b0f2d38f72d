package domain

import "time"

// Protocol identifies a supported lending protocol.
type Protocol string

const (
	ProtocolAave     Protocol = "aave"
	ProtocolCompound Protocol = "compound"
	ProtocolDolomite Protocol = "dolomite"
)

// ProtocolMeta carries display metadata for a protocol.
type ProtocolMeta struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Logo string `json:"logo"`
}

// PositionToken is one supplied token inside a protocol position.
type PositionToken struct {
	TokenType  string  `json:"tokenType"` // currently always "supplied"
	Symbol     string  `json:"symbol"`
	Logo       string  `json:"logo"`
	Address    string  `json:"address"`
	Balance    float64 `json:"balance"` // token units
	BalanceUSD float64 `json:"balanceUsd"`
	APY        float64 `json:"apy"` // percent per year
}

// PositionDetails holds derived figures for a protocol position.
type PositionDetails struct {
	APY                  float64  `json:"apy"` // USD-weighted across tokens
	HealthFactor         *float64 `json:"healthFactor,omitempty"`
	ProjectedEarningsUSD float64  `json:"projectedEarningsUsd"`
}

// ProtocolPosition is the normalized view of a wallet's supply position in
// one protocol. It is built fresh on every fetch cycle and has no identity
// beyond that cycle.
type ProtocolPosition struct {
	Protocol   Protocol        `json:"protocolId"`
	Meta       ProtocolMeta    `json:"protocol"`
	BalanceUSD float64         `json:"balanceUsd"`
	Tokens     []PositionToken `json:"tokens"`
	Details    PositionDetails `json:"positionDetails"`
}

// MarketRate is a per-asset supply/borrow rate view for one protocol market,
// independent of any wallet.
type MarketRate struct {
	Protocol  Protocol `json:"protocol"`
	Symbol    string   `json:"symbol"`
	Logo      string   `json:"logo"`
	Address   string   `json:"address"`
	SupplyAPY float64  `json:"supplyApy"`
	BorrowAPY float64  `json:"borrowApy"`
}

// ProjectionPoint is one month of a compounding earnings projection.
type ProjectionPoint struct {
	Month    int     `json:"month"`
	ValueUSD float64 `json:"value"`
}

// Snapshot is a point-in-time record of a wallet's aggregate DeFi balance,
// persisted by the poller for history views.
type Snapshot struct {
	ID        string             `json:"id"`
	Wallet    string             `json:"wallet"`
	ChainID   ChainID            `json:"chainId"`
	TotalUSD  float64            `json:"totalUsd"`
	Positions []ProtocolPosition `json:"positions"`
	TakenAt   time.Time          `json:"takenAt"`
}
