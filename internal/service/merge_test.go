package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/domain"
)

func TestBuildPositionWeightedAPY(t *testing.T) {
	pos := BuildPosition(domain.ProtocolAave, domain.ProtocolMeta{Name: "Aave"}, []domain.PositionToken{
		{Symbol: "USDC", BalanceUSD: 300, APY: 4.0},
		{Symbol: "DAI", BalanceUSD: 100, APY: 8.0},
	})

	assert.InDelta(t, 400, pos.BalanceUSD, 1e-9)
	// (4*300 + 8*100) / 400 = 5.0
	assert.InDelta(t, 5.0, pos.Details.APY, 1e-9)
	assert.Greater(t, pos.Details.ProjectedEarningsUSD, 0.0)
}

func TestBuildPositionZeroBalance(t *testing.T) {
	pos := BuildPosition(domain.ProtocolCompound, domain.ProtocolMeta{}, []domain.PositionToken{
		{Symbol: "USDT", BalanceUSD: 0, APY: 3.0},
	})

	assert.Zero(t, pos.BalanceUSD)
	assert.Zero(t, pos.Details.APY)
	assert.Zero(t, pos.Details.ProjectedEarningsUSD)
}

func TestBuildPositionEmpty(t *testing.T) {
	pos := BuildPosition(domain.ProtocolDolomite, domain.ProtocolMeta{}, nil)
	assert.Zero(t, pos.BalanceUSD)
	assert.Zero(t, pos.Details.APY)
}

func TestPriceTokens(t *testing.T) {
	tokens := []domain.PositionToken{
		{Address: "0xABC", Balance: 2},
		{Address: "0xdef", Balance: 3},
		{Address: "0x999", Balance: 5},
	}
	prices := map[string]float64{
		"0xabc": 1.0,
		"0xdef": 2.0,
	}

	priced := PriceTokens(tokens, prices)
	require.Len(t, priced, 3)
	assert.InDelta(t, 2.0, priced[0].BalanceUSD, 1e-9)
	assert.InDelta(t, 6.0, priced[1].BalanceUSD, 1e-9)
	assert.Zero(t, priced[2].BalanceUSD)
}
