package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/domain"
)

func TestFilterDustDropsSmallTokens(t *testing.T) {
	h := &DefiHandler{dustUSD: 0.1}

	positions := []domain.ProtocolPosition{
		{
			Protocol:   domain.ProtocolAave,
			BalanceUSD: 100.05,
			Tokens: []domain.PositionToken{
				{Symbol: "USDC", BalanceUSD: 100, APY: 4},
				{Symbol: "DAI", BalanceUSD: 0.05, APY: 10},
			},
		},
	}

	out := h.filterDust(positions)
	require.Len(t, out, 1)
	require.Len(t, out[0].Tokens, 1)
	assert.Equal(t, "USDC", out[0].Tokens[0].Symbol)
	assert.InDelta(t, 100, out[0].BalanceUSD, 1e-9)
	assert.InDelta(t, 4, out[0].Details.APY, 1e-9, "weighted APY recomputed from kept tokens only")
}

func TestFilterDustDropsEmptyPositions(t *testing.T) {
	h := &DefiHandler{dustUSD: 0.1}

	positions := []domain.ProtocolPosition{
		{
			Protocol:   domain.ProtocolDolomite,
			BalanceUSD: 0.08,
			Tokens: []domain.PositionToken{
				{Symbol: "USDC.e", BalanceUSD: 0.08},
			},
		},
	}

	assert.Empty(t, h.filterDust(positions))
}

func TestFilterDustDisabled(t *testing.T) {
	h := &DefiHandler{dustUSD: 0}

	positions := []domain.ProtocolPosition{
		{Tokens: []domain.PositionToken{{BalanceUSD: 0.0001}}},
	}
	assert.Len(t, h.filterDust(positions), 1)
}

func TestQueryChain(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/defi/markets?chain=42161", nil)
	assert.Equal(t, domain.ChainArbitrum, queryChain(r, 1))

	r = httptest.NewRequest("GET", "/api/defi/markets", nil)
	assert.Equal(t, domain.ChainID(1), queryChain(r, 1))

	r = httptest.NewRequest("GET", "/api/defi/markets?chain=abc", nil)
	assert.Equal(t, domain.ChainID(1), queryChain(r, 1))
}

func TestWriteDomainErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrNotFound, 404},
		{domain.ErrInvalidAddress, 400},
		{domain.ErrQuoteSuperseded, 409},
		{domain.ErrNoRoute, 422},
		{domain.ErrMissingAPIKey, 503},
		{domain.ErrRateLimited, 429},
		{assert.AnError, 502},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		writeDomainError(w, tc.err)
		assert.Equal(t, tc.status, w.Code, "error %v", tc.err)
	}
}
