package service

import (
	"strings"

	"github.com/calvinwei/defolio/internal/domain"
)

// BuildPosition assembles a protocol position from priced tokens: sums USD
// balances and computes the USD-weighted APY across tokens. A position with
// zero total USD gets APY 0 rather than a division by zero.
func BuildPosition(protocol domain.Protocol, meta domain.ProtocolMeta, tokens []domain.PositionToken) domain.ProtocolPosition {
	var totalUSD, weighted float64
	for _, t := range tokens {
		totalUSD += t.BalanceUSD
		weighted += t.APY * t.BalanceUSD
	}

	var apy float64
	if totalUSD > 0 {
		apy = weighted / totalUSD
	}

	return domain.ProtocolPosition{
		Protocol:   protocol,
		Meta:       meta,
		BalanceUSD: totalUSD,
		Tokens:     tokens,
		Details: domain.PositionDetails{
			APY:                  apy,
			ProjectedEarningsUSD: ProjectEarnings(totalUSD, apy, 12),
		},
	}
}

// PriceTokens fills in BalanceUSD on each token from the given unit-price
// map, keyed by lowercased address.
func PriceTokens(tokens []domain.PositionToken, prices map[string]float64) []domain.PositionToken {
	out := make([]domain.PositionToken, len(tokens))
	for i, t := range tokens {
		t.BalanceUSD = t.Balance * prices[strings.ToLower(t.Address)]
		out[i] = t
	}
	return out
}
