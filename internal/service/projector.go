package service

import (
	"math"

	"github.com/calvinwei/defolio/internal/domain"
)

// ProjectionCurve returns a month-by-month compounding projection of a USD
// balance at the given APY, from month 0 (the starting balance, unchanged)
// through the given number of months inclusive. Compounding is monthly.
// Values are exact; any display rounding belongs to the caller.
func ProjectionCurve(balanceUSD, apy float64, months int) []domain.ProjectionPoint {
	if months < 0 {
		months = 0
	}
	monthly := apy / 100 / 12

	out := make([]domain.ProjectionPoint, 0, months+1)
	for m := 0; m <= months; m++ {
		out = append(out, domain.ProjectionPoint{
			Month:    m,
			ValueUSD: balanceUSD * math.Pow(1+monthly, float64(m)),
		})
	}
	return out
}

// ProjectEarnings returns the earnings (growth minus principal) a USD balance
// accrues over the given number of months at the given APY.
func ProjectEarnings(balanceUSD, apy float64, months int) float64 {
	if balanceUSD <= 0 || apy <= 0 || months <= 0 {
		return 0
	}
	monthly := apy / 100 / 12
	return balanceUSD*math.Pow(1+monthly, float64(months)) - balanceUSD
}
