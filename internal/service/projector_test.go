package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectionCurve(t *testing.T) {
	curve := ProjectionCurve(1000, 12.0, 12)
	require.Len(t, curve, 13)

	assert.Equal(t, 0, curve[0].Month)
	assert.InDelta(t, 1000, curve[0].ValueUSD, 1e-9)

	// 1% monthly on 1000 -> 1010 after one month.
	assert.InDelta(t, 1010, curve[1].ValueUSD, 1e-9)

	// (1.01)^12 = 1.126825...
	assert.Equal(t, 12, curve[12].Month)
	assert.InDelta(t, 1126.83, curve[12].ValueUSD, 0.01)
}

func TestProjectionCurveStartsAtExactBalance(t *testing.T) {
	// Month 0 is the input balance bit for bit, even below one cent.
	for _, balance := range []float64{0.004, 0.0049999, 123.456789} {
		curve := ProjectionCurve(balance, 12.0, 12)
		require.NotEmpty(t, curve)
		assert.Equal(t, balance, curve[0].ValueUSD)
	}
}

func TestProjectionCurveZeroAPY(t *testing.T) {
	curve := ProjectionCurve(500, 0, 6)
	require.Len(t, curve, 7)
	for _, p := range curve {
		assert.InDelta(t, 500, p.ValueUSD, 1e-9)
	}
}

func TestProjectionCurveNegativeMonths(t *testing.T) {
	curve := ProjectionCurve(500, 5, -3)
	require.Len(t, curve, 1)
	assert.Equal(t, 0, curve[0].Month)
}

func TestProjectEarnings(t *testing.T) {
	// 1000 at 1%/month over 12 months earns ~126.83.
	assert.InDelta(t, 126.83, ProjectEarnings(1000, 12.0, 12), 0.01)

	assert.Zero(t, ProjectEarnings(0, 12.0, 12))
	assert.Zero(t, ProjectEarnings(1000, 0, 12))
	assert.Zero(t, ProjectEarnings(1000, 12.0, 0))
}
