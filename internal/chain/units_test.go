package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals int
		want     float64
	}{
		{"six decimals", "1500000", 6, 1.5},
		{"eighteen decimals", "2000000000000000000", 18, 2.0},
		{"zero", "0", 6, 0},
		{"sub-unit", "1", 6, 0.000001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := new(big.Int).SetString(tt.raw, 10)
			assert.InDelta(t, tt.want, FormatUnits(v, tt.decimals), 1e-12)
		})
	}
}

func TestFormatUnitsNil(t *testing.T) {
	assert.Zero(t, FormatUnits(nil, 6))
}

func TestWadMul(t *testing.T) {
	// 2.0 * 1.5 = 3.0 in 1e18 fixed point.
	a, _ := new(big.Int).SetString("2000000000000000000", 10)
	b, _ := new(big.Int).SetString("1500000000000000000", 10)
	want, _ := new(big.Int).SetString("3000000000000000000", 10)
	assert.Zero(t, WadMul(a, b).Cmp(want))
}
