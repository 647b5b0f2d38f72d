package rates

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayToAPY(t *testing.T) {
	tests := []struct {
		name string
		ray  string
		want float64
	}{
		{"five percent", "50000000000000000000000000", 5.0},
		{"zero", "0", 0},
		{"one ray is 100 percent", "1000000000000000000000000000", 100.0},
		{"small rate", "1000000000000000000000000", 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray, ok := new(big.Int).SetString(tt.ray, 10)
			require.True(t, ok)
			assert.InDelta(t, tt.want, RayToAPY(ray), 1e-9)
		})
	}
}

func TestRayToAPYNil(t *testing.T) {
	assert.Zero(t, RayToAPY(nil))
	assert.Zero(t, RayToAPY(big.NewInt(-1)))
}

func TestPerSecondToAPY(t *testing.T) {
	// 1585489599 / 1e18 * 31536000 * 100 ≈ 5.00
	got := PerSecondToAPY(big.NewInt(1585489599))
	assert.InDelta(t, 5.0, got, 0.01)
}

func TestPerSecondToAPYZero(t *testing.T) {
	assert.Zero(t, PerSecondToAPY(nil))
	assert.Zero(t, PerSecondToAPY(big.NewInt(0)))
}

func TestSanitize(t *testing.T) {
	assert.Zero(t, sanitize(math.NaN()))
	assert.Zero(t, sanitize(math.Inf(1)))
	assert.Zero(t, sanitize(-3))
	assert.Equal(t, 4.2, sanitize(4.2))
}
