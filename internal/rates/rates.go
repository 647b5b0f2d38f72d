// Package rates converts protocol-native interest rate encodings into a
// common percent-per-year APY.
package rates

import (
	"math"
	"math/big"
)

// SecondsPerYear is the annualization factor for per-second rates.
const SecondsPerYear = 31_536_000

var (
	rayUnit = new(big.Float).SetFloat64(1e27) // Aave fixed-point scale
	wadUnit = new(big.Float).SetFloat64(1e18) // Compound per-second rate scale
)

// RayToAPY converts an Aave ray-encoded (1e27 fixed point) annual rate to
// percent per year. A nil rate yields 0.
func RayToAPY(ray *big.Int) float64 {
	if ray == nil || ray.Sign() <= 0 {
		return 0
	}
	f := new(big.Float).SetInt(ray)
	f.Quo(f, rayUnit)
	v, _ := f.Float64()
	return sanitize(v * 100)
}

// PerSecondToAPY converts a Compound per-second rate scaled by 1e18 to
// percent per year: (rate/1e18) × secondsPerYear × 100.
func PerSecondToAPY(rate *big.Int) float64 {
	if rate == nil || rate.Sign() <= 0 {
		return 0
	}
	f := new(big.Float).SetInt(rate)
	f.Quo(f, wadUnit)
	v, _ := f.Float64()
	return sanitize(v * SecondsPerYear * 100)
}

// sanitize clamps non-finite and negative values to 0 so a bad rate never
// poisons downstream weighted averages.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
