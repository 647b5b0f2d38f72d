package chain

import "math/big"

// FormatUnits converts a raw integer token amount into display units using
// the token's decimal precision, e.g. 1500000 with 6 decimals -> 1.5.
func FormatUnits(v *big.Int, decimals int) float64 {
	if v == nil || decimals < 0 {
		return 0
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f := new(big.Float).SetInt(v)
	f.Quo(f, scale)
	out, _ := f.Float64()
	return out
}

// WadMul multiplies two 1e18 fixed-point integers, returning the product in
// the same scale. Used for cToken exchange-rate conversion.
func WadMul(a, b *big.Int) *big.Int {
	if a == nil || b == nil {
		return new(big.Int)
	}
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, wad)
}

var wad = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
