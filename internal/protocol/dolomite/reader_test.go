package dolomite

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/config"
	"github.com/calvinwei/defolio/internal/domain"
)

type fakeYields struct {
	apy float64
	err error
}

func (f *fakeYields) PoolAPY(context.Context, string) (float64, error) {
	return f.apy, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestMarketsUsesPerSymbolDefaults(t *testing.T) {
	// Build the reader the way wiring does, straight from the default
	// portfolio config, so a key that drifts from the token table symbols
	// ("USDC.e") is caught here.
	cfg := config.Defaults()
	r := NewReader(nil, nil, cfg.Portfolio.DefaultAPY, cfg.Portfolio.DefaultAPYBySymbol, testLogger())

	markets, err := r.Markets(context.Background(), domain.ChainArbitrum)
	require.NoError(t, err)
	require.Len(t, markets, 2)

	bySymbol := make(map[string]float64, len(markets))
	for _, m := range markets {
		bySymbol[m.Symbol] = m.SupplyAPY
	}
	assert.InDelta(t, 2.5, bySymbol["USDC"], 1e-9)
	assert.InDelta(t, 2.3, bySymbol["USDC.e"], 1e-9)
}

func TestAPYResolutionOrder(t *testing.T) {
	overrides := map[string]float64{"USDC.e": 2.3}

	// Yield source wins when it returns a positive rate.
	r := NewReader(nil, &fakeYields{apy: 4.2}, 2.0, overrides, testLogger())
	assert.InDelta(t, 4.2, r.apy(context.Background(), "USDC.e"), 1e-9)

	// Yield source failure falls back to the per-symbol override.
	r = NewReader(nil, &fakeYields{err: errors.New("timeout")}, 2.0, overrides, testLogger())
	assert.InDelta(t, 2.3, r.apy(context.Background(), "USDC.e"), 1e-9)

	// No override falls back to the global default.
	assert.InDelta(t, 2.0, r.apy(context.Background(), "WETH"), 1e-9)
}

func TestMarketsUnsupportedChain(t *testing.T) {
	r := NewReader(nil, nil, 2.0, nil, testLogger())

	markets, err := r.Markets(context.Background(), domain.ChainID(1))
	require.NoError(t, err)
	assert.Empty(t, markets)
}
