// Package dolomite reads DolomiteMargin account balances. Dolomite does not
// expose interest rates through the views used here, so APY comes from an
// external yield source keyed by pool ID, with configured defaults when the
// source is unavailable.
package dolomite

import (
	"context"
	"log/slog"

	"github.com/calvinwei/defolio/internal/chain"
	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/tokens"
)

// margins maps chain ID to the DolomiteMargin contract.
var margins = map[domain.ChainID]string{
	domain.ChainArbitrum: "0x6Bd780E7fDf01D77e4d475c821f1e7AE05409072",
}

// poolIDs maps token symbols to their yield-tracker pool IDs on Arbitrum.
var poolIDs = map[string]string{
	"USDC.e": "6f007481-cd58-4b32-bac3-1ce9f19a3a07",
	"USDC":   "d0e11625-79b9-40e3-b01f-a473af961995",
}

// Reader implements domain.ProtocolReader for DolomiteMargin.
type Reader struct {
	client      *chain.Client
	yields      domain.YieldSource
	defaultAPY  float64
	apyBySymbol map[string]float64
	logger      *slog.Logger
}

// NewReader creates a Dolomite reader. yields may be nil, in which case every
// token falls back to the configured default APY.
func NewReader(client *chain.Client, yields domain.YieldSource, defaultAPY float64, apyBySymbol map[string]float64, logger *slog.Logger) *Reader {
	return &Reader{
		client:      client,
		yields:      yields,
		defaultAPY:  defaultAPY,
		apyBySymbol: apyBySymbol,
		logger:      logger.With(slog.String("protocol", "dolomite")),
	}
}

func (r *Reader) Protocol() domain.Protocol { return domain.ProtocolDolomite }

func (r *Reader) Meta() domain.ProtocolMeta {
	return domain.ProtocolMeta{
		Name: "Dolomite",
		URL:  "https://app.dolomite.io/",
		Logo: "/dolomite.png",
	}
}

// ReadPositions returns the wallet's positive Dolomite balances for tokens in
// the supported token table. Balances come back as Wei values with a sign
// flag; negative balances are borrows and are excluded.
func (r *Reader) ReadPositions(ctx context.Context, wallet string, chainID domain.ChainID) ([]domain.PositionToken, error) {
	margin, ok := margins[chainID]
	if !ok {
		return nil, nil
	}

	balances, err := r.client.GetAccountBalances(ctx, chainID, margin, wallet)
	if err != nil {
		return nil, err
	}

	var out []domain.PositionToken
	for i, addr := range balances.Tokens {
		if i >= len(balances.Weis) {
			break
		}
		wei := balances.Weis[i]
		if !wei.Sign || wei.Value == nil || wei.Value.Sign() <= 0 {
			continue
		}

		token, ok := tokens.ByAddress(chainID, addr.Hex())
		if !ok {
			continue
		}

		balance := chain.FormatUnits(wei.Value, token.Decimals)
		if balance <= 0 {
			continue
		}

		out = append(out, domain.PositionToken{
			TokenType: "supplied",
			Symbol:    token.Symbol,
			Logo:      token.LogoURI,
			Address:   token.Address,
			Balance:   balance,
			APY:       r.apy(ctx, token.Symbol),
		})
	}
	return out, nil
}

// Markets returns the yield-source supply APY for each token with a tracked
// pool. Dolomite borrow rates are not surfaced.
func (r *Reader) Markets(ctx context.Context, chainID domain.ChainID) ([]domain.MarketRate, error) {
	if _, ok := margins[chainID]; !ok {
		return nil, nil
	}

	var out []domain.MarketRate
	for symbol := range poolIDs {
		token, ok := tokens.BySymbol(chainID, symbol)
		if !ok {
			continue
		}
		out = append(out, domain.MarketRate{
			Protocol:  domain.ProtocolDolomite,
			Symbol:    token.Symbol,
			Logo:      token.LogoURI,
			Address:   token.Address,
			SupplyAPY: r.apy(ctx, symbol),
		})
	}
	return out, nil
}

// apy resolves a token's APY from the yield source, then the per-symbol
// defaults, then the global default.
func (r *Reader) apy(ctx context.Context, symbol string) float64 {
	if r.yields != nil {
		if poolID, ok := poolIDs[symbol]; ok {
			if v, err := r.yields.PoolAPY(ctx, poolID); err == nil && v > 0 {
				return v
			} else if err != nil {
				r.logger.WarnContext(ctx, "pool APY lookup failed",
					slog.String("symbol", symbol),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	if v, ok := r.apyBySymbol[symbol]; ok {
		return v
	}
	return r.defaultAPY
}
