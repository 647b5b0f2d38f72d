// Package aave reads Aave V3 supply positions and reserve rates.
package aave

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/calvinwei/defolio/internal/chain"
	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/rates"
)

// asset binds an underlying token to its aToken receipt contract.
type asset struct {
	Symbol     string
	Logo       string
	Underlying string
	AToken     string
	Decimals   int
}

// deployment holds the Aave V3 contract set for one chain.
type deployment struct {
	Pool   string
	Assets []asset
}

// deployments is keyed by chain ID. Only Arbitrum One is deployed today.
var deployments = map[domain.ChainID]deployment{
	domain.ChainArbitrum: {
		Pool: "0x794a61358D6845594F94dc1DB02A252b5b4814aD",
		Assets: []asset{
			{
				Symbol:     "USDC",
				Logo:       "https://logo.moralis.io/0xa4b1_0xaf88d065e77c8cc2239327c5edb3a432268e5831_01a431622b9a9ca34308038f8d54751b.png",
				Underlying: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
				AToken:     "0x724dc807b04555b71ed48a6896b6F41593b8C637",
				Decimals:   6,
			},
			{
				Symbol:     "USDT",
				Logo:       "https://logo.moralis.io/0xa4b1_0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9_00fd48dbec30ef6e8fb563f2b0b82b6a.png",
				Underlying: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9",
				AToken:     "0x6ab707Aca953eDAeFBc4fD23bA73294241490620",
				Decimals:   6,
			},
			{
				Symbol:     "DAI",
				Logo:       "https://logo.moralis.io/0xa4b1_0xda10009cbd5d07dd0cecc66161fc93d7c9000da1_247e8cebb18c62db70489edbff8cc6d8.png",
				Underlying: "0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1",
				AToken:     "0x82e64f49ed5ec1bc6e43dad4fc8af9bb3a2312ee",
				Decimals:   18,
			},
		},
	},
}

// Reader implements domain.ProtocolReader for Aave V3.
type Reader struct {
	client *chain.Client
	logger *slog.Logger
}

// NewReader creates an Aave reader backed by the given chain client.
func NewReader(client *chain.Client, logger *slog.Logger) *Reader {
	return &Reader{
		client: client,
		logger: logger.With(slog.String("protocol", "aave")),
	}
}

func (r *Reader) Protocol() domain.Protocol { return domain.ProtocolAave }

func (r *Reader) Meta() domain.ProtocolMeta {
	return domain.ProtocolMeta{
		Name: "Aave",
		URL:  "https://app.aave.com/",
		Logo: "/aave.png",
	}
}

// ReadPositions returns the wallet's aToken balances with the current supply
// APY per asset. Each asset is fetched independently; a failing call drops
// only that asset.
func (r *Reader) ReadPositions(ctx context.Context, wallet string, chainID domain.ChainID) ([]domain.PositionToken, error) {
	dep, ok := deployments[chainID]
	if !ok {
		return nil, nil
	}

	var (
		mu     sync.Mutex
		tokens []domain.PositionToken
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range dep.Assets {
		g.Go(func() error {
			raw, err := r.client.BalanceOf(gctx, chainID, a.AToken, wallet)
			if err != nil {
				r.logger.WarnContext(gctx, "aToken balance read failed",
					slog.String("symbol", a.Symbol),
					slog.String("error", err.Error()),
				)
				return nil
			}

			balance := chain.FormatUnits(raw, a.Decimals)
			if balance <= 0 {
				return nil
			}

			// Supply APY comes from the reserve's current liquidity
			// rate; a failed read degrades the token to APY 0.
			var apy float64
			if rd, err := r.client.GetReserveData(gctx, chainID, dep.Pool, a.Underlying); err != nil {
				r.logger.WarnContext(gctx, "reserve data read failed",
					slog.String("symbol", a.Symbol),
					slog.String("error", err.Error()),
				)
			} else {
				apy = rates.RayToAPY(rd.CurrentLiquidityRate)
			}

			mu.Lock()
			tokens = append(tokens, domain.PositionToken{
				TokenType: "supplied",
				Symbol:    a.Symbol,
				Logo:      a.Logo,
				Address:   a.Underlying,
				Balance:   balance,
				APY:       apy,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Markets returns supply and borrow APY per Aave reserve on the chain.
func (r *Reader) Markets(ctx context.Context, chainID domain.ChainID) ([]domain.MarketRate, error) {
	dep, ok := deployments[chainID]
	if !ok {
		return nil, nil
	}

	out := make([]domain.MarketRate, len(dep.Assets))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range dep.Assets {
		g.Go(func() error {
			rate := domain.MarketRate{
				Protocol: domain.ProtocolAave,
				Symbol:   a.Symbol,
				Logo:     a.Logo,
				Address:  a.Underlying,
			}
			rd, err := r.client.GetReserveData(gctx, chainID, dep.Pool, a.Underlying)
			if err != nil {
				r.logger.WarnContext(gctx, "reserve data read failed",
					slog.String("symbol", a.Symbol),
					slog.String("error", err.Error()),
				)
			} else {
				rate.SupplyAPY = rates.RayToAPY(rd.CurrentLiquidityRate)
				rate.BorrowAPY = rates.RayToAPY(rd.CurrentVariableBorrowRate)
			}
			out[i] = rate
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
