// Package compound reads Compound V3 (Comet) supply positions and market
// rates.
package compound

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/calvinwei/defolio/internal/chain"
	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/rates"
	"github.com/calvinwei/defolio/internal/tokens"
)

// market binds a Comet contract to its base asset.
type market struct {
	Symbol   string
	Logo     string
	Comet    string
	Decimals int
}

// markets is keyed by chain ID. The base-asset address is resolved on chain
// via underlying(), with underlyingFallback covering markets where that view
// reverts.
var markets = map[domain.ChainID][]market{
	domain.ChainArbitrum: {
		{
			Symbol:   "USDC.e",
			Logo:     "https://logo.moralis.io/0xa4b1_0xaf88d065e77c8cc2239327c5edb3a432268e5831_01a431622b9a9ca34308038f8d54751b.png",
			Comet:    "0xA5EDBDD9646f8dFF606d7448e414884C7d905dCA",
			Decimals: 6,
		},
		{
			Symbol:   "USDT",
			Logo:     "https://logo.moralis.io/0xa4b1_0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9_00fd48dbec30ef6e8fb563f2b0b82b6a.png",
			Comet:    "0xd98Be00b5D27fc98112BdE293e487f8D4cA57d07",
			Decimals: 6,
		},
		{
			Symbol:   "USDC",
			Logo:     "https://logo.moralis.io/0xa4b1_0xaf88d065e77c8cc2239327c5edb3a432268e5831_01a431622b9a9ca34308038f8d54751b.png",
			Comet:    "0x9c4ec768c28520B50860ea7a15bd7213a9fF58bf",
			Decimals: 6,
		},
	},
}

// underlyingFallback maps Comet contracts to their base asset for markets
// where the underlying() view is not exposed.
var underlyingFallback = map[string]string{
	"0xa5edbdd9646f8dff606d7448e414884c7d905dca": "0xFF970A61A04b1cA14834A43f5dE4533eBDDB5CC8",
	"0xd98be00b5d27fc98112bde293e487f8d4ca57d07": "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9",
	"0x9c4ec768c28520b50860ea7a15bd7213a9ff58bf": "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
}

// Reader implements domain.ProtocolReader for Compound V3.
type Reader struct {
	client *chain.Client
	logger *slog.Logger
}

func NewReader(client *chain.Client, logger *slog.Logger) *Reader {
	return &Reader{
		client: client,
		logger: logger.With(slog.String("protocol", "compound")),
	}
}

func (r *Reader) Protocol() domain.Protocol { return domain.ProtocolCompound }

func (r *Reader) Meta() domain.ProtocolMeta {
	return domain.ProtocolMeta{
		Name: "Compound",
		URL:  "https://app.compound.finance/",
		Logo: "/compound.png",
	}
}

// ReadPositions returns the wallet's Comet supply balances. The Comet
// balanceOf already tracks accrued interest in base units; older markets
// expose exchangeRateStored, which scales the balance when present.
func (r *Reader) ReadPositions(ctx context.Context, wallet string, chainID domain.ChainID) ([]domain.PositionToken, error) {
	list, ok := markets[chainID]
	if !ok {
		return nil, nil
	}

	var (
		mu  sync.Mutex
		out []domain.PositionToken
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range list {
		g.Go(func() error {
			raw, err := r.client.BalanceOf(gctx, chainID, m.Comet, wallet)
			if err != nil {
				r.logger.WarnContext(gctx, "comet balance read failed",
					slog.String("symbol", m.Symbol),
					slog.String("error", err.Error()),
				)
				return nil
			}
			if raw.Sign() <= 0 {
				return nil
			}

			if rate, err := r.client.ExchangeRateStored(gctx, chainID, m.Comet); err == nil {
				raw = chain.WadMul(raw, rate)
			}

			balance := chain.FormatUnits(raw, m.Decimals)
			if balance <= 0 {
				return nil
			}

			var apy float64
			if s, err := r.supplyAPY(gctx, chainID, m.Comet); err != nil {
				r.logger.WarnContext(gctx, "supply rate read failed",
					slog.String("symbol", m.Symbol),
					slog.String("error", err.Error()),
				)
			} else {
				apy = s
			}

			mu.Lock()
			out = append(out, domain.PositionToken{
				TokenType: "supplied",
				Symbol:    m.Symbol,
				Logo:      m.Logo,
				Address:   r.underlying(gctx, chainID, m),
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
	return out, nil
}

// Markets returns supply and borrow APY per Comet market on the chain.
func (r *Reader) Markets(ctx context.Context, chainID domain.ChainID) ([]domain.MarketRate, error) {
	list, ok := markets[chainID]
	if !ok {
		return nil, nil
	}

	out := make([]domain.MarketRate, len(list))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range list {
		g.Go(func() error {
			rate := domain.MarketRate{
				Protocol: domain.ProtocolCompound,
				Symbol:   m.Symbol,
				Logo:     m.Logo,
				Address:  r.underlying(gctx, chainID, m),
			}
			util, err := r.client.GetUtilization(gctx, chainID, m.Comet)
			if err != nil {
				r.logger.WarnContext(gctx, "utilization read failed",
					slog.String("symbol", m.Symbol),
					slog.String("error", err.Error()),
				)
				out[i] = rate
				return nil
			}
			if s, err := r.client.GetSupplyRate(gctx, chainID, m.Comet, util); err == nil {
				rate.SupplyAPY = rates.PerSecondToAPY(s)
			}
			if b, err := r.client.GetBorrowRate(gctx, chainID, m.Comet, util); err == nil {
				rate.BorrowAPY = rates.PerSecondToAPY(b)
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

func (r *Reader) supplyAPY(ctx context.Context, chainID domain.ChainID, comet string) (float64, error) {
	util, err := r.client.GetUtilization(ctx, chainID, comet)
	if err != nil {
		return 0, err
	}
	rate, err := r.client.GetSupplyRate(ctx, chainID, comet, util)
	if err != nil {
		return 0, err
	}
	return rates.PerSecondToAPY(rate), nil
}

// underlying resolves the market's base asset, preferring the on-chain view
// and falling back to the static map, then to the symbol table.
func (r *Reader) underlying(ctx context.Context, chainID domain.ChainID, m market) string {
	if addr, err := r.client.Underlying(ctx, chainID, m.Comet); err == nil {
		return addr.Hex()
	}
	if addr, ok := underlyingFallback[strings.ToLower(m.Comet)]; ok {
		return addr
	}
	if t, ok := tokens.BySymbol(chainID, m.Symbol); ok {
		return t.Address
	}
	return ""
}
