package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/tokens"
)

// AssetSource lists a wallet's directly held balances. The production
// implementation is the Moralis client.
type AssetSource interface {
	WalletTokens(ctx context.Context, wallet string, chain domain.ChainID) ([]domain.WalletAsset, error)
	NativeBalance(ctx context.Context, wallet string, chain domain.ChainID) (float64, error)
}

// WalletService lists wallet-held assets with resolved USD values.
type WalletService struct {
	source AssetSource
	prices *PriceResolver
	logger *slog.Logger
}

// NewWalletService creates a WalletService.
func NewWalletService(source AssetSource, prices *PriceResolver, logger *slog.Logger) *WalletService {
	return &WalletService{
		source: source,
		prices: prices,
		logger: logger,
	}
}

// Assets returns the wallet's native and ERC-20 holdings on the chain,
// priced in USD and sorted by USD value descending. A failed native-balance
// read drops only the native entry.
func (s *WalletService) Assets(ctx context.Context, wallet string, chain domain.ChainID) ([]domain.WalletAsset, error) {
	assets, err := s.source.WalletTokens(ctx, wallet, chain)
	if err != nil {
		return nil, fmt.Errorf("wallet_service: list tokens: %w", err)
	}

	addrs := make([]string, 0, len(assets))
	for _, a := range assets {
		addrs = append(addrs, strings.ToLower(a.Address))
	}
	prices := s.prices.ResolveMany(ctx, chain, addrs)

	for i := range assets {
		assets[i].USDPrice = prices[strings.ToLower(assets[i].Address)]
		assets[i].USDValue = assets[i].Balance * assets[i].USDPrice
	}

	if native, err := s.nativeAsset(ctx, wallet, chain); err != nil {
		s.logger.WarnContext(ctx, "wallet_service: native balance read failed",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
	} else if native.Balance > 0 {
		assets = append(assets, native)
	}

	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].USDValue > assets[j].USDValue
	})
	return assets, nil
}

// nativeAsset builds the native-asset entry, priced via the chain's wrapped
// native token.
func (s *WalletService) nativeAsset(ctx context.Context, wallet string, chain domain.ChainID) (domain.WalletAsset, error) {
	balance, err := s.source.NativeBalance(ctx, wallet, chain)
	if err != nil {
		return domain.WalletAsset{}, err
	}

	asset := domain.WalletAsset{
		Symbol:   "ETH",
		Name:     "Ether",
		Decimals: 18,
		Balance:  balance,
		Native:   true,
	}
	if wrapped, ok := tokens.BySymbol(chain, "WETH"); ok {
		asset.Logo = wrapped.LogoURI
		asset.USDPrice = s.prices.Resolve(ctx, chain, wrapped.Address)
	}
	asset.USDValue = asset.Balance * asset.USDPrice
	return asset, nil
}
