package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/calvinwei/defolio/internal/domain"
)

// stablecoinFallbacks maps lowercased token addresses to a pegged USD price,
// used when both the cache and the price source come up empty. Supplied
// stablecoin balances should never render as $0 just because a price feed is
// down.
var stablecoinFallbacks = map[string]float64{
	"0xaf88d065e77c8cc2239327c5edb3a432268e5831": 1.0, // USDC
	"0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9": 1.0, // USDT
	"0xda10009cbd5d07dd0cecc66161fc93d7c9000da1": 1.0, // DAI
	"0xff970a61a04b1ca14834a43f5de4533ebddb5cc8": 1.0, // USDC.e
}

// PriceResolver resolves token USD prices through a cache-first chain:
// Redis cache, then the external price source, then the stablecoin fallback
// table. Resolve never returns an error; a token with no price resolves to 0.
type PriceResolver struct {
	cache  domain.PriceCache
	source domain.PriceSource
	logger *slog.Logger
}

// NewPriceResolver creates a PriceResolver. cache may be nil, in which case
// every lookup goes straight to the source.
func NewPriceResolver(cache domain.PriceCache, source domain.PriceSource, logger *slog.Logger) *PriceResolver {
	return &PriceResolver{
		cache:  cache,
		source: source,
		logger: logger,
	}
}

// Resolve returns the USD unit price for a token address.
func (r *PriceResolver) Resolve(ctx context.Context, chain domain.ChainID, address string) float64 {
	lower := strings.ToLower(address)

	if r.cache != nil {
		if price, _, err := r.cache.GetPrice(ctx, chain, lower); err == nil && price > 0 {
			return price
		}
	}

	if r.source != nil {
		price, err := r.source.TokenPrice(ctx, address, chain)
		if err == nil && price > 0 {
			if r.cache != nil {
				if cacheErr := r.cache.SetPrice(ctx, chain, lower, price, time.Now()); cacheErr != nil {
					r.logger.WarnContext(ctx, "price_resolver: cache write failed",
						slog.String("address", lower),
						slog.String("error", cacheErr.Error()),
					)
				}
			}
			return price
		}
		if err != nil {
			r.logger.WarnContext(ctx, "price_resolver: source lookup failed",
				slog.String("address", lower),
				slog.String("error", err.Error()),
			)
		}
	}

	if price, ok := stablecoinFallbacks[lower]; ok {
		return price
	}
	return 0
}

// ResolveMany returns USD unit prices for a batch of addresses, keyed by
// lowercased address. It reads the cache in one round trip and falls back per
// token for the misses.
func (r *PriceResolver) ResolveMany(ctx context.Context, chain domain.ChainID, addresses []string) map[string]float64 {
	out := make(map[string]float64, len(addresses))
	if len(addresses) == 0 {
		return out
	}

	if r.cache != nil {
		cached, err := r.cache.GetPrices(ctx, chain, addresses)
		if err != nil {
			r.logger.WarnContext(ctx, "price_resolver: batch cache read failed",
				slog.String("error", err.Error()),
			)
		} else {
			for addr, price := range cached {
				if price > 0 {
					out[addr] = price
				}
			}
		}
	}

	for _, addr := range addresses {
		lower := strings.ToLower(addr)
		if _, ok := out[lower]; ok {
			continue
		}
		out[lower] = r.Resolve(ctx, chain, addr)
	}
	return out
}
