package domain

import (
	"context"
	"time"
)

// PriceCache provides fast access to recently resolved token prices.
// Keys are (chain, lowercased token address).
type PriceCache interface {
	SetPrice(ctx context.Context, chain ChainID, address string, price float64, ts time.Time) error
	GetPrice(ctx context.Context, chain ChainID, address string) (float64, time.Time, error)
	GetPrices(ctx context.Context, chain ChainID, addresses []string) (map[string]float64, error)
}

// RateLimiter provides distributed rate limiting for the HTTP API.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus provides pub/sub messaging between the poller and the WebSocket
// hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
