package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/calvinwei/defolio/internal/domain"
)

// PriceCache implements domain.PriceCache using Redis hashes. Each token's
// price is stored at "price:{chainID}:{address}" with fields "price" and "ts"
// (Unix nanosecond timestamp), expiring after the configured TTL.
type PriceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPriceCache creates a PriceCache backed by the given Client.
func NewPriceCache(c *Client, ttl time.Duration) *PriceCache {
	return &PriceCache{rdb: c.Underlying(), ttl: ttl}
}

func priceKey(chain domain.ChainID, address string) string {
	return fmt.Sprintf("price:%d:%s", chain, strings.ToLower(address))
}

// SetPrice stores the latest price and timestamp for a token.
func (pc *PriceCache) SetPrice(ctx context.Context, chain domain.ChainID, address string, price float64, ts time.Time) error {
	key := priceKey(chain, address)
	fields := map[string]interface{}{
		"price": strconv.FormatFloat(price, 'f', -1, 64),
		"ts":    strconv.FormatInt(ts.UnixNano(), 10),
	}

	pipe := pc.rdb.Pipeline()
	pipe.HSet(ctx, key, fields)
	if pc.ttl > 0 {
		pipe.Expire(ctx, key, pc.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set price %s: %w", address, err)
	}
	return nil
}

// GetPrice retrieves the cached price and timestamp for a token. It returns
// domain.ErrNotFound when the key does not exist or has expired.
func (pc *PriceCache) GetPrice(ctx context.Context, chain domain.ChainID, address string) (float64, time.Time, error) {
	key := priceKey(chain, address)
	vals, err := pc.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: get price %s: %w", address, err)
	}
	if len(vals) == 0 {
		return 0, time.Time{}, domain.ErrNotFound
	}

	priceStr, ok := vals["price"]
	if !ok {
		return 0, time.Time{}, domain.ErrNotFound
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse price %s: %w", address, err)
	}

	tsStr, ok := vals["ts"]
	if !ok {
		return 0, time.Time{}, domain.ErrNotFound
	}
	tsNano, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse ts %s: %w", address, err)
	}

	return price, time.Unix(0, tsNano), nil
}

// GetPrices retrieves cached prices for multiple tokens using a pipeline.
// Tokens with no cached price are silently omitted from the result map, which
// is keyed by lowercased address.
func (pc *PriceCache) GetPrices(ctx context.Context, chain domain.ChainID, addresses []string) (map[string]float64, error) {
	if len(addresses) == 0 {
		return map[string]float64{}, nil
	}

	pipe := pc.rdb.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(addresses))
	for _, addr := range addresses {
		lower := strings.ToLower(addr)
		cmds[lower] = pipe.HGetAll(ctx, priceKey(chain, lower))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: get prices pipeline: %w", err)
	}

	result := make(map[string]float64, len(addresses))
	for addr, cmd := range cmds {
		vals, err := cmd.Result()
		if err != nil || len(vals) == 0 {
			continue
		}
		priceStr, ok := vals["price"]
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			continue
		}
		result[addr] = price
	}

	return result, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)
