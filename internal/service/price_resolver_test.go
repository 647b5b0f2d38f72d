package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/calvinwei/defolio/internal/domain"
)

type fakePriceCache struct {
	mu     sync.Mutex
	prices map[string]float64
}

func newFakePriceCache() *fakePriceCache {
	return &fakePriceCache{prices: make(map[string]float64)}
}

func (c *fakePriceCache) SetPrice(_ context.Context, _ domain.ChainID, address string, price float64, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[strings.ToLower(address)] = price
	return nil
}

func (c *fakePriceCache) GetPrice(_ context.Context, _ domain.ChainID, address string) (float64, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.prices[strings.ToLower(address)]
	if !ok {
		return 0, time.Time{}, domain.ErrNotFound
	}
	return p, time.Now(), nil
}

func (c *fakePriceCache) GetPrices(_ context.Context, _ domain.ChainID, addresses []string) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]float64)
	for _, a := range addresses {
		if p, ok := c.prices[strings.ToLower(a)]; ok {
			out[strings.ToLower(a)] = p
		}
	}
	return out, nil
}

type fakePriceSource struct {
	prices map[string]float64
	calls  int
}

func (s *fakePriceSource) TokenPrice(_ context.Context, address string, _ domain.ChainID) (float64, error) {
	s.calls++
	p, ok := s.prices[strings.ToLower(address)]
	if !ok {
		return 0, errors.New("upstream unavailable")
	}
	return p, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestResolveCacheHitSkipsSource(t *testing.T) {
	cache := newFakePriceCache()
	_ = cache.SetPrice(context.Background(), domain.ChainArbitrum, "0xabc", 1.23, time.Now())
	source := &fakePriceSource{}

	r := NewPriceResolver(cache, source, testLogger())
	price := r.Resolve(context.Background(), domain.ChainArbitrum, "0xABC")

	assert.InDelta(t, 1.23, price, 1e-9)
	assert.Zero(t, source.calls)
}

func TestResolveSourceBackfillsCache(t *testing.T) {
	cache := newFakePriceCache()
	source := &fakePriceSource{prices: map[string]float64{"0xabc": 2.5}}

	r := NewPriceResolver(cache, source, testLogger())
	assert.InDelta(t, 2.5, r.Resolve(context.Background(), domain.ChainArbitrum, "0xabc"), 1e-9)

	cached, _, err := cache.GetPrice(context.Background(), domain.ChainArbitrum, "0xabc")
	assert.NoError(t, err)
	assert.InDelta(t, 2.5, cached, 1e-9)
}

func TestResolveStablecoinFallback(t *testing.T) {
	r := NewPriceResolver(newFakePriceCache(), &fakePriceSource{}, testLogger())

	// USDC falls back to its peg when the source is down.
	price := r.Resolve(context.Background(), domain.ChainArbitrum, "0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	assert.InDelta(t, 1.0, price, 1e-9)

	// An unknown token resolves to zero instead of erroring.
	assert.Zero(t, r.Resolve(context.Background(), domain.ChainArbitrum, "0x0000000000000000000000000000000000000001"))
}

func TestResolveMany(t *testing.T) {
	cache := newFakePriceCache()
	_ = cache.SetPrice(context.Background(), domain.ChainArbitrum, "0xaaa", 1.0, time.Now())
	source := &fakePriceSource{prices: map[string]float64{"0xbbb": 2.0}}

	r := NewPriceResolver(cache, source, testLogger())
	prices := r.ResolveMany(context.Background(), domain.ChainArbitrum, []string{"0xAAA", "0xBBB"})

	assert.InDelta(t, 1.0, prices["0xaaa"], 1e-9)
	assert.InDelta(t, 2.0, prices["0xbbb"], 1e-9)
	// Only the cache miss should have hit the source.
	assert.Equal(t, 1, source.calls)
}
