package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/domain"
)

const (
	testSellToken = "0xaf88d065e77c8cC2239327C5EDb3A432268e5831"
	testBuyToken  = "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"
	testTaker     = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
}

func (f *fakeFetcher) GetQuote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return domain.Quote{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return domain.Quote{
		SellToken:          req.SellToken,
		BuyToken:           req.BuyToken,
		SellAmount:         req.SellAmount,
		BuyAmount:          "990000",
		LiquidityAvailable: true,
		FetchedAt:          time.Now(),
	}, nil
}

func validRequest() domain.QuoteRequest {
	return domain.QuoteRequest{
		SellToken:  testSellToken,
		BuyToken:   testBuyToken,
		SellAmount: "1000000",
		Taker:      testTaker,
		ChainID:    domain.ChainArbitrum,
	}
}

func TestQuoteSuccess(t *testing.T) {
	s := NewQuoteService(&fakeFetcher{}, 0, testLogger())

	quote, err := s.Quote(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, quote.ID)
	assert.Equal(t, "990000", quote.BuyAmount)
}

func TestQuoteSuperseded(t *testing.T) {
	s := NewQuoteService(&fakeFetcher{}, 50*time.Millisecond, testLogger())

	errs := make(chan error, 1)
	go func() {
		_, err := s.Quote(context.Background(), validRequest())
		errs <- err
	}()

	// Let the first request enter its debounce window, then supersede it.
	time.Sleep(10 * time.Millisecond)
	quote, err := s.Quote(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, quote.ID)

	assert.ErrorIs(t, <-errs, domain.ErrQuoteSuperseded)
}

func TestQuoteDistinctTakersDoNotInterfere(t *testing.T) {
	s := NewQuoteService(&fakeFetcher{}, 20*time.Millisecond, testLogger())

	other := validRequest()
	other.Taker = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, req := range []domain.QuoteRequest{validRequest(), other} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Quote(context.Background(), req)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		assert.NoError(t, err)
	}
}

func TestQuoteCancelledDuringDebounce(t *testing.T) {
	s := NewQuoteService(&fakeFetcher{}, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := s.Quote(ctx, validRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateQuoteRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.QuoteRequest)
		wantErr error
	}{
		{"valid", func(*domain.QuoteRequest) {}, nil},
		{"bad sell token", func(r *domain.QuoteRequest) { r.SellToken = "nope" }, domain.ErrInvalidAddress},
		{"bad buy token", func(r *domain.QuoteRequest) { r.BuyToken = "0x123" }, domain.ErrInvalidAddress},
		{"bad taker", func(r *domain.QuoteRequest) { r.Taker = "" }, domain.ErrInvalidAddress},
		{"same pair", func(r *domain.QuoteRequest) { r.BuyToken = r.SellToken }, domain.ErrSameTokenPair},
		{"zero amount", func(r *domain.QuoteRequest) { r.SellAmount = "0" }, domain.ErrInvalidAmount},
		{"negative amount", func(r *domain.QuoteRequest) { r.SellAmount = "-5" }, domain.ErrInvalidAmount},
		{"non-numeric amount", func(r *domain.QuoteRequest) { r.SellAmount = "1.5e6" }, domain.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := ValidateQuoteRequest(req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
