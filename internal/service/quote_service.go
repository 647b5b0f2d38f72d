package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calvinwei/defolio/internal/crypto"
	"github.com/calvinwei/defolio/internal/domain"
)

// QuoteFetcher fetches a firm swap quote. The production implementation is
// the 0x client.
type QuoteFetcher interface {
	GetQuote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error)
}

// QuoteService validates swap-quote requests and debounces rapid request
// bursts. Each taker has a generation counter: a new request supersedes any
// in-flight one, which then fails with domain.ErrQuoteSuperseded instead of
// returning a stale quote.
type QuoteService struct {
	fetcher  QuoteFetcher
	debounce time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	gens map[string]uint64
}

// NewQuoteService creates a QuoteService. debounce is the quiet period a
// request must survive before the upstream fetch is issued.
func NewQuoteService(fetcher QuoteFetcher, debounce time.Duration, logger *slog.Logger) *QuoteService {
	return &QuoteService{
		fetcher:  fetcher,
		debounce: debounce,
		logger:   logger,
		gens:     make(map[string]uint64),
	}
}

// Quote validates the request, waits out the debounce window, and fetches a
// quote. The returned quote carries a fresh ID.
func (s *QuoteService) Quote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	if err := ValidateQuoteRequest(req); err != nil {
		return domain.Quote{}, err
	}

	key := strings.ToLower(req.Taker)
	gen := s.bump(key)

	if s.debounce > 0 {
		timer := time.NewTimer(s.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.Quote{}, fmt.Errorf("quote_service: %w", ctx.Err())
		case <-timer.C:
		}
		if !s.isCurrent(key, gen) {
			return domain.Quote{}, domain.ErrQuoteSuperseded
		}
	}

	quote, err := s.fetcher.GetQuote(ctx, req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("quote_service: fetch: %w", err)
	}
	if !s.isCurrent(key, gen) {
		return domain.Quote{}, domain.ErrQuoteSuperseded
	}

	quote.ID = uuid.NewString()
	s.logger.DebugContext(ctx, "quote_service: quote fetched",
		slog.String("quote_id", quote.ID),
		slog.String("sell_token", quote.SellToken),
		slog.String("buy_token", quote.BuyToken),
	)
	return quote, nil
}

func (s *QuoteService) bump(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[key]++
	return s.gens[key]
}

func (s *QuoteService) isCurrent(key string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key] == gen
}

// ValidateQuoteRequest checks a quote request's addresses, amount, and token
// pair, returning the first domain error found.
func ValidateQuoteRequest(req domain.QuoteRequest) error {
	if !crypto.IsValidAddress(req.SellToken) {
		return fmt.Errorf("quote_service: sell token: %w", domain.ErrInvalidAddress)
	}
	if !crypto.IsValidAddress(req.BuyToken) {
		return fmt.Errorf("quote_service: buy token: %w", domain.ErrInvalidAddress)
	}
	if !crypto.IsValidAddress(req.Taker) {
		return fmt.Errorf("quote_service: taker: %w", domain.ErrInvalidAddress)
	}
	if strings.EqualFold(req.SellToken, req.BuyToken) {
		return fmt.Errorf("quote_service: %w", domain.ErrSameTokenPair)
	}

	amount, ok := new(big.Int).SetString(req.SellAmount, 10)
	if !ok || amount.Sign() <= 0 {
		return fmt.Errorf("quote_service: sell amount %q: %w", req.SellAmount, domain.ErrInvalidAmount)
	}
	return nil
}
