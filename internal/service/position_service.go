package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/protocol"
)

// PositionService aggregates a wallet's supply positions across all
// registered protocols.
type PositionService struct {
	registry *protocol.Registry
	prices   *PriceResolver
	logger   *slog.Logger
}

// NewPositionService creates a PositionService.
func NewPositionService(registry *protocol.Registry, prices *PriceResolver, logger *slog.Logger) *PositionService {
	return &PositionService{
		registry: registry,
		prices:   prices,
		logger:   logger,
	}
}

// Positions reads every protocol concurrently and returns the priced,
// merged positions. A protocol whose read fails entirely is logged and
// omitted; the remaining protocols still return. Protocols with no balance
// are excluded.
func (s *PositionService) Positions(ctx context.Context, wallet string, chain domain.ChainID) ([]domain.ProtocolPosition, error) {
	readers := s.registry.All()
	results := make([]*domain.ProtocolPosition, len(readers))

	g, gctx := errgroup.WithContext(ctx)
	for i, reader := range readers {
		g.Go(func() error {
			pos, err := s.readOne(gctx, reader, wallet, chain)
			if err != nil {
				s.logger.WarnContext(gctx, "position_service: protocol read failed",
					slog.String("protocol", string(reader.Protocol())),
					slog.String("wallet", wallet),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = pos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	positions := make([]domain.ProtocolPosition, 0, len(results))
	for _, p := range results {
		if p != nil && len(p.Tokens) > 0 {
			positions = append(positions, *p)
		}
	}
	return positions, nil
}

// PositionFor reads a single protocol's position. Unlike Positions, a read
// failure is returned to the caller.
func (s *PositionService) PositionFor(ctx context.Context, wallet string, chain domain.ChainID, p domain.Protocol) (domain.ProtocolPosition, error) {
	reader, err := s.registry.Get(p)
	if err != nil {
		return domain.ProtocolPosition{}, fmt.Errorf("position_service: protocol %q: %w", p, err)
	}

	pos, err := s.readOne(ctx, reader, wallet, chain)
	if err != nil {
		return domain.ProtocolPosition{}, fmt.Errorf("position_service: read %q: %w", p, err)
	}
	return *pos, nil
}

// readOne reads, prices, and merges one protocol's position.
func (s *PositionService) readOne(ctx context.Context, reader domain.ProtocolReader, wallet string, chain domain.ChainID) (*domain.ProtocolPosition, error) {
	tokens, err := reader.ReadPositions(ctx, wallet, chain)
	if err != nil {
		return nil, err
	}

	if len(tokens) > 0 {
		addrs := make([]string, 0, len(tokens))
		for _, t := range tokens {
			addrs = append(addrs, strings.ToLower(t.Address))
		}
		tokens = PriceTokens(tokens, s.prices.ResolveMany(ctx, chain, addrs))
	}

	pos := BuildPosition(reader.Protocol(), reader.Meta(), tokens)
	return &pos, nil
}

// Markets reads every protocol's market rates concurrently. Failed protocols
// are logged and omitted. Results are ordered by protocol, then symbol.
func (s *PositionService) Markets(ctx context.Context, chain domain.ChainID) ([]domain.MarketRate, error) {
	readers := s.registry.All()
	results := make([][]domain.MarketRate, len(readers))

	g, gctx := errgroup.WithContext(ctx)
	for i, reader := range readers {
		g.Go(func() error {
			rates, err := reader.Markets(gctx, chain)
			if err != nil {
				s.logger.WarnContext(gctx, "position_service: markets read failed",
					slog.String("protocol", string(reader.Protocol())),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = rates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.MarketRate
	for _, rates := range results {
		out = append(out, rates...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Protocol != out[j].Protocol {
			return out[i].Protocol < out[j].Protocol
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out, nil
}

// Projection returns the aggregate monthly compounding curve for a wallet
// across all protocols, using each position's weighted APY.
func (s *PositionService) Projection(ctx context.Context, wallet string, chain domain.ChainID, months int) ([]domain.ProjectionPoint, error) {
	positions, err := s.Positions(ctx, wallet, chain)
	if err != nil {
		return nil, err
	}

	var totalUSD, weighted float64
	for _, p := range positions {
		totalUSD += p.BalanceUSD
		weighted += p.Details.APY * p.BalanceUSD
	}

	var apy float64
	if totalUSD > 0 {
		apy = weighted / totalUSD
	}
	return ProjectionCurve(totalUSD, apy, months), nil
}
