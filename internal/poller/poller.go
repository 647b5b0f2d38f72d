// Package poller runs the background aggregation loop: it refreshes watched
// wallets on an interval, records snapshots, publishes updates on the signal
// bus, and raises alerts.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/notify"
	"github.com/calvinwei/defolio/internal/service"
	"github.com/calvinwei/defolio/internal/tokens"
)

// pruneInterval bounds how often snapshot retention is enforced.
const pruneInterval = 24 * time.Hour

// Signal bus channels the poller publishes on. The WebSocket hub forwards
// them to connected clients.
const (
	channelPrices    = "prices"
	channelPositions = "positions"
	channelSnapshots = "snapshots"
)

// PositionLister reads a wallet's current positions.
type PositionLister interface {
	Positions(ctx context.Context, wallet string, chain domain.ChainID) ([]domain.ProtocolPosition, error)
}

// SnapshotRecorder persists snapshots and enforces retention. May be nil when
// the poller runs without persistence.
type SnapshotRecorder interface {
	Take(ctx context.Context, wallet string, chain domain.ChainID) (domain.Snapshot, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Config holds the poller's runtime parameters.
type Config struct {
	Wallets         []string
	Chain           domain.ChainID
	Interval        time.Duration
	Retention       time.Duration
	MinHealthFactor float64
}

// Poller is the background refresh loop.
type Poller struct {
	cfg       Config
	positions PositionLister
	snapshots SnapshotRecorder
	prices    *service.PriceResolver
	bus       domain.SignalBus
	notifier  *notify.Notifier
	logger    *slog.Logger

	lastPrune time.Time
}

// New creates a Poller. snapshots and notifier may be nil.
func New(cfg Config, positions PositionLister, snapshots SnapshotRecorder, prices *service.PriceResolver, bus domain.SignalBus, notifier *notify.Notifier, logger *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &Poller{
		cfg:       cfg,
		positions: positions,
		snapshots: snapshots,
		prices:    prices,
		bus:       bus,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "poller")),
	}
}

// Run executes one cycle immediately, then repeats on the configured interval
// until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if len(p.cfg.Wallets) == 0 {
		return fmt.Errorf("poller: no wallets to watch")
	}

	p.logger.InfoContext(ctx, "poller started",
		slog.Int("wallets", len(p.cfg.Wallets)),
		slog.Duration("interval", p.cfg.Interval),
	)

	p.runOnce(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

// runOnce refreshes every watched wallet. A failing wallet is logged and
// skipped so the others still refresh.
func (p *Poller) runOnce(ctx context.Context) {
	p.publishPrices(ctx)

	for _, wallet := range p.cfg.Wallets {
		if err := p.refreshWallet(ctx, wallet); err != nil {
			p.logger.ErrorContext(ctx, "wallet refresh failed",
				slog.String("wallet", wallet),
				slog.String("error", err.Error()),
			)
		}
		if ctx.Err() != nil {
			return
		}
	}

	p.maybePrune(ctx)
}

// refreshWallet reads positions, records a snapshot, publishes updates, and
// checks alert thresholds for one wallet.
func (p *Poller) refreshWallet(ctx context.Context, wallet string) error {
	if p.snapshots != nil {
		snap, err := p.snapshots.Take(ctx, wallet, p.cfg.Chain)
		if err != nil {
			p.notify(ctx, notify.EventSnapshotFailed, "Snapshot failed",
				fmt.Sprintf("Snapshot for %s failed: %v", shortAddr(wallet), err))
			return fmt.Errorf("poller: snapshot: %w", err)
		}
		p.publish(ctx, channelSnapshots, snap)
		p.publishPositions(ctx, wallet, snap.Positions)
		p.checkHealth(ctx, wallet, snap.Positions)
		return nil
	}

	positions, err := p.positions.Positions(ctx, wallet, p.cfg.Chain)
	if err != nil {
		return fmt.Errorf("poller: read positions: %w", err)
	}
	p.publishPositions(ctx, wallet, positions)
	p.checkHealth(ctx, wallet, positions)
	return nil
}

func (p *Poller) publishPositions(ctx context.Context, wallet string, positions []domain.ProtocolPosition) {
	var total float64
	for _, pos := range positions {
		total += pos.BalanceUSD
	}
	p.publish(ctx, channelPositions, map[string]any{
		"wallet":    wallet,
		"chainId":   p.cfg.Chain,
		"totalUsd":  total,
		"positions": positions,
	})
}

// publishPrices resolves the chain's token table and pushes the price map so
// dashboards refresh without hitting the REST API.
func (p *Poller) publishPrices(ctx context.Context) {
	if p.prices == nil {
		return
	}

	list := tokens.ForChain(p.cfg.Chain)
	if len(list) == 0 {
		return
	}
	addrs := make([]string, 0, len(list))
	for _, t := range list {
		addrs = append(addrs, strings.ToLower(t.Address))
	}

	resolved := p.prices.ResolveMany(ctx, p.cfg.Chain, addrs)
	bySymbol := make(map[string]float64, len(list))
	for _, t := range list {
		bySymbol[t.Symbol] = resolved[strings.ToLower(t.Address)]
	}
	p.publish(ctx, channelPrices, map[string]any{
		"chainId": p.cfg.Chain,
		"prices":  bySymbol,
	})
}

// checkHealth alerts when any position's health factor drops below the
// configured minimum.
func (p *Poller) checkHealth(ctx context.Context, wallet string, positions []domain.ProtocolPosition) {
	if p.cfg.MinHealthFactor <= 0 {
		return
	}
	for _, pos := range positions {
		hf := pos.Details.HealthFactor
		if hf == nil || *hf >= p.cfg.MinHealthFactor {
			continue
		}
		p.logger.WarnContext(ctx, "health factor below threshold",
			slog.String("wallet", wallet),
			slog.String("protocol", string(pos.Protocol)),
			slog.Float64("health_factor", *hf),
		)
		p.notify(ctx, notify.EventHealthLow, "Health factor low",
			fmt.Sprintf("%s position for %s has health factor %.3f (min %.3f)",
				pos.Meta.Name, shortAddr(wallet), *hf, p.cfg.MinHealthFactor))
	}
}

// maybePrune enforces snapshot retention at most once per pruneInterval.
func (p *Poller) maybePrune(ctx context.Context) {
	if p.snapshots == nil || p.cfg.Retention <= 0 {
		return
	}
	if time.Since(p.lastPrune) < pruneInterval {
		return
	}
	p.lastPrune = time.Now()

	deleted, err := p.snapshots.Prune(ctx, p.cfg.Retention)
	if err != nil {
		p.logger.ErrorContext(ctx, "snapshot prune failed",
			slog.String("error", err.Error()),
		)
		return
	}
	if deleted > 0 {
		p.logger.InfoContext(ctx, "snapshots pruned",
			slog.Int64("deleted", deleted),
		)
	}
}

func (p *Poller) publish(ctx context.Context, channel string, payload any) {
	if p.bus == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "publish encode failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := p.bus.Publish(ctx, channel, data); err != nil {
		p.logger.WarnContext(ctx, "publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}

func (p *Poller) notify(ctx context.Context, event, title, message string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, event, title, message); err != nil {
		p.logger.WarnContext(ctx, "notification failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

// shortAddr shortens an address for notification text.
func shortAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
