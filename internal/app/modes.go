package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/poller"
	"github.com/calvinwei/defolio/internal/server"
	"github.com/calvinwei/defolio/internal/server/handler"
	"github.com/calvinwei/defolio/internal/server/ws"
	"github.com/calvinwei/defolio/internal/service"
)

// services bundles the domain services shared by the modes.
type services struct {
	prices    *service.PriceResolver
	positions *service.PositionService
	wallets   *service.WalletService
	quotes    *service.QuoteService
	snapshots *service.SnapshotService // nil without Postgres
}

// buildServices constructs the service layer on top of the wired dependencies.
func (a *App) buildServices(deps *Dependencies) *services {
	prices := service.NewPriceResolver(deps.PriceCache, deps.Moralis, a.logger)
	positions := service.NewPositionService(deps.Registry, prices, a.logger)

	svcs := &services{
		prices:    prices,
		positions: positions,
		wallets:   service.NewWalletService(deps.Moralis, prices, a.logger),
		quotes:    service.NewQuoteService(deps.ZeroEx, a.cfg.ZeroEx.QuoteDebounce.Duration, a.logger),
	}
	if deps.SnapshotStore != nil {
		svcs.snapshots = service.NewSnapshotService(positions, deps.SnapshotStore, deps.Archiver, a.logger)
	}
	return svcs
}

// ServerMode runs the HTTP API and WebSocket hub without background polling.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.startHTTPServer(ctx, g, deps, svcs)
	return g.Wait()
}

// PollMode runs the background aggregation loop without the HTTP API.
func (a *App) PollMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting poll mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.startPoller(ctx, g, deps, svcs)
	return g.Wait()
}

// FullMode runs the HTTP API and the background aggregation loop together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.startPoller(ctx, g, deps, svcs)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, svcs)
	}
	return g.Wait()
}

// startHTTPServer adds the HTTP server and WebSocket hub goroutines to the
// given errgroup. The server shuts down gracefully when the context is
// cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services) {
	chain := domain.ChainID(a.cfg.Chain.DefaultChainID)

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(a.cfg.Mode),
		Assets: handler.NewAssetsHandler(svcs.wallets, chain, a.cfg.Portfolio.DustUSDAssets, a.logger),
		Defi:   handler.NewDefiHandler(svcs.positions, chain, a.cfg.Portfolio.DustUSDDefi, a.logger),
		Swap:   handler.NewSwapHandler(svcs.quotes, chain, a.logger),
	}
	if deps.CostBasis != nil {
		handlers.CostBasis = handler.NewCostBasisHandler(deps.CostBasis, a.logger)
	}
	if svcs.snapshots != nil {
		handlers.History = handler.NewHistoryHandler(svcs.snapshots, deps.Blobs, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// startPoller adds the background aggregation loop to the given errgroup.
func (a *App) startPoller(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services) {
	var recorder poller.SnapshotRecorder
	if svcs.snapshots != nil {
		recorder = svcs.snapshots
	}

	p := poller.New(poller.Config{
		Wallets:         a.cfg.Portfolio.WatchWallets,
		Chain:           domain.ChainID(a.cfg.Chain.DefaultChainID),
		Interval:        a.cfg.Portfolio.PollInterval.Duration,
		Retention:       time.Duration(a.cfg.Portfolio.SnapshotRetentionDays) * 24 * time.Hour,
		MinHealthFactor: a.cfg.Notify.MinHealthFactor,
	}, svcs.positions, recorder, svcs.prices, deps.SignalBus, deps.Notifier, a.logger)

	g.Go(func() error {
		return p.Run(ctx)
	})
}
