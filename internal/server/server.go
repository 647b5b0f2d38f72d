// Package server assembles the HTTP API: routes, middleware, and lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/server/handler"
	"github.com/calvinwei/defolio/internal/server/middleware"
	"github.com/calvinwei/defolio/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
	RateLimit   int    // requests per RateWindow per client IP; 0 disables
	RateWindow  time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health    *handler.HealthHandler
	Assets    *handler.AssetsHandler
	Defi      *handler.DefiHandler
	Swap      *handler.SwapHandler
	CostBasis *handler.CostBasisHandler
	History   *handler.HistoryHandler
}

// Server is the headless HTTP + WebSocket API server for the portfolio
// backend.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (CORS, logging, rate limiting, auth) and attaches
// the WebSocket hub. limiter may be nil to disable rate limiting. CostBasis
// and History handlers may be nil when their backing services are not
// configured for the current mode.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required; registered inside the chain anyway so
	// a probe exercises the same path as real traffic).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Wallet asset endpoint.
	mux.HandleFunc("GET /api/assets", handlers.Assets.ListAssets)

	// Lending position endpoints.
	mux.HandleFunc("GET /api/defi/positions", handlers.Defi.ListPositions)
	mux.HandleFunc("GET /api/defi/positions/{protocol}", handlers.Defi.GetPosition)
	mux.HandleFunc("GET /api/defi/markets", handlers.Defi.ListMarkets)
	mux.HandleFunc("GET /api/defi/projection", handlers.Defi.GetProjection)

	// Swap endpoints.
	mux.HandleFunc("POST /api/swap/quote", handlers.Swap.GetQuote)
	mux.HandleFunc("POST /api/swap/validate-address", handlers.Swap.ValidateAddress)
	mux.HandleFunc("GET /api/swap/tokens", handlers.Swap.ListTokens)

	// Cost-basis endpoints.
	if handlers.CostBasis != nil {
		mux.HandleFunc("GET /api/costbasis", handlers.CostBasis.GetEntries)
		mux.HandleFunc("POST /api/costbasis", handlers.CostBasis.UpsertEntries)
	}

	// Snapshot history and archive endpoints.
	if handlers.History != nil {
		mux.HandleFunc("GET /api/history", handlers.History.ListSnapshots)
		mux.HandleFunc("GET /api/history/archive", handlers.History.ListArchives)
		mux.HandleFunc("GET /api/history/archive/{month}", handlers.History.GetArchive)
	}

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	// Apply auth middleware (skips if APIKey is empty).
	h = middleware.Auth(cfg.APIKey)(h)

	// Apply rate limiting ahead of auth so brute-force attempts are throttled.
	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
