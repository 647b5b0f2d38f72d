package handler

import (
	"log/slog"
	"net/http"

	"github.com/calvinwei/defolio/internal/crypto"
	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/service"
)

// DefiHandler serves the lending-position endpoints.
type DefiHandler struct {
	positions    *service.PositionService
	defaultChain domain.ChainID
	dustUSD      float64
	logger       *slog.Logger
}

// NewDefiHandler creates a DefiHandler. dustUSD is the presentation
// threshold below which position tokens are hidden.
func NewDefiHandler(positions *service.PositionService, defaultChain domain.ChainID, dustUSD float64, logger *slog.Logger) *DefiHandler {
	return &DefiHandler{
		positions:    positions,
		defaultChain: defaultChain,
		dustUSD:      dustUSD,
		logger:       logger,
	}
}

// ListPositions returns the wallet's positions across every protocol.
// GET /api/defi/positions?wallet=0x...&chain=42161
func (h *DefiHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if !crypto.IsValidAddress(wallet) {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAddress.Error())
		return
	}
	chain := queryChain(r, h.defaultChain)

	positions, err := h.positions.Positions(r.Context(), wallet, chain)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "defi: list positions failed",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"wallet":    wallet,
		"chainId":   chain,
		"positions": h.filterDust(positions),
	})
}

// GetPosition returns the wallet's position in one protocol.
// GET /api/defi/positions/{protocol}?wallet=0x...
func (h *DefiHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if !crypto.IsValidAddress(wallet) {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAddress.Error())
		return
	}
	chain := queryChain(r, h.defaultChain)
	protocol := domain.Protocol(r.PathValue("protocol"))

	pos, err := h.positions.PositionFor(r.Context(), wallet, chain, protocol)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	filtered := h.filterDust([]domain.ProtocolPosition{pos})
	if len(filtered) == 0 {
		// All tokens fell under the dust threshold.
		pos.Tokens = nil
		pos.BalanceUSD = 0
		filtered = []domain.ProtocolPosition{pos}
	}
	writeJSON(w, http.StatusOK, filtered[0])
}

// ListMarkets returns per-asset supply/borrow rates across protocols.
// GET /api/defi/markets?chain=42161
func (h *DefiHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	chain := queryChain(r, h.defaultChain)

	markets, err := h.positions.Markets(r.Context(), chain)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chainId": chain,
		"markets": markets,
	})
}

// GetProjection returns the wallet's aggregate compounding curve.
// GET /api/defi/projection?wallet=0x...&months=12
func (h *DefiHandler) GetProjection(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if !crypto.IsValidAddress(wallet) {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAddress.Error())
		return
	}
	chain := queryChain(r, h.defaultChain)

	months := queryInt(r, "months", 12)
	if months < 1 || months > 120 {
		months = 12
	}

	curve, err := h.positions.Projection(r.Context(), wallet, chain, months)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wallet":     wallet,
		"chainId":    chain,
		"months":     months,
		"projection": curve,
	})
}

// filterDust drops position tokens under the dust threshold and rebuilds the
// affected positions so totals and weighted APY stay consistent with what is
// shown. Positions left with no tokens are dropped entirely.
func (h *DefiHandler) filterDust(positions []domain.ProtocolPosition) []domain.ProtocolPosition {
	if h.dustUSD <= 0 {
		return positions
	}

	out := make([]domain.ProtocolPosition, 0, len(positions))
	for _, p := range positions {
		kept := make([]domain.PositionToken, 0, len(p.Tokens))
		for _, t := range p.Tokens {
			if t.BalanceUSD >= h.dustUSD {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			continue
		}
		if len(kept) == len(p.Tokens) {
			out = append(out, p)
			continue
		}
		rebuilt := service.BuildPosition(p.Protocol, p.Meta, kept)
		rebuilt.Details.HealthFactor = p.Details.HealthFactor
		out = append(out, rebuilt)
	}
	return out
}
