package handler

import (
	"log/slog"
	"net/http"

	"github.com/calvinwei/defolio/internal/crypto"
	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/service"
)

// AssetsHandler serves the wallet-held asset endpoint.
type AssetsHandler struct {
	wallets      *service.WalletService
	defaultChain domain.ChainID
	dustUSD      float64
	logger       *slog.Logger
}

// NewAssetsHandler creates an AssetsHandler. dustUSD hides holdings worth
// less than the threshold.
func NewAssetsHandler(wallets *service.WalletService, defaultChain domain.ChainID, dustUSD float64, logger *slog.Logger) *AssetsHandler {
	return &AssetsHandler{
		wallets:      wallets,
		defaultChain: defaultChain,
		dustUSD:      dustUSD,
		logger:       logger,
	}
}

// ListAssets returns the wallet's native and ERC-20 holdings with USD values.
// GET /api/assets?wallet=0x...&chain=42161
func (h *AssetsHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if !crypto.IsValidAddress(wallet) {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAddress.Error())
		return
	}
	chain := queryChain(r, h.defaultChain)

	assets, err := h.wallets.Assets(r.Context(), wallet, chain)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "assets: list failed",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	kept := make([]domain.WalletAsset, 0, len(assets))
	var total float64
	for _, a := range assets {
		if h.dustUSD > 0 && a.USDValue < h.dustUSD {
			continue
		}
		kept = append(kept, a)
		total += a.USDValue
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"wallet":   wallet,
		"chainId":  chain,
		"totalUsd": total,
		"assets":   kept,
	})
}
