package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/calvinwei/defolio/internal/crypto"
	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/service"
	"github.com/calvinwei/defolio/internal/tokens"
)

// SwapHandler serves the swap quoting and address validation endpoints.
type SwapHandler struct {
	quotes       *service.QuoteService
	defaultChain domain.ChainID
	logger       *slog.Logger
}

// NewSwapHandler creates a SwapHandler.
func NewSwapHandler(quotes *service.QuoteService, defaultChain domain.ChainID, logger *slog.Logger) *SwapHandler {
	return &SwapHandler{
		quotes:       quotes,
		defaultChain: defaultChain,
		logger:       logger,
	}
}

// GetQuote fetches a firm swap quote for the requested pair. Rapid repeat
// requests from the same taker supersede each other; superseded requests get
// a 409 so the client simply drops them.
// POST /api/swap/quote
func (h *SwapHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	var req domain.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChainID == 0 {
		req.ChainID = h.defaultChain
	}

	quote, err := h.quotes.Quote(r.Context(), req)
	if err != nil {
		h.logger.WarnContext(r.Context(), "swap: quote failed",
			slog.String("sell_token", req.SellToken),
			slog.String("buy_token", req.BuyToken),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// validateAddressRequest is the input for address validation.
type validateAddressRequest struct {
	Address string `json:"address"`
}

// ValidateAddress checks an address for hex shape and EIP-55 checksum and
// returns its canonical checksummed form when valid.
// POST /api/swap/validate-address
func (h *SwapHandler) ValidateAddress(w http.ResponseWriter, r *http.Request) {
	var req validateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !crypto.IsValidAddress(req.Address) {
		writeJSON(w, http.StatusOK, map[string]any{
			"address": req.Address,
			"valid":   false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"address":  req.Address,
		"valid":    true,
		"checksum": crypto.ChecksumAddress(req.Address),
	})
}

// ListTokens returns the swappable token list for the chain.
// GET /api/swap/tokens?chain=42161
func (h *SwapHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	chain := queryChain(r, h.defaultChain)

	list := tokens.ForChain(chain)
	if list == nil {
		writeError(w, http.StatusBadRequest, domain.ErrUnsupportedChain.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chainId": chain,
		"tokens":  list,
	})
}
