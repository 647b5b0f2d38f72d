package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/calvinwei/defolio/internal/crypto"
	"github.com/calvinwei/defolio/internal/domain"
)

// CostBasisHandler serves the user-entered cost-basis endpoints backed by the
// external spreadsheet service.
type CostBasisHandler struct {
	store  domain.CostBasisStore
	logger *slog.Logger
}

// NewCostBasisHandler creates a CostBasisHandler.
func NewCostBasisHandler(store domain.CostBasisStore, logger *slog.Logger) *CostBasisHandler {
	return &CostBasisHandler{store: store, logger: logger}
}

// GetEntries returns the stored cost-basis rows for a wallet.
// GET /api/costbasis?wallet=0x...
func (h *CostBasisHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if !crypto.IsValidAddress(wallet) {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAddress.Error())
		return
	}

	entries, err := h.store.Get(r.Context(), wallet)
	if err != nil {
		h.logger.WarnContext(r.Context(), "costbasis: get failed",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.CostBasisEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wallet":  wallet,
		"entries": entries,
	})
}

// upsertEntriesRequest is the input for a cost-basis write.
type upsertEntriesRequest struct {
	Wallet  string                  `json:"wallet"`
	Entries []domain.CostBasisEntry `json:"entries"`
}

// UpsertEntries stores cost-basis rows for a wallet, replacing rows with the
// same token address.
// POST /api/costbasis
func (h *CostBasisHandler) UpsertEntries(w http.ResponseWriter, r *http.Request) {
	var req upsertEntriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !crypto.IsValidAddress(req.Wallet) {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAddress.Error())
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, http.StatusBadRequest, "no entries provided")
		return
	}
	for _, e := range req.Entries {
		if !crypto.IsValidAddress(e.TokenAddress) {
			writeError(w, http.StatusBadRequest, domain.ErrInvalidAddress.Error())
			return
		}
	}

	if err := h.store.Upsert(r.Context(), req.Wallet, req.Entries); err != nil {
		h.logger.ErrorContext(r.Context(), "costbasis: upsert failed",
			slog.String("wallet", req.Wallet),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wallet": req.Wallet,
		"stored": len(req.Entries),
	})
}
