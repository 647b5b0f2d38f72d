package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/calvinwei/defolio/internal/crypto"
	"github.com/calvinwei/defolio/internal/domain"
	"github.com/calvinwei/defolio/internal/service"
)

// snapshotArchivePrefix is where the archiver parks aged snapshot months.
const snapshotArchivePrefix = "archive/snapshots/"

// HistoryHandler serves stored portfolio snapshots and their cold-storage
// archives.
type HistoryHandler struct {
	snapshots *service.SnapshotService
	blobs     domain.BlobReader // nil when object storage is not configured
	logger    *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler. blobs may be nil; the archive
// endpoints then report that archival storage is not configured.
func NewHistoryHandler(snapshots *service.SnapshotService, blobs domain.BlobReader, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{snapshots: snapshots, blobs: blobs, logger: logger}
}

// ListSnapshots returns the wallet's snapshot history, newest first.
// GET /api/history?wallet=0x...&limit=100
func (h *HistoryHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if !crypto.IsValidAddress(wallet) {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAddress.Error())
		return
	}
	limit := queryInt(r, "limit", 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	snaps, err := h.snapshots.History(r.Context(), wallet, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history: list failed",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	if snaps == nil {
		snaps = []domain.Snapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wallet":    wallet,
		"snapshots": snaps,
	})
}

// ListArchives returns the archived snapshot months available in object
// storage.
// GET /api/history/archive
func (h *HistoryHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		writeError(w, http.StatusNotFound, "archive storage not configured")
		return
	}

	infos, err := h.blobs.List(r.Context(), snapshotArchivePrefix)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history: archive list failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	archives := make([]map[string]any, 0, len(infos))
	for _, info := range infos {
		archives = append(archives, map[string]any{
			"path":         info.Path,
			"size":         info.Size,
			"lastModified": info.LastModified.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"archives": archives})
}

// GetArchive streams one archived month of snapshots as JSONL.
// GET /api/history/archive/{month} with month formatted as YYYY-MM.
func (h *HistoryHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		writeError(w, http.StatusNotFound, "archive storage not configured")
		return
	}

	month := r.PathValue("month")
	if _, err := time.Parse("2006-01", month); err != nil {
		writeError(w, http.StatusBadRequest, "month must be formatted as YYYY-MM")
		return
	}

	body, err := h.blobs.Get(r.Context(), fmt.Sprintf("%s%s.jsonl", snapshotArchivePrefix, month))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.ErrorContext(r.Context(), "history: archive stream failed",
			slog.String("month", month),
			slog.String("error", err.Error()),
		)
	}
}
