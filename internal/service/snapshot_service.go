package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calvinwei/defolio/internal/domain"
)

// SnapshotService records point-in-time portfolio snapshots and manages
// their retention.
type SnapshotService struct {
	positions *PositionService
	store     domain.SnapshotStore
	archiver  domain.Archiver
	logger    *slog.Logger
}

// NewSnapshotService creates a SnapshotService. archiver may be nil, in which
// case pruned snapshots are deleted without archival.
func NewSnapshotService(positions *PositionService, store domain.SnapshotStore, archiver domain.Archiver, logger *slog.Logger) *SnapshotService {
	return &SnapshotService{
		positions: positions,
		store:     store,
		archiver:  archiver,
		logger:    logger,
	}
}

// Take reads the wallet's current positions and persists them as a snapshot.
func (s *SnapshotService) Take(ctx context.Context, wallet string, chain domain.ChainID) (domain.Snapshot, error) {
	positions, err := s.positions.Positions(ctx, wallet, chain)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot_service: read positions: %w", err)
	}

	var total float64
	for _, p := range positions {
		total += p.BalanceUSD
	}

	snap := domain.Snapshot{
		ID:        uuid.NewString(),
		Wallet:    wallet,
		ChainID:   chain,
		TotalUSD:  total,
		Positions: positions,
		TakenAt:   time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot_service: insert: %w", err)
	}

	s.logger.InfoContext(ctx, "snapshot_service: snapshot taken",
		slog.String("snapshot_id", snap.ID),
		slog.String("wallet", wallet),
		slog.Float64("total_usd", total),
	)
	return snap, nil
}

// History returns the most recent snapshots for a wallet, newest first.
func (s *SnapshotService) History(ctx context.Context, wallet string, limit int) ([]domain.Snapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	snaps, err := s.store.ListByWallet(ctx, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("snapshot_service: history: %w", err)
	}
	return snaps, nil
}

// Prune archives and deletes snapshots older than the retention window. A
// failed archive aborts the prune so no snapshot is lost.
func (s *SnapshotService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	before := time.Now().UTC().Add(-retention)

	if s.archiver != nil {
		archived, err := s.archiver.ArchiveSnapshots(ctx, before)
		if err != nil {
			return 0, fmt.Errorf("snapshot_service: archive: %w", err)
		}
		if archived > 0 {
			s.logger.InfoContext(ctx, "snapshot_service: snapshots archived",
				slog.Int64("count", archived),
			)
		}
	}

	deleted, err := s.store.DeleteBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("snapshot_service: delete: %w", err)
	}
	return deleted, nil
}
