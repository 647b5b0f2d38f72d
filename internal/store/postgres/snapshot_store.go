package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calvinwei/defolio/internal/domain"
)

// SnapshotStore implements domain.SnapshotStore using PostgreSQL. Positions
// are stored as a JSONB document; history queries never filter inside them.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a SnapshotStore backed by the given connection
// pool.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

const snapshotSelectCols = `id, wallet, chain_id, total_usd, positions, taken_at`

func scanSnapshotRows(rows pgx.Rows) ([]domain.Snapshot, error) {
	var snaps []domain.Snapshot
	for rows.Next() {
		var (
			s         domain.Snapshot
			positions []byte
		)
		if err := rows.Scan(&s.ID, &s.Wallet, &s.ChainID, &s.TotalUSD, &positions, &s.TakenAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(positions, &s.Positions); err != nil {
			return nil, fmt.Errorf("decode positions for %s: %w", s.ID, err)
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// Insert persists a snapshot.
func (s *SnapshotStore) Insert(ctx context.Context, snap domain.Snapshot) error {
	positions, err := json.Marshal(snap.Positions)
	if err != nil {
		return fmt.Errorf("postgres: encode positions: %w", err)
	}

	const query = `
		INSERT INTO snapshots (id, wallet, chain_id, total_usd, positions, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.pool.Exec(ctx, query,
		snap.ID, snap.Wallet, snap.ChainID, snap.TotalUSD, positions, snap.TakenAt,
	); err != nil {
		return fmt.Errorf("postgres: insert snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// ListByWallet returns the most recent snapshots for a wallet, newest first.
func (s *SnapshotStore) ListByWallet(ctx context.Context, wallet string, limit int) ([]domain.Snapshot, error) {
	const query = `
		SELECT ` + snapshotSelectCols + `
		FROM snapshots
		WHERE LOWER(wallet) = LOWER($1)
		ORDER BY taken_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots for %s: %w", wallet, err)
	}
	defer rows.Close()

	snaps, err := scanSnapshotRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan snapshots for %s: %w", wallet, err)
	}
	return snaps, nil
}

// ListBefore returns snapshots taken before the cutoff, oldest first, used by
// the archiver.
func (s *SnapshotStore) ListBefore(ctx context.Context, before time.Time, limit int) ([]domain.Snapshot, error) {
	const query = `
		SELECT ` + snapshotSelectCols + `
		FROM snapshots
		WHERE taken_at < $1
		ORDER BY taken_at ASC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots before %s: %w", before, err)
	}
	defer rows.Close()

	snaps, err := scanSnapshotRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan snapshots before %s: %w", before, err)
	}
	return snaps, nil
}

// DeleteBefore removes snapshots taken before the cutoff and returns the
// number deleted.
func (s *SnapshotStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM snapshots WHERE taken_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete snapshots before %s: %w", before, err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)
