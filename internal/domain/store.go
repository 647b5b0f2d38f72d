package domain

import (
	"context"
	"time"
)

// SnapshotStore persists portfolio snapshots for history views.
type SnapshotStore interface {
	Insert(ctx context.Context, snap Snapshot) error
	ListByWallet(ctx context.Context, wallet string, limit int) ([]Snapshot, error)
	ListBefore(ctx context.Context, before time.Time, limit int) ([]Snapshot, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// CostBasisStore reads and upserts user-entered cost-basis rows. The
// production implementation talks to an external spreadsheet web service.
type CostBasisStore interface {
	Get(ctx context.Context, wallet string) ([]CostBasisEntry, error)
	Upsert(ctx context.Context, wallet string, entries []CostBasisEntry) error
}
