package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/calvinwei/defolio/internal/domain"
)

// archiveBatchSize bounds how many snapshots one archive pass pulls from the
// database.
const archiveBatchSize = 10000

// SnapshotArchiveStore is the narrow read surface the archiver needs from
// the snapshot store.
type SnapshotArchiveStore interface {
	ListBefore(ctx context.Context, before time.Time, limit int) ([]domain.Snapshot, error)
}

// SnapshotArchiver implements domain.Archiver by serializing aged snapshots
// to JSONL and uploading them to object storage. Deletion from the primary
// store stays with the caller, after the archive has succeeded.
type SnapshotArchiver struct {
	writer domain.BlobWriter
	reader domain.BlobReader
	store  SnapshotArchiveStore
}

// NewSnapshotArchiver creates a SnapshotArchiver. reader may be nil, in which
// case a second archive pass within the same month overwrites the earlier
// object instead of appending to it.
func NewSnapshotArchiver(writer domain.BlobWriter, reader domain.BlobReader, store SnapshotArchiveStore) *SnapshotArchiver {
	return &SnapshotArchiver{
		writer: writer,
		reader: reader,
		store:  store,
	}
}

// ArchiveSnapshots uploads all snapshots taken before the cutoff to
// archive/snapshots/YYYY-MM.jsonl and returns the count archived. Lines are
// appended to any object already present for the month, so repeated archive
// passes never discard earlier rows.
func (a *SnapshotArchiver) ArchiveSnapshots(ctx context.Context, before time.Time) (int64, error) {
	snaps, err := a.store.ListBefore(ctx, before, archiveBatchSize)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive snapshots query: %w", err)
	}
	if len(snaps) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(snaps)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive snapshots marshal: %w", err)
	}

	path := archivePath("snapshots", before)
	payload, err := a.appendExisting(ctx, path, buf)
	if err != nil {
		return 0, err
	}
	if err := a.writer.Put(ctx, path, bytes.NewReader(payload), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive snapshots upload: %w", err)
	}
	return int64(len(snaps)), nil
}

// appendExisting prefixes lines with the current content of the archive
// object, if one exists.
func (a *SnapshotArchiver) appendExisting(ctx context.Context, path string, lines []byte) ([]byte, error) {
	if a.reader == nil {
		return lines, nil
	}

	ok, err := a.reader.Exists(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("s3blob: archive head %s: %w", path, err)
	}
	if !ok {
		return lines, nil
	}

	body, err := a.reader.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("s3blob: archive read %s: %w", path, err)
	}
	defer body.Close()

	existing, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("s3blob: archive read %s: %w", path, err)
	}
	if n := len(existing); n > 0 && existing[n-1] != '\n' {
		existing = append(existing, '\n')
	}
	return append(existing, lines...), nil
}

// archivePath builds the object key for an archive file, partitioned by the
// year-month of the cutoff time.
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises records as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*SnapshotArchiver)(nil)
