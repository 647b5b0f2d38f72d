package s3blob

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/domain"
)

type fakeWriter struct {
	path        string
	contentType string
	data        []byte
}

func (w *fakeWriter) Put(_ context.Context, path string, data io.Reader, contentType string) error {
	w.path = path
	w.contentType = contentType
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(data); err != nil {
		return err
	}
	w.data = buf.Bytes()
	return nil
}

type fakeReader struct {
	objects map[string][]byte
}

func (r *fakeReader) Get(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := r.objects[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (r *fakeReader) List(_ context.Context, prefix string) ([]domain.BlobInfo, error) {
	var infos []domain.BlobInfo
	for path, data := range r.objects {
		if strings.HasPrefix(path, prefix) {
			infos = append(infos, domain.BlobInfo{Path: path, Size: int64(len(data))})
		}
	}
	return infos, nil
}

func (r *fakeReader) Exists(_ context.Context, path string) (bool, error) {
	_, ok := r.objects[path]
	return ok, nil
}

type fakeArchiveStore struct {
	snaps []domain.Snapshot
}

func (s *fakeArchiveStore) ListBefore(context.Context, time.Time, int) ([]domain.Snapshot, error) {
	return s.snaps, nil
}

func TestArchiveSnapshots(t *testing.T) {
	writer := &fakeWriter{}
	store := &fakeArchiveStore{snaps: []domain.Snapshot{
		{ID: "a", Wallet: "0x1", TotalUSD: 100},
		{ID: "b", Wallet: "0x1", TotalUSD: 110},
	}}

	a := NewSnapshotArchiver(writer, &fakeReader{}, store)
	cutoff := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)

	count, err := a.ArchiveSnapshots(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.Equal(t, "archive/snapshots/2026-05.jsonl", writer.path)
	assert.Equal(t, "application/x-ndjson", writer.contentType)

	lines := strings.Split(strings.TrimSpace(string(writer.data)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":"a"`)
}

func TestArchiveSnapshotsAppendsToExistingMonth(t *testing.T) {
	writer := &fakeWriter{}
	reader := &fakeReader{objects: map[string][]byte{
		"archive/snapshots/2026-05.jsonl": []byte(`{"id":"old"}` + "\n"),
	}}
	store := &fakeArchiveStore{snaps: []domain.Snapshot{
		{ID: "new", Wallet: "0x1", TotalUSD: 120},
	}}

	a := NewSnapshotArchiver(writer, reader, store)
	cutoff := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	count, err := a.ArchiveSnapshots(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	lines := strings.Split(strings.TrimSpace(string(writer.data)), "\n")
	require.Len(t, lines, 2, "earlier rows for the month survive a second pass")
	assert.Contains(t, lines[0], `"id":"old"`)
	assert.Contains(t, lines[1], `"id":"new"`)
}

func TestArchiveSnapshotsEmpty(t *testing.T) {
	writer := &fakeWriter{}
	a := NewSnapshotArchiver(writer, &fakeReader{}, &fakeArchiveStore{})

	count, err := a.ArchiveSnapshots(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, writer.path)
}
