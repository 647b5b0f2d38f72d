package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/domain"
)

// stubBlobs implements domain.BlobReader over in-memory objects.
type stubBlobs struct {
	infos   []domain.BlobInfo
	objects map[string][]byte
}

func (s *stubBlobs) Get(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := s.objects[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubBlobs) List(_ context.Context, prefix string) ([]domain.BlobInfo, error) {
	var out []domain.BlobInfo
	for _, info := range s.infos {
		if strings.HasPrefix(info.Path, prefix) {
			out = append(out, info)
		}
	}
	return out, nil
}

func (s *stubBlobs) Exists(_ context.Context, path string) (bool, error) {
	_, ok := s.objects[path]
	return ok, nil
}

func TestListArchives(t *testing.T) {
	blobs := &stubBlobs{infos: []domain.BlobInfo{
		{Path: "archive/snapshots/2026-05.jsonl", Size: 128, LastModified: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
	}}
	h := &HistoryHandler{blobs: blobs, logger: slog.New(slog.DiscardHandler)}

	w := httptest.NewRecorder()
	h.ListArchives(w, httptest.NewRequest("GET", "/api/history/archive", nil))

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "2026-05.jsonl")
	assert.Contains(t, w.Body.String(), "2026-06-01T00:00:00Z")
}

func TestGetArchiveStreamsJSONL(t *testing.T) {
	blobs := &stubBlobs{objects: map[string][]byte{
		"archive/snapshots/2026-05.jsonl": []byte(`{"id":"a"}` + "\n"),
	}}
	h := &HistoryHandler{blobs: blobs, logger: slog.New(slog.DiscardHandler)}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/history/archive/2026-05", nil)
	r.SetPathValue("month", "2026-05")
	h.GetArchive(w, r)

	require.Equal(t, 200, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"id":"a"}`+"\n", w.Body.String())
}

func TestGetArchiveMissingMonth(t *testing.T) {
	h := &HistoryHandler{blobs: &stubBlobs{}, logger: slog.New(slog.DiscardHandler)}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/history/archive/2026-04", nil)
	r.SetPathValue("month", "2026-04")
	h.GetArchive(w, r)

	assert.Equal(t, 404, w.Code)
}

func TestGetArchiveBadMonthFormat(t *testing.T) {
	h := &HistoryHandler{blobs: &stubBlobs{}, logger: slog.New(slog.DiscardHandler)}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/history/archive/may-2026", nil)
	r.SetPathValue("month", "may-2026")
	h.GetArchive(w, r)

	assert.Equal(t, 400, w.Code)
}

func TestArchiveEndpointsWithoutBlobStorage(t *testing.T) {
	h := &HistoryHandler{logger: slog.New(slog.DiscardHandler)}

	w := httptest.NewRecorder()
	h.ListArchives(w, httptest.NewRequest("GET", "/api/history/archive", nil))
	assert.Equal(t, 404, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")
}
