package llama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/domain"
)

func TestPoolAPYTakesLatestPoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chart/6f007481-cd58-4b32-bac3-1ce9f19a3a07", r.URL.Path)
		w.Write([]byte(`{"status":"success","data":[
			{"timestamp":"2026-08-29T00:00:00.000Z","apy":3.1},
			{"timestamp":"2026-08-30T00:00:00.000Z","apy":3.4}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	apy, err := c.PoolAPY(context.Background(), "6f007481-cd58-4b32-bac3-1ce9f19a3a07")
	require.NoError(t, err)
	assert.InDelta(t, 3.4, apy, 1e-9)
}

func TestPoolAPYEmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.PoolAPY(context.Background(), "some-pool")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPoolAPYNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.PoolAPY(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
