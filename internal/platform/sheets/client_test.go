package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/domain"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "0xwallet", r.URL.Query().Get("wallet"))
		w.Write([]byte(`{"entries":[{"tokenAddress":"0x1","tokenSymbol":"USDC","costPrice":"0.999"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	entries, err := c.Get(context.Background(), "0xwallet")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "USDC", entries[0].TokenSymbol)
	assert.Equal(t, "0.999", entries[0].CostPrice)
}

func TestUpsert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req upsertRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "0xwallet", req.Wallet)
		require.Len(t, req.Entries, 1)
		assert.Equal(t, "0x1", req.Entries[0].TokenAddress)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Upsert(context.Background(), "0xwallet", []domain.CostBasisEntry{
		{TokenAddress: "0x1", TokenSymbol: "USDC", CostPrice: "0.999"},
	})
	require.NoError(t, err)
}

func TestUnconfigured(t *testing.T) {
	c := New("")
	assert.False(t, c.Configured())

	_, err := c.Get(context.Background(), "0xwallet")
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)

	err = c.Upsert(context.Background(), "0xwallet", nil)
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
}
