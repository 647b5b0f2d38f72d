package moralis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/domain"
)

func TestTokenPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "/erc20/0xabc/price", r.URL.Path)
		assert.Equal(t, "0xa4b1", r.URL.Query().Get("chain"))
		w.Write([]byte(`{"usdPrice": 0.9998}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	price, err := c.TokenPrice(context.Background(), "0xabc", domain.ChainArbitrum)
	require.NoError(t, err)
	assert.InDelta(t, 0.9998, price, 1e-9)
}

func TestTokenPriceMissingKey(t *testing.T) {
	c := New("http://unused", "")
	_, err := c.TokenPrice(context.Background(), "0xabc", domain.ChainArbitrum)
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
}

func TestTokenPriceRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	_, err := c.TokenPrice(context.Background(), "0xabc", domain.ChainArbitrum)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestWalletTokensFiltersSpam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0xwallet/erc20", r.URL.Path)
		w.Write([]byte(`[
			{"token_address":"0x1","symbol":"USDC","name":"USD Coin","decimals":6,"balance":"2500000","possible_spam":false},
			{"token_address":"0x2","symbol":"SCAM","name":"Free Money","decimals":18,"balance":"999","possible_spam":true}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	assets, err := c.WalletTokens(context.Background(), "0xwallet", domain.ChainArbitrum)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "USDC", assets[0].Symbol)
	assert.InDelta(t, 2.5, assets[0].Balance, 1e-9)
}

func TestNativeBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0xwallet/balance", r.URL.Path)
		w.Write([]byte(`{"balance":"1500000000000000000"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	bal, err := c.NativeBalance(context.Background(), "0xwallet", domain.ChainArbitrum)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, bal, 1e-9)
}

func TestToUnits(t *testing.T) {
	assert.InDelta(t, 1.5, toUnits("1500000", 6), 1e-9)
	assert.Zero(t, toUnits("not a number", 6))
	assert.Zero(t, toUnits("100", -1))
}
