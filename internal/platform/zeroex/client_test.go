package zeroex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/domain"
)

const quoteBody = `{
	"liquidityAvailable": true,
	"sellToken": "0xsell",
	"buyToken": "0xbuy",
	"sellAmount": "1000000",
	"buyAmount": "998000",
	"minBuyAmount": "988020",
	"fees": {
		"integratorFee": null,
		"zeroExFee": {"amount": "1500", "token": "0xbuy", "type": "volume"},
		"gasFee": null
	},
	"route": {
		"fills": [
			{"from": "0xsell", "to": "0xbuy", "source": "Uniswap_V3", "proportionBps": "10000"}
		]
	},
	"issues": {
		"allowance": {"actual": "0", "spender": "0xspender"},
		"balance": null,
		"simulationIncomplete": false
	},
	"transaction": {"to": "0xrouter", "data": "0xdeadbeef", "value": "0", "gas": "210000", "gasPrice": "10000000"}
}`

func TestGetQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap/allowance-holder/quote", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("0x-api-key"))
		assert.Equal(t, "v2", r.Header.Get("0x-version"))
		q := r.URL.Query()
		assert.Equal(t, "42161", q.Get("chainId"))
		assert.Equal(t, "1000000", q.Get("sellAmount"))
		assert.Equal(t, "100", q.Get("slippageBps"))
		w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", 1.0)
	quote, err := c.GetQuote(context.Background(), domain.QuoteRequest{
		SellToken:  "0xsell",
		BuyToken:   "0xbuy",
		SellAmount: "1000000",
		Taker:      "0xtaker",
		ChainID:    domain.ChainArbitrum,
	})
	require.NoError(t, err)

	assert.Equal(t, "998000", quote.BuyAmount)
	assert.Equal(t, "988020", quote.MinBuyAmount)
	assert.True(t, quote.LiquidityAvailable)
	require.NotNil(t, quote.Fees.ZeroExFee)
	assert.Equal(t, "1500", quote.Fees.ZeroExFee.Amount)
	assert.Nil(t, quote.Fees.GasFee)
	require.Len(t, quote.Route, 1)
	assert.Equal(t, "Uniswap_V3", quote.Route[0].Source)
	assert.Equal(t, "0xspender", quote.Issues.AllowanceSpender)
	assert.False(t, quote.Issues.InsufficientBalance)
	assert.Equal(t, "0xrouter", quote.Transaction.To)
	assert.False(t, quote.FetchedAt.IsZero())
}

func TestGetQuoteNoLiquidity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"liquidityAvailable": false}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", 1.0)
	_, err := c.GetQuote(context.Background(), domain.QuoteRequest{ChainID: domain.ChainArbitrum})
	assert.ErrorIs(t, err, domain.ErrNoRoute)
}

func TestGetQuoteMissingKey(t *testing.T) {
	c := New("http://unused", "", 1.0)
	_, err := c.GetQuote(context.Background(), domain.QuoteRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
}

func TestGetQuoteRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", 1.0)
	_, err := c.GetQuote(context.Background(), domain.QuoteRequest{ChainID: domain.ChainArbitrum})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}
