// Package moralis is the REST client for the Moralis deep-index API, used for
// token USD prices and wallet ERC-20 balances.
package moralis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/calvinwei/defolio/internal/domain"
)

// Client is the Moralis deep-index API client. All requests carry the
// X-API-Key header; a missing key fails fast with domain.ErrMissingAPIKey.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Moralis client.
//
// baseURL is the API root, e.g. "https://deep-index.moralis.io/api/v2.2".
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiPrice is the wire shape of the token price endpoint.
type apiPrice struct {
	USDPrice float64 `json:"usdPrice"`
}

// apiTokenBalance is the wire shape of one wallet ERC-20 balance entry.
type apiTokenBalance struct {
	TokenAddress string `json:"token_address"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Logo         string `json:"logo"`
	Decimals     int    `json:"decimals"`
	Balance      string `json:"balance"`
	PossibleSpam bool   `json:"possible_spam"`
}

// apiNativeBalance is the wire shape of the native balance endpoint.
type apiNativeBalance struct {
	Balance string `json:"balance"`
}

// TokenPrice returns the USD unit price of an ERC-20 token. It implements
// domain.PriceSource.
func (c *Client) TokenPrice(ctx context.Context, address string, chain domain.ChainID) (float64, error) {
	if c.apiKey == "" {
		return 0, fmt.Errorf("moralis: token price: %w", domain.ErrMissingAPIKey)
	}

	params := url.Values{}
	params.Set("chain", chain.Hex())
	path := fmt.Sprintf("/erc20/%s/price?%s", url.PathEscape(address), params.Encode())

	body, err := c.doGet(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("moralis: token price %s: %w", address, err)
	}

	var price apiPrice
	if err := json.Unmarshal(body, &price); err != nil {
		return 0, fmt.Errorf("moralis: decode price: %w", err)
	}
	return price.USDPrice, nil
}

// WalletTokens returns the wallet's ERC-20 balances on the chain, with spam
// tokens filtered out. Balances are converted to display units; USD fields
// are left for the caller to resolve.
func (c *Client) WalletTokens(ctx context.Context, wallet string, chain domain.ChainID) ([]domain.WalletAsset, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("moralis: wallet tokens: %w", domain.ErrMissingAPIKey)
	}

	params := url.Values{}
	params.Set("chain", chain.Hex())
	path := fmt.Sprintf("/%s/erc20?%s", url.PathEscape(wallet), params.Encode())

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("moralis: wallet tokens %s: %w", wallet, err)
	}

	var raw []apiTokenBalance
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("moralis: decode wallet tokens: %w", err)
	}

	assets := make([]domain.WalletAsset, 0, len(raw))
	for _, t := range raw {
		if t.PossibleSpam {
			continue
		}
		assets = append(assets, domain.WalletAsset{
			Symbol:   t.Symbol,
			Name:     t.Name,
			Logo:     t.Logo,
			Address:  t.TokenAddress,
			Decimals: t.Decimals,
			Balance:  toUnits(t.Balance, t.Decimals),
		})
	}
	return assets, nil
}

// NativeBalance returns the wallet's native asset balance in display units
// (18 decimals).
func (c *Client) NativeBalance(ctx context.Context, wallet string, chain domain.ChainID) (float64, error) {
	if c.apiKey == "" {
		return 0, fmt.Errorf("moralis: native balance: %w", domain.ErrMissingAPIKey)
	}

	params := url.Values{}
	params.Set("chain", chain.Hex())
	path := fmt.Sprintf("/%s/balance?%s", url.PathEscape(wallet), params.Encode())

	body, err := c.doGet(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("moralis: native balance %s: %w", wallet, err)
	}

	var raw apiNativeBalance
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("moralis: decode native balance: %w", err)
	}
	return toUnits(raw.Balance, 18), nil
}

// toUnits converts a base-unit decimal string into display units. Values too
// large for float64 precision are acceptable here: balances feed USD display
// math, not on-chain amounts.
func toUnits(raw string, decimals int) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || decimals < 0 {
		return 0
	}
	return v / math.Pow10(decimals)
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, body)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, body)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, body)
	}
}
