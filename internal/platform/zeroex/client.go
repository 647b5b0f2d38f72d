// Package zeroex is the REST client for the 0x v2 allowance-holder swap API.
package zeroex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/calvinwei/defolio/internal/domain"
)

// Client is the 0x swap API client. Requests carry the 0x-api-key and
// 0x-version headers; a missing key fails fast with domain.ErrMissingAPIKey.
type Client struct {
	baseURL     string
	apiKey      string
	slippagePct float64
	httpClient  *http.Client
}

// New creates a 0x client.
//
// baseURL is the API root, e.g. "https://api.0x.org". slippagePct is the
// quote slippage tolerance in percent.
func New(baseURL, apiKey string, slippagePct float64) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		slippagePct: slippagePct,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiQuote is the wire shape of the allowance-holder quote response.
type apiQuote struct {
	LiquidityAvailable bool   `json:"liquidityAvailable"`
	SellToken          string `json:"sellToken"`
	BuyToken           string `json:"buyToken"`
	SellAmount         string `json:"sellAmount"`
	BuyAmount          string `json:"buyAmount"`
	MinBuyAmount       string `json:"minBuyAmount"`
	Fees               struct {
		IntegratorFee *apiFee `json:"integratorFee"`
		ZeroExFee     *apiFee `json:"zeroExFee"`
		GasFee        *apiFee `json:"gasFee"`
	} `json:"fees"`
	Route struct {
		Fills []struct {
			From          string `json:"from"`
			To            string `json:"to"`
			Source        string `json:"source"`
			ProportionBps string `json:"proportionBps"`
		} `json:"fills"`
	} `json:"route"`
	Issues struct {
		Allowance *struct {
			Actual  string `json:"actual"`
			Spender string `json:"spender"`
		} `json:"allowance"`
		Balance *struct {
			Token    string `json:"token"`
			Actual   string `json:"actual"`
			Expected string `json:"expected"`
		} `json:"balance"`
		SimulationIncomplete bool `json:"simulationIncomplete"`
	} `json:"issues"`
	Transaction struct {
		To       string `json:"to"`
		Data     string `json:"data"`
		Value    string `json:"value"`
		Gas      string `json:"gas"`
		GasPrice string `json:"gasPrice"`
	} `json:"transaction"`
}

type apiFee struct {
	Amount string `json:"amount"`
	Token  string `json:"token"`
	Type   string `json:"type"`
}

// GetQuote fetches a firm swap quote for the request. The returned quote has
// no ID; the caller assigns one.
func (c *Client) GetQuote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	if c.apiKey == "" {
		return domain.Quote{}, fmt.Errorf("zeroex: get quote: %w", domain.ErrMissingAPIKey)
	}

	params := url.Values{}
	params.Set("chainId", strconv.FormatInt(int64(req.ChainID), 10))
	params.Set("sellToken", req.SellToken)
	params.Set("buyToken", req.BuyToken)
	params.Set("sellAmount", req.SellAmount)
	params.Set("taker", req.Taker)
	params.Set("slippageBps", strconv.Itoa(int(c.slippagePct*100)))

	path := "/swap/allowance-holder/quote?" + params.Encode()

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("zeroex: get quote: %w", err)
	}

	var raw apiQuote
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.Quote{}, fmt.Errorf("zeroex: decode quote: %w", err)
	}
	if !raw.LiquidityAvailable {
		return domain.Quote{}, fmt.Errorf("zeroex: %s -> %s: %w", req.SellToken, req.BuyToken, domain.ErrNoRoute)
	}
	return toDomainQuote(raw), nil
}

func toDomainQuote(raw apiQuote) domain.Quote {
	q := domain.Quote{
		SellToken:          raw.SellToken,
		BuyToken:           raw.BuyToken,
		SellAmount:         raw.SellAmount,
		BuyAmount:          raw.BuyAmount,
		MinBuyAmount:       raw.MinBuyAmount,
		LiquidityAvailable: raw.LiquidityAvailable,
		Fees: domain.QuoteFees{
			IntegratorFee: toDomainFee(raw.Fees.IntegratorFee),
			ZeroExFee:     toDomainFee(raw.Fees.ZeroExFee),
			GasFee:        toDomainFee(raw.Fees.GasFee),
		},
		Issues: domain.QuoteIssues{
			InsufficientBalance:  raw.Issues.Balance != nil,
			SimulationIncomplete: raw.Issues.SimulationIncomplete,
		},
		Transaction: domain.QuoteTransaction{
			To:       raw.Transaction.To,
			Data:     raw.Transaction.Data,
			Value:    raw.Transaction.Value,
			Gas:      raw.Transaction.Gas,
			GasPrice: raw.Transaction.GasPrice,
		},
		FetchedAt: time.Now().UTC(),
	}
	if raw.Issues.Allowance != nil {
		q.Issues.AllowanceSpender = raw.Issues.Allowance.Spender
		q.Issues.AllowanceActual = raw.Issues.Allowance.Actual
	}
	for _, f := range raw.Route.Fills {
		q.Route = append(q.Route, domain.RouteFill{
			Source:        f.Source,
			ProportionBps: f.ProportionBps,
			From:          f.From,
			To:            f.To,
		})
	}
	return q
}

func toDomainFee(f *apiFee) *domain.FeeAmount {
	if f == nil {
		return nil
	}
	return &domain.FeeAmount{
		Amount: f.Amount,
		Token:  f.Token,
		Type:   f.Type,
	}
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("0x-api-key", c.apiKey)
	req.Header.Set("0x-version", "v2")

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
