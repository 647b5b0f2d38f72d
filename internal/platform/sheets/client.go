// Package sheets is the client for the spreadsheet-backed cost-basis web
// service. The service is a single endpoint that reads and writes rows keyed
// by wallet address.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/calvinwei/defolio/internal/domain"
)

// Client implements domain.CostBasisStore over the cost-basis web service.
type Client struct {
	url        string
	httpClient *http.Client
}

// New creates a cost-basis client. url is the full endpoint of the deployed
// web service.
func New(endpoint string) *Client {
	return &Client{
		url: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether an endpoint is set. An unconfigured client
// returns domain.ErrMissingAPIKey from every call.
func (c *Client) Configured() bool { return c.url != "" }

// getResponse is the wire shape of a read: rows for one wallet.
type getResponse struct {
	Entries []domain.CostBasisEntry `json:"entries"`
}

// upsertRequest is the wire shape of a write.
type upsertRequest struct {
	Wallet  string                  `json:"wallet"`
	Entries []domain.CostBasisEntry `json:"entries"`
}

// Get returns the stored cost-basis rows for a wallet.
func (c *Client) Get(ctx context.Context, wallet string) ([]domain.CostBasisEntry, error) {
	if c.url == "" {
		return nil, fmt.Errorf("sheets: get: %w", domain.ErrMissingAPIKey)
	}

	params := url.Values{}
	params.Set("wallet", wallet)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("sheets: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: get %s: %w", wallet, err)
	}

	var out getResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("sheets: decode entries: %w", err)
	}
	return out.Entries, nil
}

// Upsert writes the given rows for a wallet, replacing rows with the same
// token address.
func (c *Client) Upsert(ctx context.Context, wallet string, entries []domain.CostBasisEntry) error {
	if c.url == "" {
		return fmt.Errorf("sheets: upsert: %w", domain.ErrMissingAPIKey)
	}

	payload, err := json.Marshal(upsertRequest{Wallet: wallet, Entries: entries})
	if err != nil {
		return fmt.Errorf("sheets: encode entries: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sheets: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("sheets: upsert %s: %w", wallet, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, body)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
