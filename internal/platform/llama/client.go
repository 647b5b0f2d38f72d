// Package llama is the REST client for the DefiLlama yields API.
package llama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/calvinwei/defolio/internal/domain"
)

// Client is the DefiLlama yields API client. It implements
// domain.YieldSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a yields client.
//
// baseURL is the API root, e.g. "https://yields.llama.fi".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// chartResponse is the wire shape of /chart/{poolID}: a time series of APY
// observations, oldest first.
type chartResponse struct {
	Status string       `json:"status"`
	Data   []chartPoint `json:"data"`
}

type chartPoint struct {
	Timestamp string  `json:"timestamp"`
	APY       float64 `json:"apy"`
}

// PoolAPY returns the most recent APY observation for a pool.
func (c *Client) PoolAPY(ctx context.Context, poolID string) (float64, error) {
	path := fmt.Sprintf("/chart/%s", url.PathEscape(poolID))

	body, err := c.doGet(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("llama: pool %s: %w", poolID, err)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return 0, fmt.Errorf("llama: decode chart: %w", err)
	}
	if len(chart.Data) == 0 {
		return 0, fmt.Errorf("llama: pool %s: %w", poolID, domain.ErrNotFound)
	}
	return chart.Data[len(chart.Data)-1].APY, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

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
