// Package chain provides read-only access to deployed lending-protocol
// contracts through JSON-RPC, one client per configured chain.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/calvinwei/defolio/internal/domain"
)

// Config holds the parameters for the multi-chain client.
type Config struct {
	// RPCURLs maps decimal chain IDs to JSON-RPC endpoints.
	RPCURLs map[string]string

	// CallTimeout bounds each individual eth_call.
	CallTimeout time.Duration

	// MaxRetries bounds the retry loop for transient RPC failures.
	MaxRetries uint
}

// Client multiplexes read-only contract calls across the configured chains.
// It carries no wallet state; all methods are view calls.
type Client struct {
	clients    map[domain.ChainID]*ethclient.Client
	timeout    time.Duration
	maxRetries uint
	logger     *slog.Logger
}

// New dials every configured RPC endpoint and returns a Client. Dialing an
// HTTP endpoint does not open a connection, so construction cannot hang on an
// unreachable node.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if len(cfg.RPCURLs) == 0 {
		return nil, fmt.Errorf("chain: no rpc endpoints configured")
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	clients := make(map[domain.ChainID]*ethclient.Client, len(cfg.RPCURLs))
	for id, rawURL := range cfg.RPCURLs {
		chainID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chain: invalid chain id %q: %w", id, err)
		}
		ec, err := ethclient.Dial(rawURL)
		if err != nil {
			return nil, fmt.Errorf("chain: dial %s: %w", rawURL, err)
		}
		clients[domain.ChainID(chainID)] = ec
	}

	return &Client{
		clients:    clients,
		timeout:    timeout,
		maxRetries: maxRetries,
		logger:     logger.With(slog.String("component", "chain")),
	}, nil
}

// Supports reports whether the client has an endpoint for the given chain.
func (c *Client) Supports(chain domain.ChainID) bool {
	_, ok := c.clients[chain]
	return ok
}

// Close releases all underlying RPC connections.
func (c *Client) Close() {
	for _, ec := range c.clients {
		ec.Close()
	}
}

// call packs a view-method invocation, executes it with bounded retries, and
// unpacks the raw return data. Reverts are not retried: a reverting call will
// revert again.
func (c *Client) call(ctx context.Context, chain domain.ChainID, contract common.Address, parsed abi.ABI, method string, args ...any) ([]any, error) {
	ec, ok := c.clients[chain]
	if !ok {
		return nil, fmt.Errorf("chain %d: %w", chain, domain.ErrUnsupportedChain)
	}

	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("chain: pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{To: &contract, Data: data}

	operation := func() ([]byte, error) {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		raw, err := ec.CallContract(cctx, msg, nil)
		if err != nil {
			if isRevert(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return raw, nil
	}

	notify := func(err error, next time.Duration) {
		c.logger.DebugContext(ctx, "rpc call retrying",
			slog.String("method", method),
			slog.String("contract", contract.Hex()),
			slog.Duration("next", next),
			slog.String("error", err.Error()),
		)
	}

	raw, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxRetries),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return nil, fmt.Errorf("chain: call %s on %s: %w", method, contract.Hex(), err)
	}

	out, err := parsed.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("chain: unpack %s: %w", method, err)
	}
	return out, nil
}

// isRevert reports whether an eth_call error is an execution revert rather
// than a transport failure.
func isRevert(err error) bool {
	s := err.Error()
	return strings.Contains(s, "revert") || strings.Contains(s, "execution reverted")
}
