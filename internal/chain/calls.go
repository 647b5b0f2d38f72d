package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/calvinwei/defolio/internal/domain"
)

// ReserveData carries the rate fields of an Aave V3 reserve. Rates are
// ray-encoded (1e27).
type ReserveData struct {
	Configuration               *big.Int
	LiquidityIndex              *big.Int
	CurrentLiquidityRate        *big.Int
	VariableBorrowIndex         *big.Int
	CurrentVariableBorrowRate   *big.Int
	CurrentStableBorrowRate     *big.Int
	LastUpdateTimestamp         *big.Int
	Id                          *big.Int
	ATokenAddress               common.Address
	StableDebtTokenAddress      common.Address
	VariableDebtTokenAddress    common.Address
	InterestRateStrategyAddress common.Address
	AccruedToTreasury           *big.Int
	Unbacked                    *big.Int
	IsolationModeTotalDebt      *big.Int
}

// SignedValue is a DolomiteMargin Par or Wei balance: magnitude plus sign.
type SignedValue struct {
	Sign  bool
	Value *big.Int
}

// AccountBalances is the full DolomiteMargin balance listing for an account.
type AccountBalances struct {
	MarketIDs []*big.Int
	Tokens    []common.Address
	Pars      []SignedValue
	Weis      []SignedValue
}

// BalanceOf returns the ERC-20 balance of owner at the token contract.
func (c *Client) BalanceOf(ctx context.Context, chain domain.ChainID, token, owner string) (*big.Int, error) {
	out, err := c.call(ctx, chain, common.HexToAddress(token), erc20ABI, "balanceOf", common.HexToAddress(owner))
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// GetReserveData returns the Aave V3 reserve state for an asset.
func (c *Client) GetReserveData(ctx context.Context, chain domain.ChainID, pool, asset string) (ReserveData, error) {
	out, err := c.call(ctx, chain, common.HexToAddress(pool), aavePoolABI, "getReserveData", common.HexToAddress(asset))
	if err != nil {
		return ReserveData{}, err
	}
	rd := *abi.ConvertType(out[0], new(ReserveData)).(*ReserveData)
	return rd, nil
}

// GetUtilization returns a Comet market's current utilization (1e18 scale).
func (c *Client) GetUtilization(ctx context.Context, chain domain.ChainID, market string) (*big.Int, error) {
	out, err := c.call(ctx, chain, common.HexToAddress(market), cometABI, "getUtilization")
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// GetSupplyRate returns a Comet market's per-second supply rate (1e18 scale)
// at the given utilization.
func (c *Client) GetSupplyRate(ctx context.Context, chain domain.ChainID, market string, utilization *big.Int) (*big.Int, error) {
	out, err := c.call(ctx, chain, common.HexToAddress(market), cometABI, "getSupplyRate", utilization)
	if err != nil {
		return nil, err
	}
	return rateToBig(out[0])
}

// GetBorrowRate returns a Comet market's per-second borrow rate (1e18 scale)
// at the given utilization.
func (c *Client) GetBorrowRate(ctx context.Context, chain domain.ChainID, market string, utilization *big.Int) (*big.Int, error) {
	out, err := c.call(ctx, chain, common.HexToAddress(market), cometABI, "getBorrowRate", utilization)
	if err != nil {
		return nil, err
	}
	return rateToBig(out[0])
}

// ExchangeRateStored returns a cToken's stored exchange rate (1e18 scale).
func (c *Client) ExchangeRateStored(ctx context.Context, chain domain.ChainID, cToken string) (*big.Int, error) {
	out, err := c.call(ctx, chain, common.HexToAddress(cToken), cometABI, "exchangeRateStored")
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// Underlying returns the underlying asset address of a cToken. The call
// reverts on markets whose base asset is the native token.
func (c *Client) Underlying(ctx context.Context, chain domain.ChainID, cToken string) (common.Address, error) {
	out, err := c.call(ctx, chain, common.HexToAddress(cToken), cometABI, "underlying")
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// GetAccountBalances returns every market balance DolomiteMargin tracks for
// the owner's account number 0.
func (c *Client) GetAccountBalances(ctx context.Context, chain domain.ChainID, margin, owner string) (AccountBalances, error) {
	account := struct {
		Owner  common.Address
		Number *big.Int
	}{
		Owner:  common.HexToAddress(owner),
		Number: big.NewInt(0),
	}

	out, err := c.call(ctx, chain, common.HexToAddress(margin), dolomiteABI, "getAccountBalances", account)
	if err != nil {
		return AccountBalances{}, err
	}
	if len(out) != 4 {
		return AccountBalances{}, fmt.Errorf("chain: getAccountBalances returned %d values, want 4", len(out))
	}

	return AccountBalances{
		MarketIDs: *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int),
		Tokens:    *abi.ConvertType(out[1], new([]common.Address)).(*[]common.Address),
		Pars:      *abi.ConvertType(out[2], new([]SignedValue)).(*[]SignedValue),
		Weis:      *abi.ConvertType(out[3], new([]SignedValue)).(*[]SignedValue),
	}, nil
}

// rateToBig normalizes Comet rate return values, which the ABI declares as
// uint64, into *big.Int for the rate converters.
func rateToBig(v any) (*big.Int, error) {
	switch r := v.(type) {
	case uint64:
		return new(big.Int).SetUint64(r), nil
	case *big.Int:
		return r, nil
	default:
		return nil, fmt.Errorf("chain: unexpected rate type %T", v)
	}
}
