package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// mustABI parses an ABI definition at init time. The definitions below are
// static, so a parse failure is a programming error.
func mustABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("chain: invalid ABI: " + err.Error())
	}
	return parsed
}

// erc20ABI covers the balanceOf view used for aToken and wallet balances.
var erc20ABI = mustABI(`[
	{
		"name": "balanceOf",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "account", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	}
]`)

// aavePoolABI covers the Aave V3 Pool reserve-data getter. Rates inside the
// returned struct are ray-encoded (1e27).
var aavePoolABI = mustABI(`[
	{
		"name": "getReserveData",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "asset", "type": "address"}],
		"outputs": [
			{
				"name": "",
				"type": "tuple",
				"components": [
					{"name": "configuration", "type": "uint256"},
					{"name": "liquidityIndex", "type": "uint256"},
					{"name": "currentLiquidityRate", "type": "uint256"},
					{"name": "variableBorrowIndex", "type": "uint256"},
					{"name": "currentVariableBorrowRate", "type": "uint256"},
					{"name": "currentStableBorrowRate", "type": "uint256"},
					{"name": "lastUpdateTimestamp", "type": "uint256"},
					{"name": "id", "type": "uint40"},
					{"name": "aTokenAddress", "type": "address"},
					{"name": "stableDebtTokenAddress", "type": "address"},
					{"name": "variableDebtTokenAddress", "type": "address"},
					{"name": "interestRateStrategyAddress", "type": "address"},
					{"name": "accruedToTreasury", "type": "uint128"},
					{"name": "unbacked", "type": "uint128"},
					{"name": "isolationModeTotalDebt", "type": "uint128"}
				]
			}
		]
	}
]`)

// cometABI covers the Compound V3 Comet utilization and rate getters plus the
// legacy cToken views the position reader needs.
var cometABI = mustABI(`[
	{
		"name": "getUtilization",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"name": "getSupplyRate",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "utilization", "type": "uint256"}],
		"outputs": [{"name": "", "type": "uint64"}]
	},
	{
		"name": "getBorrowRate",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "utilization", "type": "uint256"}],
		"outputs": [{"name": "", "type": "uint64"}]
	},
	{
		"name": "balanceOf",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "account", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"name": "exchangeRateStored",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"name": "underlying",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "address"}]
	}
]`)

// dolomiteABI covers the DolomiteMargin account balance getter. Par values
// are uint128, Wei values uint256, both signed via a separate flag.
var dolomiteABI = mustABI(`[
	{
		"name": "getAccountBalances",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{
				"name": "account",
				"type": "tuple",
				"components": [
					{"name": "owner", "type": "address"},
					{"name": "number", "type": "uint256"}
				]
			}
		],
		"outputs": [
			{"name": "", "type": "uint256[]"},
			{"name": "", "type": "address[]"},
			{
				"name": "",
				"type": "tuple[]",
				"components": [
					{"name": "sign", "type": "bool"},
					{"name": "value", "type": "uint128"}
				]
			},
			{
				"name": "",
				"type": "tuple[]",
				"components": [
					{"name": "sign", "type": "bool"},
					{"name": "value", "type": "uint256"}
				]
			}
		]
	}
]`)
