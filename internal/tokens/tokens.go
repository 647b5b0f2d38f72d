// Package tokens holds the static token and market tables for supported
// chains. These mirror the deployed contract addresses on Arbitrum One and
// are never mutated at runtime.
package tokens

import (
	"strings"

	"github.com/calvinwei/defolio/internal/domain"
)

// Arbitrum is the swap/asset token list for Arbitrum One (chain 42161).
var Arbitrum = []domain.Token{
	{
		Name:      "USD Coin",
		Symbol:    "USDC",
		Address:   "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
		Decimals:  6,
		LogoURI:   "https://logo.moralis.io/0xa4b1_0xaf88d065e77c8cc2239327c5edb3a432268e5831_01a431622b9a9ca34308038f8d54751b.png",
		MinAmount: "1",
	},
	{
		Name:      "Tether USD",
		Symbol:    "USDT",
		Address:   "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9",
		Decimals:  6,
		LogoURI:   "https://logo.moralis.io/0xa4b1_0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9_00fd48dbec30ef6e8fb563f2b0b82b6a.png",
		MinAmount: "1",
	},
	{
		Name:      "Dai Stablecoin",
		Symbol:    "DAI",
		Address:   "0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1",
		Decimals:  18,
		LogoURI:   "https://logo.moralis.io/0xa4b1_0xda10009cbd5d07dd0cecc66161fc93d7c9000da1_247e8cebb18c62db70489edbff8cc6d8.png",
		MinAmount: "1",
	},
	{
		Name:      "Bridged USDC",
		Symbol:    "USDC.e",
		Address:   "0xFF970A61A04b1cA14834A43f5dE4533eBDDB5CC8",
		Decimals:  6,
		LogoURI:   "https://logo.moralis.io/0xa4b1_0xaf88d065e77c8cc2239327c5edb3a432268e5831_01a431622b9a9ca34308038f8d54751b.png",
		MinAmount: "1",
	},
	{
		Name:      "Wrapped Ether",
		Symbol:    "WETH",
		Address:   "0x82af49447d8a07e3bd95bd0d56f35241523fbab1",
		Decimals:  18,
		LogoURI:   "https://logo.moralis.io/0xa4b1_0x82af49447d8a07e3bd95bd0d56f35241523fbab1_03f6d08a9f4a4aad3a5b129ad0900dd3.png",
		MinAmount: "0.001",
	},
}

// ForChain returns the token list for a chain, or nil when the chain is not
// supported.
func ForChain(chain domain.ChainID) []domain.Token {
	if chain == domain.ChainArbitrum {
		return Arbitrum
	}
	return nil
}

// BySymbol looks a token up by its symbol on the given chain.
func BySymbol(chain domain.ChainID, symbol string) (domain.Token, bool) {
	for _, t := range ForChain(chain) {
		if strings.EqualFold(t.Symbol, symbol) {
			return t, true
		}
	}
	return domain.Token{}, false
}

// ByAddress looks a token up by its contract address on the given chain.
func ByAddress(chain domain.ChainID, address string) (domain.Token, bool) {
	for _, t := range ForChain(chain) {
		if strings.EqualFold(t.Address, address) {
			return t, true
		}
	}
	return domain.Token{}, false
}
