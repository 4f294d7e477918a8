package token

import (
	"math/big"
	"strings"
)

// Details describes the details of a token.
type Details struct {
	Symbol   string // the ticker of the token, e.g., "USDC"
	Decimals int    // the power of ten to use when representing the "whole" unit of the token from its base value
}

// KnownToken is an ERC-20 contract whose balance is reported by default.
type KnownToken struct {
	Symbol  string
	Address string
}

// KnownTokens lists well-known stablecoin contracts on Ethereum mainnet.
var KnownTokens = []KnownToken{
	{Symbol: "USDT", Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7"},
	{Symbol: "USDC", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
	{Symbol: "DAI", Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F"},
}

// LookupKnownToken finds a known token by symbol, ignoring case.
func LookupKnownToken(symbol string) (KnownToken, bool) {
	for _, known := range KnownTokens {
		if strings.EqualFold(known.Symbol, symbol) {
			return known, true
		}
	}

	return KnownToken{}, false
}

// FormatUnits renders an amount in base units as whole tokens, trimming trailing zeros.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	value := new(big.Float).SetInt(amount)
	denom := new(big.Float).SetFloat64(1)
	for range decimals {
		denom.Mul(denom, big.NewFloat(10)) //nolint:mnd
	}
	value.Quo(value, denom)
	s := value.Text('f', decimals)
	// Trim trailing zeros and dot if needed
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}

	return s
}
