package display

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	// Missing is shown in place of an absent value.
	Missing = "-"

	// DefaultAsset is shown when a transfer carries no asset symbol.
	DefaultAsset = "ETH"

	zeroAmount     = "0"
	amountDecimals = 6
	ellipsis       = "..."
	idDelimiter    = ":"

	hashHead    = 10
	hashTail    = 8
	addressHead = 8
	addressTail = 6
)

// BlockNumber renders a hex-encoded block number as a grouped decimal, e.g. "0x10d4f" as "68,943".
// Values that are not valid hex are returned unchanged.
func BlockNumber(hex string) string {
	if hex == "" {
		return Missing
	}

	number, ok := parseHexBig(hex)
	if !ok {
		return hex
	}

	return humanize.BigComma(number)
}

// BlockDecimal renders a hex-encoded block number as a plain decimal, without grouping.
func BlockDecimal(hex string) string {
	if hex == "" {
		return ""
	}

	number, ok := parseHexBig(hex)
	if !ok {
		return hex
	}

	return number.String()
}

// UniqueID strips the ":<category>" suffix from a transfer's unique ID.
func UniqueID(uniqueID string) string {
	if uniqueID == "" {
		return Missing
	}

	id, _, _ := strings.Cut(uniqueID, idDelimiter)

	return id
}

// Truncate keeps the first headLen and last tailLen bytes of s, joined by "...".
// A tailLen of zero repeats all of s after the ellipsis.
func Truncate(s string, headLen int, tailLen int) string {
	if s == "" {
		return Missing
	}

	head := s[:min(max(headLen, 0), len(s))]

	// a zero tail keeps the whole string, a negative one drops that many leading bytes
	tailStart := len(s) - tailLen
	if tailLen <= 0 {
		tailStart = -tailLen
	}
	tail := s[min(max(tailStart, 0), len(s)):]

	return head + ellipsis + tail
}

// Hash shortens a transaction hash for display.
func Hash(hash string) string {
	return Truncate(hash, hashHead, hashTail)
}

// Address shortens an address for display.
func Address(address string) string {
	return Truncate(address, addressHead, addressTail)
}

// Amount renders a decimal value with exactly six fractional digits.
// Absent, unparseable and non-finite values render as "0".
func Amount(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return zeroAmount
	}

	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return zeroAmount
	}

	if parsed == 0 {
		// normalizes negative zero
		parsed = 0
	}

	return strconv.FormatFloat(parsed, 'f', amountDecimals, 64)
}

// Asset returns the asset symbol, falling back to the chain's native asset.
func Asset(asset string) string {
	if asset == "" {
		return DefaultAsset
	}

	return asset
}

func parseHexBig(hex string) (*big.Int, bool) {
	if number, err := hexutil.DecodeBig(hex); err == nil {
		return number, true
	}

	// tolerate leading zeros, which strict quantity decoding rejects
	digits, hasPrefix := strings.CutPrefix(strings.ToLower(hex), "0x")
	if !hasPrefix || digits == "" {
		return nil, false
	}

	number, ok := new(big.Int).SetString(digits, 16) //nolint:mnd
	if !ok || number.Sign() < 0 {
		return nil, false
	}

	return number, true
}
