package transaction

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ctsbig "github.com/jrh3k5/transfer-explorer/internal/big"
)

const (
	// LatestBlock is the block token that means "the chain head".
	LatestBlock = "latest"

	// ZeroAddress is the protocol-level "match all" value for the unused side of a from/to filter.
	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// DefaultFromBlock and DefaultUntilBlock are applied when the caller leaves a bound empty.
	DefaultFromBlock  = "0"
	DefaultUntilBlock = LatestBlock
)

// Filter is the user-facing set of constraints for one transfer query.
type Filter struct {
	Address    string    // the 0x-prefixed, 42-character address of interest
	FromBlock  string    // "latest" or a decimal block number
	UntilBlock string    // "latest" or a decimal block number
	Direction  Direction // whether Address is the sender or the receiver
}

// ValidationError describes a filter value that must be rejected before any request is built.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// WithDefaults fills empty block bounds and direction with their defaults.
func (f Filter) WithDefaults() Filter {
	if f.FromBlock == "" {
		f.FromBlock = DefaultFromBlock
	}

	if f.UntilBlock == "" {
		f.UntilBlock = DefaultUntilBlock
	}

	if f.Direction == "" {
		f.Direction = DirectionOut
	}

	return f
}

// Validate checks the address shape, both block tokens and the direction.
// The first violation found is returned as a *ValidationError.
func (f Filter) Validate() error {
	if !IsAddress(f.Address) {
		return &ValidationError{
			Field:  "address",
			Value:  f.Address,
			Reason: "must be 0x followed by 40 hex digits",
		}
	}

	if !IsBlockToken(f.FromBlock) {
		return &ValidationError{
			Field:  "from block",
			Value:  f.FromBlock,
			Reason: "must be 'latest' or a non-negative decimal number",
		}
	}

	if !IsBlockToken(f.UntilBlock) {
		return &ValidationError{
			Field:  "until block",
			Value:  f.UntilBlock,
			Reason: "must be 'latest' or a non-negative decimal number",
		}
	}

	if !f.Direction.valid() {
		return &ValidationError{Field: "direction", Value: string(f.Direction), Reason: "must be 'in' or 'out'"}
	}

	return nil
}

// SameQuery reports whether both filters describe the same cursor sequence,
// i.e. whether switching from one to the other can keep pagination state.
func (f Filter) SameQuery(other Filter) bool {
	return strings.EqualFold(f.Address, other.Address) &&
		f.FromBlock == other.FromBlock &&
		f.UntilBlock == other.UntilBlock &&
		f.Direction == other.Direction
}

// IsAddress reports whether s is a 0x-prefixed, 42-character hex address.
func IsAddress(s string) bool {
	return len(s) == 2*common.AddressLength+2 && strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// IsBlockToken reports whether s is "latest" or a non-negative decimal digit string.
func IsBlockToken(s string) bool {
	return s == LatestBlock || ctsbig.IsDecimalString(s)
}
