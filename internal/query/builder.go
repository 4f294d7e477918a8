// Package query translates transfer filters into the request payload expected by
// the cursor-paginated asset transfer API.
package query

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	ctsbig "github.com/jrh3k5/transfer-explorer/internal/big"
	"github.com/jrh3k5/transfer-explorer/internal/transaction"
)

const (
	// DefaultPageSize is the number of transfers requested per page when no size is configured.
	DefaultPageSize = 100

	// orderNewestFirst asks the API to enumerate transfers from the highest block down.
	orderNewestFirst = "desc"
)

// Payload is the request body for one page of transfers.
type Payload struct {
	FromBlock        string   `json:"fromBlock"`
	ToBlock          string   `json:"toBlock"`
	FromAddress      string   `json:"fromAddress"`
	ToAddress        string   `json:"toAddress"`
	ExcludeZeroValue bool     `json:"excludeZeroValue"`
	Order            string   `json:"order"`
	WithMetadata     bool     `json:"withMetadata"`
	MaxCount         string   `json:"maxCount"`
	Category         []string `json:"category"`
	PageKey          *string  `json:"pageKey,omitempty"`
}

// Builder builds payloads with a fixed page size.
type Builder struct {
	pageSize uint64
}

// NewBuilder returns a Builder that requests pageSize transfers per page.
// A non-positive page size falls back to DefaultPageSize.
func NewBuilder(pageSize int) *Builder {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Builder{pageSize: uint64(pageSize)}
}

// PageSize returns the number of transfers requested per page.
func (b *Builder) PageSize() int {
	return int(b.pageSize)
}

// Build returns the payload for the given filter. The cursor is echoed back as
// pageKey when non-nil; a nil cursor requests the first page.
// The filter is expected to have passed transaction.Filter.Validate.
func (b *Builder) Build(filter transaction.Filter, cursor *string) Payload {
	payload := Payload{
		FromBlock:        FormatBlock(filter.FromBlock),
		ToBlock:          FormatBlock(filter.UntilBlock),
		FromAddress:      filter.Address,
		ToAddress:        transaction.ZeroAddress,
		ExcludeZeroValue: false,
		Order:            orderNewestFirst,
		WithMetadata:     false,
		MaxCount:         hexutil.EncodeUint64(b.pageSize),
		Category:         []string{},
	}

	if filter.Direction == transaction.DirectionIn {
		payload.FromAddress, payload.ToAddress = transaction.ZeroAddress, filter.Address
	}

	if cursor != nil {
		pageKey := *cursor
		payload.PageKey = &pageKey
	}

	return payload
}

// FormatBlock renders a block token the way the API expects it: "latest" is passed
// through and a decimal block number becomes lowercase 0x-prefixed hex.
// Anything else is returned unchanged; callers validate block tokens beforehand.
func FormatBlock(block string) string {
	if block == transaction.LatestBlock {
		return block
	}

	number, err := ctsbig.BigIntFromDecimalString(block)
	if err != nil {
		return block
	}

	return hexutil.EncodeBig(number)
}
