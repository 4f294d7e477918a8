package transaction

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is a single historical transfer as reported by the indexing API.
// Records are never modified after they are decoded.
type Record struct {
	BlockNum string        `json:"blockNum"`           // the block number, hex-encoded
	UniqueID string        `json:"uniqueId"`           // unique ID, optionally suffixed with ":<category>"
	Hash     string        `json:"hash"`               // the hash of the transaction, encoded in hex
	From     string        `json:"from"`               // the address that sent the value, encoded in hex
	To       string        `json:"to"`                 // the address that received the value, encoded in hex
	Value    DecimalString `json:"value"`              // the amount transferred, in whole units of the asset
	Asset    string        `json:"asset,omitempty"`    // the asset symbol, if known
	Category string        `json:"category,omitempty"` // the transfer category, e.g. "external" or "erc20"
}

// DecimalString holds a decimal number as text.
// It decodes from a JSON string, a JSON number or null (which leaves it empty).
type DecimalString string

func (d *DecimalString) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)

	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*d = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("failed to decode decimal string: %w", err)
		}

		*d = DecimalString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("failed to decode decimal number %s: %w", trimmed, err)
		}

		*d = DecimalString(n.String())
	}

	return nil
}

// Page is one page of transfers along with the cursor for the page after it.
type Page struct {
	Transfers []Record `json:"transfers"`
	PageKey   *string  `json:"pageKey,omitempty"`
}

// NextCursor returns the cursor for the following page, or nil when the API
// reported that there are no further pages (absent, null or empty pageKey).
func (p *Page) NextCursor() *string {
	if p == nil || p.PageKey == nil || *p.PageKey == "" {
		return nil
	}

	cursor := *p.PageKey

	return &cursor
}
