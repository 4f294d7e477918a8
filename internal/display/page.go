// Package display turns raw transfer records into the strings shown to a user.
package display

import (
	"github.com/jrh3k5/transfer-explorer/internal/transaction"
)

// Tone is the styling hint for a direction badge.
type Tone int

const (
	TonePositive Tone = iota
	ToneNegative
)

// Badge labels every row of a result page with the direction it was queried under.
type Badge struct {
	Label string
	Tone  Tone
}

// DirectionBadge returns "In" with positive tone for inbound queries and "Out" with negative tone otherwise.
func DirectionBadge(direction transaction.Direction) Badge {
	if direction == transaction.DirectionIn {
		return Badge{Label: "In", Tone: TonePositive}
	}

	return Badge{Label: "Out", Tone: ToneNegative}
}

// Columns are the headers of a rendered transfer table, in cell order.
var Columns = []string{"Block Number", "Unique Id", "Hash", "From", "To", "In/Out", "Amount", "Asset"}

// Row holds the display strings for one transfer alongside the record they came from.
type Row struct {
	Record   transaction.Record
	Block    string
	UniqueID string
	Hash     string
	From     string
	To       string
	Amount   string
	Asset    string
}

// Page is a formatted result set. All rows share the badge of the query's direction.
type Page struct {
	Direction transaction.Direction
	Badge     Badge
	Rows      []Row
}

// Format formats every record of a result page fetched under the given direction.
func Format(records []transaction.Record, direction transaction.Direction) Page {
	page := Page{
		Direction: direction,
		Badge:     DirectionBadge(direction),
		Rows:      make([]Row, 0, len(records)),
	}

	for _, record := range records {
		page.Rows = append(page.Rows, FormatRecord(record))
	}

	return page
}

// FormatRecord formats a single record.
func FormatRecord(record transaction.Record) Row {
	return Row{
		Record:   record,
		Block:    BlockNumber(record.BlockNum),
		UniqueID: UniqueID(record.UniqueID),
		Hash:     Hash(record.Hash),
		From:     Address(record.From),
		To:       Address(record.To),
		Amount:   Amount(string(record.Value)),
		Asset:    Asset(record.Asset),
	}
}

// Cells returns the row's values in Columns order.
func (p Page) Cells(row Row) []string {
	return []string{row.Block, row.UniqueID, row.Hash, row.From, row.To, p.Badge.Label, row.Amount, row.Asset}
}
