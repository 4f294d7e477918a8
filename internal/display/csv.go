package display

import (
	"encoding/csv"
	"fmt"
	"io"
)

var csvHeader = []string{"Block Number", "Unique Id", "Transaction Hash", "From", "To", "Direction", "Amount", "Asset"}

// WriteCSV writes the page as CSV with untruncated hashes and addresses.
// Block numbers are written as plain decimals.
func WriteCSV(w io.Writer, page Page) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range page.Rows {
		record := []string{
			BlockDecimal(row.Record.BlockNum),
			row.UniqueID,
			row.Record.Hash,
			row.Record.From,
			row.Record.To,
			page.Badge.Label,
			row.Amount,
			row.Asset,
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record for transaction hash %q: %w", row.Record.Hash, err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return nil
}
