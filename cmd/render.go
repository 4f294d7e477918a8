package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jrh3k5/transfer-explorer/internal/display"
	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	"github.com/jrh3k5/transfer-explorer/internal/orchestrator"
)

// renderState writes a summary line followed by the transfer table or the error.
func renderState(out io.Writer, state orchestrator.State) {
	filter := state.Filter
	fmt.Fprintf(out, "\n%s: transfers %s %s, blocks %s to %s, page %d\n",
		display.DirectionBadge(filter.Direction).Label,
		filter.Direction.Preposition(),
		filter.Address,
		filter.FromBlock,
		filter.UntilBlock,
		state.Key.Page+1,
	)

	switch state.Status {
	case orchestrator.StatusError:
		fmt.Fprintf(out, "Error: %s\n", state.Message())
		if ctshttp.IsTransient(state.Err) {
			fmt.Fprintln(out, "This looks temporary; retrying may succeed.")
		}
	case orchestrator.StatusSuccess:
		if len(state.Display.Rows) == 0 {
			fmt.Fprintln(out, "No transfers found.")

			return
		}

		renderTable(out, state.Display)
	default:
		fmt.Fprintf(out, "Status: %s\n", state.Status)
	}
}

func renderTable(out io.Writer, page display.Page) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd
	fmt.Fprintln(tw, strings.Join(display.Columns, "\t"))

	for _, row := range page.Rows {
		fmt.Fprintln(tw, strings.Join(page.Cells(row), "\t"))
	}

	_ = tw.Flush()
}
