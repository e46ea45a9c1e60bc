// Package report renders operator-facing tables summarizing a seat list and
// allocation policy, the outcome of a published allocation, and repeated
// simulated allocations. Each report is computed as a value, and separately
// rendered as text tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// table renders a text table of |header| and |rows| to |w|, followed by
// |footer| if it's non-nil.
func table(w io.Writer, header []string, rows [][]string, footer []string) error {
	var t = tablewriter.NewWriter(w)
	t.Header(header)

	for _, row := range rows {
		if err := t.Append(row); err != nil {
			return err
		}
	}
	if footer != nil {
		t.Footer(footer)
	}
	return t.Render()
}

// heading writes a section title to |w|.
func heading(w io.Writer, format string, args ...interface{}) error {
	var _, err = fmt.Fprintf(w, "\n== "+format+" ==\n", args...)
	return err
}

func count(n int) string { return humanize.Comma(int64(n)) }

func itoa(n int) string { return strconv.Itoa(n) }

func float(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }
