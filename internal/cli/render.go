package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/rshade/datatable/internal/query"
	"github.com/rshade/datatable/internal/tui"
)

// Output formats.
const (
	formatTable  = "table"
	formatJSON   = "json"
	formatYAML   = "yaml"
	formatNDJSON = "ndjson"
)

const tabPadding = 2

// listResult is the machine-readable shape of one listed page.
type listResult struct {
	Items []tui.Row  `json:"items" yaml:"items"`
	Total int        `json:"total" yaml:"total"`
	Meta  query.Meta `json:"meta"  yaml:"meta"`
}

// defaultFormat picks table output for terminals and JSON otherwise.
func defaultFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		return formatTable
	}
	return formatJSON
}

// renderTable writes rows as aligned columns followed by a pager line.
func renderTable(w io.Writer, specs []tui.ColumnSpec, rows []tui.Row, meta *query.Meta) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	cols := tui.RowColumns(specs)

	titles := make([]string, len(cols))
	rules := make([]string, len(cols))
	for i, col := range cols {
		titles[i] = col.Title
		rules[i] = strings.Repeat("-", len(col.Title))
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	fmt.Fprintln(tw, strings.Join(rules, "\t"))

	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = col.Value(row)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if meta != nil {
		_, err := fmt.Fprintf(w, "\nPage %d/%d  (%d items, %d per page)\n",
			meta.CurrentPage, max(meta.TotalPages, 1), meta.TotalItems, meta.PageSize)
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d items\n", len(rows))
	return err
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func renderNDJSON(w io.Writer, rows []tui.Row) error {
	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
