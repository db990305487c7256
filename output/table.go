package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/provq/provq/pql"
)

// TableFormatter outputs result rows as an aligned text table
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format writes result rows as a table with column labels as the
// header. Absent values render as empty cells.
func (t *TableFormatter) Format(results pql.ResultSet) error {
	labels := results.Labels()

	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(labels)
	table.SetAutoFormatHeaders(false)

	for results.Next() {
		row := results.Row()
		record := make([]string, len(labels))
		for i := range labels {
			record[i] = renderValue(row[i])
		}
		table.Append(record)
	}
	if err := results.Err(); err != nil {
		return err
	}

	table.Render()
	return nil
}
