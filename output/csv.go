package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/provq/provq/pql"
)

// CSVFormatter outputs result rows as CSV format
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes result rows as CSV with a header row of column labels.
// The header is written even when the result set is empty.
func (c *CSVFormatter) Format(results pql.ResultSet) error {
	csvWriter := csv.NewWriter(c.writer)

	labels := results.Labels()
	if err := csvWriter.Write(labels); err != nil {
		return err
	}

	record := make([]string, len(labels))
	for results.Next() {
		row := results.Row()
		for i := range labels {
			record[i] = renderValue(row[i])
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	if err := results.Err(); err != nil {
		return err
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}
