// Package output provides formatters for rendering query results.
//
// Supported formats:
//   - JSON Lines: one JSON object per result row
//   - CSV: comma-separated values with a header row of column labels
//   - Table: aligned text table for terminal display
//
// Example usage:
//
//	formatter := output.NewTableFormatter(os.Stdout)
//	if err := formatter.Format(results); err != nil {
//	    log.Fatal(err)
//	}
package output

import (
	"io"
	"strconv"

	"github.com/provq/provq/pql"
	"github.com/provq/provq/provenance"
)

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to drain a result set into the
// target format and SetOutput to change the output destination.
type Formatter interface {
	// Format drains the result set and writes every row
	Format(results pql.ResultSet) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// renderValue converts a result value to its textual form. Absent
// values render as the empty string, event types by name, and whole
// events by their record ID.
func renderValue(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case provenance.EventType:
		return val.String()
	case *provenance.Event:
		return strconv.FormatInt(val.ID, 10)
	default:
		return ""
	}
}

// jsonValue converts a result value to a form the JSON encoder can
// serialize. Numbers stay numeric; events reduce to their record ID.
func jsonValue(v interface{}) interface{} {
	switch val := v.(type) {
	case provenance.EventType:
		return val.String()
	case *provenance.Event:
		return val.ID
	default:
		return v
	}
}
