package output

import (
	"encoding/json"
	"io"

	"github.com/provq/provq/pql"
)

// JSONFormatter outputs result rows as JSON Lines format
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes result rows as JSON Lines (one JSON object per line).
// Absent values serialize as null.
func (j *JSONFormatter) Format(results pql.ResultSet) error {
	labels := results.Labels()
	encoder := json.NewEncoder(j.writer)

	for results.Next() {
		row := results.Row()
		object := make(map[string]interface{}, len(labels))
		for i, label := range labels {
			object[label] = jsonValue(row[i])
		}
		if err := encoder.Encode(object); err != nil {
			return err
		}
	}
	return results.Err()
}
