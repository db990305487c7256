package pql

import (
	"strconv"
	"strings"
	"time"

	"github.com/provq/provq/provenance"
)

// Date layouts accepted where a comparison needs a number but the
// operand is a string.
var dateLayouts = []string{
	"2006/01/02 15:04:05.000",
	"2006/01/02 15:04:05",
}

// toLong converts a runtime value to an int64 for ordering
// comparisons. Strings convert when they are plain digit runs or
// match one of the date layouts (yielding epoch millis).
func toLong(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case string:
		return stringToLong(t)
	}
	return 0, false
}

func stringToLong(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	for _, layout := range dateLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.UnixMilli(), true
		}
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// stringify renders a runtime value for equality comparison, sorting,
// and output.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case provenance.EventType:
		return t.String()
	case *provenance.Event:
		return strconv.FormatInt(t.ID, 10)
	}
	return ""
}
