// Package index models the query form a search index accepts. A
// compiled provenance query translates its WHERE clause into this
// model so a backing index can narrow the candidate set before full
// evaluation. Every query can also run directly against events, which
// is what a plain repository scan uses.
package index

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/provq/provq/provenance"
)

// Query is a node in an index search expression.
type Query interface {
	// Matches reports whether the event satisfies this query.
	Matches(e *provenance.Event) bool
}

// MatchAll accepts every event.
type MatchAll struct{}

// Matches always returns true.
func (MatchAll) Matches(*provenance.Event) bool { return true }

// Boolean combines sub-queries. All Must clauses are required; when
// Should clauses are present at least one of them must match.
type Boolean struct {
	Must   []Query
	Should []Query
}

// Matches evaluates the boolean combination against the event.
func (q Boolean) Matches(e *provenance.Event) bool {
	for _, m := range q.Must {
		if !m.Matches(e) {
			return false
		}
	}
	if len(q.Should) == 0 {
		return true
	}
	for _, s := range q.Should {
		if s.Matches(e) {
			return true
		}
	}
	return false
}

// Term matches a field by case-insensitive string equality.
type Term struct {
	Field string
	Value string
}

// Matches reports whether the event's field equals the term value.
func (q Term) Matches(e *provenance.Event) bool {
	v, ok := fieldString(e, q.Field)
	if !ok {
		return false
	}
	return strings.EqualFold(v, q.Value)
}

// Range matches a numeric field inside the inclusive [Min, Max] range.
type Range struct {
	Field string
	Min   int64
	Max   int64
}

// Matches reports whether the event's field falls inside the range.
func (q Range) Matches(e *provenance.Event) bool {
	v, ok := fieldLong(e, q.Field)
	if !ok {
		return false
	}
	return v >= q.Min && v <= q.Max
}

// Regexp matches a field against a precompiled regular expression.
type Regexp struct {
	Field   string
	Pattern string
	re      *regexp.Regexp
}

// NewRegexp compiles pattern and returns the query, or an error when
// the pattern is malformed. The whole field value must match.
func NewRegexp(field, pattern string) (*Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, err
	}
	return &Regexp{Field: field, Pattern: pattern, re: re}, nil
}

// Matches reports whether the whole field value matches the pattern.
func (q *Regexp) Matches(e *provenance.Event) bool {
	v, ok := fieldString(e, q.Field)
	if !ok {
		return false
	}
	return q.re.MatchString(v)
}

// Filter returns the events accepted by q, preserving order.
func Filter(events []*provenance.Event, q Query) []*provenance.Event {
	if q == nil {
		return events
	}
	var out []*provenance.Event
	for _, e := range events {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// fieldString resolves a searchable field or attribute to its string
// form. Empty event fields count as absent.
func fieldString(e *provenance.Event, field string) (string, bool) {
	switch field {
	case provenance.FieldEventType:
		return e.Type.String(), true
	case provenance.FieldEventTime:
		return strconv.FormatInt(e.Time, 10), true
	case provenance.FieldFileSize:
		return strconv.FormatInt(e.Size, 10), true
	case provenance.FieldTransitURI:
		return nonEmpty(e.TransitURI)
	case provenance.FieldComponentID:
		return nonEmpty(e.ComponentID)
	case provenance.FieldComponentType:
		return nonEmpty(e.ComponentType)
	case provenance.FieldRelationship:
		return nonEmpty(e.Relationship)
	case provenance.FieldFlowFileUUID:
		return nonEmpty(e.FlowFileUUID)
	case provenance.FieldDetails:
		return nonEmpty(e.Details)
	}
	return e.Attribute(field)
}

// fieldLong resolves a field to a numeric value where that makes sense.
func fieldLong(e *provenance.Event, field string) (int64, bool) {
	switch field {
	case provenance.FieldEventTime:
		return e.Time, true
	case provenance.FieldFileSize:
		return e.Size, true
	}
	s, ok := fieldString(e, field)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func nonEmpty(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	return s, true
}
