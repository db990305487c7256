package pql

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/provq/provq/index"
)

// indexDateLayout is the date form accepted for range comparisons in
// translated queries.
const indexDateLayout = "2006/01/02 15:04:05"

// IndexQuery translates the WHERE clause into the index query model
// for push-down pre-filtering. The translation over-approximates: it
// never excludes an event the full evaluator would accept, so callers
// must still re-evaluate matches. Conditions with no WHERE clause, or
// whose shape the index cannot express, translate to MatchAll.
func (q *Query) IndexQuery() index.Query {
	if q.where == nil {
		return index.MatchAll{}
	}
	if out := translateCondition(q.where); out != nil {
		return out
	}
	return index.MatchAll{}
}

// translateCondition returns nil for conditions the index cannot
// express. A nil conjunct is dropped from its AND (widening the
// result); a nil branch anywhere under an OR makes the whole OR nil,
// since a disjunction missing a branch would exclude matches.
func translateCondition(ev BooleanEvaluator) index.Query {
	switch t := ev.(type) {
	case andEvaluator:
		var must []index.Query
		if l := translateCondition(t.lhs); l != nil {
			must = append(must, l)
		}
		if r := translateCondition(t.rhs); r != nil {
			must = append(must, r)
		}
		switch len(must) {
		case 0:
			return nil
		case 1:
			return must[0]
		}
		return index.Boolean{Must: must}

	case orEvaluator:
		l := translateCondition(t.lhs)
		r := translateCondition(t.rhs)
		if l == nil || r == nil {
			return nil
		}
		return index.Boolean{Should: []index.Query{l, r}}

	case equalsEvaluator:
		if t.negated {
			return nil
		}
		field, ok := indexFieldName(t.lhs)
		if !ok {
			return nil
		}
		switch lit := t.rhs.(type) {
		case stringLiteralEvaluator:
			return index.Term{Field: field, Value: strings.ToLower(lit.value)}
		case longLiteralEvaluator:
			return index.Term{Field: field, Value: strconv.FormatInt(lit.value, 10)}
		}
		return nil

	case greaterThanEvaluator:
		if t.negated {
			return nil
		}
		field, ok := indexFieldName(t.lhs)
		if !ok {
			return nil
		}
		bound, ok := literalLong(t.rhs)
		if !ok {
			return nil
		}
		return index.Range{Field: field, Min: bound, Max: math.MaxInt64}

	case lessThanEvaluator:
		if t.negated {
			return nil
		}
		field, ok := indexFieldName(t.lhs)
		if !ok {
			return nil
		}
		bound, ok := literalLong(t.rhs)
		if !ok {
			return nil
		}
		return index.Range{Field: field, Min: math.MinInt64, Max: bound}

	case matchesEvaluator:
		if t.negated {
			return nil
		}
		field, ok := indexFieldName(t.lhs)
		if !ok {
			return nil
		}
		lit, ok := t.rhs.(stringLiteralEvaluator)
		if !ok {
			return nil
		}
		re, err := index.NewRegexp(field, lit.value)
		if err != nil {
			return nil
		}
		return re

	case startsWithEvaluator:
		if t.negated {
			return nil
		}
		field, ok := indexFieldName(t.lhs)
		if !ok {
			return nil
		}
		lit, ok := t.rhs.(stringLiteralEvaluator)
		if !ok {
			return nil
		}
		re, err := index.NewRegexp(field, regexp.QuoteMeta(lit.value)+".*")
		if err != nil {
			return nil
		}
		return re
	}
	return nil
}

// indexFieldName resolves an operand to an indexed field name:
// event properties map to the searchable field names, attribute
// references with literal names map to the attribute name.
func indexFieldName(op OperandEvaluator) (string, bool) {
	switch t := op.(type) {
	case propertyEvaluator:
		return t.prop.fieldName(), true
	case attributeEvaluator:
		return t.literalName()
	case stringToLongEvaluator:
		return indexFieldName(t.inner)
	}
	return "", false
}

// literalLong extracts a numeric bound from a comparison's right
// operand: an integer literal directly, or a date-formatted string
// literal as epoch millis.
func literalLong(op OperandEvaluator) (int64, bool) {
	switch t := op.(type) {
	case longLiteralEvaluator:
		return t.value, true
	case stringLiteralEvaluator:
		ts, err := time.ParseInLocation(indexDateLayout, t.value, time.UTC)
		if err != nil {
			return 0, false
		}
		return ts.UnixMilli(), true
	case stringToLongEvaluator:
		return literalLong(t.inner)
	}
	return 0, false
}
