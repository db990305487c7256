package pql

import (
	"regexp"
	"strings"

	"github.com/provq/provq/provenance"
)

// BooleanEvaluator decides whether an event satisfies a condition.
// NOT never appears in a compiled graph; it is folded away at compile
// time by negate.
type BooleanEvaluator interface {
	Evaluate(e *provenance.Event) bool
}

type andEvaluator struct {
	lhs, rhs BooleanEvaluator
}

func (a andEvaluator) Evaluate(e *provenance.Event) bool {
	return a.lhs.Evaluate(e) && a.rhs.Evaluate(e)
}

type orEvaluator struct {
	lhs, rhs BooleanEvaluator
}

func (o orEvaluator) Evaluate(e *provenance.Event) bool {
	return o.lhs.Evaluate(e) || o.rhs.Evaluate(e)
}

// equalsEvaluator compares stringified operands. An absent operand
// fails the comparison regardless of negation.
type equalsEvaluator struct {
	lhs, rhs OperandEvaluator
	negated  bool
}

func (c equalsEvaluator) Evaluate(e *provenance.Event) bool {
	a := c.lhs.Evaluate(e)
	b := c.rhs.Evaluate(e)
	if a == nil || b == nil {
		return false
	}
	equal := stringify(a) == stringify(b)
	if c.negated {
		return !equal
	}
	return equal
}

// greaterThanEvaluator orders operands numerically. Operands that do
// not convert to a number fail the comparison.
type greaterThanEvaluator struct {
	lhs, rhs OperandEvaluator
	negated  bool
}

func (c greaterThanEvaluator) Evaluate(e *provenance.Event) bool {
	a, okA := toLong(c.lhs.Evaluate(e))
	b, okB := toLong(c.rhs.Evaluate(e))
	if !okA || !okB {
		return false
	}
	if c.negated {
		return a <= b
	}
	return a > b
}

type lessThanEvaluator struct {
	lhs, rhs OperandEvaluator
	negated  bool
}

func (c lessThanEvaluator) Evaluate(e *provenance.Event) bool {
	a, okA := toLong(c.lhs.Evaluate(e))
	b, okB := toLong(c.rhs.Evaluate(e))
	if !okA || !okB {
		return false
	}
	if c.negated {
		return a >= b
	}
	return a < b
}

// matchesEvaluator tests the left operand against a regular
// expression. A literal pattern is compiled once at query compile
// time; a dynamic pattern compiles per evaluation and a malformed one
// simply never matches.
type matchesEvaluator struct {
	lhs, rhs OperandEvaluator
	pattern  *regexp.Regexp // non-nil when rhs is a literal
	negated  bool
}

// compileMatchPattern anchors the pattern so the whole value must
// match, not a substring.
func compileMatchPattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")$")
}

func (c matchesEvaluator) Evaluate(e *provenance.Event) bool {
	a := c.lhs.Evaluate(e)
	if a == nil {
		return false
	}

	re := c.pattern
	if re == nil {
		b := c.rhs.Evaluate(e)
		if b == nil {
			return false
		}
		compiled, err := compileMatchPattern(stringify(b))
		if err != nil {
			return false
		}
		re = compiled
	}

	matched := re.MatchString(stringify(a))
	if c.negated {
		return !matched
	}
	return matched
}

// startsWithEvaluator is a literal prefix test on the stringified
// left operand.
type startsWithEvaluator struct {
	lhs, rhs OperandEvaluator
	negated  bool
}

func (c startsWithEvaluator) Evaluate(e *provenance.Event) bool {
	a := c.lhs.Evaluate(e)
	b := c.rhs.Evaluate(e)
	if a == nil || b == nil {
		return false
	}
	has := strings.HasPrefix(stringify(a), stringify(b))
	if c.negated {
		return !has
	}
	return has
}

// eventTypeFilter accepts events whose type is in the set. The FROM
// clause compiles to one of these.
type eventTypeFilter struct {
	types map[provenance.EventType]struct{}
}

func newEventTypeFilter(types ...provenance.EventType) eventTypeFilter {
	set := make(map[provenance.EventType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return eventTypeFilter{types: set}
}

func (f eventTypeFilter) Evaluate(e *provenance.Event) bool {
	_, ok := f.types[e.Type]
	return ok
}

// complement returns a filter accepting every known type not in f.
func (f eventTypeFilter) complement() eventTypeFilter {
	out := eventTypeFilter{types: make(map[provenance.EventType]struct{})}
	for _, t := range provenance.EventTypes() {
		if _, ok := f.types[t]; !ok {
			out.types[t] = struct{}{}
		}
	}
	return out
}

// negate returns the logical inverse of an evaluator as a new value.
// AND and OR flip via De Morgan, comparisons toggle their negated
// flag, and a type filter complements its set.
func negate(ev BooleanEvaluator) BooleanEvaluator {
	switch t := ev.(type) {
	case andEvaluator:
		return orEvaluator{lhs: negate(t.lhs), rhs: negate(t.rhs)}
	case orEvaluator:
		return andEvaluator{lhs: negate(t.lhs), rhs: negate(t.rhs)}
	case equalsEvaluator:
		t.negated = !t.negated
		return t
	case greaterThanEvaluator:
		t.negated = !t.negated
		return t
	case lessThanEvaluator:
		t.negated = !t.negated
		return t
	case matchesEvaluator:
		t.negated = !t.negated
		return t
	case startsWithEvaluator:
		t.negated = !t.negated
		return t
	case eventTypeFilter:
		return t.complement()
	}
	return ev
}
