package pql

import (
	"github.com/provq/provq/provenance"
)

// Accumulator describes one SELECT column: how to extract or
// aggregate its value, its label, and its result type. Descriptors
// are immutable and shareable; all mutable state lives in the
// AccumulatorState created per execution.
type Accumulator interface {
	// ID is stable within a compiled query.
	ID() int64
	// Label is the column heading: canonical source text or AS alias.
	Label() string
	// ReturnType is the compile-time type of produced values.
	ReturnType() ValueType
	// IsAggregate reports whether this column forces aggregation.
	IsAggregate() bool
	// NewState creates fresh accumulation state for one execution.
	NewState() AccumulatorState
}

// AccumulatorState receives events during one execution. Accumulate
// folds an event into the given group and returns the column's
// current value for that group; a nil group means "evaluate only,
// store nothing", which is what the streaming strategy uses.
type AccumulatorState interface {
	Accumulate(e *provenance.Event, g *Group) interface{}
	Values(g *Group) []interface{}
}

type accumulatorBase struct {
	id    int64
	label string
}

func (a accumulatorBase) ID() int64     { return a.id }
func (a accumulatorBase) Label() string { return a.label }

// valueAccumulator passes event values through unaggregated. With a
// nil extractor the whole event is the value. In distinct mode a
// group keeps each value at most once.
type valueAccumulator struct {
	accumulatorBase
	extractor OperandEvaluator // nil means the whole event
	distinct  bool
}

func (a valueAccumulator) ReturnType() ValueType {
	if a.extractor == nil {
		return TypeEvent
	}
	return a.extractor.Type()
}

func (a valueAccumulator) IsAggregate() bool { return false }

func (a valueAccumulator) NewState() AccumulatorState {
	return &valueState{acc: a, groups: newGroupMap()}
}

type valueState struct {
	acc    valueAccumulator
	groups *groupMap
}

type valueList struct {
	values []interface{}
	seen   map[interface{}]struct{}
}

func (s *valueState) Accumulate(e *provenance.Event, g *Group) interface{} {
	var v interface{}
	if s.acc.extractor == nil {
		v = e
	} else {
		v = s.acc.extractor.Evaluate(e)
	}
	if g == nil {
		return v
	}

	var list *valueList
	if existing, ok := s.groups.lookup(g); ok {
		list = existing.(*valueList)
	} else {
		list = &valueList{}
		if s.acc.distinct {
			list.seen = make(map[interface{}]struct{})
		}
		s.groups.store(g, list)
	}

	if s.acc.distinct {
		if _, dup := list.seen[v]; dup {
			return v
		}
		list.seen[v] = struct{}{}
	}
	list.values = append(list.values, v)
	return v
}

func (s *valueState) Values(g *Group) []interface{} {
	if existing, ok := s.groups.lookup(g); ok {
		return existing.(*valueList).values
	}
	return nil
}

// sumAccumulator totals a long-typed operand, skipping absent values.
type sumAccumulator struct {
	accumulatorBase
	extractor OperandEvaluator
}

func (a sumAccumulator) ReturnType() ValueType { return TypeLong }
func (a sumAccumulator) IsAggregate() bool     { return true }

func (a sumAccumulator) NewState() AccumulatorState {
	return &sumState{acc: a, groups: newGroupMap()}
}

type sumState struct {
	acc    sumAccumulator
	groups *groupMap
}

func (s *sumState) Accumulate(e *provenance.Event, g *Group) interface{} {
	v := s.acc.extractor.Evaluate(e)
	n, ok := v.(int64)
	if g == nil {
		if !ok {
			return nil
		}
		return n
	}

	var sum int64
	if existing, found := s.groups.lookup(g); found {
		sum = existing.(int64)
	}
	if ok {
		sum += n
	}
	s.groups.store(g, sum)
	return sum
}

func (s *sumState) Values(g *Group) []interface{} {
	if existing, ok := s.groups.lookup(g); ok {
		return []interface{}{existing.(int64)}
	}
	return nil
}

// countAccumulator counts rows (nil extractor) or present values.
type countAccumulator struct {
	accumulatorBase
	extractor OperandEvaluator // nil means count rows
}

func (a countAccumulator) ReturnType() ValueType { return TypeLong }
func (a countAccumulator) IsAggregate() bool     { return true }

func (a countAccumulator) NewState() AccumulatorState {
	return &countState{acc: a, groups: newGroupMap()}
}

type countState struct {
	acc    countAccumulator
	groups *groupMap
}

func (s *countState) Accumulate(e *provenance.Event, g *Group) interface{} {
	present := s.acc.extractor == nil || s.acc.extractor.Evaluate(e) != nil
	if g == nil {
		if present {
			return int64(1)
		}
		return int64(0)
	}

	var count int64
	if existing, found := s.groups.lookup(g); found {
		count = existing.(int64)
	}
	if present {
		count++
	}
	s.groups.store(g, count)
	return count
}

func (s *countState) Values(g *Group) []interface{} {
	if existing, ok := s.groups.lookup(g); ok {
		return []interface{}{existing.(int64)}
	}
	return nil
}

// avgAccumulator averages a long-typed operand as a float64, skipping
// absent values.
type avgAccumulator struct {
	accumulatorBase
	extractor OperandEvaluator
}

func (a avgAccumulator) ReturnType() ValueType { return TypeDouble }
func (a avgAccumulator) IsAggregate() bool     { return true }

func (a avgAccumulator) NewState() AccumulatorState {
	return &avgState{acc: a, groups: newGroupMap()}
}

type avgState struct {
	acc    avgAccumulator
	groups *groupMap
}

type sumCount struct {
	sum   int64
	count int64
}

func (s *avgState) Accumulate(e *provenance.Event, g *Group) interface{} {
	v := s.acc.extractor.Evaluate(e)
	n, ok := v.(int64)
	if g == nil {
		if !ok {
			return nil
		}
		return float64(n)
	}

	var sc sumCount
	if existing, found := s.groups.lookup(g); found {
		sc = existing.(sumCount)
	}
	if ok {
		sc.sum += n
		sc.count++
	}
	s.groups.store(g, sc)
	if sc.count == 0 {
		return nil
	}
	return float64(sc.sum) / float64(sc.count)
}

func (s *avgState) Values(g *Group) []interface{} {
	existing, ok := s.groups.lookup(g)
	if !ok {
		return nil
	}
	sc := existing.(sumCount)
	if sc.count == 0 {
		return []interface{}{nil}
	}
	return []interface{}{float64(sc.sum) / float64(sc.count)}
}
