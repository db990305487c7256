package pql

import (
	"github.com/provq/provq/provenance"
)

// ResultSet iterates the rows a query produced. Next advances and
// reports whether a row is available; Row returns the current row's
// values in select order. Err surfaces a failure of the underlying
// event source.
type ResultSet interface {
	Labels() []string
	Types() []ValueType
	Next() bool
	Row() []interface{}
	Err() error
}

// Execute runs the query against an event stream. The strategy is
// chosen from the compiled plan: aggregation groups, ORDER BY without
// aggregation materializes and sorts, and everything else streams
// lazily in constant memory.
func (q *Query) Execute(events provenance.Iterator) ResultSet {
	switch {
	case q.aggregate:
		return newGroupingResultSet(q, events)
	case len(q.fieldOrder) > 0:
		return newOrderedResultSet(q, events)
	default:
		return newUnorderedResultSet(q, events)
	}
}

// Run executes the query against a repository, paging through it
// lazily.
func (q *Query) Run(repo provenance.Repository) ResultSet {
	return q.Execute(provenance.NewCursor(repo, provenance.DefaultPageSize))
}

// unorderedResultSet streams rows as matching events arrive. Nothing
// is buffered; accumulator states are used in evaluate-only mode.
type unorderedResultSet struct {
	q       *Query
	events  provenance.Iterator
	states  []AccumulatorState
	row     []interface{}
	emitted int64
}

func newUnorderedResultSet(q *Query, events provenance.Iterator) *unorderedResultSet {
	return &unorderedResultSet{q: q, events: events, states: newStates(q)}
}

func newStates(q *Query) []AccumulatorState {
	states := make([]AccumulatorState, len(q.selects))
	for i, acc := range q.selects {
		states[i] = acc.NewState()
	}
	return states
}

func (rs *unorderedResultSet) Labels() []string  { return rs.q.Labels() }
func (rs *unorderedResultSet) Types() []ValueType { return rs.q.ColumnTypes() }

func (rs *unorderedResultSet) Next() bool {
	if rs.q.limit > 0 && rs.emitted >= rs.q.limit {
		return false
	}
	for rs.events.Next() {
		e := rs.events.Event()
		if !rs.q.matches(e) {
			continue
		}
		row := make([]interface{}, len(rs.states))
		for i, state := range rs.states {
			row[i] = state.Accumulate(e, nil)
		}
		rs.row = row
		rs.emitted++
		return true
	}
	return false
}

func (rs *unorderedResultSet) Row() []interface{} { return rs.row }
func (rs *unorderedResultSet) Err() error         { return rs.events.Err() }

// orderedResultSet materializes every matching row, sorts the row IDs
// with the field sorter, and emits rows in permutation order.
type orderedResultSet struct {
	q            *Query
	events       provenance.Iterator
	rows         [][]interface{}
	order        []int
	pos          int
	row          []interface{}
	err          error
	materialized bool
}

func newOrderedResultSet(q *Query, events provenance.Iterator) *orderedResultSet {
	return &orderedResultSet{q: q, events: events}
}

func (rs *orderedResultSet) Labels() []string  { return rs.q.Labels() }
func (rs *orderedResultSet) Types() []ValueType { return rs.q.ColumnTypes() }

func (rs *orderedResultSet) materialize() {
	states := newStates(rs.q)
	sorter := newFieldSorter(rs.q.fieldOrder)

	for rs.events.Next() {
		e := rs.events.Event()
		if !rs.q.matches(e) {
			continue
		}
		row := make([]interface{}, len(states))
		for i, state := range states {
			row[i] = state.Accumulate(e, nil)
		}
		sorter.add(e, nil, len(rs.rows))
		rs.rows = append(rs.rows, row)
	}
	if err := rs.events.Err(); err != nil {
		rs.err = err
		return
	}

	rs.order = sorter.sort()
	if rs.q.limit > 0 && int64(len(rs.order)) > rs.q.limit {
		rs.order = rs.order[:rs.q.limit]
	}
}

func (rs *orderedResultSet) Next() bool {
	if !rs.materialized {
		rs.materialized = true
		rs.materialize()
	}
	if rs.err != nil || rs.pos >= len(rs.order) {
		return false
	}
	rs.row = rs.rows[rs.order[rs.pos]]
	rs.pos++
	return true
}

func (rs *orderedResultSet) Row() []interface{} { return rs.row }
func (rs *orderedResultSet) Err() error         { return rs.err }

// groupingResultSet folds every matching event into per-group
// accumulator state, then emits one row per group. Without GROUP BY a
// single degenerate group collects everything.
type groupingResultSet struct {
	q            *Query
	events       provenance.Iterator
	rows         [][]interface{}
	pos          int
	row          []interface{}
	err          error
	materialized bool
}

func newGroupingResultSet(q *Query, events provenance.Iterator) *groupingResultSet {
	return &groupingResultSet{q: q, events: events}
}

func (rs *groupingResultSet) Labels() []string  { return rs.q.Labels() }
func (rs *groupingResultSet) Types() []ValueType { return rs.q.ColumnTypes() }

func (rs *groupingResultSet) materialize() {
	states := newStates(rs.q)
	first := newGroupMap() // group -> first occurrence row ID
	var sorter *groupedSorter
	if len(rs.q.groupOrder) > 0 {
		sorter = newGroupedSorter(rs.q.groupOrder)
	}

	rowID := 0
	for rs.events.Next() {
		e := rs.events.Event()
		if !rs.q.matches(e) {
			continue
		}

		values := make([]interface{}, len(rs.q.groupBy))
		for i, ev := range rs.q.groupBy {
			values[i] = ev.Evaluate(e)
		}
		g := newGroup(values)

		if _, seen := first.lookup(g); !seen {
			first.store(g, rowID)
		}
		for _, state := range states {
			state.Accumulate(e, g)
		}
		if sorter != nil {
			sorter.add(e, g, rowID)
		}
		rowID++
	}
	if err := rs.events.Err(); err != nil {
		rs.err = err
		return
	}

	ordered := first.groups()
	if sorter != nil {
		byFirst := make(map[int]*Group, first.len())
		for _, g := range first.groups() {
			id, _ := first.lookup(g)
			byFirst[id.(int)] = g
		}
		perm := sorter.sort()
		ordered = make([]*Group, 0, len(perm))
		for _, id := range perm {
			ordered = append(ordered, byFirst[id])
		}
	}

	if rs.q.limit > 0 && int64(len(ordered)) > rs.q.limit {
		ordered = ordered[:rs.q.limit]
	}

	for _, g := range ordered {
		row := make([]interface{}, len(states))
		for i, state := range states {
			if vals := state.Values(g); len(vals) > 0 {
				row[i] = vals[0]
			}
		}
		rs.rows = append(rs.rows, row)
	}
}

func (rs *groupingResultSet) Next() bool {
	if !rs.materialized {
		rs.materialized = true
		rs.materialize()
	}
	if rs.err != nil || rs.pos >= len(rs.rows) {
		return false
	}
	rs.row = rs.rows[rs.pos]
	rs.pos++
	return true
}

func (rs *groupingResultSet) Row() []interface{} { return rs.row }
func (rs *groupingResultSet) Err() error         { return rs.err }
