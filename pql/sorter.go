package pql

import (
	"sort"
	"strings"

	"github.com/provq/provq/provenance"
)

// SortDirection orders an ORDER BY key.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// rowSorter collects rows (or groups) during execution and produces
// the row-ID permutation to emit them in.
type rowSorter interface {
	add(e *provenance.Event, g *Group, rowID int)
	sort() []int
}

// sortKey is one ORDER BY key in non-aggregate mode.
type sortKey struct {
	eval OperandEvaluator
	dir  SortDirection
}

// fieldSorter sorts individual rows by evaluated key values. Keys are
// evaluated once at add time, then stably sorted.
type fieldSorter struct {
	keys    []sortKey
	entries []fieldSortEntry
}

type fieldSortEntry struct {
	keys  []interface{}
	rowID int
}

func newFieldSorter(keys []sortKey) *fieldSorter {
	return &fieldSorter{keys: keys}
}

func (s *fieldSorter) add(e *provenance.Event, _ *Group, rowID int) {
	values := make([]interface{}, len(s.keys))
	for i, key := range s.keys {
		values[i] = key.eval.Evaluate(e)
	}
	s.entries = append(s.entries, fieldSortEntry{keys: values, rowID: rowID})
}

func (s *fieldSorter) sort() []int {
	sort.SliceStable(s.entries, func(i, j int) bool {
		a, b := s.entries[i], s.entries[j]
		for k, key := range s.keys {
			c := compareValues(a.keys[k], b.keys[k], key.eval.Type().numeric())
			if key.dir == Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})

	ids := make([]int, len(s.entries))
	for i, entry := range s.entries {
		ids[i] = entry.rowID
	}
	return ids
}

// groupOrderKey is one ORDER BY key in aggregate mode: the key's own
// accumulator fed every record, compared per group.
type groupOrderKey struct {
	acc Accumulator
	dir SortDirection
}

// groupedSorter sorts whole groups. Each group is identified by the
// row ID of its first occurrence.
type groupedSorter struct {
	keys   []groupOrderKey
	states []AccumulatorState
	first  *groupMap // group -> first occurrence row ID
}

func newGroupedSorter(keys []groupOrderKey) *groupedSorter {
	states := make([]AccumulatorState, len(keys))
	for i, key := range keys {
		states[i] = key.acc.NewState()
	}
	return &groupedSorter{keys: keys, states: states, first: newGroupMap()}
}

func (s *groupedSorter) add(e *provenance.Event, g *Group, rowID int) {
	if _, seen := s.first.lookup(g); !seen {
		s.first.store(g, rowID)
	}
	for _, state := range s.states {
		state.Accumulate(e, g)
	}
}

func (s *groupedSorter) sort() []int {
	groups := make([]*Group, len(s.first.groups()))
	copy(groups, s.first.groups())

	sort.SliceStable(groups, func(i, j int) bool {
		for k, key := range s.keys {
			c := compareValueLists(
				s.states[k].Values(groups[i]),
				s.states[k].Values(groups[j]),
				key.acc.ReturnType().numeric(),
			)
			if key.dir == Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})

	ids := make([]int, 0, len(groups))
	for _, g := range groups {
		rowID, _ := s.first.lookup(g)
		ids = append(ids, rowID.(int))
	}
	return ids
}

// compareValues orders two values: absent first, then numerically or
// lexicographically on the stringified form.
func compareValues(a, b interface{}, numeric bool) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if numeric {
		fa, okA := toFloat(a)
		fb, okB := toFloat(b)
		if okA && okB {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

// compareValueLists orders per-group value lists: a longer list sorts
// first, equal lengths compare element-wise.
func compareValueLists(a, b []interface{}, numeric bool) int {
	if len(a) != len(b) {
		if len(a) > len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if c := compareValues(a[i], b[i], numeric); c != 0 {
			return c
		}
	}
	return 0
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	n, ok := toLong(v)
	return float64(n), ok
}
