package pql

import (
	"reflect"
	"testing"

	"github.com/provq/provq/provenance"
)

func TestFieldSorterMultiKey(t *testing.T) {
	events := []*provenance.Event{
		{ID: 0, ComponentID: "b", Size: 10},
		{ID: 1, ComponentID: "a", Size: 10},
		{ID: 2, ComponentID: "a", Size: 5},
		{ID: 3, ComponentID: "b", Size: 5},
	}

	sorter := newFieldSorter([]sortKey{
		{eval: propertyEvaluator{prop: propComponentID}, dir: Ascending},
		{eval: propertyEvaluator{prop: propSize}, dir: Descending},
	})
	for i, e := range events {
		sorter.add(e, nil, i)
	}

	// componentId ascending, then size descending within it.
	want := []int{1, 2, 0, 3}
	if got := sorter.sort(); !reflect.DeepEqual(got, want) {
		t.Errorf("sort = %v, want %v", got, want)
	}
}

func TestFieldSorterNilsFirst(t *testing.T) {
	events := []*provenance.Event{
		{ID: 0, TransitURI: "b"},
		{ID: 1}, // absent transit URI
		{ID: 2, TransitURI: "a"},
	}

	sorter := newFieldSorter([]sortKey{
		{eval: propertyEvaluator{prop: propTransitURI}, dir: Ascending},
	})
	for i, e := range events {
		sorter.add(e, nil, i)
	}

	want := []int{1, 2, 0}
	if got := sorter.sort(); !reflect.DeepEqual(got, want) {
		t.Errorf("sort = %v, want %v", got, want)
	}
}

func TestFieldSorterNumericVsLexicographic(t *testing.T) {
	// Numerically 9 < 10, lexicographically "10" < "9". The Long-typed
	// size key must order numerically.
	events := []*provenance.Event{
		{ID: 0, Size: 10},
		{ID: 1, Size: 9},
	}
	sorter := newFieldSorter([]sortKey{
		{eval: propertyEvaluator{prop: propSize}, dir: Ascending},
	})
	for i, e := range events {
		sorter.add(e, nil, i)
	}
	want := []int{1, 0}
	if got := sorter.sort(); !reflect.DeepEqual(got, want) {
		t.Errorf("sort = %v, want %v", got, want)
	}
}

func TestCompareValueLists(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []interface{}
		numeric bool
		want    int
	}{
		{name: "longer list first", a: []interface{}{int64(1), int64(2)}, b: []interface{}{int64(9)}, numeric: true, want: -1},
		{name: "elementwise numeric", a: []interface{}{int64(3)}, b: []interface{}{int64(7)}, numeric: true, want: -1},
		{name: "equal", a: []interface{}{"x"}, b: []interface{}{"x"}, want: 0},
		{name: "nil before value", a: []interface{}{nil}, b: []interface{}{"a"}, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compareValueLists(tt.a, tt.b, tt.numeric); got != tt.want {
				t.Errorf("compareValueLists = %d, want %d", got, tt.want)
			}
		})
	}
}
