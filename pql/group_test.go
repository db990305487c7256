package pql

import (
	"testing"

	"github.com/provq/provq/provenance"
)

func TestGroupEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b []interface{}
		want bool
	}{
		{name: "equal tuples", a: []interface{}{"x", int64(1)}, b: []interface{}{"x", int64(1)}, want: true},
		{name: "different values", a: []interface{}{"x"}, b: []interface{}{"y"}, want: false},
		{name: "different lengths", a: []interface{}{"x"}, b: []interface{}{"x", "x"}, want: false},
		{name: "type matters", a: []interface{}{int64(1)}, b: []interface{}{"1"}, want: false},
		{name: "nils equal", a: []interface{}{nil}, b: []interface{}{nil}, want: true},
		{name: "event types", a: []interface{}{provenance.EventTypeSend}, b: []interface{}{provenance.EventTypeSend}, want: true},
		{name: "empty tuples", a: nil, b: nil, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ga, gb := newGroup(tt.a), newGroup(tt.b)
			if got := ga.Equal(gb); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
			if tt.want && ga.Hash() != gb.Hash() {
				t.Error("equal groups must hash alike")
			}
		})
	}
}

func TestGroupHashDistinguishesTypes(t *testing.T) {
	// "1" as a string and 1 as a number are different group keys.
	a := newGroup([]interface{}{int64(1)})
	b := newGroup([]interface{}{"1"})
	if a.Hash() == b.Hash() && a.Equal(b) {
		t.Error("number and string keys collapsed into one group")
	}
}

func TestGroupMapOrderAndChaining(t *testing.T) {
	m := newGroupMap()

	g1 := newGroup([]interface{}{"a"})
	g2 := newGroup([]interface{}{"b"})
	m.store(g1, 1)
	m.store(g2, 2)
	m.store(newGroup([]interface{}{"a"}), 10) // same tuple, new instance

	if m.len() != 2 {
		t.Fatalf("len = %d, want 2", m.len())
	}
	if v, ok := m.lookup(g1); !ok || v != 10 {
		t.Errorf("lookup(a) = %v, %v; want 10, true", v, ok)
	}
	if v, ok := m.lookup(newGroup([]interface{}{"b"})); !ok || v != 2 {
		t.Errorf("lookup(b) = %v, %v; want 2, true", v, ok)
	}
	if _, ok := m.lookup(newGroup([]interface{}{"c"})); ok {
		t.Error("lookup of unknown group should miss")
	}

	groups := m.groups()
	if len(groups) != 2 || !groups[0].Equal(g1) || !groups[1].Equal(g2) {
		t.Errorf("groups not in first-insertion order: %v", groups)
	}
}
