package pql

import (
	"errors"
	"testing"
)

func TestParseClauseStructure(t *testing.T) {
	root, err := Parse("SELECT Event.Type, SUM(Event.Size) FROM RECEIVE, SEND " +
		"WHERE Event.Size > 100 GROUP BY Event.Type ORDER BY SUM(Event.Size) DESC LIMIT 10;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if root.Kind != KindQuery {
		t.Fatalf("root kind = %v, want %v", root.Kind, KindQuery)
	}
	wantKinds := []NodeKind{KindSelect, KindFrom, KindWhere, KindGroupBy, KindOrderBy, KindLimit}
	if len(root.Children) != len(wantKinds) {
		t.Fatalf("got %d clauses, want %d", len(root.Children), len(wantKinds))
	}
	for i, kind := range wantKinds {
		if root.Children[i].Kind != kind {
			t.Errorf("clause %d: got %v, want %v", i, root.Children[i].Kind, kind)
		}
	}

	selectNode := root.child(0)
	if len(selectNode.Children) != 2 {
		t.Fatalf("got %d select items, want 2", len(selectNode.Children))
	}
	if got := selectNode.child(0); got.Kind != KindEventProperty || got.Text != "Type" {
		t.Errorf("first select item = %v %q", got.Kind, got.Text)
	}
	if got := selectNode.child(1); got.Kind != KindSum {
		t.Errorf("second select item kind = %v, want %v", got.Kind, KindSum)
	}

	fromNode := root.child(1)
	if len(fromNode.Children) != 2 || fromNode.child(0).Text != "RECEIVE" || fromNode.child(1).Text != "SEND" {
		t.Errorf("unexpected FROM children: %+v", fromNode.Children)
	}

	orderItem := root.child(4).child(0)
	if orderItem.Kind != KindOrderItem {
		t.Fatalf("order item kind = %v", orderItem.Kind)
	}
	if orderItem.lastChild().Kind != KindDesc {
		t.Errorf("expected DESC direction, got %v", orderItem.lastChild().Kind)
	}
}

func TestParseConditionPrecedence(t *testing.T) {
	// AND binds tighter than OR: a OR b AND c parses as a OR (b AND c).
	root, err := Parse("SELECT Event WHERE Event.Size > 1 OR Event.Size < 5 AND Event.Type = 'SEND'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cond := root.child(1).child(0)
	if cond.Kind != KindOr {
		t.Fatalf("top condition = %v, want OR", cond.Kind)
	}
	if cond.child(0).Kind != KindGreaterThan {
		t.Errorf("left of OR = %v, want >", cond.child(0).Kind)
	}
	if cond.child(1).Kind != KindAnd {
		t.Errorf("right of OR = %v, want AND", cond.child(1).Kind)
	}
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	root, err := Parse("SELECT Event WHERE (Event.Size > 1 OR Event.Size < 5) AND Event.Type = 'SEND'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cond := root.child(1).child(0)
	if cond.Kind != KindAnd {
		t.Fatalf("top condition = %v, want AND", cond.Kind)
	}
	if cond.child(0).Kind != KindOr {
		t.Errorf("left of AND = %v, want OR", cond.child(0).Kind)
	}
}

func TestParseNotCondition(t *testing.T) {
	root, err := Parse("SELECT Event WHERE NOT(Event.Type = 'SEND')")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cond := root.child(1).child(0)
	if cond.Kind != KindNot {
		t.Fatalf("condition = %v, want NOT", cond.Kind)
	}
	if cond.child(0).Kind != KindEquals {
		t.Errorf("inner condition = %v, want =", cond.child(0).Kind)
	}
}

func TestParseAlias(t *testing.T) {
	root, err := Parse("SELECT SUM(Event.Size) AS totalBytes")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	item := root.child(0).child(0)
	last := item.lastChild()
	if last.Kind != KindAs || last.Text != "totalBytes" {
		t.Errorf("alias node = %v %q", last.Kind, last.Text)
	}
}

func TestParseAttributeAndTimeFunc(t *testing.T) {
	root, err := Parse("SELECT YEAR(Event.Time), Event['filename']")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	items := root.child(0).Children
	if items[0].Kind != KindYear || items[0].child(0).Kind != KindEventProperty {
		t.Errorf("unexpected time func item: %v", items[0].Kind)
	}
	if items[1].Kind != KindAttribute || items[1].Text != "filename" {
		t.Errorf("unexpected attribute item: %v %q", items[1].Kind, items[1].Text)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "missing select", input: "FROM RECEIVE"},
		{name: "trailing tokens", input: "SELECT Event FROM RECEIVE SELECT"},
		{name: "bare event operand in where", input: "SELECT Event WHERE Event = 'x'"},
		{name: "missing comparison operator", input: "SELECT Event WHERE Event.Size 100"},
		{name: "starts without with", input: "SELECT Event WHERE Event.TransitUri STARTS 'http'"},
		{name: "not without parens", input: "SELECT Event WHERE NOT Event.Size > 1"},
		{name: "unterminated aggregate", input: "SELECT SUM(Event.Size"},
		{name: "limit without number", input: "SELECT Event LIMIT x"},
		{name: "unexpected character", input: "SELECT Event WHERE Event.Size > #"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("error %v should match ErrParse", err)
			}
			if !errors.Is(err, ErrQuery) {
				t.Errorf("error %v should match ErrQuery", err)
			}
		})
	}
}
