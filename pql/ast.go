package pql

// NodeKind identifies the syntactic construct a parse tree node
// represents. The compiler switches over this closed set.
type NodeKind int

const (
	KindQuery NodeKind = iota
	KindSelect
	KindFrom
	KindWhere
	KindGroupBy
	KindOrderBy
	KindOrderItem
	KindLimit
	KindAs
	KindAsc
	KindDesc

	KindEvent
	KindEventProperty
	KindAttribute
	KindIdentifier
	KindStringLiteral
	KindNumber

	KindAnd
	KindOr
	KindNot
	KindEquals
	KindNotEquals
	KindGreaterThan
	KindLessThan
	KindMatches
	KindStartsWith

	KindSum
	KindAvg
	KindCount
	KindYear
	KindMonth
	KindDay
	KindHour
	KindMinute
	KindSecond
)

var nodeKindNames = map[NodeKind]string{
	KindQuery:         "QUERY",
	KindSelect:        "SELECT",
	KindFrom:          "FROM",
	KindWhere:         "WHERE",
	KindGroupBy:       "GROUP BY",
	KindOrderBy:       "ORDER BY",
	KindOrderItem:     "ORDER ITEM",
	KindLimit:         "LIMIT",
	KindAs:            "AS",
	KindAsc:           "ASC",
	KindDesc:          "DESC",
	KindEvent:         "EVENT",
	KindEventProperty: "EVENT PROPERTY",
	KindAttribute:     "ATTRIBUTE",
	KindIdentifier:    "IDENTIFIER",
	KindStringLiteral: "STRING",
	KindNumber:        "NUMBER",
	KindAnd:           "AND",
	KindOr:            "OR",
	KindNot:           "NOT",
	KindEquals:        "=",
	KindNotEquals:     "<>",
	KindGreaterThan:   ">",
	KindLessThan:      "<",
	KindMatches:       "MATCHES",
	KindStartsWith:    "STARTS WITH",
	KindSum:           "SUM",
	KindAvg:           "AVG",
	KindCount:         "COUNT",
	KindYear:          "YEAR",
	KindMonth:         "MONTH",
	KindDay:           "DAY",
	KindHour:          "HOUR",
	KindMinute:        "MINUTE",
	KindSecond:        "SECOND",
}

// String returns a readable name for the node kind.
func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Node is one parsed syntactic unit: a kind tag, the source text it
// carries (property name, literal value, alias), and ordered children.
type Node struct {
	Kind     NodeKind
	Text     string
	Children []*Node
}

// child returns the i-th child or nil when out of range.
func (n *Node) child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// lastChild returns the final child or nil for a leaf.
func (n *Node) lastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}
