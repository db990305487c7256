package pql

import (
	"sort"
	"strconv"
	"strings"

	"github.com/provq/provq/provenance"
)

// Query is a compiled query: an immutable graph of typed evaluators
// plus the execution plan derived from the clauses. A compiled query
// can be shared and executed concurrently; all mutable state is
// created per execution.
type Query struct {
	text       string
	source     BooleanEvaluator // event type filter, nil for FROM *
	where      BooleanEvaluator // nil when WHERE is absent
	selects    []Accumulator
	groupBy    []OperandEvaluator
	fieldOrder []sortKey       // ORDER BY keys, non-aggregate mode
	groupOrder []groupOrderKey // ORDER BY keys, aggregate mode
	limit      int64           // 0 means unlimited
	aggregate  bool
	labels     []string
	types      []ValueType
	referenced []string
}

// clause identifies where in the query an operand appears. Fields
// referenced anywhere but WHERE must be materialized by a result
// consumer, so those references are recorded.
type clause int

const (
	clauseSelect clause = iota
	clauseWhere
	clauseGroupBy
	clauseOrderBy
)

type compiler struct {
	fields     map[string]struct{} // nil means unrestricted
	attributes map[string]struct{} // nil means unrestricted
	referenced map[string]struct{}
	nextID     int64
}

// Compile parses and compiles a query with no searchable-field
// restrictions.
func Compile(text string) (*Query, error) {
	return CompileSearchable(text, nil, nil)
}

// CompileSearchable parses and compiles a query, restricting field
// and attribute references to the given allow-lists. A nil slice
// means unrestricted. Event time and event type are always
// searchable when a field list is given.
func CompileSearchable(text string, searchableFields, searchableAttributes []string) (*Query, error) {
	root, err := Parse(text)
	if err != nil {
		return nil, err
	}

	c := &compiler{referenced: make(map[string]struct{})}
	if searchableFields != nil {
		c.fields = make(map[string]struct{}, len(searchableFields)+2)
		for _, f := range searchableFields {
			c.fields[f] = struct{}{}
		}
		c.fields[provenance.FieldEventTime] = struct{}{}
		c.fields[provenance.FieldEventType] = struct{}{}
	}
	if searchableAttributes != nil {
		c.attributes = make(map[string]struct{}, len(searchableAttributes))
		for _, a := range searchableAttributes {
			c.attributes[a] = struct{}{}
		}
	}

	q := &Query{text: text}

	selectNode := root.child(0)
	var whereNode, groupNode, orderNode *Node
	for _, node := range root.Children[1:] {
		switch node.Kind {
		case KindFrom:
			q.source, err = c.compileFrom(node)
		case KindWhere:
			whereNode = node
		case KindGroupBy:
			groupNode = node
		case KindOrderBy:
			orderNode = node
		case KindLimit:
			q.limit, err = c.compileLimit(node)
		}
		if err != nil {
			return nil, err
		}
	}

	if whereNode != nil {
		q.where, err = c.compileCondition(whereNode.child(0), clauseWhere)
		if err != nil {
			return nil, err
		}
	}

	if groupNode != nil {
		for _, item := range groupNode.Children {
			op, err := c.compileOperand(item, clauseGroupBy)
			if err != nil {
				return nil, err
			}
			q.groupBy = append(q.groupBy, op)
		}
	}

	// Aggregation is required by a GROUP BY clause or by any
	// aggregate select column; passthrough columns then run in
	// distinct mode.
	q.aggregate = len(q.groupBy) > 0 || hasAggregateItem(selectNode)

	for _, item := range selectNode.Children {
		acc, err := c.compileAccumulator(item, clauseSelect, q.aggregate)
		if err != nil {
			return nil, err
		}
		q.selects = append(q.selects, acc)
		q.labels = append(q.labels, acc.Label())
		q.types = append(q.types, acc.ReturnType())
	}

	if orderNode != nil {
		if err := c.compileOrderBy(q, orderNode); err != nil {
			return nil, err
		}
	}

	q.referenced = make([]string, 0, len(c.referenced))
	for f := range c.referenced {
		q.referenced = append(q.referenced, f)
	}
	sort.Strings(q.referenced)

	return q, nil
}

// hasAggregateItem reports whether any select item is SUM/AVG/COUNT.
func hasAggregateItem(selectNode *Node) bool {
	for _, item := range selectNode.Children {
		switch item.Kind {
		case KindSum, KindAvg, KindCount:
			return true
		}
	}
	return false
}

// compileFrom builds the source event type filter. FROM * compiles to
// no filter at all.
func (c *compiler) compileFrom(node *Node) (BooleanEvaluator, error) {
	var types []provenance.EventType
	for _, child := range node.Children {
		if child.Text == "*" {
			return nil, nil
		}
		t, err := provenance.ParseEventType(child.Text)
		if err != nil {
			return nil, queryErrorf("FROM clause: %v", err)
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return nil, nil
	}
	return newEventTypeFilter(types...), nil
}

func (c *compiler) compileLimit(node *Node) (int64, error) {
	n, err := strconv.ParseInt(node.child(0).Text, 10, 64)
	if err != nil || n < 1 {
		return 0, queryErrorf("LIMIT must be a positive integer, got %q", node.child(0).Text)
	}
	return n, nil
}

// compileOrderBy fills in the sorter keys. In aggregate mode each key
// gets its own accumulator, compiled in distinct mode; otherwise keys
// are plain operand evaluators.
func (c *compiler) compileOrderBy(q *Query, node *Node) error {
	for _, item := range node.Children {
		expr := item.child(0)
		dir := Ascending
		if last := item.lastChild(); last != nil && last.Kind == KindDesc {
			dir = Descending
		}

		if q.aggregate {
			acc, err := c.compileAccumulator(expr, clauseOrderBy, true)
			if err != nil {
				return err
			}
			q.groupOrder = append(q.groupOrder, groupOrderKey{acc: acc, dir: dir})
			continue
		}

		op, err := c.compileOperand(expr, clauseOrderBy)
		if err != nil {
			return err
		}
		q.fieldOrder = append(q.fieldOrder, sortKey{eval: op, dir: dir})
	}
	return nil
}

// compileAccumulator builds the accumulator for one SELECT or ORDER
// BY expression.
func (c *compiler) compileAccumulator(node *Node, cl clause, distinct bool) (Accumulator, error) {
	base := accumulatorBase{id: c.nextID, label: c.label(node)}
	c.nextID++

	switch node.Kind {
	case KindEvent:
		return valueAccumulator{accumulatorBase: base, distinct: distinct}, nil

	case KindSum, KindAvg:
		arg := node.child(0)
		if arg.Kind == KindEvent {
			return nil, queryErrorf("%s requires a numeric operand, not the whole event", strings.ToUpper(node.Text))
		}
		op, err := c.compileOperand(arg, cl)
		if err != nil {
			return nil, err
		}
		op, err = c.toLongOperand(op, strings.ToUpper(node.Text))
		if err != nil {
			return nil, err
		}
		if node.Kind == KindSum {
			return sumAccumulator{accumulatorBase: base, extractor: op}, nil
		}
		return avgAccumulator{accumulatorBase: base, extractor: op}, nil

	case KindCount:
		arg := node.child(0)
		if arg.Kind == KindEvent {
			return countAccumulator{accumulatorBase: base}, nil
		}
		op, err := c.compileOperand(arg, cl)
		if err != nil {
			return nil, err
		}
		return countAccumulator{accumulatorBase: base, extractor: op}, nil

	default:
		op, err := c.compileOperand(node, cl)
		if err != nil {
			return nil, err
		}
		return valueAccumulator{accumulatorBase: base, extractor: op, distinct: distinct}, nil
	}
}

// label computes the column heading: the AS alias when present,
// otherwise the canonical rendering of the expression.
func (c *compiler) label(node *Node) string {
	if last := node.lastChild(); last != nil && last.Kind == KindAs {
		return last.Text
	}
	return canonicalLabel(node)
}

func canonicalLabel(node *Node) string {
	switch node.Kind {
	case KindEvent:
		return "Event"
	case KindEventProperty, KindAttribute, KindNumber, KindIdentifier:
		return node.Text
	case KindStringLiteral:
		return "'" + node.Text + "'"
	case KindSum, KindAvg, KindCount, KindYear, KindMonth, KindDay, KindHour, KindMinute, KindSecond:
		return strings.ToUpper(node.Text) + "(" + canonicalLabel(node.child(0)) + ")"
	}
	return node.Kind.String()
}

// compileOperand builds a typed operand evaluator, enforcing the
// searchable allow-lists and recording referenced fields.
func (c *compiler) compileOperand(node *Node, cl clause) (OperandEvaluator, error) {
	switch node.Kind {
	case KindEventProperty:
		prop, ok := parseEventProperty(node.Text)
		if !ok {
			return nil, queryErrorf("unknown event property %q", node.Text)
		}
		if err := c.checkField(prop.fieldName(), node.Text, cl); err != nil {
			return nil, err
		}
		return propertyEvaluator{prop: prop}, nil

	case KindAttribute:
		if err := c.checkAttribute(node.Text, cl); err != nil {
			return nil, err
		}
		return attributeEvaluator{name: stringLiteralEvaluator{value: node.Text}}, nil

	case KindStringLiteral:
		return stringLiteralEvaluator{value: node.Text}, nil

	case KindNumber:
		n, err := strconv.ParseInt(node.Text, 10, 64)
		if err != nil {
			return nil, queryErrorf("invalid number %q", node.Text)
		}
		return longLiteralEvaluator{value: n}, nil

	case KindYear, KindMonth, KindDay, KindHour, KindMinute, KindSecond:
		inner, err := c.compileOperand(node.child(0), cl)
		if err != nil {
			return nil, err
		}
		inner, err = c.toLongOperand(inner, strings.ToUpper(node.Text))
		if err != nil {
			return nil, err
		}
		return timeBucketEvaluator{inner: inner, gran: granularityOf(node.Kind)}, nil

	case KindSum, KindAvg, KindCount:
		return nil, queryErrorf("aggregate function %s is not allowed here", strings.ToUpper(node.Text))

	default:
		return nil, queryErrorf("cannot evaluate %s as an operand", node.Kind)
	}
}

func granularityOf(kind NodeKind) timeGranularity {
	switch kind {
	case KindYear:
		return granYear
	case KindMonth:
		return granMonth
	case KindDay:
		return granDay
	case KindHour:
		return granHour
	case KindMinute:
		return granMinute
	}
	return granSecond
}

// toLongOperand coerces an operand to Long, wrapping String operands
// in the string-to-long coercion.
func (c *compiler) toLongOperand(op OperandEvaluator, context string) (OperandEvaluator, error) {
	switch op.Type() {
	case TypeLong:
		return op, nil
	case TypeString:
		return stringToLongEvaluator{inner: op}, nil
	}
	return nil, queryErrorf("%s requires a LONG or STRING operand, got %s", context, op.Type())
}

func (c *compiler) checkField(fieldName, asWritten string, cl clause) error {
	if c.fields != nil {
		if _, ok := c.fields[fieldName]; !ok {
			return queryErrorf("field %s is not searchable", asWritten)
		}
	}
	if cl != clauseWhere {
		c.referenced[fieldName] = struct{}{}
	}
	return nil
}

func (c *compiler) checkAttribute(name string, cl clause) error {
	if c.attributes != nil {
		if _, ok := c.attributes[name]; !ok {
			return queryErrorf("attribute %s is not searchable", name)
		}
	}
	if cl != clauseWhere {
		c.referenced[name] = struct{}{}
	}
	return nil
}

// compileCondition builds the boolean evaluator graph for a WHERE
// condition. NOT nodes are folded away here via negate.
func (c *compiler) compileCondition(node *Node, cl clause) (BooleanEvaluator, error) {
	switch node.Kind {
	case KindAnd:
		lhs, err := c.compileCondition(node.child(0), cl)
		if err != nil {
			return nil, err
		}
		rhs, err := c.compileCondition(node.child(1), cl)
		if err != nil {
			return nil, err
		}
		return andEvaluator{lhs: lhs, rhs: rhs}, nil

	case KindOr:
		lhs, err := c.compileCondition(node.child(0), cl)
		if err != nil {
			return nil, err
		}
		rhs, err := c.compileCondition(node.child(1), cl)
		if err != nil {
			return nil, err
		}
		return orEvaluator{lhs: lhs, rhs: rhs}, nil

	case KindNot:
		inner, err := c.compileCondition(node.child(0), cl)
		if err != nil {
			return nil, err
		}
		return negate(inner), nil

	case KindEquals, KindNotEquals, KindGreaterThan, KindLessThan, KindMatches, KindStartsWith:
		return c.compileComparison(node, cl)
	}
	return nil, queryErrorf("cannot evaluate %s as a condition", node.Kind)
}

func (c *compiler) compileComparison(node *Node, cl clause) (BooleanEvaluator, error) {
	lhs, err := c.compileOperand(node.child(0), cl)
	if err != nil {
		return nil, err
	}
	rhs, err := c.compileOperand(node.child(1), cl)
	if err != nil {
		return nil, err
	}

	switch node.Kind {
	case KindEquals:
		return equalsEvaluator{lhs: lhs, rhs: rhs}, nil
	case KindNotEquals:
		return equalsEvaluator{lhs: lhs, rhs: rhs, negated: true}, nil
	case KindGreaterThan:
		return greaterThanEvaluator{lhs: lhs, rhs: rhs}, nil
	case KindLessThan:
		return lessThanEvaluator{lhs: lhs, rhs: rhs}, nil

	case KindMatches:
		if rhs.Type() != TypeString {
			return nil, queryErrorf("MATCHES requires a STRING right operand, got %s", rhs.Type())
		}
		ev := matchesEvaluator{lhs: lhs, rhs: rhs}
		if lit, ok := rhs.(stringLiteralEvaluator); ok {
			pattern, err := compileMatchPattern(lit.value)
			if err != nil {
				return nil, queryErrorf("invalid MATCHES pattern %q: %v", lit.value, err)
			}
			ev.pattern = pattern
		}
		return ev, nil

	case KindStartsWith:
		if rhs.Type() != TypeString {
			return nil, queryErrorf("STARTS WITH requires a STRING right operand, got %s", rhs.Type())
		}
		return startsWithEvaluator{lhs: lhs, rhs: rhs}, nil
	}
	return nil, queryErrorf("unsupported comparison %s", node.Kind)
}

// Text returns the original query text.
func (q *Query) Text() string { return q.text }

// Labels returns the result column headings in select order.
func (q *Query) Labels() []string {
	out := make([]string, len(q.labels))
	copy(out, q.labels)
	return out
}

// ColumnTypes returns the compile-time type of each result column.
func (q *Query) ColumnTypes() []ValueType {
	out := make([]ValueType, len(q.types))
	copy(out, q.types)
	return out
}

// ReferencedFields returns the sorted set of field and attribute
// names referenced outside the WHERE clause. A result consumer must
// materialize these to produce rows.
func (q *Query) ReferencedFields() []string {
	out := make([]string, len(q.referenced))
	copy(out, q.referenced)
	return out
}

// Limit returns the LIMIT row cap, or 0 when unlimited.
func (q *Query) Limit() int64 { return q.limit }

// matches applies the source type filter and the WHERE clause.
func (q *Query) matches(e *provenance.Event) bool {
	if q.source != nil && !q.source.Evaluate(e) {
		return false
	}
	if q.where != nil && !q.where.Evaluate(e) {
		return false
	}
	return true
}
