package pql

import (
	"strings"
	"time"

	"github.com/provq/provq/provenance"
)

// OperandEvaluator produces a value from an event. The concrete value
// is one of int64, float64, string, provenance.EventType, or nil for
// an absent value; Type reports which at compile time.
type OperandEvaluator interface {
	Evaluate(e *provenance.Event) interface{}
	Type() ValueType
}

// eventProperty identifies one directly addressable field of an event.
type eventProperty int

const (
	propSize eventProperty = iota
	propTime
	propType
	propTransitURI
	propComponentID
	propComponentType
	propRelationship
	propUUID
	propDetails
)

// parseEventProperty resolves a property name case-insensitively.
func parseEventProperty(name string) (eventProperty, bool) {
	switch strings.ToUpper(name) {
	case "SIZE", "FILESIZE":
		return propSize, true
	case "TIME":
		return propTime, true
	case "TYPE":
		return propType, true
	case "TRANSITURI":
		return propTransitURI, true
	case "COMPONENTID":
		return propComponentID, true
	case "COMPONENTTYPE":
		return propComponentType, true
	case "RELATIONSHIP":
		return propRelationship, true
	case "UUID":
		return propUUID, true
	case "DETAILS":
		return propDetails, true
	}
	return 0, false
}

// fieldName returns the searchable field name for the property.
func (p eventProperty) fieldName() string {
	switch p {
	case propSize:
		return provenance.FieldFileSize
	case propTime:
		return provenance.FieldEventTime
	case propType:
		return provenance.FieldEventType
	case propTransitURI:
		return provenance.FieldTransitURI
	case propComponentID:
		return provenance.FieldComponentID
	case propComponentType:
		return provenance.FieldComponentType
	case propRelationship:
		return provenance.FieldRelationship
	case propUUID:
		return provenance.FieldFlowFileUUID
	case propDetails:
		return provenance.FieldDetails
	}
	return ""
}

// valueType returns the compile-time type of the property.
func (p eventProperty) valueType() ValueType {
	switch p {
	case propSize, propTime:
		return TypeLong
	case propType:
		return TypeEventType
	}
	return TypeString
}

// propertyEvaluator extracts one event field. Empty string fields
// evaluate to nil.
type propertyEvaluator struct {
	prop eventProperty
}

func (p propertyEvaluator) Evaluate(e *provenance.Event) interface{} {
	switch p.prop {
	case propSize:
		return e.Size
	case propTime:
		return e.Time
	case propType:
		return e.Type
	case propTransitURI:
		return emptyAsNil(e.TransitURI)
	case propComponentID:
		return emptyAsNil(e.ComponentID)
	case propComponentType:
		return emptyAsNil(e.ComponentType)
	case propRelationship:
		return emptyAsNil(e.Relationship)
	case propUUID:
		return emptyAsNil(e.FlowFileUUID)
	case propDetails:
		return emptyAsNil(e.Details)
	}
	return nil
}

func (p propertyEvaluator) Type() ValueType { return p.prop.valueType() }

func emptyAsNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// attributeEvaluator looks up a flowfile attribute. The attribute name
// is itself an evaluated operand, so dynamic names work.
type attributeEvaluator struct {
	name OperandEvaluator
}

func (a attributeEvaluator) Evaluate(e *provenance.Event) interface{} {
	name := a.name.Evaluate(e)
	if name == nil {
		return nil
	}
	s, ok := name.(string)
	if !ok {
		s = stringify(name)
	}
	v, ok := e.Attribute(s)
	if !ok {
		return nil
	}
	return v
}

func (a attributeEvaluator) Type() ValueType { return TypeString }

// literalName returns the attribute name when it is a string literal.
func (a attributeEvaluator) literalName() (string, bool) {
	lit, ok := a.name.(stringLiteralEvaluator)
	if !ok {
		return "", false
	}
	return lit.value, true
}

// stringLiteralEvaluator is a constant string operand.
type stringLiteralEvaluator struct {
	value string
}

func (s stringLiteralEvaluator) Evaluate(*provenance.Event) interface{} { return s.value }
func (s stringLiteralEvaluator) Type() ValueType                        { return TypeString }

// longLiteralEvaluator is a constant integer operand.
type longLiteralEvaluator struct {
	value int64
}

func (l longLiteralEvaluator) Evaluate(*provenance.Event) interface{} { return l.value }
func (l longLiteralEvaluator) Type() ValueType                        { return TypeLong }

// stringToLongEvaluator coerces a string operand to a long. An absent
// value stays absent, an all-whitespace or empty string becomes 0, a
// run of ASCII digits parses, and anything else (signs included)
// becomes absent.
type stringToLongEvaluator struct {
	inner OperandEvaluator
}

func (c stringToLongEvaluator) Evaluate(e *provenance.Event) interface{} {
	v := c.inner.Evaluate(e)
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return int64(0)
	}
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
		n = n*10 + int64(r-'0')
	}
	return n
}

func (c stringToLongEvaluator) Type() ValueType { return TypeLong }

// timeGranularity is the unit a timeBucketEvaluator truncates to.
type timeGranularity int

const (
	granYear timeGranularity = iota
	granMonth
	granDay
	granHour
	granMinute
	granSecond
)

// timeBucketEvaluator truncates an epoch-millisecond operand to a
// calendar boundary in UTC: every field strictly finer than the
// granularity is zeroed, everything coarser is kept.
type timeBucketEvaluator struct {
	inner OperandEvaluator
	gran  timeGranularity
}

func (t timeBucketEvaluator) Evaluate(e *provenance.Event) interface{} {
	v := t.inner.Evaluate(e)
	if v == nil {
		return nil
	}
	millis, ok := v.(int64)
	if !ok {
		return nil
	}

	ts := time.UnixMilli(millis).UTC()
	year, month, day := ts.Date()
	hour, min, sec := ts.Clock()

	switch t.gran {
	case granYear:
		ts = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	case granMonth:
		ts = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	case granDay:
		ts = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	case granHour:
		ts = time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	case granMinute:
		ts = time.Date(year, month, day, hour, min, 0, 0, time.UTC)
	case granSecond:
		ts = time.Date(year, month, day, hour, min, sec, 0, time.UTC)
	}
	return ts.UnixMilli()
}

func (t timeBucketEvaluator) Type() ValueType { return TypeLong }
