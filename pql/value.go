package pql

// ValueType is the compile-time type of an operand or result column.
type ValueType int

const (
	// TypeLong is a 64-bit integer: sizes, timestamps, counts, sums.
	TypeLong ValueType = iota
	// TypeDouble is a 64-bit float, produced only by AVG.
	TypeDouble
	// TypeString covers all textual fields and attributes.
	TypeString
	// TypeEventType is the event type enumeration.
	TypeEventType
	// TypeEvent is the whole event record.
	TypeEvent
)

var valueTypeNames = map[ValueType]string{
	TypeLong:      "LONG",
	TypeDouble:    "DOUBLE",
	TypeString:    "STRING",
	TypeEventType: "EVENT_TYPE",
	TypeEvent:     "EVENT",
}

// String returns a readable name for the value type.
func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// numeric reports whether values of this type order numerically.
func (t ValueType) numeric() bool {
	return t == TypeLong || t == TypeDouble
}
