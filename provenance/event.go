// Package provenance defines the event model that queries run against:
// the Event record, its type enumeration, the searchable field names,
// and repository access for stored events.
package provenance

import (
	"fmt"
	"strings"
)

// EventType identifies what kind of processing step produced an event.
type EventType int

const (
	EventTypeUnknown EventType = iota
	EventTypeCreate
	EventTypeReceive
	EventTypeFetch
	EventTypeSend
	EventTypeDownload
	EventTypeDrop
	EventTypeExpire
	EventTypeFork
	EventTypeJoin
	EventTypeClone
	EventTypeContentModified
	EventTypeAttributesModified
	EventTypeRoute
	EventTypeReplay
)

var eventTypeNames = map[EventType]string{
	EventTypeUnknown:            "UNKNOWN",
	EventTypeCreate:             "CREATE",
	EventTypeReceive:            "RECEIVE",
	EventTypeFetch:              "FETCH",
	EventTypeSend:               "SEND",
	EventTypeDownload:           "DOWNLOAD",
	EventTypeDrop:               "DROP",
	EventTypeExpire:             "EXPIRE",
	EventTypeFork:               "FORK",
	EventTypeJoin:               "JOIN",
	EventTypeClone:              "CLONE",
	EventTypeContentModified:    "CONTENT_MODIFIED",
	EventTypeAttributesModified: "ATTRIBUTES_MODIFIED",
	EventTypeRoute:              "ROUTE",
	EventTypeReplay:             "REPLAY",
}

// String returns the canonical upper-case name of the event type.
func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseEventType resolves a type name case-insensitively.
func ParseEventType(name string) (EventType, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for t, n := range eventTypeNames {
		if n == upper {
			return t, nil
		}
	}
	return EventTypeUnknown, fmt.Errorf("unknown event type %q", name)
}

// EventTypes returns every known event type, in declaration order.
func EventTypes() []EventType {
	types := make([]EventType, 0, len(eventTypeNames))
	for t := EventTypeUnknown; t <= EventTypeReplay; t++ {
		types = append(types, t)
	}
	return types
}

// Searchable field names. Allow-lists and index queries identify event
// fields by these names.
const (
	FieldEventTime     = "eventTime"
	FieldEventType     = "eventType"
	FieldFileSize      = "fileSize"
	FieldTransitURI    = "transitUri"
	FieldComponentID   = "componentId"
	FieldComponentType = "componentType"
	FieldRelationship  = "relationship"
	FieldFlowFileUUID  = "uuid"
	FieldDetails       = "details"
)

// Event is a single provenance record: one thing that happened to one
// flowfile at one component. String fields left empty are treated as
// absent by the query layer.
type Event struct {
	ID            int64
	Type          EventType
	Time          int64 // epoch milliseconds
	Size          int64 // flowfile content size in bytes
	ComponentID   string
	ComponentType string
	TransitURI    string
	FlowFileUUID  string
	Relationship  string
	Details       string
	Attributes    map[string]string
}

// Attribute looks up a flowfile attribute by exact name.
func (e *Event) Attribute(name string) (string, bool) {
	if e.Attributes == nil {
		return "", false
	}
	v, ok := e.Attributes[name]
	return v, ok
}
