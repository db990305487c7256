package index

import (
	"testing"

	"github.com/provq/provq/provenance"
)

func sampleEvent() *provenance.Event {
	return &provenance.Event{
		ID:           7,
		Type:         provenance.EventTypeReceive,
		Time:         1700000000000,
		Size:         2048,
		TransitURI:   "sftp://node1/receive",
		ComponentID:  "00-11-22",
		Relationship: "success",
		Attributes:   map[string]string{"filename": "report.txt"},
	}
}

func TestTermMatches(t *testing.T) {
	e := sampleEvent()

	tests := []struct {
		name string
		q    Term
		want bool
	}{
		{name: "event type exact", q: Term{Field: provenance.FieldEventType, Value: "RECEIVE"}, want: true},
		{name: "event type case folded", q: Term{Field: provenance.FieldEventType, Value: "receive"}, want: true},
		{name: "event type mismatch", q: Term{Field: provenance.FieldEventType, Value: "SEND"}, want: false},
		{name: "attribute", q: Term{Field: "filename", Value: "report.txt"}, want: true},
		{name: "missing attribute", q: Term{Field: "path", Value: "x"}, want: false},
		{name: "component id", q: Term{Field: provenance.FieldComponentID, Value: "00-11-22"}, want: true},
		{name: "empty field is absent", q: Term{Field: provenance.FieldDetails, Value: ""}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Matches(e); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRangeMatches(t *testing.T) {
	e := sampleEvent()

	tests := []struct {
		name string
		q    Range
		want bool
	}{
		{name: "size inside", q: Range{Field: provenance.FieldFileSize, Min: 1000, Max: 3000}, want: true},
		{name: "size at bound", q: Range{Field: provenance.FieldFileSize, Min: 2048, Max: 2048}, want: true},
		{name: "size outside", q: Range{Field: provenance.FieldFileSize, Min: 3000, Max: 4000}, want: false},
		{name: "time inside", q: Range{Field: provenance.FieldEventTime, Min: 0, Max: 1800000000000}, want: true},
		{name: "non numeric field", q: Range{Field: provenance.FieldTransitURI, Min: 0, Max: 10}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Matches(e); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegexpMatches(t *testing.T) {
	e := sampleEvent()

	re, err := NewRegexp("filename", `report\..*`)
	if err != nil {
		t.Fatalf("NewRegexp: %v", err)
	}
	if !re.Matches(e) {
		t.Error("expected pattern to match filename attribute")
	}

	// The whole value must match, not a substring.
	partial, err := NewRegexp("filename", `port`)
	if err != nil {
		t.Fatalf("NewRegexp: %v", err)
	}
	if partial.Matches(e) {
		t.Error("substring match should not count")
	}

	if _, err := NewRegexp("filename", `([`); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestBooleanMatches(t *testing.T) {
	e := sampleEvent()
	recv := Term{Field: provenance.FieldEventType, Value: "RECEIVE"}
	send := Term{Field: provenance.FieldEventType, Value: "SEND"}
	big := Range{Field: provenance.FieldFileSize, Min: 1, Max: 1 << 40}

	tests := []struct {
		name string
		q    Boolean
		want bool
	}{
		{name: "all must match", q: Boolean{Must: []Query{recv, big}}, want: true},
		{name: "one must fails", q: Boolean{Must: []Query{send, big}}, want: false},
		{name: "any should suffices", q: Boolean{Should: []Query{send, recv}}, want: true},
		{name: "no should matches", q: Boolean{Should: []Query{send}}, want: false},
		{name: "empty matches everything", q: Boolean{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Matches(e); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	events := []*provenance.Event{
		{ID: 1, Type: provenance.EventTypeReceive},
		{ID: 2, Type: provenance.EventTypeSend},
		{ID: 3, Type: provenance.EventTypeReceive},
	}

	got := Filter(events, Term{Field: provenance.FieldEventType, Value: "RECEIVE"})
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("unexpected filter result: %v", got)
	}

	if got := Filter(events, MatchAll{}); len(got) != 3 {
		t.Errorf("MatchAll should keep all events, kept %d", len(got))
	}
}
