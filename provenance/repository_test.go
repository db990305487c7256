package provenance

import "testing"

func TestParseEventType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    EventType
		wantErr bool
	}{
		{name: "upper case", input: "RECEIVE", want: EventTypeReceive},
		{name: "lower case", input: "send", want: EventTypeSend},
		{name: "mixed case", input: "Attributes_Modified", want: EventTypeAttributesModified},
		{name: "surrounding whitespace", input: "  DROP  ", want: EventTypeDrop},
		{name: "unknown name", input: "TELEPORT", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseEventType(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEventType(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseEventType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEventTypeStringRoundTrip(t *testing.T) {
	for _, et := range EventTypes() {
		parsed, err := ParseEventType(et.String())
		if err != nil {
			t.Fatalf("ParseEventType(%q): %v", et.String(), err)
		}
		if parsed != et {
			t.Errorf("round trip for %v produced %v", et, parsed)
		}
	}
}

func TestVolatileRepositoryRegister(t *testing.T) {
	repo := NewVolatileRepository()

	first := repo.Register(&Event{Type: EventTypeReceive, Size: 100})
	second := repo.Register(&Event{Type: EventTypeSend, Size: 200})

	if first != 0 || second != 1 {
		t.Fatalf("expected sequential IDs 0,1 got %d,%d", first, second)
	}

	events, err := repo.Events(0, 10)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Time == 0 {
		t.Error("Register should default a zero Time")
	}
	if events[0].FlowFileUUID == "" {
		t.Error("Register should default an empty FlowFileUUID")
	}
	if events[0].FlowFileUUID == events[1].FlowFileUUID {
		t.Error("defaulted UUIDs should be distinct")
	}
}

func TestVolatileRepositoryPaging(t *testing.T) {
	repo := NewVolatileRepository()
	for i := 0; i < 25; i++ {
		repo.Register(&Event{Type: EventTypeCreate})
	}

	tests := []struct {
		name    string
		firstID int64
		max     int
		wantLen int
		wantID  int64
	}{
		{name: "first page", firstID: 0, max: 10, wantLen: 10, wantID: 0},
		{name: "middle page", firstID: 10, max: 10, wantLen: 10, wantID: 10},
		{name: "short last page", firstID: 20, max: 10, wantLen: 5, wantID: 20},
		{name: "past the end", firstID: 25, max: 10, wantLen: 0},
		{name: "negative first", firstID: -5, max: 3, wantLen: 3, wantID: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := repo.Events(tt.firstID, tt.max)
			if err != nil {
				t.Fatalf("Events: %v", err)
			}
			if len(events) != tt.wantLen {
				t.Fatalf("expected %d events, got %d", tt.wantLen, len(events))
			}
			if tt.wantLen > 0 && events[0].ID != tt.wantID {
				t.Errorf("expected first ID %d, got %d", tt.wantID, events[0].ID)
			}
		})
	}
}

func TestCursorPagesThroughRepository(t *testing.T) {
	repo := NewVolatileRepository()
	for i := 0; i < 7; i++ {
		repo.Register(&Event{Type: EventTypeRoute})
	}

	cursor := NewCursor(repo, 3)
	var ids []int64
	for cursor.Next() {
		ids = append(ids, cursor.Event().ID)
	}
	if err := cursor.Err(); err != nil {
		t.Fatalf("cursor error: %v", err)
	}
	if len(ids) != 7 {
		t.Fatalf("expected 7 events, got %d", len(ids))
	}
	for i, id := range ids {
		if id != int64(i) {
			t.Errorf("position %d: expected ID %d, got %d", i, i, id)
		}
	}
}

func TestSliceIterator(t *testing.T) {
	events := []*Event{{ID: 1}, {ID: 2}}
	it := NewSliceIterator(events)

	var seen int
	for it.Next() {
		seen++
	}
	if seen != 2 {
		t.Errorf("expected 2 events, saw %d", seen)
	}
	if it.Next() {
		t.Error("exhausted iterator should keep returning false")
	}
	if it.Err() != nil {
		t.Errorf("unexpected error: %v", it.Err())
	}
}
