// Package reader loads provenance events from parquet archive files.
//
// Archives are flat parquet tables with one row per event; attribute
// maps are stored as parquet maps. WriteFile produces archives in the
// same layout, which is also how test fixtures are built.
package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/provq/provq/provenance"
)

// eventRow is the parquet schema of one archived event.
type eventRow struct {
	EventID       int64             `parquet:"event_id"`
	EventType     string            `parquet:"event_type,dict"`
	EventTime     int64             `parquet:"event_time_millis"`
	FileSize      int64             `parquet:"file_size"`
	ComponentID   string            `parquet:"component_id,dict"`
	ComponentType string            `parquet:"component_type,dict"`
	TransitURI    string            `parquet:"transit_uri"`
	FlowFileUUID  string            `parquet:"flowfile_uuid"`
	Relationship  string            `parquet:"relationship,dict"`
	Details       string            `parquet:"details"`
	Attributes    map[string]string `parquet:"attributes"`
}

func (r eventRow) toEvent() *provenance.Event {
	// Unknown type names decode as UNKNOWN rather than failing the
	// whole archive.
	t, err := provenance.ParseEventType(r.EventType)
	if err != nil {
		t = provenance.EventTypeUnknown
	}
	return &provenance.Event{
		ID:            r.EventID,
		Type:          t,
		Time:          r.EventTime,
		Size:          r.FileSize,
		ComponentID:   r.ComponentID,
		ComponentType: r.ComponentType,
		TransitURI:    r.TransitURI,
		FlowFileUUID:  r.FlowFileUUID,
		Relationship:  r.Relationship,
		Details:       r.Details,
		Attributes:    r.Attributes,
	}
}

func toRow(e *provenance.Event) eventRow {
	return eventRow{
		EventID:       e.ID,
		EventType:     e.Type.String(),
		EventTime:     e.Time,
		FileSize:      e.Size,
		ComponentID:   e.ComponentID,
		ComponentType: e.ComponentType,
		TransitURI:    e.TransitURI,
		FlowFileUUID:  e.FlowFileUUID,
		Relationship:  e.Relationship,
		Details:       e.Details,
		Attributes:    e.Attributes,
	}
}

// ReadFile reads every event from a single parquet archive.
func ReadFile(path string) ([]*provenance.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[eventRow](file)
	defer func() { _ = reader.Close() }()

	var events []*provenance.Event
	buf := make([]eventRow, 256)
	for {
		n, err := reader.Read(buf)
		for i := 0; i < n; i++ {
			events = append(events, buf[i].toEvent())
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read rows: %w", err)
		}
	}
	return events, nil
}

// ReadGlob reads events from every archive matching the pattern. A
// pattern without wildcards reads a single file.
func ReadGlob(pattern string) ([]*provenance.Event, error) {
	if !strings.ContainsAny(pattern, "*?[]{}") {
		return ReadFile(pattern)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}

	var all []*provenance.Event
	for _, path := range matches {
		events, err := ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		all = append(all, events...)
	}
	return all, nil
}

// WriteFile writes events to a parquet archive at path, replacing any
// existing file.
func WriteFile(path string, events []*provenance.Event) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	writer := parquet.NewGenericWriter[eventRow](file)
	rows := make([]eventRow, len(events))
	for i, e := range events {
		rows[i] = toRow(e)
	}
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			_ = file.Close()
			return fmt.Errorf("failed to write rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}
