package main

import (
	"log"

	"github.com/provq/provq/provenance"
	"github.com/provq/provq/reader"
)

func main() {
	events := []*provenance.Event{
		{ID: 1, Type: provenance.EventTypeReceive, Time: 1700000000000, Size: 2048,
			ComponentID: "ingest-1", TransitURI: "sftp://upstream/drop/report.csv",
			Attributes: map[string]string{"filename": "report.csv", "path": "/drop"}},
		{ID: 2, Type: provenance.EventTypeAttributesModified, Time: 1700000001000, Size: 2048,
			ComponentID: "enrich-1",
			Attributes:  map[string]string{"filename": "report.csv", "schema": "v2"}},
		{ID: 3, Type: provenance.EventTypeRoute, Time: 1700000002000, Size: 2048,
			ComponentID: "route-1", Relationship: "matched",
			Attributes: map[string]string{"filename": "report.csv"}},
		{ID: 4, Type: provenance.EventTypeSend, Time: 1700000003000, Size: 2048,
			ComponentID: "deliver-1", TransitURI: "https://warehouse/api/ingest",
			Attributes: map[string]string{"filename": "report.csv"}},
		{ID: 5, Type: provenance.EventTypeDrop, Time: 1700000004000, Size: 512,
			ComponentID: "route-1", Relationship: "unmatched",
			Attributes: map[string]string{"filename": "noise.bin"}},
	}

	if err := reader.WriteFile("sample.parquet", events); err != nil {
		log.Fatal(err)
	}
	log.Printf("Generated sample.parquet with %d events", len(events))
}
