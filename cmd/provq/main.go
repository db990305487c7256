package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/provq/provq/output"
	"github.com/provq/provq/pql"
	"github.com/provq/provq/provenance"
	"github.com/provq/provq/reader"
)

var (
	queryFlag  = flag.String("q", "", "Query to run (e.g., \"SELECT Event WHERE Event.Size > 1024\")")
	formatFlag = flag.String("f", "table", "Output format: table, json, jsonl, csv")
	fieldsFlag = flag.String("fields", "", "YAML file restricting searchable fields and attributes")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <archive.parquet>...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A tool to query provenance event archives.\n\n")
		fmt.Fprintf(os.Stderr, "IMPORTANT: All flags must come BEFORE file arguments.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -q \"SELECT Event\" events.parquet\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -q \"SELECT Event.Type, COUNT(Event) GROUP BY Event.Type\" -f csv 'archive-*.parquet'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -q \"SELECT Event WHERE Event['filename'] STARTS WITH 'report'\" -fields fields.yaml events.parquet\n", os.Args[0])
	}

	flag.Parse()

	if *queryFlag == "" {
		fmt.Fprintf(os.Stderr, "Error: missing query (-q)\n\n")
		flag.Usage()
		os.Exit(1)
	}
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing parquet archive argument\n\n")
		flag.Usage()
		os.Exit(1)
	}

	var formatter output.Formatter
	switch *formatFlag {
	case "table":
		formatter = output.NewTableFormatter(os.Stdout)
	case "json", "jsonl":
		formatter = output.NewJSONFormatter(os.Stdout)
	case "csv":
		formatter = output.NewCSVFormatter(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported format '%s'\n", *formatFlag)
		fmt.Fprintf(os.Stderr, "Supported formats: table, json, jsonl, csv\n")
		os.Exit(1)
	}

	query, err := compileQuery(*queryFlag, *fieldsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling query: %v\n", err)
		os.Exit(1)
	}

	var events []*provenance.Event
	for _, pattern := range flag.Args() {
		batch, err := reader.ReadGlob(pattern)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "Error: file '%s' not found\n", pattern)
				fmt.Fprintf(os.Stderr, "Please check the file path and try again.\n")
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}
		events = append(events, batch...)
	}

	results := query.Execute(provenance.NewSliceIterator(events))
	if err := formatter.Format(results); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}

// compileQuery compiles the query text, applying a searchable-field
// restriction when a config path is given.
func compileQuery(text, configPath string) (*pql.Query, error) {
	if configPath == "" {
		return pql.Compile(text)
	}
	cfg, err := LoadSearchableConfig(configPath)
	if err != nil {
		return nil, err
	}
	return pql.CompileSearchable(text, cfg.Fields, cfg.Attributes)
}
