// Package pql implements the provenance query language: a small
// SQL-like language for selecting, filtering, aggregating, and
// ordering provenance events.
//
// A query is compiled once into an immutable evaluator graph and can
// then be executed any number of times against event streams:
//
//	q, err := pql.Compile("SELECT Event.ComponentId, SUM(Event.Size) " +
//		"FROM RECEIVE GROUP BY Event.ComponentId")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rs := q.Run(repo)
//	for rs.Next() {
//	    fmt.Println(rs.Row())
//	}
//
// Compiled queries can also be translated into the index query model
// for push-down pre-filtering; see Query.IndexQuery.
package pql
