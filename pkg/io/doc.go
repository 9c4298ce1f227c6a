// Package io reads and writes the tables and graph documents stratum works
// with.
//
// # Tables
//
// The problems table is a CSV with a header row. Only the id column is
// required; impact, uncertainty, title and sector are recognised and every
// other column is carried through untouched:
//
//	id,title,sector,impact,uncertainty,status
//	P1,Funding gaps,finance,5,2,open
//	P2,Staffing shortages,ops,4,4,open
//
// The edges table names a source, a target and an optional weight. A blank
// or missing weight is 1:
//
//	source,target,weight
//	P1,P2,2
//	P2,P3,
//
// A UTF-8 byte order mark on the header is tolerated. Use [ReadProblemsCSV]
// and [ReadEdgesCSV] to decode, then [BuildNetwork] to assemble a
// [network.Network]. [LoadNetwork] does all three from file paths.
//
// Output tables are written by [WriteLevelsCSV], [WriteScoresCSV],
// [WriteTopDriversCSV] and [WriteEnrichedCSV].
//
// # JSON Format
//
// The graph document has two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "P1", "meta": {"impact": 5}},
//	    {"id": "P2"}
//	  ],
//	  "edges": [
//	    {"from": "P1", "to": "P2", "weight": 2}
//	  ]
//	}
//
// Edge weights are optional and default to 1. "source" and "target" are
// accepted as synonyms for "from" and "to". Edges may name nodes that do
// not exist; they are kept and ignored by the analyses.
//
// Use [ImportJSON] or [ReadJSON] to read and [ExportJSON] or [WriteJSON] to
// write. A document written by WriteJSON reads back into an equivalent
// network.
//
// # Concurrency
//
// All functions in this package are safe to call concurrently with other
// readers of the same network, but not with concurrent modifications to it.
package io
