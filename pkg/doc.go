// Package pkg provides the core libraries for Stratum problem-network analysis.
//
// # Overview
//
// Stratum takes a set of problems and the influence links between them and
// answers three questions: which problems sit at the root of the hierarchy,
// which ones drive or depend on the rest, and which ones to act on first.
// The pkg directory is organized into four main areas:
//
//  1. [core] - Domain logic (network, ISM levels, MICMAC scores, triage)
//  2. [io] and [schema] - Input tables, validation and output tables
//  3. [pipeline] - Orchestration (level, score, route) with caching
//  4. [publish] - Delivery of reports to a directory or MongoDB
//
// # Architecture
//
// The typical data flow through Stratum:
//
//	problems.csv + edges.csv (or a JSON node-link document)
//	         ↓
//	    [schema] validate, [io] build the [core/network]
//	         ↓
//	    [pipeline] runs [core/ism], [core/micmac] and [core/triage]
//	         ↓
//	    [publish] CSV tables + report.json, or a MongoDB document
//
// # Quick Start
//
//	ds, _ := io.LoadNetwork("data/problems.csv", "data/edges.csv")
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	report, _ := runner.Execute(ctx, ds.Network, pipeline.Options{})
//
//	sink := publish.NewDirSink("docs/data", logger)
//	_ = sink.Publish(ctx, &publish.Bundle{Report: report, Problems: ds.Problems})
//
// # Main Packages
//
// [core/network] - Directed, weighted problem network. Tolerates cycles and
// edges naming unknown problems.
//
// [core/ism] - Reachability closure (Warshall) and level partitioning, with a
// cycle-aware and a strict mode and a deadlock fallback.
//
// [core/micmac] - Influence and dependence over one to three hops and the
// four-quadrant classification.
//
// [core/triage] - Impact/uncertainty routing.
//
// [cache] - File, Redis and no-op caches keyed by network content hash.
//
// [observability] - Hooks around analyses, cache operations and HTTP
// requests, with a Prometheus implementation.
//
// [config] - TOML/YAML project configuration with environment overrides.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/core/ism/...           # Specific package
//	go test -run Example                 # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/core
// [core/network]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/core/network
// [core/ism]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/core/ism
// [core/micmac]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/core/micmac
// [core/triage]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/core/triage
// [io]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/io
// [schema]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/schema
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/pipeline
// [publish]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/publish
// [cache]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/observability
// [config]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/errors
package pkg
