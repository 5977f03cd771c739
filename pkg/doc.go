// Package pkg provides the core libraries for fgraph.
//
// # Overview
//
// fgraph renders focus diagrams for FHIR implementation guides. A focus
// diagram shows one resource in the middle, the resources that link to it
// on the left and everything it references on the right. The pkg directory
// is organized into three areas:
//
//  1. Input: [fhir], [store] and [nodegraph] read resources and graph files
//  2. Model: [graph] and [resolve] build and connect the node graph
//  3. Output: [layout], [render/svg] and [render/nodelink] draw it
//
// [pipeline] ties the stages together for the CLI.
//
// # Architecture
//
// The typical data flow through fgraph:
//
//	StructureDefinitions / ValueSets      *.nodeGraph files
//	         ↓                                   ↓
//	    [store] package                  [nodegraph] package
//	         ↓                                   ↓
//	         └──────→ [resolve] package ←── [graph] model
//	                        ↓
//	                 [layout] package (focus tree + positions)
//	                        ↓
//	               [render/svg] package
//	                        ↓
//	                  SVG + CSS output
//
// # Quick Start
//
//	opts, _ := pipeline.LoadOptions("fgraph.toml")
//	result, err := pipeline.NewRunner(logger).Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	if _, err := result.Save(opts.OutputDir); err != nil {
//	    return err
//	}
//
// # Main Packages
//
// [fhir] - Resource model, ojg based decoding, element lookup with
// inheritance and value formatting.
//
// [store] - Thread-safe resource store and concurrent directory loader.
//
// [nodegraph] - Declarative graph file decoding (JSON and YAML) and
// registration into the model.
//
// [graph] - Node arena, link descriptors, key sets and legends.
//
// [resolve] - Turns link descriptors into parent/child edges.
//
// [layout] - Presentation tree, focus traversal with cycle detection and
// positioning.
//
// [render/svg] - SVG output for a positioned diagram.
//
// [render/nodelink] - Whole-graph overview using Graphviz.
//
// [diag] and [errors] - Recoverable diagnostics and fatal error codes.
//
// [observability] - Optional instrumentation hooks.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//
// [fhir]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/fhir
// [store]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/store
// [nodegraph]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/nodegraph
// [graph]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/graph
// [resolve]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/resolve
// [layout]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/layout
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/render/svg
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/pipeline
// [diag]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/diag
// [errors]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/observability
package pkg
