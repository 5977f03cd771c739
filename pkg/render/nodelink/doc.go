// Package nodelink renders a whole graph model as a node-link overview.
//
// # Overview
//
// The focus diagrams of package layout show one node and its neighbourhood.
// This package draws every resolved node and edge of a model at once using
// Graphviz, which is useful for checking link descriptors before focus
// diagrams are rendered.
//
// # Usage
//
// Convert a model to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(m, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The generated DOT uses left-to-right layout (rankdir=LR), matching the
// parent to child direction of focus diagrams. Edges to binding, fixed and
// pattern nodes, which cost no traversal depth, are dashed. Edge labels
// carry the child-side annotation (usually a cardinality).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
