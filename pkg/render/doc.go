// Package render groups the output formats of fgraph.
//
// # Focus Diagrams
//
// The [svg] subpackage draws a positioned [layout.Layout] as a standalone
// SVG document. Stylesheets are referenced, not embedded, so one CSS file
// can restyle every diagram of a guide.
//
//	l := layout.Place(root, legend, layout.DefaultConfig(), nil)
//	out := svg.Render(l, svg.WithName("FocusGraph-Report"), svg.WithStylesheets("focus.css"))
//
// # Overview Diagrams
//
// The [nodelink] subpackage renders the whole resolved graph using
// Graphviz. It is meant for debugging graph files.
//
//	dot := nodelink.ToDOT(m, nodelink.Options{})
//	out, err := nodelink.RenderSVG(ctx, dot)
//
// [svg]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/render/svg
// [nodelink]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/render/nodelink
// [layout.Layout]: https://pkg.go.dev/github.com/matzehuels/fgraph/pkg/layout#Layout
package render
