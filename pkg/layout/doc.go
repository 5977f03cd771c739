// Package layout builds and positions focus diagrams.
//
// A diagram is built from a graph model in two passes. [Focus] walks the
// model outward from a focus node and produces a presentation tree of
// [Group] values holding [Node] boxes: the focus node's parents on the
// left, the focus node in the middle and its children, recursively, to the
// right. [Place] then assigns absolute coordinates to every node and
// generates the connector lines and annotation labels between columns.
//
// # Coordinates
//
// All geometry is in layout units. Renderers multiply by [Scale] to get
// pixels. Node widths are measured in pixels by a [fonts.Measurer] and
// divided by [Scale] when placed.
//
// # Determinism
//
// Groups are sorted by [Group.Sort] before placement, so two layouts of the
// same model produce identical coordinates regardless of the order links
// were resolved in.
package layout
