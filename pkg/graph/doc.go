// Package graph holds the node/link model a run resolves and renders.
//
// A [Model] is an arena: nodes are stored in registration order and
// addressed by [NodeID]. Two lookup tables map node names and [Anchor]s to
// ids; both are injective, so registering a second node with an existing
// name or anchor fails with [ErrDuplicateNode] or [ErrDuplicateAnchor].
//
// # Nodes and edges
//
// A [Node] is created from a declarative node item or synthesized while
// links are resolved (binding, value and extension nodes, and placeholder
// nodes for base FHIR types). Edges are stored on both endpoints:
// [Node.Children] and [Node.Parents] hold [Edge] values naming the link
// descriptor that produced them, the traversal depth it costs and an
// optional annotation. Adding an edge to a node that is already linked to
// the same target is a no-op.
//
// # Link descriptors
//
// [Link] is a closed sum type over [ByReference], [ByBinding] and [ByName].
// Each carries a traversal name, a depth and a [KeySet]:
//
//	switch l := link.(type) {
//	case *graph.ByReference:
//	case *graph.ByBinding:
//	case *graph.ByName:
//	}
//
// The model is filled once and read many times. Registration is safe for
// concurrent use; edge mutation during resolution is single-threaded.
package graph
