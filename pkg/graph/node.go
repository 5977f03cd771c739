package graph

import (
	"slices"
	"strings"

	"github.com/matzehuels/fgraph/pkg/fhir"
)

// NodeID indexes a node in its Model.
type NodeID int

// Edge connects a node to a parent or child.
type Edge struct {
	Via        Link   // Descriptor that produced the edge
	Node       NodeID // Node at the other end
	Depth      int    // Traversal budget consumed when crossing
	Annotation string // Child-side label such as a cardinality
}

// Keys returns the key set of the producing descriptor.
func (e Edge) Keys() KeySet {
	if e.Via == nil {
		return KeySet{}
	}
	return e.Via.Base().Keys
}

// TraversalName returns the traversal tag of the producing descriptor.
func (e Edge) TraversalName() string {
	if e.Via == nil {
		return ""
	}
	return e.Via.Base().TraversalName
}

// Node is a vertex of the model.
type Node struct {
	ID     NodeID
	Name   string
	Anchor *Anchor

	DisplayName   string // Lines separated by '/'
	CSSClass      string
	SortPrefix    string
	LhsAnnotation string // Raw text, or "^<elementId>" for a cardinality lookup
	RhsAnnotation string
	HRef          string
	Keys          KeySet
	TraceMsg      string
	Location      string
	Synthetic     bool

	// Resolved once the anchor has been looked up.
	Profile   *fhir.StructureDefinition
	ElementID string

	Parents    []Edge
	Children   []Edge
	Traversals []string
}

// Lines splits the display name into trimmed lines.
func (n *Node) Lines() []string {
	parts := strings.Split(n.DisplayName, "/")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		lines = append(lines, strings.TrimSpace(p))
	}
	return lines
}

// IsTopLevel reports whether the node is anchored to a whole resource.
func (n *Node) IsTopLevel() bool {
	return n.Anchor != nil && n.Anchor.IsTopLevel()
}

// Resolver returns the path resolver for the node's anchor element.
// ok is false until the anchor has been resolved.
func (n *Node) Resolver() (r fhir.PathResolver, ok bool) {
	if n.Profile == nil {
		return r, false
	}
	return fhir.PathResolver{BaseType: n.Profile.BaseTypeName(), AnchorID: n.ElementID}, true
}

// InTraversal reports whether the node was tagged with name.
func (n *Node) InTraversal(name string) bool {
	return slices.Contains(n.Traversals, name)
}

// AddChild appends e unless the node already has a child edge to e.Node.
func (n *Node) AddChild(e Edge) bool {
	if linked(n.Children, e.Node) {
		return false
	}
	n.Children = append(n.Children, e)
	return true
}

// AddParent appends e unless the node already has a parent edge to e.Node.
func (n *Node) AddParent(e Edge) bool {
	if linked(n.Parents, e.Node) {
		return false
	}
	n.Parents = append(n.Parents, e)
	return true
}

func linked(edges []Edge, id NodeID) bool {
	for _, e := range edges {
		if e.Node == id {
			return true
		}
	}
	return false
}

func (n *Node) String() string { return n.Name }
