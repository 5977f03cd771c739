package graph

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	fgerrors "github.com/matzehuels/fgraph/pkg/errors"
)

var (
	// ErrDuplicateNode is returned by [Model.AddNode] when the name is taken.
	ErrDuplicateNode = errors.New("duplicate node name")

	// ErrDuplicateAnchor is returned by [Model.AddNode] when another node is
	// already bound to the same anchor.
	ErrDuplicateAnchor = errors.New("duplicate node anchor")

	// ErrUnknownNode is returned when an edge names a node id that is not
	// part of the model.
	ErrUnknownNode = errors.New("unknown node")
)

// maxCloseMatches caps the suggestions reported for an unmatched pattern.
const maxCloseMatches = 10

// Model is the node arena plus the link descriptors and legends of a run.
// The zero value is not usable; use New.
type Model struct {
	mu        sync.RWMutex
	nodes     []*Node
	byName    map[string]NodeID
	byAnchor  map[Anchor]NodeID
	synthetic map[string]NodeID
	links     []Link
	legends   []Legend
}

// New creates an empty model.
func New() *Model {
	return &Model{
		byName:    make(map[string]NodeID),
		byAnchor:  make(map[Anchor]NodeID),
		synthetic: make(map[string]NodeID),
	}
}

// AddNode registers n under its name and, if set, its anchor. The node's
// ID is assigned here.
func (m *Model) AddNode(n *Node) (*Node, error) {
	if err := fgerrors.ValidateNodeName(n.Name); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byName[n.Name]; ok {
		return nil, fgerrors.Wrap(fgerrors.ErrCodeDuplicateNode, ErrDuplicateNode, "node %q", n.Name)
	}
	if n.Anchor != nil {
		if other, ok := m.byAnchor[*n.Anchor]; ok {
			return nil, fgerrors.Wrap(fgerrors.ErrCodeDuplicateAnchor, ErrDuplicateAnchor,
				"node %q: anchor %s already bound to %q", n.Name, n.Anchor, m.nodes[other].Name)
		}
	}

	n.ID = NodeID(len(m.nodes))
	m.nodes = append(m.nodes, n)
	m.byName[n.Name] = n.ID
	if n.Anchor != nil {
		m.byAnchor[*n.Anchor] = n.ID
	}
	return n, nil
}

// Synthetic returns the synthetic node registered under key, creating it
// from mk on first use. Synthetic nodes are not reachable by name.
func (m *Model) Synthetic(key string, mk func() *Node) *Node {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.synthetic[key]; ok {
		return m.nodes[id]
	}
	n := mk()
	n.Synthetic = true
	if n.Name == "" {
		n.Name = key
	}
	n.ID = NodeID(len(m.nodes))
	m.nodes = append(m.nodes, n)
	m.synthetic[key] = n.ID
	return n
}

// Node returns the node with the given id, or nil.
func (m *Model) Node(id NodeID) *Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 0 || int(id) >= len(m.nodes) {
		return nil
	}
	return m.nodes[id]
}

// NodeByName looks up a registered node by name.
func (m *Model) NodeByName(name string) (*Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.nodes[id], true
}

// NodeByAnchor looks up a registered node by anchor.
func (m *Model) NodeByAnchor(a Anchor) (*Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byAnchor[a]
	if !ok {
		return nil, false
	}
	return m.nodes[id], true
}

// Nodes returns every node in registration order.
func (m *Model) Nodes() []*Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.nodes)
}

// Len returns the number of nodes.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// FindByPattern returns the named nodes matching the regular expression,
// sorted by name.
func (m *Model) FindByPattern(pattern string) ([]*Node, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fgerrors.Wrap(fgerrors.ErrCodeInvalidInput, err, "pattern %q", pattern)
	}

	m.mu.RLock()
	var out []*Node
	for name, id := range m.byName {
		if re.MatchString(name) {
			out = append(out, m.nodes[id])
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CloseMatches suggests node names for a pattern that matched nothing:
// names whose leading segment equals the pattern's leading segment, where a
// segment ends at the first '.', '[' or '/'.
func (m *Model) CloseMatches(pattern string) []string {
	lead := leadingSegment(strings.TrimPrefix(pattern, "^"))
	if lead == "" {
		return nil
	}

	m.mu.RLock()
	var out []string
	for name := range m.byName {
		if leadingSegment(name) == lead {
			out = append(out, name)
		}
	}
	m.mu.RUnlock()

	sort.Strings(out)
	if len(out) > maxCloseMatches {
		out = out[:maxCloseMatches]
	}
	return out
}

func leadingSegment(s string) string {
	if i := strings.IndexAny(s, ".[/"); i >= 0 {
		return s[:i]
	}
	return s
}

// Connect adds a parent->child edge on both nodes. It reports whether a
// new child edge was created.
func (m *Model) Connect(parent, child NodeID, via Link, depth int, annotation string) (bool, error) {
	p, c := m.Node(parent), m.Node(child)
	if p == nil || c == nil {
		return false, fmt.Errorf("%w: %d -> %d", ErrUnknownNode, parent, child)
	}
	added := p.AddChild(Edge{Via: via, Node: child, Depth: depth, Annotation: annotation})
	c.AddParent(Edge{Via: via, Node: parent, Depth: depth})
	return added, nil
}

// Tag adds the node to a named traversal.
func (m *Model) Tag(id NodeID, traversal string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 0 || int(id) >= len(m.nodes) {
		return
	}
	if n := m.nodes[id]; !n.InTraversal(traversal) {
		n.Traversals = append(n.Traversals, traversal)
	}
}

// Tagged returns the nodes tagged with traversal, in registration order.
func (m *Model) Tagged(traversal string) []*Node {
	var out []*Node
	for _, n := range m.Nodes() {
		if n.InTraversal(traversal) {
			out = append(out, n)
		}
	}
	return out
}

// AddLink queues a descriptor for resolution.
func (m *Model) AddLink(l Link) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, l)
}

// Links returns the descriptors in the order they were added.
func (m *Model) Links() []Link {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.links)
}

// AddLegend records a legend entry.
func (m *Model) AddLegend(l Legend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.legends = append(m.legends, l)
}

// Legends returns all legend entries.
func (m *Model) Legends() []Legend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.legends)
}

// Legend returns the entries of one named legend.
func (m *Model) Legend(name string) []Legend {
	var out []Legend
	for _, l := range m.Legends() {
		if l.Name == name {
			out = append(out, l)
		}
	}
	return out
}
