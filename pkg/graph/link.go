package graph

import "fmt"

// LinkKind enumerates the link descriptor variants.
type LinkKind int

const (
	KindByReference LinkKind = iota
	KindByBinding
	KindByName
)

func (k LinkKind) String() string {
	switch k {
	case KindByReference:
		return "linkByReference"
	case KindByBinding:
		return "linkByBinding"
	case KindByName:
		return "linkByName"
	default:
		return fmt.Sprintf("LinkKind(%d)", int(k))
	}
}

// LinkBase holds the fields every link descriptor shares.
type LinkBase struct {
	TraversalName string
	Depth         int
	Keys          KeySet
	Source        string // Regex over node names
	Location      string // Descriptor location for diagnostics
	TraceMsg      string
}

// Link is a declarative link descriptor. The set of implementations is
// closed: [*ByReference], [*ByBinding] and [*ByName].
type Link interface {
	Kind() LinkKind
	Base() *LinkBase
	link()
}

// ByReference links source nodes to the profiles an element's type
// references point at.
type ByReference struct {
	LinkBase
	Item     string
	Bindings bool // Also attach binding, fixed and pattern nodes
}

// ByBinding links source nodes to the value set binding and the fixed and
// pattern values of an element.
type ByBinding struct {
	LinkBase
	Item string
}

// ByName links every source node to every target node.
type ByName struct {
	LinkBase
	Target string
}

func (l *ByReference) Kind() LinkKind  { return KindByReference }
func (l *ByReference) Base() *LinkBase { return &l.LinkBase }
func (l *ByReference) link()           {}

func (l *ByBinding) Kind() LinkKind  { return KindByBinding }
func (l *ByBinding) Base() *LinkBase { return &l.LinkBase }
func (l *ByBinding) link()           {}

func (l *ByName) Kind() LinkKind  { return KindByName }
func (l *ByName) Base() *LinkBase { return &l.LinkBase }
func (l *ByName) link()           {}

// Legend is one entry of a named legend.
type Legend struct {
	Name     string
	Item     string
	CSSClass string
}
