package nodegraph

import (
	"fmt"

	"github.com/matzehuels/fgraph/pkg/graph"
)

// ItemKind enumerates the declarative item types.
type ItemKind int

const (
	KindNode ItemKind = iota
	KindGraph
	KindLinkByReference
	KindLinkByBinding
	KindLinkByName
	KindLegend
)

var itemNames = map[string]ItemKind{
	"graphNode":            KindNode,
	"node":                 KindNode,
	"graph":                KindGraph,
	"graphLinkByReference": KindLinkByReference,
	"linkByReference":      KindLinkByReference,
	"graphLinkByBinding":   KindLinkByBinding,
	"linkByBinding":        KindLinkByBinding,
	"graphLinkByName":      KindLinkByName,
	"linkByName":           KindLinkByName,
	"graphLegend":          KindLegend,
	"legend":               KindLegend,
}

// ParseItemKind maps an item type name, or one of its aliases, to its kind.
func ParseItemKind(s string) (ItemKind, bool) {
	k, ok := itemNames[s]
	return k, ok
}

func (k ItemKind) String() string {
	switch k {
	case KindNode:
		return "graphNode"
	case KindGraph:
		return "graph"
	case KindLinkByReference:
		return "graphLinkByReference"
	case KindLinkByBinding:
		return "graphLinkByBinding"
	case KindLinkByName:
		return "graphLinkByName"
	case KindLegend:
		return "graphLegend"
	default:
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
}

// Item is one decoded declarative item. Implementations: [*NodeItem],
// [*GraphItem], [*LinkItem] and [*LegendItem].
type Item interface {
	Kind() ItemKind
	Location() string
	item()
}

// Loc records where an item was read from.
type Loc struct {
	File  string
	Index int // 1-based position in the file
}

func (l Loc) String() string { return fmt.Sprintf("%s#%d", l.File, l.Index) }

// AnchorField is the anchor member of a node item.
type AnchorField struct {
	URL  string `json:"url" yaml:"url"`
	Item string `json:"item" yaml:"item"`
}

// NodeItem declares a graph node.
type NodeItem struct {
	Loc               `json:"-" yaml:"-"`
	NodeName          string       `json:"nodeName" yaml:"nodeName"`
	DisplayName       string       `json:"displayName" yaml:"displayName"`
	CSSClass          string       `json:"cssClass" yaml:"cssClass"`
	SortPrefix        string       `json:"sortPrefix" yaml:"sortPrefix"`
	LhsAnnotationText string       `json:"lhsAnnotationText" yaml:"lhsAnnotationText"`
	RhsAnnotationText string       `json:"rhsAnnotationText" yaml:"rhsAnnotationText"`
	Keys              KeyList      `json:"keys" yaml:"keys"`
	Anchor            *AnchorField `json:"anchor" yaml:"anchor"`
	TraceMsg          string       `json:"traceMsg" yaml:"traceMsg"`
}

// GraphItem tags every node matching NodeName into a traversal.
type GraphItem struct {
	Loc           `json:"-" yaml:"-"`
	TraversalName string `json:"traversalName" yaml:"traversalName"`
	NodeName      string `json:"nodeName" yaml:"nodeName"`
}

// LinkItem declares a link of any of the three kinds.
type LinkItem struct {
	Loc           `json:"-" yaml:"-"`
	LinkKind      graph.LinkKind `json:"-" yaml:"-"`
	TraversalName string         `json:"traversalName" yaml:"traversalName"`
	Depth         *int           `json:"depth" yaml:"depth"`
	Key           KeyList        `json:"key" yaml:"key"`
	Source        string         `json:"source" yaml:"source"`
	Item          string         `json:"item" yaml:"item"`
	Target        string         `json:"target" yaml:"target"`
	Bindings      bool           `json:"bindings" yaml:"bindings"`
	TraceMsg      string         `json:"traceMsg" yaml:"traceMsg"`
}

// LegendItem adds an entry to a named legend.
type LegendItem struct {
	Loc        `json:"-" yaml:"-"`
	LegendName string `json:"legendName" yaml:"legendName"`
	Item       string `json:"item" yaml:"item"`
	CSSClass   string `json:"cssClass" yaml:"cssClass"`
}

func (i *NodeItem) Kind() ItemKind   { return KindNode }
func (i *GraphItem) Kind() ItemKind  { return KindGraph }
func (i *LegendItem) Kind() ItemKind { return KindLegend }

// Kind maps the link variant back to its item kind.
func (i *LinkItem) Kind() ItemKind {
	switch i.LinkKind {
	case graph.KindByBinding:
		return KindLinkByBinding
	case graph.KindByName:
		return KindLinkByName
	default:
		return KindLinkByReference
	}
}

func (i *NodeItem) Location() string   { return i.Loc.String() }
func (i *GraphItem) Location() string  { return i.Loc.String() }
func (i *LinkItem) Location() string   { return i.Loc.String() }
func (i *LegendItem) Location() string { return i.Loc.String() }

func (*NodeItem) item()   {}
func (*GraphItem) item()  {}
func (*LinkItem) item()   {}
func (*LegendItem) item() {}

// DefaultLinkDepth is the depth a link costs when none is given.
const DefaultLinkDepth = 1

// validate checks required fields.
func (i *NodeItem) validate() error {
	if err := required(i.NodeName, "nodeName"); err != nil {
		return err
	}
	if err := required(i.DisplayName, "displayName"); err != nil {
		return err
	}
	if i.Anchor != nil {
		return required(i.Anchor.URL, "anchor.url")
	}
	return nil
}

func (i *GraphItem) validate() error {
	if err := required(i.TraversalName, "traversalName"); err != nil {
		return err
	}
	return required(i.NodeName, "nodeName")
}

func (i *LinkItem) validate() error {
	if err := required(i.TraversalName, "traversalName"); err != nil {
		return err
	}
	if err := required(i.Source, "source"); err != nil {
		return err
	}
	if i.LinkKind == graph.KindByName {
		return required(i.Target, "target")
	}
	return nil
}

func (i *LegendItem) validate() error {
	if err := required(i.LegendName, "legendName"); err != nil {
		return err
	}
	if err := required(i.Item, "item"); err != nil {
		return err
	}
	return required(i.CSSClass, "cssClass")
}

func required(v, field string) error {
	if v == "" {
		return fmt.Errorf("missing required field %q", field)
	}
	return nil
}
