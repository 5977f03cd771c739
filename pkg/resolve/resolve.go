// Package resolve turns link descriptors into edges of a graph model.
//
// Resolution runs after every resource is loaded and every declarative
// item is registered. It is single-threaded and deterministic: descriptors
// are processed in registration order and source nodes in name order.
//
// Expected data problems (a profile that is not loaded, an element id that
// does not exist, a pattern without matches) are recorded on the
// diagnostic collector and the resolver moves on to the next source node.
// Only registration invariants (a synthesized node colliding with a declared
// one) are reported as errors from Run.
package resolve

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fgraph/pkg/diag"
	"github.com/matzehuels/fgraph/pkg/fhir"
	"github.com/matzehuels/fgraph/pkg/graph"
	"github.com/matzehuels/fgraph/pkg/store"
)

// Options configures the classes and base url used for synthesized nodes.
type Options struct {
	BaseURL      string
	CSSFhir      string // Placeholder nodes for base FHIR types
	CSSBinding   string
	CSSFix       string
	CSSPattern   string
	CSSExtension string
}

// Default css classes.
const (
	DefaultCSSFhir      = "fhir"
	DefaultCSSBinding   = "valueSet"
	DefaultCSSFix       = "value"
	DefaultCSSPattern   = "value"
	DefaultCSSExtension = "extension"
)

func (o Options) withDefaults() Options {
	if o.CSSFhir == "" {
		o.CSSFhir = DefaultCSSFhir
	}
	if o.CSSBinding == "" {
		o.CSSBinding = DefaultCSSBinding
	}
	if o.CSSFix == "" {
		o.CSSFix = DefaultCSSFix
	}
	if o.CSSPattern == "" {
		o.CSSPattern = DefaultCSSPattern
	}
	if o.CSSExtension == "" {
		o.CSSExtension = DefaultCSSExtension
	}
	return o
}

// Resolver populates edges of a model from its link descriptors.
type Resolver struct {
	model  *graph.Model
	store  *store.Store
	diag   *diag.Collector
	logger *log.Logger
	opts   Options

	stats Stats
	fatal error
}

// Stats counts what resolution produced.
type Stats struct {
	Links     int // Descriptors processed
	Edges     int // Child edges created
	Synthetic int // Nodes synthesized
}

// New creates a resolver. A nil collector or logger discards output.
func New(m *graph.Model, s *store.Store, dc *diag.Collector, logger *log.Logger, opts Options) *Resolver {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if dc == nil {
		dc = diag.NewCollector(logger)
	}
	if opts.BaseURL == "" && s != nil {
		opts.BaseURL = s.BaseURL()
	}
	return &Resolver{model: m, store: s, diag: dc, logger: logger, opts: opts.withDefaults()}
}

// Run binds anchors, resolves every link descriptor and then resolves
// cardinality annotation directives.
func (r *Resolver) Run() (Stats, error) {
	r.BindAnchors()
	for _, l := range r.model.Links() {
		r.Resolve(l)
		if r.fatal != nil {
			return r.stats, r.fatal
		}
	}
	r.ResolveAnnotations()
	return r.stats, nil
}

// Resolve processes a single descriptor.
func (r *Resolver) Resolve(l graph.Link) {
	r.stats.Links++
	switch l := l.(type) {
	case *graph.ByReference:
		r.byReference(l)
	case *graph.ByBinding:
		r.byBinding(l)
	case *graph.ByName:
		r.byName(l)
	}
}

// BindAnchors resolves each anchored node's profile, element id and link.
func (r *Resolver) BindAnchors() {
	for _, n := range r.model.Nodes() {
		if n.Anchor != nil && n.Profile == nil {
			r.bindAnchor(n)
		}
	}
}

func (r *Resolver) bindAnchor(n *graph.Node) {
	sd, _ := r.store.Profile(n.Anchor.URL)
	if n.HRef == "" {
		n.HRef = r.href(n.Anchor.URL, n.Anchor.Item, sd, n.Location)
	}
	if sd == nil {
		return
	}
	id := fhir.ElementID(sd.BaseTypeName(), n.Anchor.Item)
	if m := fhir.Lookup(r.store, sd, id); !m.Found() {
		r.diag.Errorf(n.Location, "node %s: can not find snapshot element %s", n.Name, id)
		return
	}
	n.Profile = sd
	n.ElementID = id
}

// href derives a documentation link. Core urls link to themselves; urls
// outside the base url produce a warning and no link.
func (r *Resolver) href(url, item string, sd *fhir.StructureDefinition, loc string) string {
	if url == "" {
		return ""
	}
	if fhir.IsCore(url) && item == "" {
		return url
	}
	h, err := fhir.HRef(r.opts.BaseURL, url, item, sd)
	switch {
	case err == nil:
		return h
	case errors.Is(err, fhir.ErrForeignURL):
		r.diag.Warnf(loc, "%v", err)
	default:
		r.diag.Errorf(loc, "href: %v", err)
	}
	return ""
}

// find matches a name pattern, warning with close matches on no match.
func (r *Resolver) find(pattern, loc string) []*graph.Node {
	nodes, err := r.model.FindByPattern(pattern)
	if err != nil {
		r.diag.Errorf(loc, "%v", err)
		return nil
	}
	if len(nodes) == 0 {
		r.diag.Add(diag.Diagnostic{
			Severity: diag.SeverityWarn,
			Source:   loc,
			Message:  "no nodes named '" + pattern + "' found",
			Hints:    r.model.CloseMatches(pattern),
		})
	}
	return nodes
}

// element resolves item against the source node's anchor.
func (r *Resolver) element(src *graph.Node, item, loc string) (fhir.ElementMatch, bool) {
	if src.Anchor == nil {
		r.diag.Errorf(loc, "node %s: anchor is null", src.Name)
		return fhir.ElementMatch{}, false
	}
	pr, ok := src.Resolver()
	if !ok {
		r.diag.Errorf(loc, "node %s: can not find profile '%s'", src.Name, src.Anchor.URL)
		return fhir.ElementMatch{}, false
	}
	id := pr.Resolve(item)
	m := fhir.Lookup(r.store, src.Profile, id)
	if !m.Found() {
		r.diag.Errorf(loc, "node %s: can not find element %s", src.Name, id)
		return m, false
	}
	return m, true
}

func (r *Resolver) connect(parent, child *graph.Node, via graph.Link, depth int, annotation string) {
	added, err := r.model.Connect(parent.ID, child.ID, via, depth, annotation)
	if err != nil {
		r.fatal = err
		return
	}
	if added {
		r.stats.Edges++
		r.logger.Debug("link", "kind", via.Kind(), "from", parent.Name, "to", child.Name, "annotation", annotation)
	}
}
