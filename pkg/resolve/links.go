package resolve

import (
	"fmt"

	fgerrors "github.com/matzehuels/fgraph/pkg/errors"
	"github.com/matzehuels/fgraph/pkg/fhir"
	"github.com/matzehuels/fgraph/pkg/graph"
)

// Edges to attachment nodes cost no traversal depth.
const attachmentDepth = 0

func (r *Resolver) byReference(l *graph.ByReference) {
	loc := l.Location
	for _, src := range r.find(l.Source, loc) {
		m, ok := r.element(src, l.Item, loc)
		if !ok {
			continue
		}
		e := m.Element()
		card, err := e.Cardinality()
		if err != nil {
			r.diag.Errorf(loc, "node %s: %v", src.Name, err)
		}

		if e.IsExtension() {
			r.extension(src, m, card, l)
		} else {
			for _, t := range e.Types {
				for _, url := range t.Targets() {
					target := r.targetNode(url, loc)
					if r.fatal != nil {
						return
					}
					if target == nil {
						continue
					}
					r.connect(src, target, l, l.Depth, card)
				}
			}
		}
		if l.Bindings {
			r.attachValues(src, m.ID, m.Constraints(), l)
		}
	}
}

func (r *Resolver) byBinding(l *graph.ByBinding) {
	loc := l.Location
	for _, src := range r.find(l.Source, loc) {
		m, ok := r.element(src, l.Item, loc)
		if !ok {
			continue
		}
		if r.attachValues(src, m.ID, m.Constraints(), l) == 0 {
			r.diag.Infof(loc, "node %s: element %s has no binding, fixed or pattern value", src.Name, m.ID)
		}
	}
}

func (r *Resolver) byName(l *graph.ByName) {
	loc := l.Location
	sources := r.find(l.Source, loc)
	targets := r.find(l.Target, loc)
	if len(sources) > 1 && len(targets) > 1 {
		err := fgerrors.New(fgerrors.ErrCodeAmbiguousLink,
			"many to many link not supported: '%s' <--> '%s'", l.Source, l.Target)
		r.diag.Errorf(loc, "%v", err)
		return
	}
	for _, src := range sources {
		for _, dst := range targets {
			r.connect(src, dst, l, l.Depth, "")
		}
	}
}

// targetNode returns the node anchored at url, synthesizing a placeholder
// for base FHIR types. Other unknown targets are reported and skipped.
func (r *Resolver) targetNode(url, loc string) *graph.Node {
	anchor := graph.Anchor{URL: url}
	if n, ok := r.model.NodeByAnchor(anchor); ok {
		return n
	}
	if !fhir.IsCore(url) {
		r.diag.Errorf(loc, "can not find target '%s'", url)
		return nil
	}
	name := fhir.LastURIPart(url)
	n, err := r.model.AddNode(&graph.Node{
		Name:        "fhir/" + name,
		DisplayName: name,
		Anchor:      &anchor,
		HRef:        url,
		CSSClass:    r.opts.CSSFhir,
		Location:    loc,
		Synthetic:   true,
	})
	if err != nil {
		r.fatal = fmt.Errorf("synthesize %s: %w", url, err)
		return nil
	}
	r.stats.Synthetic++
	return n
}

// extension links src to a node for the extension an element is typed
// with, then attaches the extension value's binding, fixed and pattern.
func (r *Resolver) extension(src *graph.Node, m fhir.ElementMatch, card string, l *graph.ByReference) {
	loc := l.Location
	extURL := ""
	if u := fhir.Lookup(r.store, src.Profile, m.ID+".url"); u.Found() {
		if f := u.Constraints().Fixed; f != nil {
			extURL, _ = f.Data.(string)
		}
	}
	if extURL == "" {
		for _, t := range m.Element().Types {
			if len(t.Profile) > 0 {
				extURL = t.Profile[0]
				break
			}
		}
	}
	extSD, _ := r.store.Profile(extURL)

	value := fhir.Lookup(r.store, src.Profile, m.ID+".value[x]")
	if !value.Found() && extSD != nil {
		value = fhir.Lookup(r.store, extSD, "Extension.value[x]")
	}

	// Each source gets its own extension node so the values it fixes
	// never show up under another profile.
	ext := r.synthetic("extension:"+src.Name+":"+m.ID, func() *graph.Node {
		title := fhir.LastURIPart(extURL)
		if extSD != nil && extSD.Name != "" {
			title = extSD.Name
		}
		if title == "" {
			title = fhir.LastURIPart(m.ID)
		}
		return &graph.Node{
			DisplayName: title + "/Extension",
			CSSClass:    r.opts.CSSExtension,
			HRef:        r.href(extURL, "", nil, loc),
			Location:    loc,
		}
	})
	r.connect(src, ext, l, l.Depth, card)

	if !value.Found() {
		r.diag.Infof(loc, "node %s: extension %s has no value element", src.Name, m.ID)
		return
	}
	r.attachValues(ext, value.ID, value.Constraints(), l)
}

// attachValues links binding, pattern and fixed nodes for e to src and
// returns how many were attached.
func (r *Resolver) attachValues(src *graph.Node, elementID string, e *fhir.ElementDefinition, via graph.Link) int {
	if e == nil {
		return 0
	}
	loc := via.Base().Location
	count := 0

	if b := e.Binding; b != nil {
		n := r.synthetic("binding:"+b.ValueSet, func() *graph.Node {
			name := fhir.LastURIPart(b.ValueSet)
			if vs, ok := r.store.ValueSet(b.ValueSet); ok && vs.Name != "" {
				name = vs.Name
			}
			return &graph.Node{
				DisplayName:   name + "/ValueSet",
				CSSClass:      r.opts.CSSBinding,
				LhsAnnotation: "bind",
				HRef:          r.href(b.ValueSet, "", nil, loc),
				Location:      loc,
			}
		})
		r.connect(src, n, via, attachmentDepth, "")
		count++
	}
	if e.Pattern != nil {
		r.connect(src, r.valueNode("pattern", src, elementID, e.Pattern, r.opts.CSSPattern, loc), via, attachmentDepth, "")
		count++
	}
	if e.Fixed != nil {
		r.connect(src, r.valueNode("fix", src, elementID, e.Fixed, r.opts.CSSFix, loc), via, attachmentDepth, "")
		count++
	}
	return count
}

func (r *Resolver) valueNode(kind string, src *graph.Node, elementID string, v *fhir.Value, css, loc string) *graph.Node {
	return r.synthetic(kind+":"+src.Name+":"+elementID, func() *graph.Node {
		text, href := fhir.FormatValue(v)
		return &graph.Node{
			DisplayName:   text,
			CSSClass:      css,
			LhsAnnotation: kind,
			HRef:          href,
			Location:      loc,
		}
	})
}

func (r *Resolver) synthetic(key string, mk func() *graph.Node) *graph.Node {
	created := false
	n := r.model.Synthetic(key, func() *graph.Node {
		created = true
		return mk()
	})
	if created {
		r.stats.Synthetic++
	}
	return n
}
