package resolve

import (
	"strings"

	"github.com/matzehuels/fgraph/pkg/fhir"
	"github.com/matzehuels/fgraph/pkg/graph"
)

// CardinalityDirective prefixes annotation text that names an element
// whose cardinality should be shown instead.
const CardinalityDirective = "^"

// ResolveAnnotations replaces "^<elementId>" annotation directives with the
// "min..max" cardinality of that element in the node's anchored profile.
// Directives that cannot be resolved are reported and cleared.
func (r *Resolver) ResolveAnnotations() {
	for _, n := range r.model.Nodes() {
		n.LhsAnnotation = r.annotation(n, n.LhsAnnotation)
		n.RhsAnnotation = r.annotation(n, n.RhsAnnotation)
	}
}

func (r *Resolver) annotation(n *graph.Node, text string) string {
	id, ok := strings.CutPrefix(text, CardinalityDirective)
	if !ok {
		return text
	}
	card, ok := r.cardinality(n, id)
	if !ok {
		return ""
	}
	return card
}

func (r *Resolver) cardinality(n *graph.Node, id string) (string, bool) {
	if n.Anchor == nil {
		r.diag.Errorf(n.Location, "node %s: annotation %s%s: anchor is null", n.Name, CardinalityDirective, id)
		return "", false
	}
	sd, ok := r.store.Profile(n.Anchor.URL)
	if !ok {
		r.diag.Errorf(n.Location, "node %s: StructureDefinition %s not found", n.Name, n.Anchor.URL)
		return "", false
	}
	m := fhir.Lookup(r.store, sd, id)
	if !m.Found() {
		r.diag.Errorf(n.Location, "node %s: element %s not found", n.Name, id)
		return "", false
	}
	card, err := m.Element().Cardinality()
	if err != nil {
		r.diag.Errorf(n.Location, "node %s: %v", n.Name, err)
		return "", false
	}
	return card, true
}
