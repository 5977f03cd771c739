package graph

import (
	"strings"

	"github.com/matzehuels/fgraph/pkg/fhir"
)

// Anchor binds a node to a resource, or to one element of it.
// Anchors are comparable and used directly as map keys.
type Anchor struct {
	URL  string
	Item string // Element id without the type segment; empty for the whole resource
}

// IsTopLevel reports whether the anchor refers to a whole resource.
func (a Anchor) IsTopLevel() bool { return a.Item == "" }

// Name returns the last part of the url.
func (a Anchor) Name() string { return fhir.LastURIPart(a.URL) }

// ResourceType returns the url part before the name, e.g. "ValueSet".
func (a Anchor) ResourceType() string {
	rest := strings.TrimSuffix(a.URL, "/"+a.Name())
	if rest == a.URL {
		return ""
	}
	return fhir.LastURIPart(rest)
}

func (a Anchor) String() string {
	if a.Item == "" {
		return a.URL
	}
	return a.URL + "#" + a.Item
}
