package fhir

import "strings"

// Normalize replaces the leading segment of id with baseType.
// An id without a dot collapses to baseType itself.
func Normalize(baseType, id string) string {
	if i := strings.IndexByte(id, '.'); i > 0 {
		return baseType + id[i:]
	}
	return baseType
}

// ElementID builds the full element id of an anchor item, which is written
// without its type segment ("section:findings").
func ElementID(baseType, item string) string {
	if item == "" {
		return baseType
	}
	return baseType + "." + item
}

// IsRelative reports whether item is resolved against an anchor.
func IsRelative(item string) bool {
	return item == "" || strings.HasPrefix(item, ".")
}

// PathResolver resolves link item paths for one anchored node.
type PathResolver struct {
	BaseType string // Base type name of the owning profile
	AnchorID string // Normalized element id of the anchor
}

// Resolve returns the normalized element id item refers to.
func (r PathResolver) Resolve(item string) string {
	if item == "" {
		return r.AnchorID
	}
	if strings.HasPrefix(item, ".") {
		return Normalize(r.BaseType, r.AnchorID+item)
	}
	return Normalize(r.BaseType, item)
}

// At returns a resolver anchored at the element item resolves to.
func (r PathResolver) At(item string) PathResolver {
	return PathResolver{BaseType: r.BaseType, AnchorID: r.Resolve(item)}
}

// LastURIPart returns the text after the final '/'.
func LastURIPart(url string) string {
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		return url[i+1:]
	}
	return url
}

// BaseURL strips the resource type and id from a canonical url:
// "http://example.org/fhir/StructureDefinition/X" gives "http://example.org/fhir/".
// It returns "" when the url has fewer than two path parts.
func BaseURL(url string) string {
	s := strings.TrimSuffix(url, "/")
	for range 2 {
		i := strings.LastIndexByte(s, '/')
		if i < 0 {
			return ""
		}
		s = s[:i]
	}
	if strings.HasSuffix(s, ":/") || s == "" {
		return ""
	}
	return s + "/"
}

// CoreStructureDefinitionPrefix is the canonical prefix of base FHIR types.
const CoreStructureDefinitionPrefix = "http://hl7.org/fhir/StructureDefinition/"

// CorePrefix identifies any url published by the FHIR core specification.
const CorePrefix = "http://hl7.org/fhir"

// IsCore reports whether url belongs to the FHIR core specification.
func IsCore(url string) bool {
	return strings.HasPrefix(url, CorePrefix)
}
