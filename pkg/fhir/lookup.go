package fhir

// ProfileSource finds loaded profiles by canonical url.
type ProfileSource interface {
	Profile(url string) (*StructureDefinition, bool)
}

// maxInheritanceDepth bounds the baseDefinition walk.
const maxInheritanceDepth = 16

// ElementMatch is the result of an inheritance-aware element lookup.
type ElementMatch struct {
	ID           string // Normalized id that was searched for
	Snapshot     *ElementDefinition
	Differential *ElementDefinition
	Owner        *StructureDefinition // Profile the element was found in
}

// Found reports whether either view contained the element.
func (m ElementMatch) Found() bool {
	return m.Snapshot != nil || m.Differential != nil
}

// Element returns the fully inherited definition when there is one.
func (m ElementMatch) Element() *ElementDefinition {
	if m.Snapshot != nil {
		return m.Snapshot
	}
	return m.Differential
}

// Constraints returns the element as the profile itself constrains it,
// falling back to the snapshot. Bindings and fixed/pattern values are
// read from here.
func (m ElementMatch) Constraints() *ElementDefinition {
	if m.Differential != nil {
		return m.Differential
	}
	return m.Snapshot
}

// Lookup searches sd's snapshot and differential for id, then walks up the
// baseDefinition chain through profiles known to src.
func Lookup(src ProfileSource, sd *StructureDefinition, id string) ElementMatch {
	seen := make(map[string]bool)
	for range maxInheritanceDepth {
		if sd == nil || seen[sd.URL] {
			break
		}
		seen[sd.URL] = true

		m := ElementMatch{
			ID:           Normalize(sd.BaseTypeName(), id),
			Snapshot:     sd.FindSnapshotElement(id),
			Differential: sd.FindDifferentialElement(id),
			Owner:        sd,
		}
		if m.Found() {
			return m
		}
		if src == nil || sd.BaseDefinition == "" {
			break
		}
		parent, ok := src.Profile(sd.BaseDefinition)
		if !ok {
			break
		}
		sd = parent
	}
	return ElementMatch{ID: id}
}
