package fhir

import (
	"fmt"
	"strings"
)

// Kind identifies a resource type.
type Kind string

const (
	KindStructureDefinition Kind = "StructureDefinition"
	KindValueSet            Kind = "ValueSet"
	KindCodeSystem          Kind = "CodeSystem"
)

// Resource is a loaded canonical resource.
type Resource interface {
	Kind() Kind
	CanonicalURL() string
}

// StructureDefinition is a profile or base type definition.
type StructureDefinition struct {
	URL            string
	Name           string
	Type           string
	BaseDefinition string
	Snapshot       []*ElementDefinition
	Differential   []*ElementDefinition
}

func (sd *StructureDefinition) Kind() Kind           { return KindStructureDefinition }
func (sd *StructureDefinition) CanonicalURL() string { return sd.URL }

// BaseTypeName returns the name element ids are expressed in: the last part
// of baseDefinition, or the declared type for base definitions without one.
func (sd *StructureDefinition) BaseTypeName() string {
	if sd.BaseDefinition != "" {
		return LastURIPart(sd.BaseDefinition)
	}
	if sd.Type != "" {
		return sd.Type
	}
	return sd.Name
}

// FindElementByID searches elems for an element with exactly id.
func FindElementByID(elems []*ElementDefinition, id string) *ElementDefinition {
	for _, e := range elems {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// FindSnapshotElement looks up id in the snapshot after replacing its
// leading segment with the base type name.
func (sd *StructureDefinition) FindSnapshotElement(id string) *ElementDefinition {
	return FindElementByID(sd.Snapshot, Normalize(sd.BaseTypeName(), id))
}

// FindDifferentialElement is FindSnapshotElement for the differential.
func (sd *StructureDefinition) FindDifferentialElement(id string) *ElementDefinition {
	return FindElementByID(sd.Differential, Normalize(sd.BaseTypeName(), id))
}

// FindSnapshotElementShort looks up an id given without its leading type
// segment (the form anchor items are written in).
func (sd *StructureDefinition) FindSnapshotElementShort(item string) *ElementDefinition {
	return FindElementByID(sd.Snapshot, ElementID(sd.BaseTypeName(), item))
}

// ElementDefinition is a single element of a profile.
type ElementDefinition struct {
	ID      string
	Path    string
	Min     *int
	Max     string
	Types   []TypeRef
	Binding *Binding
	Fixed   *Value
	Pattern *Value
}

// Cardinality returns "min..max". Both bounds must be present.
func (e *ElementDefinition) Cardinality() (string, error) {
	if e.Min == nil {
		return "", fmt.Errorf("element %s min cardinality is empty", e.ID)
	}
	if strings.TrimSpace(e.Max) == "" {
		return "", fmt.Errorf("element %s max cardinality is empty", e.ID)
	}
	return fmt.Sprintf("%d..%s", *e.Min, e.Max), nil
}

// IsExtension reports whether any declared type of e is Extension.
func (e *ElementDefinition) IsExtension() bool {
	for _, t := range e.Types {
		if t.Code == "Extension" {
			return true
		}
	}
	return false
}

// TypeRef is one entry of ElementDefinition.type.
type TypeRef struct {
	Code          string
	Profile       []string
	TargetProfile []string
}

// Targets returns the profile urls a link through this type reaches:
// target profiles for Reference and canonical, declared profiles otherwise.
func (t TypeRef) Targets() []string {
	switch t.Code {
	case "Reference", "canonical":
		return t.TargetProfile
	default:
		return t.Profile
	}
}

// Binding is an element's value set binding.
type Binding struct {
	Strength string
	ValueSet string
}

// Value is a fixed[x] or pattern[x] value. Type is the FHIR type suffix
// ("CodeableConcept", "code", "Coding", ...) and Data the decoded JSON.
type Value struct {
	Type string
	Data any
}

// ValueSet carries the fields needed for display.
type ValueSet struct {
	URL   string
	Name  string
	Title string
}

func (vs *ValueSet) Kind() Kind           { return KindValueSet }
func (vs *ValueSet) CanonicalURL() string { return vs.URL }

// CodeSystem carries the fields needed for display.
type CodeSystem struct {
	URL  string
	Name string
}

func (cs *CodeSystem) Kind() Kind           { return KindCodeSystem }
func (cs *CodeSystem) CanonicalURL() string { return cs.URL }
