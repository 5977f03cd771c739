// Package fhir provides the subset of the FHIR resource model that graph
// resolution needs.
//
// Only three resource kinds are modelled: [StructureDefinition] (profiles
// with their snapshot and differential element lists), [ValueSet] and
// [CodeSystem]. Resources are decoded from their JSON form with
// github.com/ohler55/ojg; polymorphic members such as fixed[x] and
// pattern[x] are kept as generic values tagged with their FHIR type.
//
// # Element ids
//
// Element ids inside a profile are written in terms of the base resource
// type, not the profile's own name: a profile "BreastRadiologyReport"
// derived from Composition stores "Composition.section" rather than
// "BreastRadiologyReport.section". Every lookup therefore replaces the
// first path segment with [StructureDefinition.BaseTypeName] before
// searching, see [Normalize] and [PathResolver].
//
// Relative item paths (empty, or starting with ".") are joined onto the
// element id an anchor already refers to:
//
//	r := fhir.PathResolver{BaseType: "Composition", AnchorID: "Composition.section"}
//	r.Resolve(".entry")          // "Composition.section.entry"
//	r.Resolve("Report.subject")  // "Composition.subject"
package fhir
