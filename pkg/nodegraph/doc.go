// Package nodegraph decodes declarative graph descriptions.
//
// A description is an ordered list of items. Each item is an object whose
// members name an item type and hold that item's fields:
//
//	{ "graphNode": { "nodeName": "Breast/Report", "displayName": "Breast/Report",
//	                 "anchor": { "url": "http://example.org/fhir/StructureDefinition/BreastRadiologyReport" } } },
//	{ "linkByName": { "traversalName": "focus", "source": "^Breast/Report$", "target": "^Patient$" } }
//
// JSON files (*.nodeGraph) hold the items without the enclosing array
// brackets; the decoder adds them. YAML files (*.nodeGraph.yaml) hold a
// sequence of the same mappings.
//
// Item types and their aliases:
//
//	graphNode (node)  graph  graphLinkByReference (linkByReference)
//	graphLinkByBinding (linkByBinding)  graphLinkByName (linkByName)
//	graphLegend (legend)
//
// An unknown item type, a value that is not an object, or a missing required
// field fails the whole file.
package nodegraph
