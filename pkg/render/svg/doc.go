// Package svg renders positioned focus diagrams as SVG documents.
//
// Each box becomes a rounded rectangle with one text element per line,
// wrapped in a hyperlink when the box has one. Connector stubs carry a
// circle marker at the parent end and an arrow marker at the child end.
// Styling is left to external stylesheets referenced through
// xml-stylesheet processing instructions; the document only sets
// geometry, stroke widths and css classes.
package svg
