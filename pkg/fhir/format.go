package fhir

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ohler55/ojg/oj"
)

// FormatValue renders a fixed or pattern value for display. Coded values
// render as "system#code" with the system's last url part, and href is the
// full coding system. Primitives render as their scalar value and anything
// else as compact JSON.
func FormatValue(v *Value) (text, href string) {
	if v == nil {
		return "", ""
	}
	switch v.Type {
	case "CodeableConcept":
		m, _ := v.Data.(map[string]any)
		codings, _ := m["coding"].([]any)
		if len(codings) > 0 {
			if c, ok := codings[0].(map[string]any); ok {
				return formatCoding(c)
			}
		}
		if t := str(m["text"]); t != "" {
			return t, ""
		}
	case "Coding":
		if c, ok := v.Data.(map[string]any); ok {
			return formatCoding(c)
		}
	}
	switch d := v.Data.(type) {
	case string:
		return d, ""
	case bool, int64, int, float64:
		return fmt.Sprintf("%v", d), ""
	case nil:
		return "", ""
	default:
		return oj.JSON(d, &oj.Options{Sort: true}), ""
	}
}

func formatCoding(c map[string]any) (string, string) {
	system := str(c["system"])
	return LastURIPart(system) + "#" + str(c["code"]), system
}

// ErrForeignURL marks a url that is neither a core FHIR definition nor
// published under the run's base url. Callers treat it as a warning.
var ErrForeignURL = errors.New("url is not under the base url")

// HRef derives the implementation guide page a resource (and optionally one
// of its elements) is documented on. sd is only consulted when item is set.
func HRef(baseURL, url, item string, sd *StructureDefinition) (string, error) {
	if strings.HasPrefix(url, CoreStructureDefinitionPrefix) {
		return url, nil
	}
	if baseURL == "" || !strings.HasPrefix(url, baseURL) {
		return "", fmt.Errorf("%w: %s is not under %s", ErrForeignURL, url, baseURL)
	}
	rest := strings.TrimPrefix(url[len(baseURL):], "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid url parts %q", rest)
	}
	if item == "" {
		return fmt.Sprintf("%s-%s.html", parts[0], parts[1]), nil
	}
	if sd == nil {
		return "", fmt.Errorf("resource %s not found", url)
	}
	e := sd.FindSnapshotElementShort(item)
	if e == nil {
		return "", fmt.Errorf("snapshot element %s.%s not found", sd.Name, item)
	}
	return fmt.Sprintf("%s-%s-definitions.html#%s", parts[0], parts[1], e.ID), nil
}
