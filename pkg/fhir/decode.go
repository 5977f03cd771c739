package fhir

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// ErrUnsupportedResource is returned by Decode for resource types that are
// not modelled. Loaders skip these.
var ErrUnsupportedResource = errors.New("unsupported resource type")

var (
	xResourceType = jp.MustParseString("$.resourceType")
	xURL          = jp.MustParseString("$.url")
	xName         = jp.MustParseString("$.name")
	xTitle        = jp.MustParseString("$.title")
	xType         = jp.MustParseString("$.type")
	xBaseDef      = jp.MustParseString("$.baseDefinition")
	xSnapshot     = jp.MustParseString("$.snapshot.element[*]")
	xDifferential = jp.MustParseString("$.differential.element[*]")
)

// Decode parses a JSON resource.
func Decode(data []byte) (Resource, error) {
	root, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	rt := str(xResourceType.First(root))
	switch Kind(rt) {
	case KindStructureDefinition:
		return decodeStructureDefinition(root)
	case KindValueSet:
		return &ValueSet{
			URL:   str(xURL.First(root)),
			Name:  str(xName.First(root)),
			Title: str(xTitle.First(root)),
		}, nil
	case KindCodeSystem:
		return &CodeSystem{
			URL:  str(xURL.First(root)),
			Name: str(xName.First(root)),
		}, nil
	case "":
		return nil, fmt.Errorf("missing resourceType")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedResource, rt)
	}
}

func decodeStructureDefinition(root any) (*StructureDefinition, error) {
	sd := &StructureDefinition{
		URL:            str(xURL.First(root)),
		Name:           str(xName.First(root)),
		Type:           str(xType.First(root)),
		BaseDefinition: str(xBaseDef.First(root)),
	}
	if sd.URL == "" {
		return nil, fmt.Errorf("StructureDefinition %q has no url", sd.Name)
	}
	var err error
	if sd.Snapshot, err = decodeElements(xSnapshot.Get(root)); err != nil {
		return nil, fmt.Errorf("%s snapshot: %w", sd.URL, err)
	}
	if sd.Differential, err = decodeElements(xDifferential.Get(root)); err != nil {
		return nil, fmt.Errorf("%s differential: %w", sd.URL, err)
	}
	return sd, nil
}

func decodeElements(raw []any) ([]*ElementDefinition, error) {
	elems := make([]*ElementDefinition, 0, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d is not an object", i)
		}
		elems = append(elems, decodeElement(m))
	}
	return elems, nil
}

func decodeElement(m map[string]any) *ElementDefinition {
	e := &ElementDefinition{
		ID:   str(m["id"]),
		Path: str(m["path"]),
		Max:  str(m["max"]),
	}
	if e.ID == "" {
		e.ID = e.Path
	}
	if n, ok := asInt(m["min"]); ok {
		e.Min = &n
	}
	if ts, ok := m["type"].([]any); ok {
		for _, t := range ts {
			tm, ok := t.(map[string]any)
			if !ok {
				continue
			}
			e.Types = append(e.Types, TypeRef{
				Code:          str(tm["code"]),
				Profile:       strs(tm["profile"]),
				TargetProfile: strs(tm["targetProfile"]),
			})
		}
	}
	if b, ok := m["binding"].(map[string]any); ok {
		if vs := str(b["valueSet"]); vs != "" {
			e.Binding = &Binding{Strength: str(b["strength"]), ValueSet: vs}
		}
	}
	e.Fixed = choice(m, "fixed")
	e.Pattern = choice(m, "pattern")
	return e
}

// choice finds a prefix[x] member. Keys are visited in sorted order so a
// malformed element with several candidates decodes deterministically.
func choice(m map[string]any, prefix string) *Value {
	keys := make([]string, 0, 1)
	for k := range m {
		if len(k) > len(prefix) && strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return &Value{Type: keys[0][len(prefix):], Data: m[keys[0]]}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strs(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		if s, ok := v.(string); ok {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, a := range arr {
		if s, ok := a.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
