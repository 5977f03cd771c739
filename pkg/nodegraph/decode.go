package nodegraph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	fgerrors "github.com/matzehuels/fgraph/pkg/errors"
	"github.com/matzehuels/fgraph/pkg/graph"
)

// File extensions recognised by ReadFile and Collect.
const (
	ExtJSON = ".nodeGraph"
	ExtYAML = ".nodeGraph.yaml"
	extYML  = ".nodeGraph.yml"
)

// IsGraphFile reports whether path has a graph description extension.
func IsGraphFile(path string) bool {
	return strings.HasSuffix(path, ExtJSON) || strings.HasSuffix(path, ExtYAML) || strings.HasSuffix(path, extYML)
}

// ReadFile decodes a graph description, choosing the format by extension.
func ReadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fgerrors.Wrap(fgerrors.ErrCodeNotFound, err, "read %s", path)
	}
	name := filepath.Base(path)
	if strings.HasSuffix(path, ExtYAML) || strings.HasSuffix(path, extYML) {
		return DecodeYAML(name, data)
	}
	return DecodeJSON(name, data)
}

// DecodeJSON decodes the comma separated item objects of a .nodeGraph file.
// Members of each object are processed in the order they appear.
func DecodeJSON(file string, data []byte) ([]Item, error) {
	body := bytes.TrimRight(data, " \t\r\n")
	body = bytes.TrimSuffix(body, []byte(","))
	wrapped := make([]byte, 0, len(body)+4)
	wrapped = append(wrapped, "[\n"...)
	wrapped = append(wrapped, body...)
	wrapped = append(wrapped, "\n]"...)

	dec := json.NewDecoder(bytes.NewReader(wrapped))
	if _, err := dec.Token(); err != nil {
		return nil, shapeErr(file, err)
	}

	var items []Item
	index := 0
	for dec.More() {
		index++
		loc := Loc{File: file, Index: index}
		tok, err := dec.Token()
		if err != nil {
			return nil, shapeErr(file, err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, fgerrors.New(fgerrors.ErrCodeInvalidShape, "%s: item is not an object", loc)
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, shapeErr(file, err)
			}
			key, _ := tok.(string)
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, shapeErr(file, err)
			}
			it, err := decodeItem(loc, key, func(v any) error {
				trimmed := bytes.TrimSpace(raw)
				if len(trimmed) == 0 || trimmed[0] != '{' {
					return errNotObject
				}
				return json.Unmarshal(raw, v)
			})
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		if _, err := dec.Token(); err != nil {
			return nil, shapeErr(file, err)
		}
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, shapeErr(file, err)
	}
	return items, nil
}

// DecodeYAML decodes a YAML sequence of item mappings.
func DecodeYAML(file string, data []byte) ([]Item, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, shapeErr(file, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, fgerrors.New(fgerrors.ErrCodeInvalidShape, "%s: top level is not a sequence", file)
	}

	var items []Item
	for i, entry := range seq.Content {
		loc := Loc{File: file, Index: i + 1}
		if entry.Kind != yaml.MappingNode {
			return nil, fgerrors.New(fgerrors.ErrCodeInvalidShape, "%s: item is not a mapping", loc)
		}
		for j := 0; j+1 < len(entry.Content); j += 2 {
			key, value := entry.Content[j].Value, entry.Content[j+1]
			it, err := decodeItem(loc, key, func(v any) error {
				if value.Kind != yaml.MappingNode {
					return errNotObject
				}
				return value.Decode(v)
			})
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
	}
	return items, nil
}

var errNotObject = errors.New("value is not an object")

type validator interface {
	Item
	validate() error
}

func decodeItem(loc Loc, key string, decode func(any) error) (Item, error) {
	kind, ok := ParseItemKind(key)
	if !ok {
		return nil, fgerrors.New(fgerrors.ErrCodeUnknownItem, "%s: unknown graph item %q", loc, key)
	}

	var it validator
	switch kind {
	case KindNode:
		it = &NodeItem{Loc: loc}
	case KindGraph:
		it = &GraphItem{Loc: loc}
	case KindLinkByReference:
		it = &LinkItem{Loc: loc, LinkKind: graph.KindByReference}
	case KindLinkByBinding:
		it = &LinkItem{Loc: loc, LinkKind: graph.KindByBinding}
	case KindLinkByName:
		it = &LinkItem{Loc: loc, LinkKind: graph.KindByName}
	case KindLegend:
		it = &LegendItem{Loc: loc}
	}

	if err := decode(it); err != nil {
		return nil, fgerrors.Wrap(fgerrors.ErrCodeInvalidShape, err, "%s: %s", loc, key)
	}
	if err := it.validate(); err != nil {
		return nil, fgerrors.Wrap(fgerrors.ErrCodeInvalidShape, err, "%s: %s", loc, key)
	}
	return it, nil
}

func shapeErr(file string, err error) error {
	return fgerrors.Wrap(fgerrors.ErrCodeInvalidShape, err, "decode %s", file)
}

// String renders the location and kind for debug output.
func describe(it Item) string {
	return fmt.Sprintf("%s %s", it.Location(), it.Kind())
}
