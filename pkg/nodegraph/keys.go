package nodegraph

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/fgraph/pkg/graph"
)

// KeyList accepts either a single comma separated string or a list.
type KeyList []string

// UnmarshalJSON implements json.Unmarshaler.
func (k *KeyList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = KeyList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*k = list
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *KeyList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*k = KeyList{value.Value}
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*k = list
	return nil
}

// KeySet converts the list into a graph key set.
func (k KeyList) KeySet() graph.KeySet {
	return graph.ParseKeySet(strings.Join(k, ","))
}
