package action

import (
	"fmt"

	"github.com/nathoo/casecore/engine/condition"
	"gopkg.in/yaml.v3"
)

// MarshalYAML writes each action as a single-key mapping named after its
// kind, e.g. {SetFlagAction: {flag: met, value: true}}.
func (l List) MarshalYAML() (any, error) {
	out := make([]map[string]Action, len(l))
	for i, a := range l {
		if a == nil {
			return nil, fmt.Errorf("action %d is nil", i)
		}
		out[i] = map[string]Action{a.Kind().ElementName(): a}
	}
	return out, nil
}

// UnmarshalYAML decodes a sequence of action elements. For each entry the
// known element names are probed in kind order and the first one present
// is decoded; an entry with no known element is an error.
func (l *List) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*l = nil
		return nil
	}
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: action list must be a sequence", node.Line)
	}
	out := make(List, 0, len(node.Content))
	for _, entry := range node.Content {
		a, err := decodeAction(entry)
		if err != nil {
			return err
		}
		out = append(out, a)
	}
	*l = out
	return nil
}

func decodeAction(node *yaml.Node) (Action, error) {
	for _, k := range Kinds() {
		body := condition.MappingValue(node, k.ElementName())
		if body == nil {
			continue
		}
		a := New(k)
		if body.Kind == yaml.ScalarNode && body.Tag == "!!null" {
			return a, nil
		}
		if err := body.Decode(a); err != nil {
			return nil, fmt.Errorf("%s: %w", k.ElementName(), err)
		}
		return a, nil
	}
	return nil, fmt.Errorf("line %d: no known action element", node.Line)
}
