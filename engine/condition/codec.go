package condition

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Expr wraps a Condition for persistence. Each node is written as a mapping
// with a single key naming the node type.
type Expr struct {
	Condition
}

// Element names in probe order; the first one present in a mapping wins.
var elementNames = []string{
	"FlagSetCondition",
	"EvidencePresentCondition",
	"PartnerPresentCondition",
	"TutorialsEnabledCondition",
	"AndCondition",
	"OrCondition",
	"NotCondition",
}

// MarshalYAML implements yaml.Marshaler.
func (e Expr) MarshalYAML() (any, error) {
	switch c := e.Condition.(type) {
	case nil:
		return nil, nil
	case *FlagSet:
		return map[string]any{"FlagSetCondition": map[string]string{"flag": c.FlagID}}, nil
	case *EvidencePresent:
		return map[string]any{"EvidencePresentCondition": map[string]string{"evidence": c.EvidenceID}}, nil
	case *PartnerPresent:
		return map[string]any{"PartnerPresentCondition": map[string]string{"partner": c.PartnerID}}, nil
	case *TutorialsEnabled:
		return map[string]any{"TutorialsEnabledCondition": map[string]string{}}, nil
	case *And:
		return map[string]any{"AndCondition": map[string]Expr{"left": {c.Left}, "right": {c.Right}}}, nil
	case *Or:
		return map[string]any{"OrCondition": map[string]Expr{"left": {c.Left}, "right": {c.Right}}}, nil
	case *Not:
		return map[string]any{"NotCondition": map[string]Expr{"criterion": {c.criterion}}}, nil
	default:
		return nil, fmt.Errorf("condition: cannot persist %T", c)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		e.Condition = nil
		return nil
	}
	c, err := decode(node)
	if err != nil {
		return err
	}
	e.Condition = c
	return nil
}

func decode(node *yaml.Node) (Condition, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: condition must be a mapping", node.Line)
	}
	for _, name := range elementNames {
		body := MappingValue(node, name)
		if body == nil {
			continue
		}
		switch name {
		case "FlagSetCondition":
			return &FlagSet{FlagID: scalar(body, "flag")}, nil
		case "EvidencePresentCondition":
			return &EvidencePresent{EvidenceID: scalar(body, "evidence")}, nil
		case "PartnerPresentCondition":
			return &PartnerPresent{PartnerID: scalar(body, "partner")}, nil
		case "TutorialsEnabledCondition":
			return &TutorialsEnabled{}, nil
		case "AndCondition", "OrCondition":
			left, right, err := decodePair(body)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if name == "AndCondition" {
				return NewAnd(left, right), nil
			}
			return NewOr(left, right), nil
		case "NotCondition":
			inner := MappingValue(body, "criterion")
			if inner == nil {
				return nil, fmt.Errorf("line %d: NotCondition without criterion", body.Line)
			}
			c, err := decode(inner)
			if err != nil {
				return nil, err
			}
			return NewNot(c), nil
		}
	}
	return nil, fmt.Errorf("line %d: no known condition element", node.Line)
}

func decodePair(body *yaml.Node) (Condition, Condition, error) {
	l, r := MappingValue(body, "left"), MappingValue(body, "right")
	if l == nil || r == nil {
		return nil, nil, fmt.Errorf("line %d: needs left and right", body.Line)
	}
	left, err := decode(l)
	if err != nil {
		return nil, nil, err
	}
	right, err := decode(r)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// MappingValue returns the value node for key in a mapping node, or nil.
func MappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func scalar(node *yaml.Node, key string) string {
	if v := MappingValue(node, key); v != nil {
		return v.Value
	}
	return ""
}
