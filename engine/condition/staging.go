package condition

import (
	"fmt"

	"github.com/nathoo/casecore/staging"
)

// FromStaging builds a condition tree from a staged criterion. Negations are
// pushed down as the tree is assembled.
func FromStaging(c *staging.Criterion) (Condition, error) {
	if c == nil {
		return nil, fmt.Errorf("nil criterion")
	}
	switch c.Type {
	case "flag_set":
		return &FlagSet{FlagID: c.Value}, nil
	case "evidence_present":
		return &EvidencePresent{EvidenceID: c.Value}, nil
	case "partner_present":
		return &PartnerPresent{PartnerID: c.Value}, nil
	case "tutorials_enabled":
		return &TutorialsEnabled{}, nil
	case "and", "or":
		if len(c.Children) != 2 {
			return nil, fmt.Errorf("%s criterion needs 2 operands, got %d", c.Type, len(c.Children))
		}
		left, err := FromStaging(c.Children[0])
		if err != nil {
			return nil, err
		}
		right, err := FromStaging(c.Children[1])
		if err != nil {
			return nil, err
		}
		if c.Type == "and" {
			return NewAnd(left, right), nil
		}
		return NewOr(left, right), nil
	case "not":
		if len(c.Children) != 1 {
			return nil, fmt.Errorf("not criterion needs 1 operand, got %d", len(c.Children))
		}
		inner, err := FromStaging(c.Children[0])
		if err != nil {
			return nil, err
		}
		return NewNot(inner), nil
	default:
		return nil, fmt.Errorf("unknown criterion type %q", c.Type)
	}
}

// IsLeaf reports whether c is one of the four leaf predicates.
func IsLeaf(c Condition) bool {
	return c != nil && c.isLeaf()
}
