// Package condition implements the boolean expressions that gate branches
// and conversation unlocks. Negation is always pushed down to leaf criteria
// when a tree is constructed, so a Not node only ever wraps a leaf.
package condition

import (
	"fmt"
)

// Env is the game state a condition is evaluated against.
type Env interface {
	IsFlagSet(flagID string) bool
	IsEvidencePresent(evidenceID string) bool
	PartnerID() string
	TutorialsEnabled() bool
}

// Condition is a node in a condition tree.
type Condition interface {
	Eval(env Env) bool
	String() string
	Clone() Condition
	Editor() Editor
	isLeaf() bool
}

// FlagSet is true when the flag is set.
type FlagSet struct {
	FlagID string
}

func (c *FlagSet) Eval(env Env) bool { return env.IsFlagSet(c.FlagID) }
func (c *FlagSet) String() string    { return fmt.Sprintf("flag %q is set", c.FlagID) }
func (c *FlagSet) Clone() Condition  { cp := *c; return &cp }
func (c *FlagSet) isLeaf() bool      { return true }
func (c *FlagSet) Editor() Editor    { return leafEditor("FlagSet", c.FlagID) }

// EvidencePresent is true when the player holds the evidence.
type EvidencePresent struct {
	EvidenceID string
}

func (c *EvidencePresent) Eval(env Env) bool { return env.IsEvidencePresent(c.EvidenceID) }
func (c *EvidencePresent) String() string    { return fmt.Sprintf("evidence %q is present", c.EvidenceID) }
func (c *EvidencePresent) Clone() Condition  { cp := *c; return &cp }
func (c *EvidencePresent) isLeaf() bool      { return true }
func (c *EvidencePresent) Editor() Editor    { return leafEditor("EvidencePresent", c.EvidenceID) }

// PartnerPresent is true when the current partner matches.
type PartnerPresent struct {
	PartnerID string
}

func (c *PartnerPresent) Eval(env Env) bool { return env.PartnerID() == c.PartnerID }
func (c *PartnerPresent) String() string    { return fmt.Sprintf("partner %q is present", c.PartnerID) }
func (c *PartnerPresent) Clone() Condition  { cp := *c; return &cp }
func (c *PartnerPresent) isLeaf() bool      { return true }
func (c *PartnerPresent) Editor() Editor    { return leafEditor("PartnerPresent", c.PartnerID) }

// TutorialsEnabled is true when tutorials are turned on.
type TutorialsEnabled struct{}

func (c *TutorialsEnabled) Eval(env Env) bool { return env.TutorialsEnabled() }
func (c *TutorialsEnabled) String() string    { return "tutorials are enabled" }
func (c *TutorialsEnabled) Clone() Condition  { return &TutorialsEnabled{} }
func (c *TutorialsEnabled) isLeaf() bool      { return true }
func (c *TutorialsEnabled) Editor() Editor    { return leafEditor("TutorialsEnabled", "") }

// And is true when both operands are true.
type And struct {
	Left, Right Condition
}

func (c *And) Eval(env Env) bool { return c.Left.Eval(env) && c.Right.Eval(env) }
func (c *And) String() string    { return "(" + c.Left.String() + " AND " + c.Right.String() + ")" }
func (c *And) Clone() Condition  { return &And{Left: c.Left.Clone(), Right: c.Right.Clone()} }
func (c *And) isLeaf() bool      { return false }
func (c *And) Editor() Editor {
	return Editor{Kind: EditorComposite, Label: "AND", Children: []Editor{c.Left.Editor(), c.Right.Editor()}}
}

// Or is true when either operand is true.
type Or struct {
	Left, Right Condition
}

func (c *Or) Eval(env Env) bool { return c.Left.Eval(env) || c.Right.Eval(env) }
func (c *Or) String() string    { return "(" + c.Left.String() + " OR " + c.Right.String() + ")" }
func (c *Or) Clone() Condition  { return &Or{Left: c.Left.Clone(), Right: c.Right.Clone()} }
func (c *Or) isLeaf() bool      { return false }
func (c *Or) Editor() Editor {
	return Editor{Kind: EditorComposite, Label: "OR", Children: []Editor{c.Left.Editor(), c.Right.Editor()}}
}

// Not negates a single leaf criterion. Build it with NewNot.
type Not struct {
	criterion Condition
}

// Criterion returns the negated leaf.
func (c *Not) Criterion() Condition { return c.criterion }

func (c *Not) Eval(env Env) bool { return !c.criterion.Eval(env) }
func (c *Not) String() string    { return "NOT " + c.criterion.String() }
func (c *Not) Clone() Condition  { return &Not{criterion: c.criterion.Clone()} }
func (c *Not) isLeaf() bool      { return false }

// Editor returns the leaf's single-criterion editor marked as negated.
// It panics if the wrapped node is not a leaf.
func (c *Not) Editor() Editor {
	ed := c.criterion.Editor()
	if ed.Kind != EditorSingleCriterion {
		panic(fmt.Sprintf("condition: NOT wraps a %s editor, want a single criterion", ed.Kind))
	}
	ed.Negated = !ed.Negated
	return ed
}

// NewAnd returns a AND b.
func NewAnd(a, b Condition) Condition { return &And{Left: a, Right: b} }

// NewOr returns a OR b.
func NewOr(a, b Condition) Condition { return &Or{Left: a, Right: b} }

// NewNot returns the negation of c with the NOT pushed down to the leaves:
// NOT(a AND b) becomes (NOT a OR NOT b), NOT(a OR b) becomes
// (NOT a AND NOT b), and NOT(NOT a) becomes a.
func NewNot(c Condition) Condition {
	switch n := c.(type) {
	case *And:
		return NewOr(NewNot(n.Left), NewNot(n.Right))
	case *Or:
		return NewAnd(NewNot(n.Left), NewNot(n.Right))
	case *Not:
		return n.criterion.Clone()
	default:
		return &Not{criterion: c}
	}
}

// EditorKind identifies which editor widget a node binds to.
type EditorKind int

const (
	EditorSingleCriterion EditorKind = iota
	EditorComposite
)

func (k EditorKind) String() string {
	switch k {
	case EditorSingleCriterion:
		return "single-criterion"
	case EditorComposite:
		return "composite"
	default:
		return fmt.Sprintf("EditorKind(%d)", int(k))
	}
}

// Editor describes the editor bound to a condition node.
type Editor struct {
	Kind      EditorKind
	Criterion string // leaf criterion type
	Value     string
	Negated   bool
	Label     string
	Children  []Editor
}

func leafEditor(criterion, value string) Editor {
	return Editor{Kind: EditorSingleCriterion, Criterion: criterion, Value: value}
}

// Walk calls fn for every leaf in the tree along with whether it is negated.
func Walk(c Condition, fn func(leaf Condition, negated bool)) {
	switch n := c.(type) {
	case nil:
	case *And:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Or:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Not:
		fn(n.criterion, true)
	default:
		fn(c, false)
	}
}
