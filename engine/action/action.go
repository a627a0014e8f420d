// Package action defines the nodes of a conversation script. Every node is
// one of a closed set of concrete types; nodes that branch own their child
// lists, so a script is a tree of values.
package action

import (
	"github.com/nathoo/casecore/engine/condition"
	"github.com/nathoo/casecore/engine/dialog"
	"github.com/nathoo/casecore/engine/state"
	"github.com/nathoo/casecore/types"
)

// Action is one step of a conversation script.
type Action interface {
	Kind() Kind
	// Clone returns a deep copy, including child lists.
	Clone() Action
	// Branches returns the child lists in fall-through priority order.
	Branches() []Branch
	// CachedState returns the on-screen state that holds just before the
	// action runs, as computed by the last propagation pass.
	CachedState() (state.State, bool)
	SetCachedState(s state.State)

	base() *Base
}

// Base carries what every action has in common. It is embedded by every
// concrete action type.
type Base struct {
	cached    state.State
	hasCached bool
}

func (b *Base) base() *Base { return b }

func (b *Base) CachedState() (state.State, bool) { return b.cached, b.hasCached }

func (b *Base) SetCachedState(s state.State) {
	b.cached = s
	b.hasCached = true
}

// Branches returns nil for actions without child lists.
func (b *Base) Branches() []Branch { return nil }

// Branch is a labeled child list of an action.
type Branch struct {
	Label   string
	Actions *List
}

// List is an ordered sequence of actions.
type List []Action

// Clone deep-copies every action in the list.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, a := range l {
		out[i] = a.Clone()
	}
	return out
}

// Line is the dialog line shown by dialog-bearing actions.
type Line struct {
	Speaker      types.Position `yaml:"speakerPosition"`
	CharacterID  string         `yaml:"character,omitempty"`
	Text         string         `yaml:"text"`
	VoiceOverID  string         `yaml:"voiceOver,omitempty"`
	LeadInTimeMs int            `yaml:"leadInTimeMs,omitempty"`
	AutoContinue bool           `yaml:"autoContinue,omitempty"`
}

// DialogLine returns the line itself. Actions that embed a Line satisfy
// Speaker through it.
func (l *Line) DialogLine() *Line { return l }

// Dialog parses the line's markup.
func (l *Line) Dialog() *dialog.Dialog { return dialog.Parse(l.Text) }

// Speaker is implemented by actions that display a dialog line.
type Speaker interface {
	Action
	DialogLine() *Line
}

// Notification is an on-screen notice shown after an evidence or partner
// change.
type Notification struct {
	Text          string `yaml:"text"`
	OldEvidenceID string `yaml:"oldEvidence,omitempty"`
	NewEvidenceID string `yaml:"newEvidence,omitempty"`
	PartnerID     string `yaml:"partner,omitempty"`
}

func (n *Notification) clone() *Notification {
	if n == nil {
		return nil
	}
	cp := *n
	return &cp
}

func cloneExpr(e condition.Expr) condition.Expr {
	if e.Condition == nil {
		return e
	}
	return condition.Expr{Condition: e.Condition.Clone()}
}

// New returns a zero-valued action of kind k.
func New(k Kind) Action {
	switch k {
	case KindCharacterChange:
		return &CharacterChange{}
	case KindSetFlag:
		return &SetFlag{Value: true}
	case KindBranchOnCondition:
		return &BranchOnCondition{}
	case KindShowDialog:
		return &ShowDialog{}
	case KindMustPresentEvidence:
		return &MustPresentEvidence{}
	case KindEnableConversation:
		return &EnableConversation{}
	case KindEnableEvidence:
		return &EnableEvidence{}
	case KindUpdateEvidence:
		return &UpdateEvidence{}
	case KindDisableEvidence:
		return &DisableEvidence{}
	case KindEnableCutscene:
		return &EnableCutscene{}
	case KindPlayBgm:
		return &PlayBgm{}
	case KindPauseBgm:
		return &PauseBgm{}
	case KindResumeBgm:
		return &ResumeBgm{}
	case KindStopBgm:
		return &StopBgm{}
	case KindPlayAmbiance:
		return &PlayAmbiance{}
	case KindPauseAmbiance:
		return &PauseAmbiance{}
	case KindResumeAmbiance:
		return &ResumeAmbiance{}
	case KindStopAmbiance:
		return &StopAmbiance{}
	case KindStartAnimation:
		return &StartAnimation{}
	case KindStopAnimation:
		return &StopAnimation{}
	case KindSetPartner:
		return &SetPartner{}
	case KindGoToPresentWrongEvidence:
		return &GoToPresentWrongEvidence{}
	case KindLockConversation:
		return &LockConversation{}
	case KindExitEncounter:
		return &ExitEncounter{}
	case KindMoveToLocation:
		return &MoveToLocation{}
	case KindMoveToZoomedView:
		return &MoveToZoomedView{}
	case KindEndCase:
		return &EndCase{}
	case KindMultipleChoice:
		return &MultipleChoice{}
	case KindExitMultipleChoice:
		return &ExitMultipleChoice{}
	case KindEnableFastForward:
		return &EnableFastForward{}
	case KindDisableFastForward:
		return &DisableFastForward{}
	case KindBeginBreakdown:
		return &BeginBreakdown{}
	case KindEndBreakdown:
		return &EndBreakdown{}
	case KindPlaySound:
		return &PlaySound{}
	case KindShowNotification:
		return &ShowNotification{}
	case KindInterrogationRepeat:
		return &InterrogationRepeat{}
	case KindShowInterrogation:
		return &ShowInterrogation{}
	case KindExitInterrogationRepeat:
		return &ExitInterrogationRepeat{}
	case KindConfrontationTopicSelection:
		return &ConfrontationTopicSelection{}
	case KindEnableTopic:
		return &EnableTopic{}
	case KindRestartDecision:
		return &RestartDecision{}
	case KindRestartConfrontation:
		return &RestartConfrontation{}
	case KindRestartConfrontationTopicSelection:
		return &RestartConfrontationTopicSelection{}
	}
	return nil
}
