package action

import (
	"github.com/nathoo/casecore/engine/condition"
	"github.com/nathoo/casecore/types"
)

// CharacterChange puts a character, or nobody, on one side of the screen.
type CharacterChange struct {
	Base        `yaml:"-"`
	Position    types.Position `yaml:"position"`
	CharacterID string         `yaml:"character,omitempty"`
	EmotionID   string         `yaml:"emotion,omitempty"`
}

// SetFlag sets or clears a flag.
type SetFlag struct {
	Base   `yaml:"-"`
	FlagID string `yaml:"flag"`
	Value  bool   `yaml:"value"`
}

// BranchOnCondition runs True or False depending on Condition.
type BranchOnCondition struct {
	Base      `yaml:"-"`
	Condition condition.Expr `yaml:"condition"`
	True      List           `yaml:"trueActions,omitempty"`
	False     List           `yaml:"falseActions,omitempty"`
}

func (a *BranchOnCondition) Branches() []Branch {
	return []Branch{{"true", &a.True}, {"false", &a.False}}
}

// ShowDialog displays a line of dialog.
type ShowDialog struct {
	Base `yaml:"-"`
	Line `yaml:",inline"`
}

// MustPresentEvidence displays a line and then asks the player to present
// evidence. Correct runs when one of CorrectEvidenceIDs is presented.
type MustPresentEvidence struct {
	Base               `yaml:"-"`
	Line               `yaml:",inline"`
	CorrectEvidenceIDs []string `yaml:"correctEvidence"`
	CanEndBeRequested  bool     `yaml:"canEndBeRequested,omitempty"`
	Correct            List     `yaml:"correctEvidencePresentedActions,omitempty"`
	Wrong              List     `yaml:"wrongEvidencePresentedActions,omitempty"`
	EndRequested       List     `yaml:"endRequestedActions,omitempty"`
}

func (a *MustPresentEvidence) Branches() []Branch {
	return []Branch{{"correct", &a.Correct}, {"wrong", &a.Wrong}, {"end requested", &a.EndRequested}}
}

// IsCorrect reports whether evidenceID is accepted.
func (a *MustPresentEvidence) IsCorrect(evidenceID string) bool {
	for _, id := range a.CorrectEvidenceIDs {
		if id == evidenceID {
			return true
		}
	}
	return false
}

type EnableConversation struct {
	Base           `yaml:"-"`
	EncounterID    string `yaml:"encounter,omitempty"`
	ConversationID string `yaml:"conversation"`
}

type EnableEvidence struct {
	Base         `yaml:"-"`
	EvidenceID   string        `yaml:"evidence"`
	Notification *Notification `yaml:"notification,omitempty"`
}

// UpdateEvidence replaces EvidenceID with NewEvidenceID in the court record.
type UpdateEvidence struct {
	Base          `yaml:"-"`
	EvidenceID    string        `yaml:"evidence"`
	NewEvidenceID string        `yaml:"newEvidence"`
	Notification  *Notification `yaml:"notification,omitempty"`
}

type DisableEvidence struct {
	Base       `yaml:"-"`
	EvidenceID string `yaml:"evidence"`
}

type EnableCutscene struct {
	Base       `yaml:"-"`
	CutsceneID string `yaml:"cutscene"`
}

type PlayBgm struct {
	Base  `yaml:"-"`
	BgmID string `yaml:"bgm"`
}

type PauseBgm struct {
	Base `yaml:"-"`
}

type ResumeBgm struct {
	Base `yaml:"-"`
}

type StopBgm struct {
	Base    `yaml:"-"`
	Instant bool `yaml:"instant,omitempty"`
}

type PlayAmbiance struct {
	Base       `yaml:"-"`
	AmbianceID string `yaml:"ambiance"`
}

type PauseAmbiance struct {
	Base `yaml:"-"`
}

type ResumeAmbiance struct {
	Base `yaml:"-"`
}

type StopAmbiance struct {
	Base    `yaml:"-"`
	Instant bool `yaml:"instant,omitempty"`
}

type StartAnimation struct {
	Base        `yaml:"-"`
	AnimationID string `yaml:"animation"`
}

type StopAnimation struct {
	Base `yaml:"-"`
}

// SetPartner changes the player's partner. An empty PartnerID dismisses
// the current partner.
type SetPartner struct {
	Base         `yaml:"-"`
	PartnerID    string        `yaml:"partner"`
	Notification *Notification `yaml:"notification,omitempty"`
}

// GoToPresentWrongEvidence jumps to the wrong-evidence actions of the
// enclosing evidence prompt.
type GoToPresentWrongEvidence struct {
	Base `yaml:"-"`
}

// LockConversation locks a conversation until Unlock holds.
type LockConversation struct {
	Base           `yaml:"-"`
	EncounterID    string         `yaml:"encounter,omitempty"`
	ConversationID string         `yaml:"conversation"`
	Unlock         condition.Expr `yaml:"unlockCondition,omitempty"`
}

type ExitEncounter struct {
	Base `yaml:"-"`
}

type MoveToLocation struct {
	Base       `yaml:"-"`
	LocationID string `yaml:"location"`
}

type MoveToZoomedView struct {
	Base         `yaml:"-"`
	ZoomedViewID string `yaml:"zoomedView"`
}

type EndCase struct {
	Base          `yaml:"-"`
	CompletesCase bool `yaml:"completesCase,omitempty"`
}

// Option is one answer of a multiple choice.
type Option struct {
	Text    string `yaml:"text"`
	Actions List   `yaml:"actions,omitempty"`
}

// MultipleChoice repeatedly offers Options until ExitMultipleChoice runs.
type MultipleChoice struct {
	Base    `yaml:"-"`
	Options []Option `yaml:"options"`
}

func (a *MultipleChoice) Branches() []Branch {
	bs := make([]Branch, len(a.Options))
	for i := range a.Options {
		bs[i] = Branch{a.Options[i].Text, &a.Options[i].Actions}
	}
	return bs
}

type ExitMultipleChoice struct {
	Base `yaml:"-"`
}

type EnableFastForward struct {
	Base `yaml:"-"`
}

type DisableFastForward struct {
	Base `yaml:"-"`
}

type BeginBreakdown struct {
	Base              `yaml:"-"`
	CharacterPosition types.Position `yaml:"characterPosition"`
}

type EndBreakdown struct {
	Base `yaml:"-"`
}

type PlaySound struct {
	Base    `yaml:"-"`
	SoundID string `yaml:"sound"`
}

type ShowNotification struct {
	Base         `yaml:"-"`
	Notification `yaml:",inline"`
}

func (a *CharacterChange) Kind() Kind          { return KindCharacterChange }
func (a *SetFlag) Kind() Kind                  { return KindSetFlag }
func (a *BranchOnCondition) Kind() Kind        { return KindBranchOnCondition }
func (a *ShowDialog) Kind() Kind               { return KindShowDialog }
func (a *MustPresentEvidence) Kind() Kind      { return KindMustPresentEvidence }
func (a *EnableConversation) Kind() Kind       { return KindEnableConversation }
func (a *EnableEvidence) Kind() Kind           { return KindEnableEvidence }
func (a *UpdateEvidence) Kind() Kind           { return KindUpdateEvidence }
func (a *DisableEvidence) Kind() Kind          { return KindDisableEvidence }
func (a *EnableCutscene) Kind() Kind           { return KindEnableCutscene }
func (a *PlayBgm) Kind() Kind                  { return KindPlayBgm }
func (a *PauseBgm) Kind() Kind                 { return KindPauseBgm }
func (a *ResumeBgm) Kind() Kind                { return KindResumeBgm }
func (a *StopBgm) Kind() Kind                  { return KindStopBgm }
func (a *PlayAmbiance) Kind() Kind             { return KindPlayAmbiance }
func (a *PauseAmbiance) Kind() Kind            { return KindPauseAmbiance }
func (a *ResumeAmbiance) Kind() Kind           { return KindResumeAmbiance }
func (a *StopAmbiance) Kind() Kind             { return KindStopAmbiance }
func (a *StartAnimation) Kind() Kind           { return KindStartAnimation }
func (a *StopAnimation) Kind() Kind            { return KindStopAnimation }
func (a *SetPartner) Kind() Kind               { return KindSetPartner }
func (a *GoToPresentWrongEvidence) Kind() Kind { return KindGoToPresentWrongEvidence }
func (a *LockConversation) Kind() Kind         { return KindLockConversation }
func (a *ExitEncounter) Kind() Kind            { return KindExitEncounter }
func (a *MoveToLocation) Kind() Kind           { return KindMoveToLocation }
func (a *MoveToZoomedView) Kind() Kind         { return KindMoveToZoomedView }
func (a *EndCase) Kind() Kind                  { return KindEndCase }
func (a *MultipleChoice) Kind() Kind           { return KindMultipleChoice }
func (a *ExitMultipleChoice) Kind() Kind       { return KindExitMultipleChoice }
func (a *EnableFastForward) Kind() Kind        { return KindEnableFastForward }
func (a *DisableFastForward) Kind() Kind       { return KindDisableFastForward }
func (a *BeginBreakdown) Kind() Kind           { return KindBeginBreakdown }
func (a *EndBreakdown) Kind() Kind             { return KindEndBreakdown }
func (a *PlaySound) Kind() Kind                { return KindPlaySound }
func (a *ShowNotification) Kind() Kind         { return KindShowNotification }

func (a *CharacterChange) Clone() Action          { cp := *a; return &cp }
func (a *SetFlag) Clone() Action                  { cp := *a; return &cp }
func (a *ShowDialog) Clone() Action               { cp := *a; return &cp }
func (a *EnableConversation) Clone() Action       { cp := *a; return &cp }
func (a *DisableEvidence) Clone() Action          { cp := *a; return &cp }
func (a *EnableCutscene) Clone() Action           { cp := *a; return &cp }
func (a *PlayBgm) Clone() Action                  { cp := *a; return &cp }
func (a *PauseBgm) Clone() Action                 { cp := *a; return &cp }
func (a *ResumeBgm) Clone() Action                { cp := *a; return &cp }
func (a *StopBgm) Clone() Action                  { cp := *a; return &cp }
func (a *PlayAmbiance) Clone() Action             { cp := *a; return &cp }
func (a *PauseAmbiance) Clone() Action            { cp := *a; return &cp }
func (a *ResumeAmbiance) Clone() Action           { cp := *a; return &cp }
func (a *StopAmbiance) Clone() Action             { cp := *a; return &cp }
func (a *StartAnimation) Clone() Action           { cp := *a; return &cp }
func (a *StopAnimation) Clone() Action            { cp := *a; return &cp }
func (a *GoToPresentWrongEvidence) Clone() Action { cp := *a; return &cp }
func (a *ExitEncounter) Clone() Action            { cp := *a; return &cp }
func (a *MoveToLocation) Clone() Action           { cp := *a; return &cp }
func (a *MoveToZoomedView) Clone() Action         { cp := *a; return &cp }
func (a *EndCase) Clone() Action                  { cp := *a; return &cp }
func (a *ExitMultipleChoice) Clone() Action       { cp := *a; return &cp }
func (a *EnableFastForward) Clone() Action        { cp := *a; return &cp }
func (a *DisableFastForward) Clone() Action       { cp := *a; return &cp }
func (a *BeginBreakdown) Clone() Action           { cp := *a; return &cp }
func (a *EndBreakdown) Clone() Action             { cp := *a; return &cp }
func (a *PlaySound) Clone() Action                { cp := *a; return &cp }
func (a *ShowNotification) Clone() Action         { cp := *a; return &cp }

func (a *BranchOnCondition) Clone() Action {
	cp := *a
	cp.Condition = cloneExpr(a.Condition)
	cp.True = a.True.Clone()
	cp.False = a.False.Clone()
	return &cp
}

func (a *MustPresentEvidence) Clone() Action {
	cp := *a
	cp.CorrectEvidenceIDs = append([]string(nil), a.CorrectEvidenceIDs...)
	cp.Correct = a.Correct.Clone()
	cp.Wrong = a.Wrong.Clone()
	cp.EndRequested = a.EndRequested.Clone()
	return &cp
}

func (a *EnableEvidence) Clone() Action {
	cp := *a
	cp.Notification = a.Notification.clone()
	return &cp
}

func (a *UpdateEvidence) Clone() Action {
	cp := *a
	cp.Notification = a.Notification.clone()
	return &cp
}

func (a *SetPartner) Clone() Action {
	cp := *a
	cp.Notification = a.Notification.clone()
	return &cp
}

func (a *LockConversation) Clone() Action {
	cp := *a
	cp.Unlock = cloneExpr(a.Unlock)
	return &cp
}

func (a *MultipleChoice) Clone() Action {
	cp := *a
	if a.Options != nil {
		cp.Options = make([]Option, len(a.Options))
		for i, o := range a.Options {
			cp.Options[i] = Option{Text: o.Text, Actions: o.Actions.Clone()}
		}
	}
	return &cp
}
