package action

// Kind identifies a concrete action type.
type Kind int

const (
	KindCharacterChange Kind = iota
	KindSetFlag
	KindBranchOnCondition
	KindShowDialog
	KindMustPresentEvidence
	KindEnableConversation
	KindEnableEvidence
	KindUpdateEvidence
	KindDisableEvidence
	KindEnableCutscene
	KindPlayBgm
	KindPauseBgm
	KindResumeBgm
	KindStopBgm
	KindPlayAmbiance
	KindPauseAmbiance
	KindResumeAmbiance
	KindStopAmbiance
	KindStartAnimation
	KindStopAnimation
	KindSetPartner
	KindGoToPresentWrongEvidence
	KindLockConversation
	KindExitEncounter
	KindMoveToLocation
	KindMoveToZoomedView
	KindEndCase
	KindMultipleChoice
	KindExitMultipleChoice
	KindEnableFastForward
	KindDisableFastForward
	KindBeginBreakdown
	KindEndBreakdown
	KindPlaySound
	KindShowNotification
	KindInterrogationRepeat
	KindShowInterrogation
	KindExitInterrogationRepeat
	KindConfrontationTopicSelection
	KindEnableTopic
	KindRestartDecision
	KindRestartConfrontation
	KindRestartConfrontationTopicSelection

	numKinds
)

var kindNames = [numKinds]string{
	"CharacterChange",
	"SetFlag",
	"BranchOnCondition",
	"ShowDialog",
	"MustPresentEvidence",
	"EnableConversation",
	"EnableEvidence",
	"UpdateEvidence",
	"DisableEvidence",
	"EnableCutscene",
	"PlayBgm",
	"PauseBgm",
	"ResumeBgm",
	"StopBgm",
	"PlayAmbiance",
	"PauseAmbiance",
	"ResumeAmbiance",
	"StopAmbiance",
	"StartAnimation",
	"StopAnimation",
	"SetPartner",
	"GoToPresentWrongEvidence",
	"LockConversation",
	"ExitEncounter",
	"MoveToLocation",
	"MoveToZoomedView",
	"EndCase",
	"MultipleChoice",
	"ExitMultipleChoice",
	"EnableFastForward",
	"DisableFastForward",
	"BeginBreakdown",
	"EndBreakdown",
	"PlaySound",
	"ShowNotification",
	"InterrogationRepeat",
	"ShowInterrogation",
	"ExitInterrogationRepeat",
	"ConfrontationTopicSelection",
	"EnableTopic",
	"RestartDecision",
	"RestartConfrontation",
	"RestartConfrontationTopicSelection",
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, numKinds)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

func (k Kind) String() string {
	if k >= 0 && k < numKinds {
		return kindNames[k]
	}
	return "Unknown"
}

// ElementName is the name a kind is persisted under.
func (k Kind) ElementName() string {
	return k.String() + "Action"
}

// KindByName looks up a kind by its bare name, e.g. "SetFlag".
func KindByName(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}
