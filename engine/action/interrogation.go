package action

// InterrogationRepeat runs Actions over and over until an
// ExitInterrogationRepeat runs inside it.
type InterrogationRepeat struct {
	Base    `yaml:"-"`
	Actions List `yaml:"actionsToRepeat,omitempty"`
}

func (a *InterrogationRepeat) Branches() []Branch {
	return []Branch{{"repeat", &a.Actions}}
}

// EvidenceBranch runs when a specific piece of evidence is presented.
type EvidenceBranch struct {
	EvidenceID string `yaml:"evidence"`
	Actions    List   `yaml:"actions,omitempty"`
}

// ShowInterrogation displays a testimony statement the player can press or
// present evidence against.
type ShowInterrogation struct {
	Base          `yaml:"-"`
	Line          `yaml:",inline"`
	Press         List             `yaml:"pressForInfoActions,omitempty"`
	Evidence      []EvidenceBranch `yaml:"evidencePresentedActions,omitempty"`
	WrongEvidence List             `yaml:"wrongEvidencePresentedActions,omitempty"`
	EndRequested  List             `yaml:"endRequestedActions,omitempty"`
}

func (a *ShowInterrogation) Branches() []Branch {
	bs := []Branch{{"press", &a.Press}}
	for i := range a.Evidence {
		bs = append(bs, Branch{"present " + a.Evidence[i].EvidenceID, &a.Evidence[i].Actions})
	}
	return append(bs, Branch{"wrong", &a.WrongEvidence}, Branch{"end requested", &a.EndRequested})
}

// EvidenceActions returns the branch for evidenceID, if any.
func (a *ShowInterrogation) EvidenceActions(evidenceID string) (List, bool) {
	for _, b := range a.Evidence {
		if b.EvidenceID == evidenceID {
			return b.Actions, true
		}
	}
	return nil, false
}

type ExitInterrogationRepeat struct {
	Base `yaml:"-"`
}

// ConfrontationTopicSelection lets the player pick among the enabled topics
// of the enclosing confrontation. Initial runs first; PlayerDefeated runs
// when the player runs out of health.
type ConfrontationTopicSelection struct {
	Base           `yaml:"-"`
	Initial        List `yaml:"initialActions,omitempty"`
	PlayerDefeated List `yaml:"playerDefeatedActions,omitempty"`
}

func (a *ConfrontationTopicSelection) Branches() []Branch {
	return []Branch{{"initial", &a.Initial}, {"player defeated", &a.PlayerDefeated}}
}

type EnableTopic struct {
	Base    `yaml:"-"`
	TopicID string `yaml:"topic"`
}

// RestartDecision asks the player whether to retry a lost confrontation.
type RestartDecision struct {
	Base    `yaml:"-"`
	Restart List `yaml:"restartActions,omitempty"`
	GiveUp  List `yaml:"giveUpActions,omitempty"`
}

func (a *RestartDecision) Branches() []Branch {
	return []Branch{{"restart", &a.Restart}, {"give up", &a.GiveUp}}
}

type RestartConfrontation struct {
	Base `yaml:"-"`
}

type RestartConfrontationTopicSelection struct {
	Base `yaml:"-"`
}

func (a *InterrogationRepeat) Kind() Kind                { return KindInterrogationRepeat }
func (a *ShowInterrogation) Kind() Kind                  { return KindShowInterrogation }
func (a *ExitInterrogationRepeat) Kind() Kind            { return KindExitInterrogationRepeat }
func (a *ConfrontationTopicSelection) Kind() Kind        { return KindConfrontationTopicSelection }
func (a *EnableTopic) Kind() Kind                        { return KindEnableTopic }
func (a *RestartDecision) Kind() Kind                    { return KindRestartDecision }
func (a *RestartConfrontation) Kind() Kind               { return KindRestartConfrontation }
func (a *RestartConfrontationTopicSelection) Kind() Kind { return KindRestartConfrontationTopicSelection }

func (a *ExitInterrogationRepeat) Clone() Action            { cp := *a; return &cp }
func (a *EnableTopic) Clone() Action                        { cp := *a; return &cp }
func (a *RestartConfrontation) Clone() Action               { cp := *a; return &cp }
func (a *RestartConfrontationTopicSelection) Clone() Action { cp := *a; return &cp }

func (a *InterrogationRepeat) Clone() Action {
	cp := *a
	cp.Actions = a.Actions.Clone()
	return &cp
}

func (a *ShowInterrogation) Clone() Action {
	cp := *a
	cp.Press = a.Press.Clone()
	if a.Evidence != nil {
		cp.Evidence = make([]EvidenceBranch, len(a.Evidence))
		for i, b := range a.Evidence {
			cp.Evidence[i] = EvidenceBranch{EvidenceID: b.EvidenceID, Actions: b.Actions.Clone()}
		}
	}
	cp.WrongEvidence = a.WrongEvidence.Clone()
	cp.EndRequested = a.EndRequested.Clone()
	return &cp
}

func (a *ConfrontationTopicSelection) Clone() Action {
	cp := *a
	cp.Initial = a.Initial.Clone()
	cp.PlayerDefeated = a.PlayerDefeated.Clone()
	return &cp
}

func (a *RestartDecision) Clone() Action {
	cp := *a
	cp.Restart = a.Restart.Clone()
	cp.GiveUp = a.GiveUp.Clone()
	return &cp
}
