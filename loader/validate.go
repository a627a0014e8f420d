package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/engine"
	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/engine/condition"
	"github.com/nathoo/casecore/engine/conversation"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// validate checks the case for referential integrity and consistency.
func validate(cs *engine.Case) error {
	return report(check(cs))
}

// report prints the warnings of ve to stderr and returns ve if it holds
// any errors.
func report(ve *ValidationError) error {
	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// check collects the problems in cs without reporting them.
func check(cs *engine.Case) *ValidationError {
	ve := &ValidationError{}
	reg := cs.Registry

	if cs.Info.Title == "" {
		ve.errorf("Case.title is required")
	}
	if cs.Info.StartEncounter == "" {
		ve.errorf("Case.start is required")
	} else if _, ok := cs.Encounter(cs.Info.StartEncounter); !ok {
		ve.errorf("start encounter %q not found in defined encounters", cs.Info.StartEncounter)
	}

	for _, id := range reg.Characters.IDs() {
		c, _ := reg.Characters.Get(id)
		if c.DefaultEmotion != "" {
			if _, ok := c.Emotion(c.DefaultEmotion); !ok {
				ve.warnf("character %q default emotion %q is not one of its emotions", id, c.DefaultEmotion)
			}
		}
	}
	for _, id := range reg.Partners.IDs() {
		p, _ := reg.Partners.Get(id)
		if _, ok := reg.Character(p.CharacterID); !ok {
			ve.errorf("partner %q references undefined character %q", id, p.CharacterID)
		}
	}
	for _, id := range reg.Locations.IDs() {
		l, _ := reg.Locations.Get(id)
		if l.EncounterID == "" {
			continue
		}
		if _, ok := cs.Encounter(l.EncounterID); !ok {
			ve.errorf("location %q references undefined encounter %q", id, l.EncounterID)
		}
	}

	for _, id := range cs.Encounters.IDs() {
		enc, _ := cs.Encounter(id)
		v := &refChecker{cs: cs, reg: reg, enc: enc, ve: ve}
		where := fmt.Sprintf("encounter %q", enc.ID)
		v.character(where, enc.InitialLeftCharacterID, enc.InitialLeftEmotionID)
		v.character(where, enc.InitialRightCharacterID, enc.InitialRightEmotionID)

		for _, evID := range enc.EvidenceConversations.IDs() {
			v.evidence(where, evID)
		}
		if _, ok := cs.LocationOf(enc.ID); !ok && enc.ID != cs.Info.StartEncounter {
			ve.warnf("encounter %q is not held at any location", enc.ID)
		}
		for _, s := range enc.Scripts() {
			v.script(s)
		}
	}
	return ve
}

// refChecker checks the references made by the scripts of one encounter.
type refChecker struct {
	cs  *engine.Case
	reg *content.Registry
	enc *conversation.Encounter
	ve  *ValidationError

	conf    *conversation.Confrontation
	repeats bool
	where   string
}

func (v *refChecker) script(s conversation.Script) {
	v.conf, _ = s.(*conversation.Confrontation)
	_, interrogation := s.(*conversation.Interrogation)
	v.repeats = interrogation || v.conf != nil
	v.where = fmt.Sprintf("%s/%s", v.enc.ID, s.Root().ID)
	v.condition(s.Root().Unlock.Condition)
	if v.conf != nil {
		v.character(v.where, v.conf.PlayerCharacterID, "")
		v.character(v.where, v.conf.OpponentCharacterID, "")
	}
	for _, l := range engine.Lists(s) {
		action.Walk(l, func(_ action.Path, a action.Action) {
			v.action(a)
		})
	}
}

func (v *refChecker) action(a action.Action) {
	if sp, ok := a.(action.Speaker); ok {
		line := sp.DialogLine()
		if line.CharacterID != "" {
			v.character(v.where, line.CharacterID, "")
		}
		if line.VoiceOverID != "" {
			v.asset("voice-over", v.reg.Sounds, line.VoiceOverID)
		}
		for _, id := range line.Dialog().Sounds() {
			v.asset("sound", v.reg.Sounds, id)
		}
	}

	switch a := a.(type) {
	case *action.CharacterChange:
		v.character(v.where, a.CharacterID, a.EmotionID)
	case *action.SetFlag:
		v.asset("flag", v.reg.Flags, a.FlagID)
	case *action.BranchOnCondition:
		v.condition(a.Condition.Condition)
	case *action.MustPresentEvidence:
		for _, id := range a.CorrectEvidenceIDs {
			v.evidence(v.where, id)
		}
	case *action.ShowInterrogation:
		for _, b := range a.Evidence {
			v.evidence(v.where, b.EvidenceID)
		}
	case *action.EnableConversation:
		v.conversation(a.EncounterID, a.ConversationID)
	case *action.LockConversation:
		v.conversation(a.EncounterID, a.ConversationID)
		v.condition(a.Unlock.Condition)
	case *action.EnableEvidence:
		v.evidence(v.where, a.EvidenceID)
		v.notification(a.Notification)
	case *action.UpdateEvidence:
		v.evidence(v.where, a.EvidenceID)
		v.evidence(v.where, a.NewEvidenceID)
		v.notification(a.Notification)
	case *action.DisableEvidence:
		v.evidence(v.where, a.EvidenceID)
	case *action.SetPartner:
		if a.PartnerID != "" {
			v.partner(a.PartnerID)
		}
		v.notification(a.Notification)
	case *action.ShowNotification:
		v.notification(&a.Notification)
	case *action.PlayBgm:
		v.asset("music", v.reg.Music, a.BgmID)
	case *action.PlayAmbiance:
		v.asset("music", v.reg.Music, a.AmbianceID)
	case *action.PlaySound:
		v.asset("sound", v.reg.Sounds, a.SoundID)
	case *action.MoveToLocation:
		if !v.reg.Locations.Has(a.LocationID) {
			v.ve.errorf("%s: MoveToLocation references undefined location %q", v.where, a.LocationID)
		}
	case *action.EnableTopic:
		if v.conf == nil {
			v.ve.errorf("%s: EnableTopic %q outside a confrontation", v.where, a.TopicID)
		} else if _, ok := v.conf.Topic(a.TopicID); !ok {
			v.ve.errorf("%s: EnableTopic references undefined topic %q", v.where, a.TopicID)
		}
	case *action.InterrogationRepeat, *action.ExitInterrogationRepeat:
		if !v.repeats {
			v.ve.errorf("%s: %s outside an interrogation", v.where, a.Kind())
		}
	}
}

func (v *refChecker) character(where, id, emotion string) {
	if id == "" {
		return
	}
	c, ok := v.reg.Character(id)
	if !ok {
		v.ve.errorf("%s references undefined character %q", where, id)
		return
	}
	if emotion != "" {
		if _, ok := c.Emotion(emotion); !ok {
			v.ve.errorf("%s references undefined emotion %q of character %q", where, emotion, id)
		}
	}
}

func (v *refChecker) evidence(where, id string) {
	if id != "" && !v.reg.Evidence.Has(id) {
		v.ve.errorf("%s references undefined evidence %q", where, id)
	}
}

func (v *refChecker) partner(id string) {
	if !v.reg.Partners.Has(id) {
		v.ve.errorf("%s references undefined partner %q", v.where, id)
	}
}

func (v *refChecker) notification(n *action.Notification) {
	if n == nil {
		return
	}
	v.evidence(v.where, n.OldEvidenceID)
	v.evidence(v.where, n.NewEvidenceID)
	if n.PartnerID != "" {
		v.partner(n.PartnerID)
	}
}

func (v *refChecker) conversation(encounterID, id string) {
	enc := v.enc
	if encounterID != "" {
		e, ok := v.cs.Encounter(encounterID)
		if !ok {
			v.ve.errorf("%s references undefined encounter %q", v.where, encounterID)
			return
		}
		enc = e
	}
	if _, ok := enc.Script(id); !ok {
		v.ve.errorf("%s references undefined conversation %q in encounter %q", v.where, id, enc.ID)
	}
}

// asset warns about ids missing from a store. Stores the case never
// declares into are not checked.
func (v *refChecker) asset(kind string, store *content.Store[string], id string) {
	if id == "" || store.Len() == 0 || store.Has(id) {
		return
	}
	v.ve.warnf("%s: undeclared %s %q", v.where, kind, id)
}

func (v *refChecker) condition(c condition.Condition) {
	condition.Walk(c, func(leaf condition.Condition, _ bool) {
		switch l := leaf.(type) {
		case *condition.FlagSet:
			v.asset("flag", v.reg.Flags, l.FlagID)
		case *condition.EvidencePresent:
			v.evidence(v.where, l.EvidenceID)
		case *condition.PartnerPresent:
			v.partner(l.PartnerID)
		}
	})
}
