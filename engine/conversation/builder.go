package conversation

import (
	"log"
	"strings"

	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/engine/condition"
	"github.com/nathoo/casecore/staging"
	"github.com/nathoo/casecore/types"
)

// Option texts that mark a confrontation multiple choice as a restart
// decision in legacy data.
const (
	RestartOptionText = "Try again"
	GiveUpOptionText  = "Give up"
)

// layer handles the staging tags one kind of script understands. It
// reports whether it consumed the entry at i and where to continue.
type layer func(b *builder, dst *action.List, src []staging.Entry, i, base int) (next int, ok bool, err error)

type builder struct {
	layers []layer
	conf   *Confrontation
}

// PopulateActionsFromStaging appends the tree built from src to dst. base is
// the staging index of src[0]; branch targets in src are staging indices.
func (c *Conversation) PopulateActionsFromStaging(dst *action.List, src []staging.Entry, base int) error {
	b := &builder{layers: []layer{conversationLayer}}
	return b.populate(dst, src, base)
}

func (c *Interrogation) PopulateActionsFromStaging(dst *action.List, src []staging.Entry, base int) error {
	b := &builder{layers: []layer{interrogationLayer, conversationLayer}}
	return b.populate(dst, src, base)
}

func (c *Confrontation) PopulateActionsFromStaging(dst *action.List, src []staging.Entry, base int) error {
	b := &builder{layers: []layer{confrontationLayer, interrogationLayer, conversationLayer}, conf: c}
	return b.populate(dst, src, base)
}

// PopulateFromStaging replaces the script's actions (and a confrontation's
// topics) with the tree built from src.
func PopulateFromStaging(s Script, src []staging.Entry) error {
	root := s.Root()
	if c, ok := s.(*Confrontation); ok {
		c.Topics = nil
	}
	base := 0
	if len(src) > 0 {
		base = src[0].Index
	}
	var list action.List
	if err := s.PopulateActionsFromStaging(&list, src, base); err != nil {
		return err
	}
	root.Actions = list
	return nil
}

func (b *builder) populate(dst *action.List, src []staging.Entry, base int) error {
	for i := 0; i < len(src); {
		next, err := b.one(dst, src, i, base)
		if err != nil {
			return err
		}
		i = next
	}
	return nil
}

func (b *builder) one(dst *action.List, src []staging.Entry, i, base int) (int, error) {
	for _, l := range b.layers {
		next, ok, err := l(b, dst, src, i, base)
		if err != nil {
			return 0, err
		}
		if ok {
			return next, nil
		}
	}
	log.Printf("staging: dropping unrecognized action %q at index %d", src[i].Tag, src[i].Index)
	return i + 1, nil
}

// sub builds the entries in r into dst.
func (b *builder) sub(dst *action.List, src []staging.Entry, r span, base int) error {
	if r.empty() {
		return nil
	}
	return b.populate(dst, src[r.from:r.to], base+r.from)
}

func conversationLayer(b *builder, dst *action.List, src []staging.Entry, i, base int) (int, bool, error) {
	e := src[i]
	switch e.Tag {
	case staging.TagBranchIfTrue, staging.TagBranchIfFalse:
		// Terminators are consumed by their BranchOnCondition.
		return i + 1, true, nil
	case staging.TagBranchOnCondition:
		next, err := b.branchOnCondition(dst, src, i, base)
		return next, true, err
	case staging.TagBeginMustPresentEvidence:
		next, err := b.mustPresentEvidence(dst, src, i, base)
		return next, true, err
	case staging.TagBeginMultipleChoice:
		next, err := b.multipleChoice(dst, src, i, base)
		return next, true, err
	case staging.TagEnableEvidence, staging.TagUpdateEvidence, staging.TagSetPartner:
		n, next, err := notification(src, i)
		if err != nil {
			return 0, true, err
		}
		switch e.Tag {
		case staging.TagEnableEvidence:
			*dst = append(*dst, &action.EnableEvidence{EvidenceID: e.String("evidence"), Notification: n})
		case staging.TagUpdateEvidence:
			*dst = append(*dst, &action.UpdateEvidence{EvidenceID: e.String("evidence"), NewEvidenceID: e.String("new_evidence"), Notification: n})
		default:
			*dst = append(*dst, &action.SetPartner{PartnerID: e.String("partner"), Notification: n})
		}
		return next, true, nil
	case staging.TagLockConversation:
		a := &action.LockConversation{EncounterID: e.String("encounter"), ConversationID: e.String("conversation")}
		if e.Criterion != nil {
			c, err := condition.FromStaging(e.Criterion)
			if err != nil {
				return 0, true, parseErr(e, "unlock condition: %v", err)
			}
			a.Unlock = condition.Expr{Condition: c}
		}
		*dst = append(*dst, a)
		return i + 1, true, nil
	}

	a := simpleAction(e)
	if a == nil {
		return i, false, nil
	}
	*dst = append(*dst, a)
	return i + 1, true, nil
}

func simpleAction(e staging.Entry) action.Action {
	switch e.Tag {
	case staging.TagCharacterChange:
		return &action.CharacterChange{Position: position(e.String("position")), CharacterID: e.String("character"), EmotionID: e.String("emotion")}
	case staging.TagSetFlag:
		return &action.SetFlag{FlagID: e.String("flag"), Value: e.Bool("value", true)}
	case staging.TagShowDialog:
		return &action.ShowDialog{Line: line(e)}
	case staging.TagEnableConversation:
		return &action.EnableConversation{EncounterID: e.String("encounter"), ConversationID: e.String("conversation")}
	case staging.TagDisableEvidence:
		return &action.DisableEvidence{EvidenceID: e.String("evidence")}
	case staging.TagEnableCutscene:
		return &action.EnableCutscene{CutsceneID: e.String("cutscene")}
	case staging.TagPlayBgm:
		return &action.PlayBgm{BgmID: e.String("bgm")}
	case staging.TagPauseBgm:
		return &action.PauseBgm{}
	case staging.TagResumeBgm:
		return &action.ResumeBgm{}
	case staging.TagStopBgm:
		return &action.StopBgm{Instant: e.Bool("instant", false)}
	case staging.TagPlayAmbiance:
		return &action.PlayAmbiance{AmbianceID: e.String("ambiance")}
	case staging.TagPauseAmbiance:
		return &action.PauseAmbiance{}
	case staging.TagResumeAmbiance:
		return &action.ResumeAmbiance{}
	case staging.TagStopAmbiance:
		return &action.StopAmbiance{Instant: e.Bool("instant", false)}
	case staging.TagStartAnimation:
		return &action.StartAnimation{AnimationID: e.String("animation")}
	case staging.TagStopAnimation:
		return &action.StopAnimation{}
	case staging.TagGoToPresentWrongEvidence:
		return &action.GoToPresentWrongEvidence{}
	case staging.TagExitEncounter:
		return &action.ExitEncounter{}
	case staging.TagMoveToLocation:
		return &action.MoveToLocation{LocationID: e.String("location")}
	case staging.TagMoveToZoomedView:
		return &action.MoveToZoomedView{ZoomedViewID: e.String("zoomed_view")}
	case staging.TagEndCase:
		return &action.EndCase{CompletesCase: e.Bool("completes_case", true)}
	case staging.TagExitMultipleChoice:
		return &action.ExitMultipleChoice{}
	case staging.TagEnableFastForward:
		return &action.EnableFastForward{}
	case staging.TagDisableFastForward:
		return &action.DisableFastForward{}
	case staging.TagBeginBreakdown:
		return &action.BeginBreakdown{CharacterPosition: position(e.String("position"))}
	case staging.TagEndBreakdown:
		return &action.EndBreakdown{}
	case staging.TagPlaySound:
		return &action.PlaySound{SoundID: e.String("sound")}
	case staging.TagShowNotification:
		return &action.ShowNotification{Notification: notificationFields(e)}
	}
	return nil
}

func interrogationLayer(b *builder, dst *action.List, src []staging.Entry, i, base int) (int, bool, error) {
	switch src[i].Tag {
	case staging.TagBeginInterrogationRepeat:
		next, err := b.interrogationRepeat(dst, src, i, base)
		return next, true, err
	case staging.TagBeginShowInterrogation:
		next, err := b.showInterrogation(dst, src, i, base)
		return next, true, err
	case staging.TagExitInterrogationRepeat:
		*dst = append(*dst, &action.ExitInterrogationRepeat{})
		return i + 1, true, nil
	}
	return i, false, nil
}

func confrontationLayer(b *builder, dst *action.List, src []staging.Entry, i, base int) (int, bool, error) {
	e := src[i]
	switch e.Tag {
	case staging.TagSetParticipants:
		b.conf.PlayerCharacterID = e.String("player")
		b.conf.OpponentCharacterID = e.String("opponent")
	case staging.TagSetIconOffset:
		b.conf.PlayerIconOffset = e.Int("player_offset", 0)
		b.conf.OpponentIconOffset = e.Int("opponent_offset", 0)
	case staging.TagSetHealth:
		b.conf.PlayerInitialHealth = e.Int("player", 0)
		b.conf.OpponentInitialHealth = e.Int("opponent", 0)
	case staging.TagBeginConfrontationTopicSelection:
		next, err := b.topicSelection(dst, src, i, base)
		return next, true, err
	case staging.TagBeginMultipleChoice:
		if !isRestartDecision(e) {
			return i, false, nil
		}
		next, err := b.restartDecision(dst, src, i, base)
		return next, true, err
	case staging.TagEnableTopic:
		*dst = append(*dst, &action.EnableTopic{TopicID: e.String("topic")})
	case staging.TagRestartConfrontation:
		*dst = append(*dst, &action.RestartConfrontation{})
	case staging.TagRestartConfrontationTopicSelection:
		*dst = append(*dst, &action.RestartConfrontationTopicSelection{})
	default:
		return i, false, nil
	}
	return i + 1, true, nil
}

// isRestartDecision reports whether a multiple choice is the legacy
// encoding of a restart decision: exactly two options reading "Try again"
// and "Give up".
func isRestartDecision(e staging.Entry) bool {
	if len(e.Options) != 2 {
		return false
	}
	a, b := e.Options[0].Text, e.Options[1].Text
	return a == RestartOptionText && b == GiveUpOptionText ||
		a == GiveUpOptionText && b == RestartOptionText
}

func (b *builder) branchOnCondition(dst *action.List, src []staging.Entry, i, base int) (int, error) {
	e := src[i]
	if e.Criterion == nil {
		return 0, parseErr(e, "missing condition")
	}
	cond, err := condition.FromStaging(e.Criterion)
	if err != nil {
		return 0, parseErr(e, "%v", err)
	}
	marker, err := branchTerminator(src, i, base)
	if err != nil {
		return 0, err
	}
	end := marker
	if p := src[marker].Int("end_index", -1); p >= 0 {
		end = min(max(p-base, 0), len(src))
	}
	if end <= i {
		return 0, parseErr(e, "branch ends at %d, before it starts", end+base)
	}
	starts, err := startPositions(src[:end], i, base, e.Int("true_index", -1), e.Int("false_index", -1))
	if err != nil {
		return 0, err
	}

	rs := splitRanges(starts, end)
	a := &action.BranchOnCondition{Condition: condition.Expr{Condition: cond}}
	if err := b.sub(&a.True, src, rs[0], base); err != nil {
		return 0, err
	}
	if err := b.sub(&a.False, src, rs[1], base); err != nil {
		return 0, err
	}
	*dst = append(*dst, a)
	return max(marker+1, end), nil
}

func (b *builder) mustPresentEvidence(dst *action.List, src []staging.Entry, i, base int) (int, error) {
	e := src[i]
	end, err := matchingEnd(src, i, staging.TagBeginMustPresentEvidence, staging.TagEndMustPresentEvidence)
	if err != nil {
		return 0, err
	}
	starts, err := startPositions(src[:end+1], i, base,
		e.Int("correct_index", -1), e.Int("wrong_index", -1), e.Int("end_requested_index", -1))
	if err != nil {
		return 0, err
	}
	rs := splitRanges(starts, end)

	a := &action.MustPresentEvidence{
		Line:               line(e),
		CorrectEvidenceIDs: e.Strings("correct_evidence"),
		CanEndBeRequested:  e.Bool("can_end_be_requested", false),
	}
	for k, dstList := range []*action.List{&a.Correct, &a.Wrong, &a.EndRequested} {
		if err := b.sub(dstList, src, rs[k], base); err != nil {
			return 0, err
		}
	}
	*dst = append(*dst, a)
	return end + 1, nil
}

func (b *builder) multipleChoice(dst *action.List, src []staging.Entry, i, base int) (int, error) {
	e := src[i]
	end, err := matchingEnd(src, i, staging.TagBeginMultipleChoice, staging.TagEndMultipleChoice)
	if err != nil {
		return 0, err
	}
	indices := make([]int, len(e.Options))
	for k, o := range e.Options {
		indices[k] = o.Index
	}
	starts, err := startPositions(src[:end+1], i, base, indices...)
	if err != nil {
		return 0, err
	}
	rs := splitRanges(starts, end)

	a := &action.MultipleChoice{Options: make([]action.Option, len(e.Options))}
	for k, o := range e.Options {
		a.Options[k].Text = o.Text
		if err := b.sub(&a.Options[k].Actions, src, rs[k], base); err != nil {
			return 0, err
		}
	}
	*dst = append(*dst, a)
	return end + 1, nil
}

func (b *builder) restartDecision(dst *action.List, src []staging.Entry, i, base int) (int, error) {
	var mc action.List
	next, err := b.multipleChoice(&mc, src, i, base)
	if err != nil {
		return 0, err
	}
	a := &action.RestartDecision{}
	for _, o := range mc[0].(*action.MultipleChoice).Options {
		if o.Text == RestartOptionText {
			a.Restart = o.Actions
		} else {
			a.GiveUp = o.Actions
		}
	}
	*dst = append(*dst, a)
	return next, nil
}

func (b *builder) interrogationRepeat(dst *action.List, src []staging.Entry, i, base int) (int, error) {
	end, err := matchingEnd(src, i, staging.TagBeginInterrogationRepeat, staging.TagEndInterrogationRepeat)
	if err != nil {
		return 0, err
	}
	a := &action.InterrogationRepeat{}
	if err := b.sub(&a.Actions, src, span{i + 1, end}, base); err != nil {
		return 0, err
	}
	*dst = append(*dst, a)
	return end + 1, nil
}

func (b *builder) showInterrogation(dst *action.List, src []staging.Entry, i, base int) (int, error) {
	e := src[i]
	end, err := matchingEnd(src, i, staging.TagBeginShowInterrogation, staging.TagEndShowInterrogation)
	if err != nil {
		return 0, err
	}
	indices := []int{e.Int("press_index", -1)}
	for _, ev := range e.Evidence {
		indices = append(indices, ev.Index)
	}
	indices = append(indices, e.Int("wrong_evidence_index", -1), e.Int("end_requested_index", -1))
	starts, err := startPositions(src[:end+1], i, base, indices...)
	if err != nil {
		return 0, err
	}
	rs := splitRanges(starts, end)

	a := &action.ShowInterrogation{Line: line(e)}
	if err := b.sub(&a.Press, src, rs[0], base); err != nil {
		return 0, err
	}
	for k, ev := range e.Evidence {
		br := action.EvidenceBranch{EvidenceID: ev.EvidenceID}
		if err := b.sub(&br.Actions, src, rs[k+1], base); err != nil {
			return 0, err
		}
		a.Evidence = append(a.Evidence, br)
	}
	n := len(e.Evidence)
	if err := b.sub(&a.WrongEvidence, src, rs[n+1], base); err != nil {
		return 0, err
	}
	if err := b.sub(&a.EndRequested, src, rs[n+2], base); err != nil {
		return 0, err
	}
	*dst = append(*dst, a)
	return end + 1, nil
}

func (b *builder) topicSelection(dst *action.List, src []staging.Entry, i, base int) (int, error) {
	e := src[i]
	end, err := matchingEnd(src, i, staging.TagBeginConfrontationTopicSelection, staging.TagEndConfrontationTopicSelection)
	if err != nil {
		return 0, err
	}
	indices := []int{e.Int("initial_index", -1)}
	for _, t := range e.Topics {
		indices = append(indices, t.Index)
	}
	indices = append(indices, e.Int("player_defeated_index", -1))
	starts, err := startPositions(src[:end+1], i, base, indices...)
	if err != nil {
		return 0, err
	}
	rs := splitRanges(starts, end)

	a := &action.ConfrontationTopicSelection{}
	if err := b.sub(&a.Initial, src, rs[0], base); err != nil {
		return 0, err
	}
	for k, t := range e.Topics {
		topic := &Topic{ID: t.ID, Name: t.Name, EnabledAtStart: t.Enabled}
		if err := b.sub(&topic.Actions, src, rs[k+1], base); err != nil {
			return 0, err
		}
		b.conf.setTopic(topic)
	}
	if err := b.sub(&a.PlayerDefeated, src, rs[len(e.Topics)+1], base); err != nil {
		return 0, err
	}
	*dst = append(*dst, a)
	return end + 1, nil
}

// setTopic adds t, replacing a topic built earlier with the same id.
func (c *Confrontation) setTopic(t *Topic) {
	for k, old := range c.Topics {
		if old.ID == t.ID {
			c.Topics[k] = t
			return
		}
	}
	c.Topics = append(c.Topics, t)
}

// notification folds the ShowNotification entry that follows a notifying
// entry at i. It returns the position after the consumed entries.
func notification(src []staging.Entry, i int) (*action.Notification, int, error) {
	e := src[i]
	if !e.Bool("notify", false) {
		return nil, i + 1, nil
	}
	if i+1 >= len(src) || src[i+1].Tag != staging.TagShowNotification {
		return nil, 0, parseErr(e, "expected ShowNotification to follow")
	}
	n := notificationFields(src[i+1])
	return &n, i + 2, nil
}

func notificationFields(e staging.Entry) action.Notification {
	return action.Notification{
		Text:          e.String("text"),
		OldEvidenceID: e.String("old_evidence"),
		NewEvidenceID: e.String("new_evidence"),
		PartnerID:     e.String("partner"),
	}
}

func line(e staging.Entry) action.Line {
	return action.Line{
		Speaker:      position(e.String("speaker")),
		CharacterID:  e.String("character"),
		Text:         e.String("text"),
		VoiceOverID:  e.String("voice_over"),
		LeadInTimeMs: e.Int("lead_in_ms", 0),
		AutoContinue: e.Bool("auto_continue", false),
	}
}

func position(s string) types.Position {
	switch types.Position(strings.ToLower(s)) {
	case types.PositionLeft:
		return types.PositionLeft
	case types.PositionRight:
		return types.PositionRight
	case types.PositionOffscreen:
		return types.PositionOffscreen
	}
	return types.PositionNone
}
