// Package effects implements centralized progress mutation via the Apply
// function. Each leaf action is one atomic operation on the player's
// progress or the audio service. Control flow is left to the runner.
package effects

import (
	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/engine/audio"
	"github.com/nathoo/casecore/engine/events"
	"github.com/nathoo/casecore/engine/state"
	"github.com/nathoo/casecore/types"
)

// Context carries where the action runs.
type Context struct {
	EncounterID     string
	ConfrontationID string // set while a confrontation runs
	Audio           audio.Service
}

// Apply applies a leaf action to progress. It returns the events emitted
// and false if a is not a leaf action it knows.
func Apply(p *types.Progress, a action.Action, ctx Context) ([]types.Event, bool) {
	var evts []types.Event
	emit := func(typ string, kv ...any) {
		evts = append(evts, events.New(typ, kv...))
	}
	notify := func(n *action.Notification) {
		if n != nil {
			emit(events.Notification, "text", n.Text)
		}
	}

	switch a := a.(type) {
	case *action.SetFlag:
		p.Flags[a.FlagID] = a.Value
		emit(events.FlagChanged, "flag", a.FlagID, "value", a.Value)

	case *action.EnableConversation:
		key := state.ConversationKey(encounterOr(a.EncounterID, ctx), a.ConversationID)
		p.EnabledConversations[key] = true
		delete(p.LockedConversations, key)
		emit(events.ConversationEnabled, "conversation", key)

	case *action.LockConversation:
		key := state.ConversationKey(encounterOr(a.EncounterID, ctx), a.ConversationID)
		p.LockedConversations[key] = true
		emit(events.ConversationLocked, "conversation", key)

	case *action.EnableEvidence:
		if state.AddEvidence(p, a.EvidenceID) {
			emit(events.EvidenceAdded, "evidence", a.EvidenceID)
		}
		notify(a.Notification)

	case *action.UpdateEvidence:
		state.ReplaceEvidence(p, a.EvidenceID, a.NewEvidenceID)
		emit(events.EvidenceUpdated, "evidence", a.NewEvidenceID, "old", a.EvidenceID)
		notify(a.Notification)

	case *action.DisableEvidence:
		if state.RemoveEvidence(p, a.EvidenceID) {
			emit(events.EvidenceRemoved, "evidence", a.EvidenceID)
		}

	case *action.EnableCutscene:
		p.EnabledCutscenes[a.CutsceneID] = true
		emit(events.CutsceneEnabled, "cutscene", a.CutsceneID)

	case *action.SetPartner:
		p.PartnerID = a.PartnerID
		emit(events.PartnerChanged, "partner", a.PartnerID)
		notify(a.Notification)

	case *action.ShowNotification:
		notify(&a.Notification)

	case *action.PlayBgm:
		ctx.Audio.PlayBgm(a.BgmID)
	case *action.PauseBgm:
		ctx.Audio.PauseBgm()
	case *action.ResumeBgm:
		ctx.Audio.ResumeBgm()
	case *action.StopBgm:
		ctx.Audio.StopBgm(a.Instant)
	case *action.PlayAmbiance:
		ctx.Audio.PlayAmbiance(a.AmbianceID)
	case *action.PauseAmbiance:
		ctx.Audio.PauseAmbiance()
	case *action.ResumeAmbiance:
		ctx.Audio.ResumeAmbiance()
	case *action.StopAmbiance:
		ctx.Audio.StopAmbiance(a.Instant)
	case *action.PlaySound:
		ctx.Audio.PlaySound(a.SoundID)

	case *action.StartAnimation:
		emit(events.AnimationStarted, "animation", a.AnimationID)
	case *action.StopAnimation:
		emit(events.AnimationStopped)
	case *action.MoveToZoomedView:
		emit(events.ZoomedViewEntered, "zoomed_view", a.ZoomedViewID)
	case *action.BeginBreakdown:
		emit(events.BreakdownStarted, "position", string(a.CharacterPosition))
	case *action.EndBreakdown:
		emit(events.BreakdownEnded)

	case *action.EnableFastForward:
		p.FastForwardDisabled = false
		emit(events.FastForwardChanged, "enabled", true)
	case *action.DisableFastForward:
		p.FastForwardDisabled = true
		emit(events.FastForwardChanged, "enabled", false)

	case *action.EnableTopic:
		key := state.TopicKey(ctx.ConfrontationID, a.TopicID)
		p.EnabledTopics[key] = true
		emit(events.TopicEnabled, "topic", key)

	case *action.MoveToLocation:
		p.Location = a.LocationID
		emit(events.LocationChanged, "location", a.LocationID)

	case *action.EndCase:
		if a.CompletesCase {
			p.CaseCompleted = true
		}
		emit(events.CaseEnded, "completed", a.CompletesCase)

	default:
		return nil, false
	}
	return evts, true
}

func encounterOr(id string, ctx Context) string {
	if id == "" {
		return ctx.EncounterID
	}
	return id
}
