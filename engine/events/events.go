// Package events names the events the runtime emits and renders them as
// player-facing text.
package events

import (
	"fmt"

	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/types"
)

// Event types.
const (
	FlagChanged         = "flag_changed"
	EvidenceAdded       = "evidence_added"
	EvidenceUpdated     = "evidence_updated"
	EvidenceRemoved     = "evidence_removed"
	ConversationEnabled = "conversation_enabled"
	ConversationLocked  = "conversation_locked"
	CutsceneEnabled     = "cutscene_enabled"
	PartnerChanged      = "partner_changed"
	Notification        = "notification"
	AnimationStarted    = "animation_started"
	AnimationStopped    = "animation_stopped"
	LocationChanged     = "location_changed"
	ZoomedViewEntered   = "zoomed_view_entered"
	BreakdownStarted    = "breakdown_started"
	BreakdownEnded      = "breakdown_ended"
	FastForwardChanged  = "fast_forward_changed"
	TopicEnabled        = "topic_enabled"
	HealthChanged       = "health_changed"
	PlayerDefeated      = "player_defeated"
	EncounterExited     = "encounter_exited"
	CaseEnded           = "case_ended"
)

// New builds an event from alternating key/value pairs.
func New(typ string, kv ...any) types.Event {
	data := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			data[k] = kv[i+1]
		}
	}
	return types.Event{Type: typ, Data: data}
}

// Describe returns the text shown to the player for ev, or "" for events
// that have no visible message.
func Describe(ev types.Event, reg *content.Registry) string {
	str := func(k string) string {
		s, _ := ev.Data[k].(string)
		return s
	}
	switch ev.Type {
	case Notification:
		return str("text")
	case EvidenceAdded:
		return fmt.Sprintf("%s added to the Court Record.", reg.EvidenceName(str("evidence")))
	case EvidenceUpdated:
		return fmt.Sprintf("%s updated in the Court Record.", reg.EvidenceName(str("evidence")))
	case PartnerChanged:
		if str("partner") == "" {
			return "Your partner has left."
		}
		return fmt.Sprintf("%s is now your partner.", partnerName(reg, str("partner")))
	case LocationChanged:
		if l, ok := reg.Locations.Get(str("location")); ok && l.Name != "" {
			return fmt.Sprintf("Moved to %s.", l.Name)
		}
		return fmt.Sprintf("Moved to %s.", str("location"))
	case HealthChanged:
		return fmt.Sprintf("Health: you %d, opponent %d.", ev.Data["player"], ev.Data["opponent"])
	case PlayerDefeated:
		return "You have been defeated."
	case CaseEnded:
		if done, _ := ev.Data["completed"].(bool); done {
			return "Case closed."
		}
		return "The case has ended."
	}
	return ""
}

func partnerName(reg *content.Registry, id string) string {
	if p, ok := reg.Partners.Get(id); ok {
		if p.Name != "" {
			return p.Name
		}
		return reg.CharacterName(p.CharacterID)
	}
	return id
}
