package engine

import (
	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/engine/condition"
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/engine/state"
	"github.com/nathoo/casecore/types"
)

// Case is a loaded case: metadata, content and encounters.
type Case struct {
	Info       types.CaseInfo
	Registry   *content.Registry
	Encounters *content.Store[*conversation.Encounter]

	unlocks map[string]condition.Expr
}

// NewCase creates an empty case over reg.
func NewCase(info types.CaseInfo, reg *content.Registry) *Case {
	return &Case{
		Info:       info,
		Registry:   reg,
		Encounters: content.NewStore[*conversation.Encounter](),
		unlocks:    map[string]condition.Expr{},
	}
}

func (c *Case) AddEncounter(e *conversation.Encounter) {
	c.Encounters.Add(e.ID, e)
}

func (c *Case) Encounter(id string) (*conversation.Encounter, bool) {
	return c.Encounters.Get(id)
}

// EncounterAt returns the encounter held at a location.
func (c *Case) EncounterAt(locationID string) (*conversation.Encounter, bool) {
	l, ok := c.Registry.Locations.Get(locationID)
	if !ok || l.EncounterID == "" {
		return nil, false
	}
	return c.Encounter(l.EncounterID)
}

// LocationOf returns the first location holding the encounter.
func (c *Case) LocationOf(encounterID string) (string, bool) {
	for _, id := range c.Registry.Locations.IDs() {
		if l, _ := c.Registry.Locations.Get(id); l.EncounterID == encounterID {
			return id, true
		}
	}
	return "", false
}

// Prepare computes the cached states of every script and indexes the
// unlock conditions carried by LockConversation actions. It must run after
// the case is assembled and after any script is edited.
func (c *Case) Prepare() {
	c.unlocks = map[string]condition.Expr{}
	for _, id := range c.Encounters.IDs() {
		enc, _ := c.Encounters.Get(id)
		enc.UpdateStates(c.Registry)
		for _, s := range enc.Scripts() {
			for _, l := range Lists(s) {
				action.Walk(l, func(_ action.Path, a action.Action) {
					lock, ok := a.(*action.LockConversation)
					if !ok || lock.Unlock.Condition == nil {
						return
					}
					encID := lock.EncounterID
					if encID == "" {
						encID = enc.ID
					}
					c.unlocks[state.ConversationKey(encID, lock.ConversationID)] = lock.Unlock
				})
			}
		}
	}
}

// Unlock returns the condition that releases the locked conversation key.
func (c *Case) Unlock(key string) (condition.Expr, bool) {
	e, ok := c.unlocks[key]
	return e, ok
}

// PreloadAudio hands every audio asset the case references to p.
func (c *Case) PreloadAudio(p action.Preloader) {
	for _, id := range c.Encounters.IDs() {
		enc, _ := c.Encounters.Get(id)
		for _, s := range enc.Scripts() {
			for _, l := range Lists(s) {
				action.PreloadAudio(l, p)
			}
		}
	}
}

// Lists returns the top-level action lists of a script: its actions and,
// for a confrontation, each topic's actions.
func Lists(s conversation.Script) []action.List {
	out := []action.List{s.Root().Actions}
	if conf, ok := s.(*conversation.Confrontation); ok {
		for _, t := range conf.Topics {
			out = append(out, t.Actions)
		}
	}
	return out
}
