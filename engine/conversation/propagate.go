package conversation

import (
	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/engine/dialog"
	"github.com/nathoo/casecore/engine/state"
)

// UpdateAndCacheConversationStates walks the action tree in order and caches
// on every action the on-screen state that holds just before it runs.
//
// Branches each start from their own copy of the state at the branching
// action, so changes made in one branch are never seen by another. After
// a branching action, execution is assumed to continue from the end of its
// first branch.
func (c *Conversation) UpdateAndCacheConversationStates(reg *content.Registry) {
	p := &propagator{reg: reg}
	p.list(c.Actions, c.initialState())
}

func (c *Interrogation) UpdateAndCacheConversationStates(reg *content.Registry) {
	c.Conversation.UpdateAndCacheConversationStates(reg)
}

func (c *Confrontation) UpdateAndCacheConversationStates(reg *content.Registry) {
	p := &propagator{reg: reg, topics: c.Topics}
	p.list(c.Actions, c.initialState())
}

func (c *Conversation) initialState() state.State {
	if c.encounter == nil {
		return state.State{}
	}
	return c.encounter.InitialState()
}

type propagator struct {
	reg    *content.Registry
	topics []*Topic
}

func (p *propagator) list(l action.List, cur state.State) state.State {
	for _, a := range l {
		cur = p.node(a, cur)
	}
	return cur
}

func (p *propagator) node(a action.Action, cur state.State) state.State {
	snap := cur.Clone()
	if sp, ok := a.(action.Speaker); ok {
		ApplyMarkup(p.reg, &snap, sp.DialogLine())
	}
	a.SetCachedState(snap)

	if cc, ok := a.(*action.CharacterChange); ok {
		next := cur.Clone()
		if next.Place(p.reg, cc.Position, cc.CharacterID, cc.EmotionID) {
			return next
		}
		return cur
	}

	branches := p.branches(a)
	if len(branches) == 0 {
		return cur
	}
	var first state.State
	for i, b := range branches {
		out := p.list(b, cur.Clone())
		if i == 0 {
			first = out
		}
	}
	return first
}

// branches returns the child lists of a in fall-through order. A topic
// selection also owns the topics of its confrontation, placed between its
// initial and player-defeated actions.
func (p *propagator) branches(a action.Action) []action.List {
	if ts, ok := a.(*action.ConfrontationTopicSelection); ok {
		out := []action.List{ts.Initial}
		for _, t := range p.topics {
			out = append(out, t.Actions)
		}
		return append(out, ts.PlayerDefeated)
	}
	var out []action.List
	for _, b := range a.Branches() {
		out = append(out, *b.Actions)
	}
	return out
}

// ApplyMarkup applies the {emotion:} and {otherEmotion:} tags of a dialog
// line to s. Tags naming an emotion the character lacks are ignored.
func ApplyMarkup(reg *content.Registry, s *state.State, l *action.Line) {
	for _, tag := range dialog.EmotionTags(l.Text) {
		side := l.Speaker
		if tag.Other {
			side = state.Other(side)
		}
		s.SetEmotion(reg, side, tag.Emotion)
	}
}
