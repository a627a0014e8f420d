// Package availability decides which scripts of an encounter the player can
// start and which confrontation topics they can pick.
package availability

import (
	"github.com/nathoo/casecore/engine/condition"
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/engine/state"
	"github.com/nathoo/casecore/types"
)

// Unlocks returns the condition that releases a locked conversation, keyed
// by state.ConversationKey.
type Unlocks func(key string) (condition.Expr, bool)

// Scripts returns the conversations, interrogations and confrontations of
// enc the player can start, in encounter order. Evidence conversations and
// the one-shot conversation are started by the runtime, never listed.
func Scripts(enc *conversation.Encounter, p *types.Progress, unlocks Unlocks) []conversation.Script {
	var out []conversation.Script
	add := func(s conversation.Script) {
		if Available(enc, s.Root(), p, unlocks) {
			out = append(out, s)
		}
	}
	for _, id := range enc.Conversations.IDs() {
		c, _ := enc.Conversations.Get(id)
		add(c)
	}
	for _, id := range enc.Interrogations.IDs() {
		c, _ := enc.Interrogations.Get(id)
		add(c)
	}
	for _, id := range enc.Confrontations.IDs() {
		c, _ := enc.Confrontations.Get(id)
		add(c)
	}
	return out
}

// Available reports whether c can be started: it must be enabled at start
// or by an action, and if locked its unlock condition must hold.
func Available(enc *conversation.Encounter, c *conversation.Conversation, p *types.Progress, unlocks Unlocks) bool {
	key := state.ConversationKey(enc.ID, c.ID)
	if !c.EnabledAtStart && !p.EnabledConversations[key] {
		return false
	}
	if !p.LockedConversations[key] {
		return true
	}
	cond := c.Unlock
	if cond.Condition == nil && unlocks != nil {
		cond, _ = unlocks(key)
	}
	return cond.Condition != nil && cond.Eval(state.Env(p))
}

// Topics returns the topics of c the player can pick.
func Topics(c *conversation.Confrontation, p *types.Progress) []*conversation.Topic {
	var out []*conversation.Topic
	for _, t := range c.Topics {
		if t.EnabledAtStart || p.EnabledTopics[state.TopicKey(c.ID, t.ID)] {
			out = append(out, t)
		}
	}
	return out
}
