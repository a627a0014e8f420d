// Package conversation holds the scripted containers of an encounter and
// the passes that run over their action trees: building them from legacy
// staging data and computing the on-screen state before every action.
package conversation

import (
	"fmt"
	"sort"

	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/engine/condition"
	"github.com/nathoo/casecore/engine/state"
	"github.com/nathoo/casecore/staging"
)

// Script is implemented by Conversation, Interrogation and Confrontation.
type Script interface {
	Root() *Conversation
	PopulateActionsFromStaging(dst *action.List, src []staging.Entry, base int) error
	UpdateAndCacheConversationStates(reg *content.Registry)
}

// Conversation is a scripted exchange the player can start.
type Conversation struct {
	ID             string         `yaml:"id"`
	Name           string         `yaml:"name,omitempty"`
	EnabledAtStart bool           `yaml:"enabledAtStart,omitempty"`
	Unlock         condition.Expr `yaml:"unlockCondition,omitempty"`
	Actions        action.List    `yaml:"actions,omitempty"`

	encounter *Encounter
}

// Root returns the conversation itself; interrogations and confrontations
// return their embedded conversation.
func (c *Conversation) Root() *Conversation { return c }

// Encounter returns the encounter the conversation was added to, or nil.
func (c *Conversation) Encounter() *Encounter { return c.encounter }

// Interrogation is a conversation with cross-examination constructs.
type Interrogation struct {
	Conversation `yaml:",inline"`
}

// Topic is a confrontation topic the player can pick.
type Topic struct {
	ID             string      `yaml:"id"`
	Name           string      `yaml:"name"`
	EnabledAtStart bool        `yaml:"enabledAtStart,omitempty"`
	Actions        action.List `yaml:"actions,omitempty"`
}

// Confrontation is an interrogation with topics and a health contest
// between the player and an opponent.
type Confrontation struct {
	Interrogation `yaml:",inline"`

	Topics                []*Topic `yaml:"topics,omitempty"`
	PlayerCharacterID     string   `yaml:"playerCharacter,omitempty"`
	OpponentCharacterID   string   `yaml:"opponentCharacter,omitempty"`
	PlayerIconOffset      int      `yaml:"playerIconOffset,omitempty"`
	OpponentIconOffset    int      `yaml:"opponentIconOffset,omitempty"`
	PlayerInitialHealth   int      `yaml:"playerInitialHealth,omitempty"`
	OpponentInitialHealth int      `yaml:"opponentInitialHealth,omitempty"`
}

// Topic returns the topic with the given id.
func (c *Confrontation) Topic(id string) (*Topic, bool) {
	for _, t := range c.Topics {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Encounter is a bundle of scripts available at a location.
type Encounter struct {
	ID                      string
	InitialLeftCharacterID  string
	InitialLeftEmotionID    string
	InitialRightCharacterID string
	InitialRightEmotionID   string

	Conversations  *content.Store[*Conversation]
	Interrogations *content.Store[*Interrogation]
	Confrontations *content.Store[*Confrontation]
	// Conversations triggered by presenting evidence, keyed by evidence id.
	EvidenceConversations *content.Store[*Conversation]
	OneShot               *Conversation
}

// NewEncounter creates an empty encounter.
func NewEncounter(id string) *Encounter {
	return &Encounter{
		ID:                    id,
		Conversations:         content.NewStore[*Conversation](),
		Interrogations:        content.NewStore[*Interrogation](),
		Confrontations:        content.NewStore[*Confrontation](),
		EvidenceConversations: content.NewStore[*Conversation](),
	}
}

// InitialState is the on-screen state when the encounter begins.
func (e *Encounter) InitialState() state.State {
	return state.State{
		LeftCharacterID:  e.InitialLeftCharacterID,
		LeftEmotionID:    e.InitialLeftEmotionID,
		RightCharacterID: e.InitialRightCharacterID,
		RightEmotionID:   e.InitialRightEmotionID,
	}
}

func (e *Encounter) AddConversation(c *Conversation) {
	c.encounter = e
	e.Conversations.Add(c.ID, c)
}

func (e *Encounter) AddInterrogation(c *Interrogation) {
	c.encounter = e
	e.Interrogations.Add(c.ID, c)
}

func (e *Encounter) AddConfrontation(c *Confrontation) {
	c.encounter = e
	e.Confrontations.Add(c.ID, c)
}

// AddEvidenceConversation registers c to run when evidenceID is presented.
func (e *Encounter) AddEvidenceConversation(evidenceID string, c *Conversation) {
	c.encounter = e
	e.EvidenceConversations.Add(evidenceID, c)
}

func (e *Encounter) SetOneShot(c *Conversation) {
	if c != nil {
		c.encounter = e
	}
	e.OneShot = c
}

// Script returns the conversation, interrogation or confrontation with the
// given id.
func (e *Encounter) Script(id string) (Script, bool) {
	if c, ok := e.Conversations.Get(id); ok {
		return c, true
	}
	if c, ok := e.Interrogations.Get(id); ok {
		return c, true
	}
	if c, ok := e.Confrontations.Get(id); ok {
		return c, true
	}
	if e.OneShot != nil && e.OneShot.ID == id {
		return e.OneShot, true
	}
	return nil, false
}

// Scripts returns every script of the encounter: conversations,
// interrogations, confrontations, evidence conversations in evidence id
// order, then the one-shot conversation.
func (e *Encounter) Scripts() []Script {
	var out []Script
	for _, id := range e.Conversations.IDs() {
		c, _ := e.Conversations.Get(id)
		out = append(out, c)
	}
	for _, id := range e.Interrogations.IDs() {
		c, _ := e.Interrogations.Get(id)
		out = append(out, c)
	}
	for _, id := range e.Confrontations.IDs() {
		c, _ := e.Confrontations.Get(id)
		out = append(out, c)
	}
	ids := e.EvidenceConversations.IDs()
	sort.Strings(ids)
	for _, id := range ids {
		c, _ := e.EvidenceConversations.Get(id)
		out = append(out, c)
	}
	if e.OneShot != nil {
		out = append(out, e.OneShot)
	}
	return out
}

// UpdateStates recomputes cached states for every script of the encounter.
func (e *Encounter) UpdateStates(reg *content.Registry) {
	for _, s := range e.Scripts() {
		s.UpdateAndCacheConversationStates(reg)
	}
}

// ParseError reports malformed staging data.
type ParseError struct {
	Index int
	Tag   staging.Tag
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("staging entry %d (%s): %s", e.Index, e.Tag, e.Msg)
}

func parseErr(e staging.Entry, format string, args ...any) *ParseError {
	return &ParseError{Index: e.Index, Tag: e.Tag, Msg: fmt.Sprintf(format, args...)}
}
