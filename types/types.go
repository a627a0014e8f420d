// Package types defines the shared data structures for the casecore engine.
// It contains only type definitions, with no logic and no methods.
package types

// Position is a screen side a character can occupy during a conversation.
type Position string

const (
	PositionNone      Position = "none"
	PositionLeft      Position = "left"
	PositionRight     Position = "right"
	PositionOffscreen Position = "offscreen"
)

// CaseInfo holds case metadata declared by the content author.
type CaseInfo struct {
	Title          string
	Author         string
	Version        string
	StartEncounter string
	Intro          string
}

// Intent is a parsed player command.
type Intent struct {
	Verb   string
	Object string
}

// Result is the outcome of one player command.
type Result struct {
	Output []string
	Events []Event
}

// Event is emitted by the runtime as actions execute.
type Event struct {
	Type string
	Data map[string]any
}

// Progress is the mutable player progress consulted by conditions and
// updated by conversation actions.
type Progress struct {
	Flags                 map[string]bool
	Evidence              []string // in the order it was obtained
	PartnerID             string
	TutorialsEnabled      bool
	Location              string
	EnabledConversations  map[string]bool
	LockedConversations   map[string]bool
	EnabledCutscenes      map[string]bool
	EnabledTopics         map[string]bool
	CompletedConversation map[string]bool
	CaseCompleted         bool
	FastForwardDisabled   bool
	CommandLog            []string
}
