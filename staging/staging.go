// Package staging defines the legacy flat action format: a linear list of
// tagged entries that reference each other by integer index. It is consumed
// once at load time by the conversation tree builder.
package staging

import (
	"fmt"
	"strings"
)

// Tag is the legacy action-type tag of a staged entry.
type Tag string

// Conversation tags.
const (
	TagCharacterChange          Tag = "CharacterChange"
	TagSetFlag                  Tag = "SetFlag"
	TagBranchOnCondition        Tag = "BranchOnCondition"
	TagBranchIfTrue             Tag = "BranchIfTrue"
	TagBranchIfFalse            Tag = "BranchIfFalse"
	TagShowDialog               Tag = "ShowDialog"
	TagBeginMustPresentEvidence Tag = "BeginMustPresentEvidence"
	TagEndMustPresentEvidence   Tag = "EndMustPresentEvidence"
	TagEnableConversation       Tag = "EnableConversation"
	TagEnableEvidence           Tag = "EnableEvidence"
	TagUpdateEvidence           Tag = "UpdateEvidence"
	TagDisableEvidence          Tag = "DisableEvidence"
	TagEnableCutscene           Tag = "EnableCutscene"
	TagPlayBgm                  Tag = "PlayBgm"
	TagPauseBgm                 Tag = "PauseBgm"
	TagResumeBgm                Tag = "ResumeBgm"
	TagStopBgm                  Tag = "StopBgm"
	TagPlayAmbiance             Tag = "PlayAmbiance"
	TagPauseAmbiance            Tag = "PauseAmbiance"
	TagResumeAmbiance           Tag = "ResumeAmbiance"
	TagStopAmbiance             Tag = "StopAmbiance"
	TagStartAnimation           Tag = "StartAnimation"
	TagStopAnimation            Tag = "StopAnimation"
	TagSetPartner               Tag = "SetPartner"
	TagGoToPresentWrongEvidence Tag = "GoToPresentWrongEvidence"
	TagLockConversation         Tag = "LockConversation"
	TagExitEncounter            Tag = "ExitEncounter"
	TagMoveToLocation           Tag = "MoveToLocation"
	TagMoveToZoomedView         Tag = "MoveToZoomedView"
	TagEndCase                  Tag = "EndCase"
	TagBeginMultipleChoice      Tag = "BeginMultipleChoice"
	TagExitMultipleChoice       Tag = "ExitMultipleChoice"
	TagEndMultipleChoice        Tag = "EndMultipleChoice"
	TagEnableFastForward        Tag = "EnableFastForward"
	TagDisableFastForward       Tag = "DisableFastForward"
	TagBeginBreakdown           Tag = "BeginBreakdown"
	TagEndBreakdown             Tag = "EndBreakdown"
	TagPlaySound                Tag = "PlaySound"
	TagShowNotification         Tag = "ShowNotification"
)

// Interrogation tags.
const (
	TagBeginInterrogationRepeat Tag = "BeginInterrogationRepeat"
	TagEndInterrogationRepeat   Tag = "EndInterrogationRepeat"
	TagExitInterrogationRepeat  Tag = "ExitInterrogationRepeat"
	TagBeginShowInterrogation   Tag = "BeginShowInterrogation"
	TagEndShowInterrogation     Tag = "EndShowInterrogation"
)

// Confrontation tags.
const (
	TagSetParticipants                    Tag = "SetParticipants"
	TagSetIconOffset                      Tag = "SetIconOffset"
	TagSetHealth                          Tag = "SetHealth"
	TagBeginConfrontationTopicSelection   Tag = "BeginConfrontationTopicSelection"
	TagEndConfrontationTopicSelection     Tag = "EndConfrontationTopicSelection"
	TagEnableTopic                        Tag = "EnableTopic"
	TagRestartConfrontation               Tag = "RestartConfrontation"
	TagRestartConfrontationTopicSelection Tag = "RestartConfrontationTopicSelection"
)

// Option is one multiple-choice option and the index its actions start at.
type Option struct {
	Text  string
	Index int
}

// TopicStart is one confrontation topic and the index its actions start at.
type TopicStart struct {
	ID      string
	Name    string
	Enabled bool
	Index   int
}

// EvidenceStart maps a presentable evidence id to the index of the actions
// run when it is presented.
type EvidenceStart struct {
	EvidenceID string
	Index      int
}

// Criterion is a staged condition expression.
type Criterion struct {
	Type     string // "flag_set", "evidence_present", "partner_present", "tutorials_enabled", "and", "or", "not"
	Value    string
	Children []*Criterion
}

// Entry is one staged action.
type Entry struct {
	Tag       Tag
	Index     int
	Fields    map[string]any
	Criterion *Criterion
	Options   []Option
	Topics    []TopicStart
	Evidence  []EvidenceStart
}

// String returns the field as a string, or "" if missing.
func (e Entry) String(key string) string {
	switch v := e.Fields[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

// Int returns the field as an int, or def if missing.
func (e Entry) Int(key string, def int) int {
	switch v := e.Fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns the field as a bool, or def if missing.
func (e Entry) Bool(key string, def bool) bool {
	if v, ok := e.Fields[key].(bool); ok {
		return v
	}
	return def
}

// Strings returns a list field. A comma-separated string is split.
func (e Entry) Strings(key string) []string {
	switch v := e.Fields[key].(type) {
	case []string:
		return v
	case []any:
		var out []string
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return nil
}

// Has reports whether the field is present.
func (e Entry) Has(key string) bool {
	_, ok := e.Fields[key]
	return ok
}

// New builds an entry with the given tag and fields. It is a convenience
// for tests and tools that assemble staged lists by hand.
func New(tag Tag, fields map[string]any) Entry {
	if fields == nil {
		fields = map[string]any{}
	}
	return Entry{Tag: tag, Fields: fields}
}

// Reindex assigns each entry its list position plus base as Index.
func Reindex(entries []Entry, base int) []Entry {
	for i := range entries {
		entries[i].Index = base + i
	}
	return entries
}
