package state

import (
	"github.com/nathoo/casecore/engine/condition"
	"github.com/nathoo/casecore/types"
)

// NewProgress creates fresh player progress.
func NewProgress() *types.Progress {
	return &types.Progress{
		Flags:                 map[string]bool{},
		Evidence:              []string{},
		EnabledConversations:  map[string]bool{},
		LockedConversations:   map[string]bool{},
		EnabledCutscenes:      map[string]bool{},
		EnabledTopics:         map[string]bool{},
		CompletedConversation: map[string]bool{},
		CommandLog:            []string{},
	}
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(p *types.Progress, name string) bool {
	return p.Flags[name]
}

// HasEvidence returns true if the player holds the evidence.
func HasEvidence(p *types.Progress, evidenceID string) bool {
	for _, id := range p.Evidence {
		if id == evidenceID {
			return true
		}
	}
	return false
}

// AddEvidence appends evidence if the player does not already hold it.
func AddEvidence(p *types.Progress, evidenceID string) bool {
	if HasEvidence(p, evidenceID) {
		return false
	}
	p.Evidence = append(p.Evidence, evidenceID)
	return true
}

// RemoveEvidence removes evidence from the record.
func RemoveEvidence(p *types.Progress, evidenceID string) bool {
	for i, id := range p.Evidence {
		if id == evidenceID {
			p.Evidence = append(p.Evidence[:i], p.Evidence[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceEvidence swaps oldID for newID in place, keeping its position.
func ReplaceEvidence(p *types.Progress, oldID, newID string) bool {
	for i, id := range p.Evidence {
		if id == oldID {
			p.Evidence[i] = newID
			return true
		}
	}
	return AddEvidence(p, newID)
}

// ConversationKey identifies a conversation across encounters in progress
// maps.
func ConversationKey(encounterID, conversationID string) string {
	return encounterID + "/" + conversationID
}

// TopicKey identifies a confrontation topic in progress maps.
func TopicKey(confrontationID, topicID string) string {
	return confrontationID + "/" + topicID
}

// Env adapts progress to a condition environment.
func Env(p *types.Progress) condition.Env {
	return progressEnv{p}
}

type progressEnv struct {
	p *types.Progress
}

func (e progressEnv) IsFlagSet(id string) bool         { return GetFlag(e.p, id) }
func (e progressEnv) IsEvidencePresent(id string) bool { return HasEvidence(e.p, id) }
func (e progressEnv) PartnerID() string                { return e.p.PartnerID }
func (e progressEnv) TutorialsEnabled() bool           { return e.p.TutorialsEnabled }
