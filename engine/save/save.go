// Package save implements JSON serialization and deserialization of player progress.
package save

import (
	"encoding/json"

	"github.com/nathoo/casecore/types"
)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version                string          `json:"version"`
	Case                   string          `json:"case"`
	Encounter              string          `json:"encounter,omitempty"`
	Location               string          `json:"location,omitempty"`
	Flags                  map[string]bool `json:"flags"`
	Evidence               []string        `json:"evidence"`
	PartnerID              string          `json:"partner,omitempty"`
	TutorialsEnabled       bool            `json:"tutorials_enabled"`
	EnabledConversations   map[string]bool `json:"enabled_conversations"`
	LockedConversations    map[string]bool `json:"locked_conversations"`
	EnabledCutscenes       map[string]bool `json:"enabled_cutscenes"`
	EnabledTopics          map[string]bool `json:"enabled_topics"`
	CompletedConversations map[string]bool `json:"completed_conversations"`
	CaseCompleted          bool            `json:"case_completed"`
	FastForwardDisabled    bool            `json:"fast_forward_disabled,omitempty"`
	CommandLog             []string        `json:"command_log"`
}

// Save serializes progress to JSON bytes. encounter is the encounter the
// player is in, if any.
func Save(p *types.Progress, info types.CaseInfo, encounter string) ([]byte, error) {
	data := SaveData{
		Version:                info.Version,
		Case:                   info.Title,
		Encounter:              encounter,
		Location:               p.Location,
		Flags:                  p.Flags,
		Evidence:               p.Evidence,
		PartnerID:              p.PartnerID,
		TutorialsEnabled:       p.TutorialsEnabled,
		EnabledConversations:   p.EnabledConversations,
		LockedConversations:    p.LockedConversations,
		EnabledCutscenes:       p.EnabledCutscenes,
		EnabledTopics:          p.EnabledTopics,
		CompletedConversations: p.CompletedConversation,
		CaseCompleted:          p.CaseCompleted,
		FastForwardDisabled:    p.FastForwardDisabled,
		CommandLog:             p.CommandLog,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	// Ensure collections are never nil after load.
	for _, m := range []*map[string]bool{
		&sd.Flags, &sd.EnabledConversations, &sd.LockedConversations,
		&sd.EnabledCutscenes, &sd.EnabledTopics, &sd.CompletedConversations,
	} {
		if *m == nil {
			*m = map[string]bool{}
		}
	}
	if sd.Evidence == nil {
		sd.Evidence = []string{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// ApplySave applies loaded save data onto progress.
func ApplySave(p *types.Progress, sd *SaveData) {
	p.Location = sd.Location
	p.Flags = sd.Flags
	p.Evidence = sd.Evidence
	p.PartnerID = sd.PartnerID
	p.TutorialsEnabled = sd.TutorialsEnabled
	p.EnabledConversations = sd.EnabledConversations
	p.LockedConversations = sd.LockedConversations
	p.EnabledCutscenes = sd.EnabledCutscenes
	p.EnabledTopics = sd.EnabledTopics
	p.CompletedConversation = sd.CompletedConversations
	p.CaseCompleted = sd.CaseCompleted
	p.FastForwardDisabled = sd.FastForwardDisabled
	p.CommandLog = sd.CommandLog
}
