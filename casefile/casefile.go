// Package casefile reads and writes the persisted YAML form of a case.
//
// Every collection is a sequence so that authored order survives a round
// trip. Actions and conditions are written element-per-node by the codecs
// in the action and condition packages.
package casefile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/engine"
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/types"
	"gopkg.in/yaml.v3"
)

// File is a whole case as stored on disk.
type File struct {
	Title   string `yaml:"title"`
	Author  string `yaml:"author,omitempty"`
	Version string `yaml:"version,omitempty"`
	Start   string `yaml:"start"`
	Intro   string `yaml:"intro,omitempty"`

	Characters []Character `yaml:"characters,omitempty"`
	Evidence   []Evidence  `yaml:"evidence,omitempty"`
	Partners   []Partner   `yaml:"partners,omitempty"`
	Locations  []Location  `yaml:"locations,omitempty"`
	Flags      []Asset     `yaml:"flags,omitempty"`
	Sounds     []Asset     `yaml:"sounds,omitempty"`
	Music      []Asset     `yaml:"music,omitempty"`
	Encounters []Encounter `yaml:"encounters,omitempty"`
}

type Character struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name,omitempty"`
	Emotions       []string `yaml:"emotions,omitempty,flow"`
	DefaultEmotion string   `yaml:"defaultEmotion,omitempty"`
}

type Evidence struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

type Partner struct {
	ID        string `yaml:"id"`
	Character string `yaml:"character"`
	Name      string `yaml:"name,omitempty"`
}

type Location struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name,omitempty"`
	Encounter string `yaml:"encounter,omitempty"`
}

// Asset is a declared flag, sound or music id. Value is a description for
// flags and a file path for audio.
type Asset struct {
	ID    string `yaml:"id"`
	Value string `yaml:"value,omitempty"`
}

// Encounter is an encounter and all of its scripts.
type Encounter struct {
	ID           string `yaml:"id"`
	Left         string `yaml:"left,omitempty"`
	LeftEmotion  string `yaml:"leftEmotion,omitempty"`
	Right        string `yaml:"right,omitempty"`
	RightEmotion string `yaml:"rightEmotion,omitempty"`

	OneShot               *conversation.Conversation    `yaml:"oneShot,omitempty"`
	Conversations         []*conversation.Conversation  `yaml:"conversations,omitempty"`
	Interrogations        []*conversation.Interrogation `yaml:"interrogations,omitempty"`
	Confrontations        []*conversation.Confrontation `yaml:"confrontations,omitempty"`
	EvidenceConversations []EvidenceConversation        `yaml:"evidenceConversations,omitempty"`
}

// EvidenceConversation is a conversation run when Evidence is presented.
type EvidenceConversation struct {
	Evidence                  string `yaml:"evidence"`
	conversation.Conversation `yaml:",inline"`
}

// Load reads a case file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading case file: %w", err)
	}
	f, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Read decodes a case file. Unknown top-level keys are rejected.
func Read(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty case file")
		}
		return nil, fmt.Errorf("parsing case file: %w", err)
	}
	return &f, nil
}

// Write encodes f as YAML.
func (f *File) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode case file: %w", err)
	}
	return enc.Close()
}

// Save writes f to path, replacing any existing file.
func (f *File) Save(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create case file: %w", err)
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Case builds a case from f. The result is not prepared or validated.
func (f *File) Case() (*engine.Case, error) {
	reg := content.NewRegistry()

	seen := map[string]bool{}
	dup := func(kind, id string) error {
		key := kind + "\x00" + id
		if id == "" {
			return fmt.Errorf("%s with empty id", kind)
		}
		if seen[key] {
			return fmt.Errorf("duplicate %s %q", kind, id)
		}
		seen[key] = true
		return nil
	}

	for _, c := range f.Characters {
		if err := dup("character", c.ID); err != nil {
			return nil, err
		}
		reg.Characters.Add(c.ID, &content.Character{ID: c.ID, Name: c.Name, Emotions: c.Emotions, DefaultEmotion: c.DefaultEmotion})
	}
	for _, e := range f.Evidence {
		if err := dup("evidence", e.ID); err != nil {
			return nil, err
		}
		reg.Evidence.Add(e.ID, &content.Evidence{ID: e.ID, Name: e.Name, Description: e.Description})
	}
	for _, p := range f.Partners {
		if err := dup("partner", p.ID); err != nil {
			return nil, err
		}
		reg.Partners.Add(p.ID, &content.Partner{ID: p.ID, CharacterID: p.Character, Name: p.Name})
	}
	for _, l := range f.Locations {
		if err := dup("location", l.ID); err != nil {
			return nil, err
		}
		reg.Locations.Add(l.ID, &content.Location{ID: l.ID, Name: l.Name, EncounterID: l.Encounter})
	}
	for _, set := range []struct {
		kind   string
		assets []Asset
		store  *content.Store[string]
	}{
		{"flag", f.Flags, reg.Flags},
		{"sound", f.Sounds, reg.Sounds},
		{"music", f.Music, reg.Music},
	} {
		for _, a := range set.assets {
			if err := dup(set.kind, a.ID); err != nil {
				return nil, err
			}
			set.store.Add(a.ID, a.Value)
		}
	}

	cs := engine.NewCase(types.CaseInfo{
		Title:          f.Title,
		Author:         f.Author,
		Version:        f.Version,
		StartEncounter: f.Start,
		Intro:          f.Intro,
	}, reg)

	for i := range f.Encounters {
		fe := &f.Encounters[i]
		if err := dup("encounter", fe.ID); err != nil {
			return nil, err
		}
		enc, err := fe.encounter()
		if err != nil {
			return nil, fmt.Errorf("encounter %s: %w", fe.ID, err)
		}
		cs.AddEncounter(enc)
	}
	return cs, nil
}

func (fe *Encounter) encounter() (*conversation.Encounter, error) {
	enc := conversation.NewEncounter(fe.ID)
	enc.InitialLeftCharacterID = fe.Left
	enc.InitialLeftEmotionID = fe.LeftEmotion
	enc.InitialRightCharacterID = fe.Right
	enc.InitialRightEmotionID = fe.RightEmotion

	// Conversations, interrogations and confrontations share one id space.
	ids := map[string]bool{}
	check := func(id string) error {
		if id == "" {
			return fmt.Errorf("script with empty id")
		}
		if ids[id] {
			return fmt.Errorf("duplicate conversation %q", id)
		}
		ids[id] = true
		return nil
	}
	for _, c := range fe.Conversations {
		if err := check(c.ID); err != nil {
			return nil, err
		}
		enc.AddConversation(c)
	}
	for _, c := range fe.Interrogations {
		if err := check(c.ID); err != nil {
			return nil, err
		}
		enc.AddInterrogation(c)
	}
	for _, c := range fe.Confrontations {
		if err := check(c.ID); err != nil {
			return nil, err
		}
		enc.AddConfrontation(c)
	}

	if fe.OneShot != nil {
		enc.SetOneShot(fe.OneShot)
	}
	for i := range fe.EvidenceConversations {
		ec := &fe.EvidenceConversations[i]
		if enc.EvidenceConversations.Has(ec.Evidence) {
			return nil, fmt.Errorf("duplicate evidence conversation for %q", ec.Evidence)
		}
		enc.AddEvidenceConversation(ec.Evidence, &ec.Conversation)
	}
	return enc, nil
}

// FromCase captures cs in its persisted form. Conversations, interrogations
// and confrontations are shared with cs; evidence conversations are copied.
func FromCase(cs *engine.Case) *File {
	reg := cs.Registry
	f := &File{
		Title:   cs.Info.Title,
		Author:  cs.Info.Author,
		Version: cs.Info.Version,
		Start:   cs.Info.StartEncounter,
		Intro:   cs.Info.Intro,
	}

	for _, id := range reg.Characters.IDs() {
		c, _ := reg.Characters.Get(id)
		f.Characters = append(f.Characters, Character{ID: id, Name: c.Name, Emotions: c.Emotions, DefaultEmotion: c.DefaultEmotion})
	}
	for _, id := range reg.Evidence.IDs() {
		e, _ := reg.Evidence.Get(id)
		f.Evidence = append(f.Evidence, Evidence{ID: id, Name: e.Name, Description: e.Description})
	}
	for _, id := range reg.Partners.IDs() {
		p, _ := reg.Partners.Get(id)
		f.Partners = append(f.Partners, Partner{ID: id, Character: p.CharacterID, Name: p.Name})
	}
	for _, id := range reg.Locations.IDs() {
		l, _ := reg.Locations.Get(id)
		f.Locations = append(f.Locations, Location{ID: id, Name: l.Name, Encounter: l.EncounterID})
	}
	f.Flags = assets(reg.Flags)
	f.Sounds = assets(reg.Sounds)
	f.Music = assets(reg.Music)

	for _, id := range cs.Encounters.IDs() {
		enc, _ := cs.Encounter(id)
		fe := Encounter{
			ID:           enc.ID,
			Left:         enc.InitialLeftCharacterID,
			LeftEmotion:  enc.InitialLeftEmotionID,
			Right:        enc.InitialRightCharacterID,
			RightEmotion: enc.InitialRightEmotionID,
			OneShot:      enc.OneShot,
		}
		for _, cid := range enc.Conversations.IDs() {
			c, _ := enc.Conversations.Get(cid)
			fe.Conversations = append(fe.Conversations, c)
		}
		for _, cid := range enc.Interrogations.IDs() {
			c, _ := enc.Interrogations.Get(cid)
			fe.Interrogations = append(fe.Interrogations, c)
		}
		for _, cid := range enc.Confrontations.IDs() {
			c, _ := enc.Confrontations.Get(cid)
			fe.Confrontations = append(fe.Confrontations, c)
		}
		for _, evID := range enc.EvidenceConversations.IDs() {
			c, _ := enc.EvidenceConversations.Get(evID)
			fe.EvidenceConversations = append(fe.EvidenceConversations, EvidenceConversation{Evidence: evID, Conversation: *c})
		}
		f.Encounters = append(f.Encounters, fe)
	}
	return f
}

func assets(s *content.Store[string]) []Asset {
	var out []Asset
	for _, id := range s.IDs() {
		v, _ := s.Get(id)
		out = append(out, Asset{ID: id, Value: v})
	}
	return out
}
