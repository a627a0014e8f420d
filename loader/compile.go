// Package loader loads Lua case content into Go structs at load time.
// The Lua VM is discarded after loading, so no Lua runs during play.
package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/engine"
	"github.com/nathoo/casecore/engine/condition"
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/staging"
	"github.com/nathoo/casecore/types"
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds a curried constructor's table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// rawAsset is a declared flag, sound or music id.
type rawAsset struct {
	id    string
	value string
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an int field from a Lua table, or the default if missing.
func getInt(tbl *lua.LTable, key string, def int) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return def
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the string elements of an array field.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Check if it's an array (sequential integer keys starting at 1).
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// compile converts all collected Lua data into a Case.
func compile(coll *collector) (*engine.Case, error) {
	if coll.info == nil {
		return nil, fmt.Errorf("no Case{} definition found")
	}

	reg, err := compileRegistry(coll)
	if err != nil {
		return nil, err
	}
	cs := engine.NewCase(compileInfo(coll.info), reg)

	seen := map[string]bool{}
	for _, raw := range coll.encounters {
		if seen[raw.id] {
			return nil, fmt.Errorf("duplicate encounter %q", raw.id)
		}
		seen[raw.id] = true
		enc, err := compileEncounter(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling encounter %s: %w", raw.id, err)
		}
		cs.AddEncounter(enc)
	}
	return cs, nil
}

func compileInfo(tbl *lua.LTable) types.CaseInfo {
	return types.CaseInfo{
		Title:          getString(tbl, "title"),
		Author:         getString(tbl, "author"),
		Version:        getString(tbl, "version"),
		StartEncounter: getString(tbl, "start"),
		Intro:          getString(tbl, "intro"),
	}
}

func compileRegistry(coll *collector) (*content.Registry, error) {
	reg := content.NewRegistry()

	add := func(kind string, defs []rawDef, fn func(rawDef)) error {
		seen := map[string]bool{}
		for _, d := range defs {
			if seen[d.id] {
				return fmt.Errorf("duplicate %s %q", kind, d.id)
			}
			seen[d.id] = true
			fn(d)
		}
		return nil
	}

	if err := add("character", coll.characters, func(d rawDef) {
		reg.Characters.Add(d.id, &content.Character{
			ID:             d.id,
			Name:           getString(d.table, "name"),
			Emotions:       getStrings(d.table, "emotions"),
			DefaultEmotion: getString(d.table, "default_emotion"),
		})
	}); err != nil {
		return nil, err
	}
	if err := add("evidence", coll.evidence, func(d rawDef) {
		reg.Evidence.Add(d.id, &content.Evidence{
			ID:          d.id,
			Name:        getString(d.table, "name"),
			Description: getString(d.table, "description"),
		})
	}); err != nil {
		return nil, err
	}
	if err := add("partner", coll.partners, func(d rawDef) {
		reg.Partners.Add(d.id, &content.Partner{
			ID:          d.id,
			CharacterID: getString(d.table, "character"),
			Name:        getString(d.table, "name"),
		})
	}); err != nil {
		return nil, err
	}
	if err := add("location", coll.locations, func(d rawDef) {
		reg.Locations.Add(d.id, &content.Location{
			ID:          d.id,
			Name:        getString(d.table, "name"),
			EncounterID: getString(d.table, "encounter"),
		})
	}); err != nil {
		return nil, err
	}

	for _, f := range coll.flags {
		reg.Flags.Add(f.id, f.value)
	}
	for _, s := range coll.sounds {
		reg.Sounds.Add(s.id, s.value)
	}
	for _, m := range coll.music {
		reg.Music.Add(m.id, m.value)
	}
	return reg, nil
}

func compileEncounter(raw rawDef) (*conversation.Encounter, error) {
	tbl := raw.table
	enc := conversation.NewEncounter(raw.id)
	enc.InitialLeftCharacterID = getString(tbl, "left")
	enc.InitialLeftEmotionID = getString(tbl, "left_emotion")
	enc.InitialRightCharacterID = getString(tbl, "right")
	enc.InitialRightEmotionID = getString(tbl, "right_emotion")

	seen := map[string]bool{}
	if scripts := getTable(tbl, "conversations"); scripts != nil {
		for i := 1; i <= scripts.MaxN(); i++ {
			st, ok := scripts.RawGetInt(i).(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("conversations[%d] is not a table", i)
			}
			s, err := compileScript(st)
			if err != nil {
				return nil, err
			}
			id := s.Root().ID
			if seen[id] {
				return nil, fmt.Errorf("duplicate conversation %q", id)
			}
			seen[id] = true
			switch s := s.(type) {
			case *conversation.Conversation:
				enc.AddConversation(s)
			case *conversation.Interrogation:
				enc.AddInterrogation(s)
			case *conversation.Confrontation:
				enc.AddConfrontation(s)
			}
		}
	}

	if st := getTable(tbl, "one_shot"); st != nil {
		c, err := compileConversation(st)
		if err != nil {
			return nil, fmt.Errorf("one_shot: %w", err)
		}
		enc.SetOneShot(c)
	}

	if evs := getTable(tbl, "evidence"); evs != nil {
		var ids []string
		evs.ForEach(func(k, _ lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				ids = append(ids, string(ks))
			}
		})
		sort.Strings(ids)
		for _, id := range ids {
			st, ok := evs.RawGetString(id).(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("evidence conversation for %q is not a table", id)
			}
			c, err := compileConversation(st)
			if err != nil {
				return nil, fmt.Errorf("evidence %s: %w", id, err)
			}
			enc.AddEvidenceConversation(id, c)
		}
	}
	return enc, nil
}

// compileConversation compiles a table that must be a plain Conversation.
func compileConversation(tbl *lua.LTable) (*conversation.Conversation, error) {
	s, err := compileScript(tbl)
	if err != nil {
		return nil, err
	}
	c, ok := s.(*conversation.Conversation)
	if !ok {
		return nil, fmt.Errorf("%s %q must be a Conversation", getString(tbl, keyKind), s.Root().ID)
	}
	return c, nil
}

// compileScript builds a conversation, interrogation or confrontation from
// its marker table. Its actions are staged, then built into a tree.
func compileScript(tbl *lua.LTable) (conversation.Script, error) {
	kind, id := getString(tbl, keyKind), getString(tbl, keyID)
	if id == "" {
		return nil, fmt.Errorf("table is not a Conversation, Interrogation or Confrontation")
	}

	root := conversation.Conversation{
		ID:             id,
		Name:           getString(tbl, "name"),
		EnabledAtStart: getBool(tbl, "enabled", false),
	}
	if u := getTable(tbl, "unlock"); u != nil {
		crit, err := compileCriterion(u)
		if err != nil {
			return nil, fmt.Errorf("%s unlock: %w", id, err)
		}
		c, err := condition.FromStaging(crit)
		if err != nil {
			return nil, fmt.Errorf("%s unlock: %w", id, err)
		}
		root.Unlock = condition.Expr{Condition: c}
	}

	var s conversation.Script
	switch kind {
	case "Conversation":
		s = &root
	case "Interrogation":
		s = &conversation.Interrogation{Conversation: root}
	case "Confrontation":
		conf := &conversation.Confrontation{Interrogation: conversation.Interrogation{Conversation: root}}
		conf.PlayerCharacterID = getString(tbl, "player")
		conf.OpponentCharacterID = getString(tbl, "opponent")
		conf.PlayerInitialHealth = getInt(tbl, "player_health", 0)
		conf.OpponentInitialHealth = getInt(tbl, "opponent_health", 0)
		s = conf
	default:
		return nil, fmt.Errorf("%s %q cannot be listed as a script", kind, id)
	}

	entries, err := scriptEntries(tbl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	if err := conversation.PopulateFromStaging(s, entries); err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return s, nil
}

// scriptEntries stages a script's actions. A script gives nested actions,
// or a flat legacy list under "staging".
func scriptEntries(tbl *lua.LTable) ([]staging.Entry, error) {
	base := getInt(tbl, "base", 0)
	if legacy := getTable(tbl, "staging"); legacy != nil {
		return stageLegacy(legacy, base)
	}
	actions := getTable(tbl, "actions")
	if actions == nil {
		return nil, nil
	}
	return stageActions(actions, base)
}
