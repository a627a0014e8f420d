package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/casecore/engine"
	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/engine/conversation"
)

// writeCase writes Lua files into a fresh directory and returns it.
func writeCase(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoad_MinimalCase(t *testing.T) {
	cs, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cs.Info.Title != "Minimal Test Case" {
		t.Errorf("Title = %q, want %q", cs.Info.Title, "Minimal Test Case")
	}
	if cs.Info.StartEncounter != "office" {
		t.Errorf("StartEncounter = %q, want %q", cs.Info.StartEncounter, "office")
	}
	enc, ok := cs.Encounter("office")
	if !ok {
		t.Fatal("encounter 'office' not found")
	}
	hello, ok := enc.Conversations.Get("hello")
	if !ok {
		t.Fatal("conversation 'hello' not found")
	}
	if !hello.EnabledAtStart || hello.Name != "Say hello" {
		t.Errorf("hello = %+v", hello)
	}
	if len(hello.Actions) != 1 {
		t.Fatalf("hello has %d actions, want 1", len(hello.Actions))
	}
	d, ok := hello.Actions[0].(*action.ShowDialog)
	if !ok || d.Text != "Hello." {
		t.Errorf("action = %#v, want ShowDialog Hello.", hello.Actions[0])
	}
	// Prepare ran: the line carries the state it is shown in.
	if s, ok := d.CachedState(); !ok || s.LeftCharacterID != "Phoenix" {
		t.Errorf("CachedState = %+v, %v", s, ok)
	}
}

func TestLoad_FullCase(t *testing.T) {
	cs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Case metadata.
	if cs.Info.Author != "Tester" || cs.Info.Version != "1.0" {
		t.Errorf("Info = %+v", cs.Info)
	}
	if !strings.HasPrefix(cs.Info.Intro, "Episode 1") {
		t.Errorf("Intro = %q", cs.Info.Intro)
	}

	// Content.
	reg := cs.Registry
	if reg.Characters.Len() != 4 {
		t.Errorf("expected 4 characters, got %d", reg.Characters.Len())
	}
	if c, _ := reg.Characters.Get("Phoenix"); c.DefaultEmotion != "Normal" || len(c.Emotions) != 3 {
		t.Errorf("Phoenix = %+v", c)
	}
	if p, ok := reg.Partners.Get("maya"); !ok || p.CharacterID != "Maya" {
		t.Errorf("partner maya = %+v, %v", p, ok)
	}
	if l, _ := reg.Locations.Get("court"); l.EncounterID != "court" {
		t.Errorf("court location = %+v", l)
	}
	if got, _ := reg.Music.Get("cornered"); got != "music/cornered.ogg" {
		t.Errorf("Music(cornered) = %q", got)
	}
	if !reg.Flags.Has("found_receipt") || !reg.Sounds.Has("objection") {
		t.Error("flags and sounds should be declared")
	}

	office, _ := cs.Encounter("office")
	if office.OneShot == nil || office.OneShot.ID != "arrival" {
		t.Fatalf("OneShot = %+v", office.OneShot)
	}
	if _, ok := office.EvidenceConversations.Get("badge"); !ok {
		t.Error("evidence conversation for badge not found")
	}
	if got := office.Conversations.IDs(); len(got) != 4 || got[0] != "chat" {
		t.Errorf("conversations = %v", got)
	}

	// Notifications are folded into their action.
	var partner *action.SetPartner
	for _, a := range office.OneShot.Actions {
		if p, ok := a.(*action.SetPartner); ok {
			partner = p
		}
	}
	if partner == nil || partner.Notification == nil || partner.Notification.Text != "Maya is now your partner." {
		t.Errorf("SetPartner = %+v", partner)
	}

	// Unlock conditions from LockConversation are indexed.
	if _, ok := cs.Unlock("office/motive"); !ok {
		t.Error("office/motive should have an unlock condition")
	}

	court, _ := cs.Encounter("court")
	if _, ok := court.Interrogations.Get("testimony"); !ok {
		t.Error("interrogation 'testimony' not found")
	}
	rebuttal, ok := court.Confrontations.Get("rebuttal")
	if !ok {
		t.Fatal("confrontation 'rebuttal' not found")
	}
	if rebuttal.PlayerCharacterID != "Phoenix" || rebuttal.OpponentCharacterID != "Edgeworth" {
		t.Errorf("participants = %q vs %q", rebuttal.PlayerCharacterID, rebuttal.OpponentCharacterID)
	}
	if rebuttal.PlayerInitialHealth != 3 || rebuttal.OpponentInitialHealth != 2 {
		t.Errorf("health = %d/%d, want 3/2", rebuttal.PlayerInitialHealth, rebuttal.OpponentInitialHealth)
	}
	if len(rebuttal.Topics) != 2 || !rebuttal.Topics[0].EnabledAtStart || rebuttal.Topics[1].EnabledAtStart {
		t.Errorf("topics = %+v", rebuttal.Topics)
	}
}

func TestLoad_FullCasePlays(t *testing.T) {
	cs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	e := engine.New(cs, nil)
	e.Begin()
	for e.Runner != nil {
		e.Step("")
	}
	if e.Progress.PartnerID != "maya" {
		t.Errorf("PartnerID = %q, want maya", e.Progress.PartnerID)
	}

	result := e.Step("talk small talk")
	if !outputContains(result.Output, "We make a great team!") {
		t.Errorf("expected true branch, got %v", result.Output)
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/badrefs")
	if err == nil {
		t.Fatal("expected validation error")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	for _, want := range []string{
		`undefined encounter "missing"`,
		`undefined emotion "Angry"`,
		`undefined character "Godot"`,
		`undefined evidence "mask"`,
		`undefined conversation "ghost"`,
		`undefined location "moon"`,
	} {
		assertContains(t, ve.Errors, want)
	}
}

func TestInspect_ReturnsProblems(t *testing.T) {
	cs, ve, err := Inspect("testdata/badrefs")
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if cs == nil {
		t.Fatal("expected the case despite validation errors")
	}
	if len(ve.Errors) == 0 {
		t.Error("expected validation errors")
	}
}

func TestInspect_MissingPath(t *testing.T) {
	if _, _, err := Inspect(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	dir := writeCase(t, map[string]string{"case.lua": `Case {`})
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for bad syntax")
	}
}

func TestLoad_NoCaseDef_Fails(t *testing.T) {
	dir := writeCase(t, map[string]string{"case.lua": `Character "Phoenix" {}`})
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "no Case{} definition") {
		t.Errorf("err = %v, want missing Case", err)
	}
}

func TestLoad_NoLuaFiles_Fails(t *testing.T) {
	dir := writeCase(t, map[string]string{"notes.txt": "nothing"})
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	for _, src := range []string{
		`dofile("other.lua")`,
		`os.execute("true")`,
		`io.open("x")`,
		`math.randomseed(1)`,
	} {
		dir := writeCase(t, map[string]string{"case.lua": src})
		if _, err := Load(dir); err == nil {
			t.Errorf("Load(%s) should fail", src)
		}
	}
}

func TestLoad_DuplicateIDs_Fails(t *testing.T) {
	dir := writeCase(t, map[string]string{"case.lua": `
		Case { title = "Dup", start = "office" }
		Evidence "knife" {}
		Evidence "knife" {}
	`})
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), `duplicate evidence "knife"`) {
		t.Errorf("err = %v, want duplicate evidence", err)
	}
}

func TestLoad_SingleFile(t *testing.T) {
	cs, err := Load("testdata/minimal/case.lua")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cs.Info.Title != "Minimal Test Case" {
		t.Errorf("Title = %q", cs.Info.Title)
	}
}

func TestLoad_FileOrdering(t *testing.T) {
	// case.lua runs first and the rest alphabetically, so later files see
	// globals set by earlier ones.
	cs, err := Load("testdata/ordering")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cs.Info.Title != "Ordering Test" {
		t.Errorf("Title = %q", cs.Info.Title)
	}
	enc, _ := cs.Encounter("office")
	if enc.InitialLeftCharacterID != "Larry" {
		t.Errorf("left = %q, want Larry", enc.InitialLeftCharacterID)
	}
}

func TestLoad_LegacyStaging(t *testing.T) {
	dir := writeCase(t, map[string]string{"case.lua": `
		Case { title = "Legacy", start = "office" }
		Character "Phoenix" { emotions = { "Normal" } }
		Encounter "office" {
			conversations = {
				Conversation "old" {
					enabled = true,
					base = 10,
					staging = {
						{ tag = "BranchOnCondition", condition = FlagSet("met"), true_index = 11, false_index = 12 },
						{ tag = "ShowDialog", speaker = "left", text = "We met." },
						{ tag = "ShowDialog", speaker = "left", text = "Who are you?" },
						{ tag = "BranchIfFalse" },
					},
				},
			},
		}
	`})
	cs, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	enc, _ := cs.Encounter("office")
	old, _ := enc.Conversations.Get("old")
	if len(old.Actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(old.Actions))
	}
	br, ok := old.Actions[0].(*action.BranchOnCondition)
	if !ok {
		t.Fatalf("action = %T, want BranchOnCondition", old.Actions[0])
	}
	if len(br.True) != 1 || len(br.False) != 1 {
		t.Errorf("branches = %d/%d, want 1/1", len(br.True), len(br.False))
	}
}

func TestLoad_OneShotMustBeConversation(t *testing.T) {
	dir := writeCase(t, map[string]string{"case.lua": `
		Case { title = "Bad", start = "office" }
		Encounter "office" {
			one_shot = Interrogation "intro" {},
		}
	`})
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "must be a Conversation") {
		t.Errorf("err = %v, want kind error", err)
	}
}

func TestLoad_ParseErrorAborts(t *testing.T) {
	dir := writeCase(t, map[string]string{"case.lua": `
		Case { title = "Bad", start = "office" }
		Encounter "office" {
			conversations = {
				Conversation "c" {
					staging = {
						{ tag = "BeginMultipleChoice", options = { { text = "A", index = 1 } } },
						{ tag = "ShowDialog", text = "never closed" },
					},
				},
			},
		}
	`})
	_, err := Load(dir)
	var pe *conversation.ParseError
	if err == nil || !errors.As(err, &pe) {
		t.Errorf("err = %v, want *conversation.ParseError", err)
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"b.lua", "case.lua", "a.lua"})
	want := []string{"case.lua", "a.lua", "b.lua"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sortedLuaFiles = %v, want %v", got, want)
			break
		}
	}
}

func outputContains(output []string, substr string) bool {
	for _, line := range output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
