package engine

import (
	"strings"
	"testing"

	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/engine/audio"
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/engine/save"
	"github.com/nathoo/casecore/engine/state"
	"github.com/nathoo/casecore/types"
)

// testGame builds a small case: an office with a first-visit scene, two
// conversations and an evidence conversation, and a lobby reached by
// leaving the office.
func testGame() *Case {
	reg := testRegistry()
	reg.Locations.Add("office", &content.Location{ID: "office", Name: "Wright & Co. Law Offices", EncounterID: "office"})
	reg.Locations.Add("lobby", &content.Location{ID: "lobby", Name: "Courthouse Lobby", EncounterID: "lobby"})

	cs := NewCase(types.CaseInfo{Title: "Test", StartEncounter: "office", Intro: "Chapter 1"}, reg)

	office := conversation.NewEncounter("office")
	office.InitialLeftCharacterID = "Phoenix"
	office.SetOneShot(&conversation.Conversation{ID: "arrival", Actions: action.List{
		say("Another day."),
		&action.EnableEvidence{EvidenceID: "badge"},
	}})
	office.AddConversation(&conversation.Conversation{ID: "intro", Name: "Introductions", EnabledAtStart: true, Actions: action.List{
		say("I'm a lawyer."),
		&action.EnableConversation{ConversationID: "leave"},
	}})
	office.AddConversation(&conversation.Conversation{ID: "leave", Name: "Head to court", Actions: action.List{
		&action.MoveToLocation{LocationID: "lobby"},
	}})
	office.AddEvidenceConversation("badge", &conversation.Conversation{ID: "about-badge", Actions: action.List{
		say("My pride and joy."),
	}})
	cs.AddEncounter(office)

	lobby := conversation.NewEncounter("lobby")
	lobby.SetOneShot(&conversation.Conversation{ID: "verdict", Actions: action.List{
		&action.CharacterChange{Position: types.PositionRight, CharacterID: "Edgeworth"},
		&action.ShowDialog{Line: action.Line{Speaker: types.PositionRight, Text: "{emotion:Smirk}You win."}},
		&action.EndCase{CompletesCase: true},
	}})
	cs.AddEncounter(lobby)

	cs.Prepare()
	return cs
}

func outputContains(output []string, substr string) bool {
	for _, line := range output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestBegin_RunsFirstVisit(t *testing.T) {
	e := New(testGame(), nil)
	if e.Progress.Location != "office" {
		t.Errorf("Location = %q, want office", e.Progress.Location)
	}
	result := e.Begin()

	if !outputContains(result.Output, "Chapter 1") {
		t.Errorf("expected intro, got %v", result.Output)
	}
	if !outputContains(result.Output, "Phoenix Wright: Another day.") {
		t.Errorf("expected first line, got %v", result.Output)
	}
}

func TestStep_ContinueFinishesScript(t *testing.T) {
	e := New(testGame(), nil)
	e.Begin()
	result := e.Step("")

	if !outputContains(result.Output, "Attorney's Badge added to the Court Record.") {
		t.Errorf("expected evidence message, got %v", result.Output)
	}
	if !outputContains(result.Output, "1. Introductions") {
		t.Errorf("expected conversation list, got %v", result.Output)
	}
	if e.Runner != nil {
		t.Error("runner should be cleared")
	}

	// The first-visit scene runs only once.
	e.enter(&types.Result{})
	if e.Runner != nil {
		t.Error("first visit should not run twice")
	}
}

func TestStep_TalkAndUnlock(t *testing.T) {
	e := New(testGame(), nil)
	e.Begin()
	e.Step("")

	result := e.Step("talk about introductions")
	if !outputContains(result.Output, "I'm a lawyer.") {
		t.Fatalf("expected dialog, got %v", result.Output)
	}
	result = e.Step("next")
	if !outputContains(result.Output, "2. Head to court") {
		t.Errorf("expected unlocked conversation, got %v", result.Output)
	}
}

func TestStep_TalkUnknown(t *testing.T) {
	e := New(testGame(), nil)
	e.Begin()
	e.Step("")

	result := e.Step("talk about the weather")
	if !outputContains(result.Output, "no conversation matches") {
		t.Errorf("expected not found, got %v", result.Output)
	}
	result = e.Step("talk")
	if !outputContains(result.Output, "Talk about what?") {
		t.Errorf("expected prompt, got %v", result.Output)
	}
}

func TestStep_PresentEvidenceConversation(t *testing.T) {
	e := New(testGame(), nil)
	e.Begin()
	e.Step("")

	result := e.Step("present badge")
	if !outputContains(result.Output, "My pride and joy.") {
		t.Errorf("expected evidence conversation, got %v", result.Output)
	}
}

func TestStep_PresentNotHeld(t *testing.T) {
	e := New(testGame(), nil)
	e.Begin()
	e.Step("")

	result := e.Step("present knife")
	if !outputContains(result.Output, "no evidence matches") {
		t.Errorf("expected not held, got %v", result.Output)
	}
}

func TestStep_CourtRecord(t *testing.T) {
	e := New(testGame(), nil)
	result := e.Step("court record")
	if !outputContains(result.Output, "The Court Record is empty.") {
		t.Errorf("expected empty record, got %v", result.Output)
	}

	state.AddEvidence(e.Progress, "knife")
	result = e.Step("evidence")
	if !outputContains(result.Output, "1. Kitchen Knife - Found at the scene.") {
		t.Errorf("expected knife, got %v", result.Output)
	}
}

func TestStep_DialogRejectsOtherCommands(t *testing.T) {
	e := New(testGame(), nil)
	e.Begin()
	result := e.Step("press")
	if !outputContains(result.Output, "Press enter to continue.") {
		t.Errorf("expected hint, got %v", result.Output)
	}
	if e.Runner == nil || e.Runner.Prompt() == nil {
		t.Error("prompt should still be pending")
	}
}

func TestStep_MoveRunsNextEncounterAndEndsCase(t *testing.T) {
	e := New(testGame(), nil)
	e.Begin()
	e.Step("")
	e.Step("talk introductions")
	e.Step("")

	result := e.Step("talk court")
	if !outputContains(result.Output, "Moved to Courthouse Lobby.") {
		t.Errorf("expected move message, got %v", result.Output)
	}
	if !outputContains(result.Output, "Miles Edgeworth: You win.") {
		t.Errorf("expected lobby scene, got %v", result.Output)
	}
	if e.Encounter.ID != "lobby" || e.Progress.Location != "lobby" {
		t.Errorf("encounter = %s, location = %s, want lobby", e.Encounter.ID, e.Progress.Location)
	}

	result = e.Step("")
	if !outputContains(result.Output, "Case closed.") {
		t.Errorf("expected case closed, got %v", result.Output)
	}
	if !e.Ended() || !e.Progress.CaseCompleted {
		t.Error("case should be over and completed")
	}

	result = e.Step("look")
	if len(result.Output) != 1 || result.Output[0] != GameOverMessage {
		t.Errorf("Output = %v, want game over", result.Output)
	}
}

func TestStep_EmptyInputWhileIdle(t *testing.T) {
	e := New(testGame(), nil)
	e.Begin()
	e.Step("")
	result := e.Step("   ")
	if !outputContains(result.Output, "What do you want to do?") {
		t.Errorf("expected prompt, got %v", result.Output)
	}
}

func TestStep_CommandLog(t *testing.T) {
	e := New(testGame(), nil)
	e.Begin()
	e.Step("")
	e.Step("look")
	if got := e.Progress.CommandLog; len(got) != 2 || got[1] != "look" {
		t.Errorf("CommandLog = %v", got)
	}
}

func TestSaveRestore(t *testing.T) {
	cs := testGame()
	e := New(cs, nil)
	e.Begin()
	e.Step("")
	e.Step("talk introductions")
	e.Step("")

	data, err := e.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	sd, err := save.Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	e2 := New(cs, nil)
	e2.Restore(sd)
	if e2.Encounter.ID != "office" {
		t.Errorf("encounter = %s, want office", e2.Encounter.ID)
	}
	if !state.HasEvidence(e2.Progress, "badge") {
		t.Error("badge should be restored")
	}
	if !e2.Progress.EnabledConversations["office/leave"] {
		t.Error("office/leave should be restored")
	}
	result := e2.Step("look")
	if !outputContains(result.Output, "Head to court") {
		t.Errorf("expected restored conversation list, got %v", result.Output)
	}
}

func TestNew_PreloadsAudio(t *testing.T) {
	cs := testGame()
	office, _ := cs.Encounter("office")
	intro, _ := office.Conversations.Get("intro")
	intro.Actions = append(intro.Actions, &action.PlayBgm{BgmID: "trial"})

	au := &audio.Silent{}
	New(cs, au)
	if got := au.Preloaded(audio.Bgm); len(got) != 1 || got[0] != "trial" {
		t.Errorf("Preloaded(bgm) = %v, want [trial]", got)
	}
}

func TestSpeakerName(t *testing.T) {
	reg := testRegistry()
	s := state.State{LeftCharacterID: "Phoenix"}
	tests := []struct {
		line action.Line
		want string
	}{
		{action.Line{Speaker: types.PositionLeft}, "Phoenix Wright"},
		{action.Line{Speaker: types.PositionRight}, ""},
		{action.Line{Speaker: types.PositionOffscreen, CharacterID: "Edgeworth"}, "Miles Edgeworth"},
	}
	for _, tt := range tests {
		if got := SpeakerName(reg, s, &tt.line); got != tt.want {
			t.Errorf("SpeakerName(%+v) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestCase_UnlockFromLockAction(t *testing.T) {
	c := &conversation.Conversation{ID: "intro", EnabledAtStart: true, Actions: action.List{
		&action.LockConversation{ConversationID: "motive", Unlock: flagSet("found")},
	}}
	cs, _, _ := testCase(c)
	cond, ok := cs.Unlock("office/motive")
	if !ok || cond.Condition == nil {
		t.Fatal("Unlock(office/motive) should be indexed")
	}
	if _, ok := cs.Unlock("office/intro"); ok {
		t.Error("Unlock(office/intro) should not exist")
	}
}

func TestCase_EncounterAt(t *testing.T) {
	cs := testGame()
	if enc, ok := cs.EncounterAt("lobby"); !ok || enc.ID != "lobby" {
		t.Errorf("EncounterAt(lobby) = %v, %v", enc, ok)
	}
	if _, ok := cs.EncounterAt("jail"); ok {
		t.Error("EncounterAt(jail) should fail")
	}
	if loc, ok := cs.LocationOf("office"); !ok || loc != "office" {
		t.Errorf("LocationOf(office) = %q, %v", loc, ok)
	}
}
