package availability

import (
	"testing"

	"github.com/nathoo/casecore/engine/condition"
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/engine/state"
)

func testEncounter() *conversation.Encounter {
	enc := conversation.NewEncounter("office")
	enc.AddConversation(&conversation.Conversation{ID: "intro", EnabledAtStart: true})
	enc.AddConversation(&conversation.Conversation{ID: "motive"})
	enc.AddConversation(&conversation.Conversation{
		ID:             "alibi",
		EnabledAtStart: true,
		Unlock:         condition.Expr{Condition: &condition.EvidencePresent{EvidenceID: "receipt"}},
	})
	testimony := &conversation.Interrogation{}
	testimony.ID = "testimony"
	testimony.EnabledAtStart = true
	enc.AddInterrogation(testimony)
	return enc
}

func ids(ss []conversation.Script) []string {
	var out []string
	for _, s := range ss {
		out = append(out, s.Root().ID)
	}
	return out
}

func TestScripts_EnabledAtStart(t *testing.T) {
	got := ids(Scripts(testEncounter(), state.NewProgress(), nil))
	want := []string{"intro", "alibi", "testimony"}
	if len(got) != len(want) {
		t.Fatalf("Scripts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Scripts[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScripts_EnabledByProgress(t *testing.T) {
	p := state.NewProgress()
	p.EnabledConversations["office/motive"] = true
	got := ids(Scripts(testEncounter(), p, nil))
	if len(got) != 4 || got[1] != "motive" {
		t.Errorf("Scripts = %v, want motive second", got)
	}
}

func TestAvailable_Locked(t *testing.T) {
	enc := testEncounter()
	alibi, _ := enc.Conversations.Get("alibi")
	intro, _ := enc.Conversations.Get("intro")

	p := state.NewProgress()
	p.LockedConversations["office/alibi"] = true
	p.LockedConversations["office/intro"] = true

	if Available(enc, alibi.Root(), p, nil) {
		t.Error("alibi should be locked until the receipt is held")
	}
	state.AddEvidence(p, "receipt")
	if !Available(enc, alibi.Root(), p, nil) {
		t.Error("alibi should unlock once the receipt is held")
	}

	if Available(enc, intro, p, nil) {
		t.Error("intro has no unlock condition and should stay locked")
	}
	unlocks := func(key string) (condition.Expr, bool) {
		if key == "office/intro" {
			return condition.Expr{Condition: &condition.FlagSet{FlagID: "asked"}}, true
		}
		return condition.Expr{}, false
	}
	p.Flags["asked"] = true
	if !Available(enc, intro, p, unlocks) {
		t.Error("intro should unlock through the lock action's condition")
	}
}

func TestTopics(t *testing.T) {
	c := &conversation.Confrontation{}
	c.ID = "trial"
	c.Topics = []*conversation.Topic{
		{ID: "motive", EnabledAtStart: true},
		{ID: "weapon"},
		{ID: "witness"},
	}
	p := state.NewProgress()
	p.EnabledTopics["trial/witness"] = true

	got := Topics(c, p)
	if len(got) != 2 || got[0].ID != "motive" || got[1].ID != "witness" {
		var names []string
		for _, t := range got {
			names = append(names, t.ID)
		}
		t.Errorf("Topics = %v, want [motive witness]", names)
	}
}
