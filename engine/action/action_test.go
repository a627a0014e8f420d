package action

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nathoo/casecore/engine/audio"
	"github.com/nathoo/casecore/engine/condition"
	"github.com/nathoo/casecore/engine/state"
	"github.com/nathoo/casecore/types"
	"gopkg.in/yaml.v3"
)

func sampleTree() List {
	return List{
		&CharacterChange{Position: types.PositionLeft, CharacterID: "Phoenix", EmotionID: "Normal"},
		&BranchOnCondition{
			Condition: condition.Expr{Condition: &condition.FlagSet{FlagID: "met"}},
			True: List{
				&ShowDialog{Line: Line{Speaker: types.PositionLeft, Text: "We meet again.{sound:gavel}", VoiceOverID: "vo1"}},
			},
			False: List{
				&SetFlag{FlagID: "met", Value: true},
				&MultipleChoice{Options: []Option{
					{Text: "Ask", Actions: List{&PlayBgm{BgmID: "trial"}, &ExitMultipleChoice{}}},
					{Text: "Leave", Actions: List{&ExitEncounter{}}},
				}},
			},
		},
		&EnableEvidence{EvidenceID: "badge", Notification: &Notification{Text: "Badge added."}},
		&PlaySound{SoundID: "objection"},
	}
}

func TestKinds_AreExhaustive(t *testing.T) {
	ks := Kinds()
	if len(ks) != 43 {
		t.Fatalf("got %d kinds, want 43", len(ks))
	}
	for _, k := range ks {
		a := New(k)
		if a == nil {
			t.Errorf("New(%s) = nil", k)
			continue
		}
		if a.Kind() != k {
			t.Errorf("New(%s).Kind() = %s", k, a.Kind())
		}
		if got, ok := KindByName(k.String()); !ok || got != k {
			t.Errorf("KindByName(%q) = %v, %v", k.String(), got, ok)
		}
		if !strings.HasSuffix(k.ElementName(), "Action") {
			t.Errorf("ElementName(%s) = %q", k, k.ElementName())
		}
		cp := a.Clone()
		if cp == a || cp.Kind() != k {
			t.Errorf("Clone of %s returned %T (same pointer: %v)", k, cp, cp == a)
		}
	}
}

func TestClone_IsDeep(t *testing.T) {
	orig := sampleTree()
	cp := orig.Clone()

	br := cp[1].(*BranchOnCondition)
	br.True[0].(*ShowDialog).Text = "changed"
	br.Condition.Condition.(*condition.FlagSet).FlagID = "changed"
	br.False[1].(*MultipleChoice).Options[0].Actions = nil
	cp[2].(*EnableEvidence).Notification.Text = "changed"

	ob := orig[1].(*BranchOnCondition)
	if ob.True[0].(*ShowDialog).Text == "changed" {
		t.Error("dialog text shared with clone")
	}
	if ob.Condition.String() != `flag "met" is set` {
		t.Errorf("condition = %s", ob.Condition)
	}
	if len(ob.False[1].(*MultipleChoice).Options[0].Actions) != 2 {
		t.Error("option actions shared with clone")
	}
	if orig[2].(*EnableEvidence).Notification.Text != "Badge added." {
		t.Error("notification shared with clone")
	}
}

func TestBranches_Order(t *testing.T) {
	tests := []struct {
		a    Action
		want []string
	}{
		{&BranchOnCondition{}, []string{"true", "false"}},
		{&MustPresentEvidence{}, []string{"correct", "wrong", "end requested"}},
		{&InterrogationRepeat{}, []string{"repeat"}},
		{&ConfrontationTopicSelection{}, []string{"initial", "player defeated"}},
		{&RestartDecision{}, []string{"restart", "give up"}},
		{&ShowInterrogation{Evidence: []EvidenceBranch{{EvidenceID: "knife"}}}, []string{"press", "present knife", "wrong", "end requested"}},
		{&MultipleChoice{Options: []Option{{Text: "A"}, {Text: "B"}}}, []string{"A", "B"}},
		{&SetFlag{}, nil},
	}
	for _, tt := range tests {
		var got []string
		for _, b := range tt.a.Branches() {
			got = append(got, b.Label)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s branches = %v, want %v", tt.a.Kind(), got, tt.want)
		}
	}
}

func TestList_YAMLRoundTrip(t *testing.T) {
	orig := sampleTree()
	out, err := yaml.Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "BranchOnConditionAction:") {
		t.Errorf("missing element name in:\n%s", out)
	}

	var back List
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	again, err := yaml.Marshal(back)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(out) {
		t.Errorf("second encoding differs:\n%s\nvs\n%s", again, out)
	}

	br := back[1].(*BranchOnCondition)
	if len(br.True) != 1 || len(br.False) != 2 {
		t.Errorf("branch sizes = %d/%d, want 1/2", len(br.True), len(br.False))
	}
}

func TestList_YAMLProbeOrder(t *testing.T) {
	src := `
- ShowDialogAction: {speakerPosition: left, text: hi}
  SetFlagAction: {flag: x}
- PauseBgmAction:
`
	var l List
	if err := yaml.Unmarshal([]byte(src), &l); err != nil {
		t.Fatal(err)
	}
	if l[0].Kind() != KindSetFlag {
		t.Errorf("first entry decoded as %s, want SetFlag", l[0].Kind())
	}
	if !l[0].(*SetFlag).Value {
		t.Error("SetFlag should default to setting the flag")
	}
	if l[1].Kind() != KindPauseBgm {
		t.Errorf("second entry decoded as %s", l[1].Kind())
	}
}

func TestList_YAMLUnknownElement(t *testing.T) {
	var l List
	err := yaml.Unmarshal([]byte("- TeleportAction: {}\n"), &l)
	if err == nil {
		t.Fatal("expected error for unknown element")
	}
}

func TestPath_AtAndWalk(t *testing.T) {
	tree := sampleTree()

	a, ok := At(tree, Root(1).Child(1, 1).Child(0, 1))
	if !ok || a.Kind() != KindExitMultipleChoice {
		t.Fatalf("At = %v, %v", a, ok)
	}
	if _, ok := At(tree, Root(1).Child(2, 0)); ok {
		t.Error("expected missing branch to fail")
	}
	if _, ok := At(tree, Root(9)); ok {
		t.Error("expected out-of-range index to fail")
	}

	var visited []string
	Walk(tree, func(p Path, a Action) {
		got, ok := At(tree, p)
		if !ok || got != a {
			t.Errorf("path %s does not resolve to visited action", p)
		}
		visited = append(visited, a.Kind().String())
	})
	want := []string{
		"CharacterChange", "BranchOnCondition", "ShowDialog", "SetFlag",
		"MultipleChoice", "PlayBgm", "ExitMultipleChoice", "ExitEncounter",
		"EnableEvidence", "PlaySound",
	}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("visit order = %v, want %v", visited, want)
	}
}

func TestReplace_KeepsCachedState(t *testing.T) {
	tree := sampleTree()
	p := Root(1).Child(0, 0)
	target, _ := At(tree, p)
	cached := state.State{LeftCharacterID: "Phoenix"}
	target.SetCachedState(cached)

	edit := target.Clone().(*ShowDialog)
	edit.Text = "Edited."
	edit.SetCachedState(state.State{})
	if !Replace(tree, p, edit) {
		t.Fatal("Replace failed")
	}

	got, _ := At(tree, p)
	if got != target {
		t.Error("Replace should update in place")
	}
	if got.(*ShowDialog).Text != "Edited." {
		t.Errorf("Text = %q", got.(*ShowDialog).Text)
	}
	if s, ok := got.CachedState(); !ok || s != cached {
		t.Errorf("cached state = %v, %v", s, ok)
	}
}

func TestCopyProperties_AcrossKindsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	CopyProperties(&SetFlag{}, &PlaySound{})
}

func TestPreloadAudio(t *testing.T) {
	s := &audio.Silent{}
	PreloadAudio(sampleTree(), s)

	if got := s.Preloaded(audio.Sound); !reflect.DeepEqual(got, []string{"gavel", "objection"}) {
		t.Errorf("sounds = %v", got)
	}
	if got := s.Preloaded(audio.Bgm); !reflect.DeepEqual(got, []string{"trial"}) {
		t.Errorf("bgm = %v", got)
	}
	if got := s.Preloaded(audio.Voice); !reflect.DeepEqual(got, []string{"vo1"}) {
		t.Errorf("voice = %v", got)
	}
}
