package conversation

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/staging"
)

type f = map[string]any

func entry(tag staging.Tag, fields f) staging.Entry {
	return staging.New(tag, fields)
}

func boc(trueIndex, falseIndex int) staging.Entry {
	e := entry(staging.TagBranchOnCondition, f{"true_index": trueIndex, "false_index": falseIndex})
	e.Criterion = &staging.Criterion{Type: "flag_set", Value: "met"}
	return e
}

func sound(id string) staging.Entry {
	return entry(staging.TagPlaySound, f{"sound": id})
}

func build(t *testing.T, s Script, es ...staging.Entry) action.List {
	t.Helper()
	if err := PopulateFromStaging(s, staging.Reindex(es, 0)); err != nil {
		t.Fatalf("PopulateFromStaging: %v", err)
	}
	return s.Root().Actions
}

// kinds renders a list as kind names, with child lists in brackets.
func kinds(l action.List) []string {
	var out []string
	for _, a := range l {
		s := a.Kind().String()
		for _, b := range a.Branches() {
			s += fmt.Sprintf("[%s:%v]", b.Label, kinds(*b.Actions))
		}
		out = append(out, s)
	}
	return out
}

func sounds(l action.List) []string {
	var out []string
	for _, a := range l {
		if s, ok := a.(*action.PlaySound); ok {
			out = append(out, s.SoundID)
		}
	}
	return out
}

func TestPopulate_BranchOnConditionScenario(t *testing.T) {
	got := build(t, &Conversation{ID: "c"},
		boc(1, 2),
		entry(staging.TagSetFlag, f{"flag": "met"}),
		entry(staging.TagShowDialog, f{"speaker": "left", "text": "Hello."}),
		entry(staging.TagBranchIfFalse, f{"end_index": 3}),
	)
	if len(got) != 1 {
		t.Fatalf("got %d top-level actions, want 1: %v", len(got), kinds(got))
	}
	br, ok := got[0].(*action.BranchOnCondition)
	if !ok {
		t.Fatalf("top-level action = %T", got[0])
	}
	if len(br.True) != 1 || br.True[0].Kind() != action.KindSetFlag {
		t.Errorf("true = %v, want [SetFlag]", kinds(br.True))
	}
	if len(br.False) != 1 || br.False[0].Kind() != action.KindShowDialog {
		t.Errorf("false = %v, want [ShowDialog]", kinds(br.False))
	}
	if br.Condition.String() != `flag "met" is set` {
		t.Errorf("condition = %s", br.Condition)
	}
}

func TestPopulate_BranchOrderings(t *testing.T) {
	tests := []struct {
		name string
		src  []staging.Entry
	}{
		{"true first", []staging.Entry{
			boc(1, 3),
			entry(staging.TagSetFlag, f{"flag": "a"}),
			entry(staging.TagBranchIfTrue, f{"end_index": 5}),
			sound("x"),
			entry(staging.TagBranchIfFalse, f{"end_index": 4}),
			entry(staging.TagExitEncounter, nil),
		}},
		{"false first", []staging.Entry{
			boc(3, 1),
			sound("x"),
			entry(staging.TagBranchIfFalse, f{"end_index": 5}),
			entry(staging.TagSetFlag, f{"flag": "a"}),
			entry(staging.TagBranchIfTrue, f{"end_index": 4}),
			entry(staging.TagExitEncounter, nil),
		}},
	}
	want := []string{"BranchOnCondition[true:[SetFlag]][false:[PlaySound]]", "ExitEncounter"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(t, &Conversation{}, tt.src...)
			if !reflect.DeepEqual(kinds(got), want) {
				t.Errorf("tree = %v, want %v", kinds(got), want)
			}
		})
	}
}

func TestPopulate_BranchWithoutEndIndexEndsAtMarker(t *testing.T) {
	got := build(t, &Conversation{},
		boc(1, 2),
		sound("a"),
		sound("b"),
		entry(staging.TagBranchIfFalse, nil),
		sound("c"),
	)
	want := []string{"BranchOnCondition[true:[PlaySound]][false:[PlaySound]]", "PlaySound"}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("tree = %v, want %v", kinds(got), want)
	}
}

func TestPopulate_NestedBranchSkippedWhenFindingEnd(t *testing.T) {
	got := build(t, &Conversation{},
		boc(1, 3),
		entry(staging.TagSetFlag, f{"flag": "a"}),
		entry(staging.TagBranchIfTrue, nil),
		boc(4, 6),
		sound("inner-true"),
		entry(staging.TagBranchIfTrue, nil),
		entry(staging.TagPlayBgm, f{"bgm": "inner-false"}),
		entry(staging.TagBranchIfFalse, f{"end_index": 7}),
		entry(staging.TagBranchIfFalse, f{"end_index": 8}),
		entry(staging.TagExitEncounter, nil),
	)
	want := []string{
		"BranchOnCondition[true:[SetFlag]][false:[BranchOnCondition[true:[PlaySound]][false:[PlayBgm]]]]",
		"ExitEncounter",
	}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("tree = %v\nwant %v", kinds(got), want)
	}
}

func TestPopulate_EmptyBranch(t *testing.T) {
	got := build(t, &Conversation{},
		boc(1, -1),
		sound("a"),
		entry(staging.TagBranchIfTrue, f{"end_index": 2}),
		entry(staging.TagExitEncounter, nil),
	)
	want := []string{"BranchOnCondition[true:[PlaySound]][false:[]]", "ExitEncounter"}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("tree = %v, want %v", kinds(got), want)
	}
}

func TestPopulate_MissingBranchTerminator(t *testing.T) {
	err := PopulateFromStaging(&Conversation{}, staging.Reindex([]staging.Entry{boc(1, 2), sound("a"), sound("b")}, 0))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Index != 0 || pe.Tag != staging.TagBranchOnCondition {
		t.Errorf("ParseError = %+v", pe)
	}
}

func TestPopulate_BranchStartPastEnd(t *testing.T) {
	err := PopulateFromStaging(&Conversation{}, staging.Reindex([]staging.Entry{
		boc(1, 3),
		sound("a"),
		entry(staging.TagBranchIfTrue, nil),
		sound("b"),
		entry(staging.TagBranchIfFalse, f{"end_index": 2}),
		entry(staging.TagExitEncounter, nil),
	}, 0))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Index != 0 || pe.Tag != staging.TagBranchOnCondition {
		t.Errorf("ParseError = %+v", pe)
	}
}

func TestPopulate_MustPresentEvidenceOrderings(t *testing.T) {
	tests := []struct {
		correct, wrong, end int
		want                [3][]string
	}{
		{1, 2, 3, [3][]string{{"a"}, {"b"}, {"c"}}},
		{1, 3, 2, [3][]string{{"a"}, {"c"}, {"b"}}},
		{2, 1, 3, [3][]string{{"b"}, {"a"}, {"c"}}},
		{2, 3, 1, [3][]string{{"b"}, {"c"}, {"a"}}},
		{3, 1, 2, [3][]string{{"c"}, {"a"}, {"b"}}},
		{3, 2, 1, [3][]string{{"c"}, {"b"}, {"a"}}},
		{1, -1, 3, [3][]string{{"a", "b"}, nil, {"c"}}},
		{-1, 1, 2, [3][]string{nil, {"a"}, {"b", "c"}}},
		{3, -1, 1, [3][]string{{"c"}, nil, {"a", "b"}}},
		{2, 1, -1, [3][]string{{"b", "c"}, {"a"}, nil}},
		{-1, -1, 2, [3][]string{nil, nil, {"b", "c"}}},
		{-1, -1, -1, [3][]string{nil, nil, nil}},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("c=%d,w=%d,e=%d", tt.correct, tt.wrong, tt.end)
		t.Run(name, func(t *testing.T) {
			got := build(t, &Conversation{},
				entry(staging.TagBeginMustPresentEvidence, f{
					"correct_index": tt.correct, "wrong_index": tt.wrong, "end_requested_index": tt.end,
					"correct_evidence": "knife", "speaker": "right", "text": "Prove it!",
				}),
				sound("a"),
				sound("b"),
				sound("c"),
				entry(staging.TagEndMustPresentEvidence, nil),
				entry(staging.TagExitEncounter, nil),
			)
			if len(got) != 2 {
				t.Fatalf("tree = %v", kinds(got))
			}
			mpe := got[0].(*action.MustPresentEvidence)
			for k, l := range []action.List{mpe.Correct, mpe.Wrong, mpe.EndRequested} {
				if !reflect.DeepEqual(sounds(l), tt.want[k]) {
					t.Errorf("branch %d = %v, want %v", k, sounds(l), tt.want[k])
				}
			}
			if !mpe.IsCorrect("knife") || mpe.Text != "Prove it!" {
				t.Errorf("line/evidence not carried: %+v", mpe)
			}
		})
	}
}

func TestPopulate_NestedMustPresentEvidence(t *testing.T) {
	got := build(t, &Conversation{},
		entry(staging.TagBeginMustPresentEvidence, f{"correct_index": 1, "wrong_index": 5}),
		entry(staging.TagBeginMustPresentEvidence, f{"correct_index": 2, "wrong_index": 3}),
		sound("inner-correct"),
		sound("inner-wrong"),
		entry(staging.TagEndMustPresentEvidence, nil),
		sound("outer-wrong"),
		entry(staging.TagEndMustPresentEvidence, nil),
	)
	want := []string{
		"MustPresentEvidence[correct:[MustPresentEvidence[correct:[PlaySound]][wrong:[PlaySound]][end requested:[]]]][wrong:[PlaySound]][end requested:[]]",
	}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("tree = %v\nwant %v", kinds(got), want)
	}
}

func TestPopulate_UnmatchedBegin(t *testing.T) {
	err := PopulateFromStaging(&Conversation{}, staging.Reindex([]staging.Entry{
		entry(staging.TagBeginMultipleChoice, nil),
		sound("a"),
	}, 0))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}

func TestPopulate_MultipleChoice(t *testing.T) {
	mc := entry(staging.TagBeginMultipleChoice, nil)
	mc.Options = []staging.Option{{Text: "Ask", Index: 3}, {Text: "Leave", Index: 1}}
	got := build(t, &Conversation{},
		mc,
		entry(staging.TagExitEncounter, nil),
		entry(staging.TagExitMultipleChoice, nil),
		sound("ask"),
		entry(staging.TagExitMultipleChoice, nil),
		entry(staging.TagEndMultipleChoice, nil),
	)
	a := got[0].(*action.MultipleChoice)
	if a.Options[0].Text != "Ask" || !reflect.DeepEqual(kinds(a.Options[0].Actions), []string{"PlaySound", "ExitMultipleChoice"}) {
		t.Errorf("option 0 = %s %v", a.Options[0].Text, kinds(a.Options[0].Actions))
	}
	if a.Options[1].Text != "Leave" || !reflect.DeepEqual(kinds(a.Options[1].Actions), []string{"ExitEncounter", "ExitMultipleChoice"}) {
		t.Errorf("option 1 = %s %v", a.Options[1].Text, kinds(a.Options[1].Actions))
	}
}

func TestPopulate_NotificationFolding(t *testing.T) {
	got := build(t, &Conversation{},
		entry(staging.TagEnableEvidence, f{"evidence": "badge", "notify": true}),
		entry(staging.TagShowNotification, f{"text": "Badge added to the Court Record."}),
		entry(staging.TagSetPartner, f{"partner": "maya"}),
		entry(staging.TagShowNotification, f{"text": "Standalone."}),
	)
	want := []string{"EnableEvidence", "SetPartner", "ShowNotification"}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Fatalf("tree = %v, want %v", kinds(got), want)
	}
	n := got[0].(*action.EnableEvidence).Notification
	if n == nil || n.Text != "Badge added to the Court Record." {
		t.Errorf("notification = %+v", n)
	}
	if got[1].(*action.SetPartner).Notification != nil {
		t.Error("SetPartner without notify should have no notification")
	}
}

func TestPopulate_NotificationMissing(t *testing.T) {
	for _, tag := range []staging.Tag{staging.TagEnableEvidence, staging.TagUpdateEvidence, staging.TagSetPartner} {
		err := PopulateFromStaging(&Conversation{}, staging.Reindex([]staging.Entry{
			entry(tag, f{"notify": true}),
			sound("a"),
		}, 0))
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Tag != tag {
			t.Errorf("%s: err = %v, want *ParseError", tag, err)
		}
	}
}

func TestPopulate_UnknownTagsDropped(t *testing.T) {
	got := build(t, &Conversation{},
		entry("Teleport", nil),
		sound("a"),
		entry(staging.TagExitInterrogationRepeat, nil),
		entry(staging.TagSetHealth, f{"player": 5}),
	)
	if !reflect.DeepEqual(kinds(got), []string{"PlaySound"}) {
		t.Errorf("tree = %v", kinds(got))
	}
}

func TestPopulate_BaseOffset(t *testing.T) {
	src := staging.Reindex([]staging.Entry{
		boc(11, 12),
		sound("t"),
		sound("f"),
		entry(staging.TagBranchIfFalse, f{"end_index": 13}),
	}, 10)
	c := &Conversation{}
	if err := PopulateFromStaging(c, src); err != nil {
		t.Fatal(err)
	}
	br := c.Actions[0].(*action.BranchOnCondition)
	if !reflect.DeepEqual(sounds(br.True), []string{"t"}) || !reflect.DeepEqual(sounds(br.False), []string{"f"}) {
		t.Errorf("true=%v false=%v", sounds(br.True), sounds(br.False))
	}
}

func TestPopulate_Interrogation(t *testing.T) {
	si := entry(staging.TagBeginShowInterrogation, f{
		"press_index": 2, "wrong_evidence_index": 4, "end_requested_index": -1,
		"speaker": "right", "text": "I saw him.",
	})
	si.Evidence = []staging.EvidenceStart{{EvidenceID: "knife", Index: 3}}

	c := &Interrogation{}
	got := build(t, c,
		entry(staging.TagBeginInterrogationRepeat, nil),
		si,
		entry(staging.TagShowDialog, f{"speaker": "left", "text": "Are you sure?"}),
		entry(staging.TagSetFlag, f{"flag": "contradiction"}),
		sound("buzzer"),
		entry(staging.TagEndShowInterrogation, nil),
		entry(staging.TagExitInterrogationRepeat, nil),
		entry(staging.TagEndInterrogationRepeat, nil),
	)
	want := []string{
		"InterrogationRepeat[repeat:[ShowInterrogation[press:[ShowDialog]][present knife:[SetFlag]][wrong:[PlaySound]][end requested:[]] ExitInterrogationRepeat]]",
	}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("tree = %v\nwant %v", kinds(got), want)
	}
}

func TestPopulate_ConfrontationContainerTags(t *testing.T) {
	c := &Confrontation{}
	got := build(t, c,
		entry(staging.TagSetParticipants, f{"player": "Phoenix", "opponent": "Edgeworth"}),
		entry(staging.TagSetIconOffset, f{"player_offset": 12, "opponent_offset": -4}),
		entry(staging.TagSetHealth, f{"player": 5, "opponent": 3}),
		entry(staging.TagEnableTopic, f{"topic": "motive"}),
	)
	if !reflect.DeepEqual(kinds(got), []string{"EnableTopic"}) {
		t.Errorf("tree = %v", kinds(got))
	}
	if c.PlayerCharacterID != "Phoenix" || c.OpponentCharacterID != "Edgeworth" {
		t.Errorf("participants = %q/%q", c.PlayerCharacterID, c.OpponentCharacterID)
	}
	if c.PlayerIconOffset != 12 || c.OpponentIconOffset != -4 {
		t.Errorf("offsets = %d/%d", c.PlayerIconOffset, c.OpponentIconOffset)
	}
	if c.PlayerInitialHealth != 5 || c.OpponentInitialHealth != 3 {
		t.Errorf("health = %d/%d", c.PlayerInitialHealth, c.OpponentInitialHealth)
	}
}

func TestPopulate_ConfrontationTopicSelection(t *testing.T) {
	ts := entry(staging.TagBeginConfrontationTopicSelection, f{"initial_index": 1, "player_defeated_index": 5})
	ts.Topics = []staging.TopicStart{
		{ID: "motive", Name: "The motive", Enabled: true, Index: 2},
		{ID: "weapon", Name: "The weapon", Index: 3},
	}
	c := &Confrontation{}
	got := build(t, c,
		ts,
		sound("intro"),
		sound("motive"),
		sound("weapon"),
		entry(staging.TagEnableTopic, f{"topic": "weapon"}),
		entry(staging.TagRestartConfrontation, nil),
		entry(staging.TagEndConfrontationTopicSelection, nil),
	)
	sel := got[0].(*action.ConfrontationTopicSelection)
	if !reflect.DeepEqual(sounds(sel.Initial), []string{"intro"}) {
		t.Errorf("initial = %v", kinds(sel.Initial))
	}
	if !reflect.DeepEqual(kinds(sel.PlayerDefeated), []string{"RestartConfrontation"}) {
		t.Errorf("player defeated = %v", kinds(sel.PlayerDefeated))
	}
	if len(c.Topics) != 2 {
		t.Fatalf("got %d topics, want 2", len(c.Topics))
	}
	weapon, ok := c.Topic("weapon")
	if !ok {
		t.Fatal("weapon topic missing")
	}
	if weapon.EnabledAtStart || !reflect.DeepEqual(kinds(weapon.Actions), []string{"PlaySound", "EnableTopic"}) {
		t.Errorf("weapon topic = %+v %v", weapon, kinds(weapon.Actions))
	}
}

func TestPopulate_ConfrontationTopicsNotDuplicated(t *testing.T) {
	ts := entry(staging.TagBeginConfrontationTopicSelection, f{"initial_index": 1})
	ts.Topics = []staging.TopicStart{
		{ID: "motive", Name: "The motive", Index: 2},
		{ID: "weapon", Name: "The weapon", Index: 3},
	}
	src := staging.Reindex([]staging.Entry{
		ts,
		sound("intro"),
		sound("motive"),
		sound("weapon"),
		entry(staging.TagEndConfrontationTopicSelection, nil),
	}, 0)

	c := &Confrontation{}
	for n := 0; n < 2; n++ {
		var list action.List
		if err := c.PopulateActionsFromStaging(&list, src, 0); err != nil {
			t.Fatalf("build %d: %v", n, err)
		}
	}
	if len(c.Topics) != 2 {
		t.Fatalf("got %d topics, want 2", len(c.Topics))
	}
	if c.Topics[0].ID != "motive" || c.Topics[1].ID != "weapon" {
		t.Errorf("topics = %s, %s", c.Topics[0].ID, c.Topics[1].ID)
	}
}

// The legacy format has no dedicated restart-decision tag; a confrontation
// multiple choice offering exactly these two option texts stands for one.
func TestPopulate_RestartDecisionOptionTexts(t *testing.T) {
	if RestartOptionText != "Try again" || GiveUpOptionText != "Give up" {
		t.Fatalf("option texts changed: %q / %q", RestartOptionText, GiveUpOptionText)
	}

	choice := func(a, b string) staging.Entry {
		e := entry(staging.TagBeginMultipleChoice, nil)
		e.Options = []staging.Option{{Text: a, Index: 1}, {Text: b, Index: 2}}
		return e
	}
	tests := []struct {
		name   string
		script Script
		choice staging.Entry
		want   action.Kind
	}{
		{"confrontation", &Confrontation{}, choice("Try again", "Give up"), action.KindRestartDecision},
		{"confrontation reversed", &Confrontation{}, choice("Give up", "Try again"), action.KindRestartDecision},
		{"different case", &Confrontation{}, choice("Try Again", "Give up"), action.KindMultipleChoice},
		{"plain conversation", &Conversation{}, choice("Try again", "Give up"), action.KindMultipleChoice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(t, tt.script,
				tt.choice,
				entry(staging.TagRestartConfrontation, nil),
				entry(staging.TagEndCase, nil),
				entry(staging.TagEndMultipleChoice, nil),
			)
			if got[0].Kind() != tt.want {
				t.Fatalf("kind = %s, want %s", got[0].Kind(), tt.want)
			}
			if rd, ok := got[0].(*action.RestartDecision); ok {
				restart, giveUp := kinds(rd.Restart), kinds(rd.GiveUp)
				if tt.choice.Options[0].Text == RestartOptionText {
					if !reflect.DeepEqual(restart, []string{"RestartConfrontation"}) || !reflect.DeepEqual(giveUp, []string{"EndCase"}) {
						t.Errorf("restart=%v giveUp=%v", restart, giveUp)
					}
				} else if !reflect.DeepEqual(giveUp, []string{"RestartConfrontation"}) || !reflect.DeepEqual(restart, []string{"EndCase"}) {
					t.Errorf("restart=%v giveUp=%v", restart, giveUp)
				}
			}
		})
	}
}

func TestSplitRanges(t *testing.T) {
	got := splitRanges([]int{5, -1, 2}, 9)
	want := []span{{5, 9}, {0, 0}, {2, 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitRanges = %v, want %v", got, want)
	}
}
