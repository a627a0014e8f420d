package dialog

import (
	"reflect"
	"testing"
	"time"

	"github.com/nathoo/casecore/types"
)

type recordingView struct {
	frames []Frame
}

func (v *recordingView) Render(f Frame) { v.frames = append(v.frames, f) }

func (v *recordingView) last() Frame { return v.frames[len(v.frames)-1] }

type fakeAudio struct {
	sounds  []string
	voice   string
	playing bool
	stops   int
}

func (a *fakeAudio) PlaySound(id string)   { a.sounds = append(a.sounds, id) }
func (a *fakeAudio) PlayDialog(id string)  { a.voice = id; a.playing = true }
func (a *fakeAudio) StopDialog()           { a.playing = false; a.stops++ }
func (a *fakeAudio) IsDialogPlaying() bool { return a.playing }

type harness struct {
	clock    *ManualClock
	timer    *ManualTimer
	view     *recordingView
	audio    *fakeAudio
	player   *Player
	finished int
}

func newHarness(raw string, opts Options) *harness {
	h := &harness{
		clock: &ManualClock{T: time.Unix(0, 0)},
		timer: &ManualTimer{},
		view:  &recordingView{},
		audio: &fakeAudio{},
	}
	opts.OnFinished = func() { h.finished++ }
	h.player = NewPlayer(Parse(raw), opts, h.clock, h.timer, h.view, h.audio)
	return h
}

func (h *harness) advance(ms int) {
	h.clock.Advance(time.Duration(ms) * time.Millisecond)
	h.timer.Fire()
}

func TestSplitPause(t *testing.T) {
	tests := []struct {
		d, silent, audio int
	}{
		{600, 300, 300},
		{400, 160, 240},
		{500, 200, 300},
		{501, 201, 300},
		{0, 0, 0},
	}
	for _, tt := range tests {
		silent, audio := SplitPause(tt.d)
		if silent != tt.silent || audio != tt.audio {
			t.Errorf("SplitPause(%d) = (%d, %d), want (%d, %d)", tt.d, silent, audio, tt.silent, tt.audio)
		}
	}
}

func TestParse_StripsKnownTags(t *testing.T) {
	d := Parse("{emotion:Angry}Stop{pause:400} right{sound:objection} there!")
	if d.Text != "Stop right there!" {
		t.Errorf("Text = %q, want %q", d.Text, "Stop right there!")
	}
	if len(d.Events) != 3 {
		t.Fatalf("got %d events, want 3", len(d.Events))
	}
	p, ok := d.Events[1].(*Pause)
	if !ok || p.At != 4 || p.SilentMs != 160 || p.AudioMs != 240 {
		t.Errorf("Events[1] = %#v", d.Events[1])
	}
	if got := d.Sounds(); !reflect.DeepEqual(got, []string{"objection"}) {
		t.Errorf("Sounds() = %v", got)
	}
}

func TestParse_UnknownTagsStayLiteral(t *testing.T) {
	raw := "a{bogus}b{speed:x}c{mouth:maybe}d{unterminated"
	d := Parse(raw)
	if d.Text != raw {
		t.Errorf("Text = %q, want %q", d.Text, raw)
	}
	if len(d.Events) != 0 {
		t.Errorf("got %d events, want none", len(d.Events))
	}
}

func TestParse_PositionsCountRunes(t *testing.T) {
	d := Parse("Été{sound:x}!")
	if d.Len() != 4 {
		t.Errorf("Len() = %d, want 4", d.Len())
	}
	if d.Events[0].Position() != 3 {
		t.Errorf("sound position = %d, want 3", d.Events[0].Position())
	}
}

func TestEmotionTags(t *testing.T) {
	got := EmotionTags("{emotion:Sweating}Well...{otherEmotion:Smirk}")
	want := []EmotionTag{{Emotion: "Sweating"}, {Emotion: "Smirk", Other: true}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EmotionTags = %+v, want %+v", got, want)
	}
}

func TestHTMLLines_SpanCrossesLine(t *testing.T) {
	d := Parse("He{emphasis}llo\nWo{/emphasis}rld")
	if d.Text != "Hello\nWorld" {
		t.Fatalf("Text = %q", d.Text)
	}
	open := `<span style="color:` + EmphasisColor + `">`
	want := []string{
		"He" + open + "llo</span>",
		open + "Wo</span>rld",
	}
	if got := d.HTMLLines(-1); !reflect.DeepEqual(got, want) {
		t.Errorf("HTMLLines(-1) = %q, want %q", got, want)
	}
}

func TestHTMLLines_Cutoff(t *testing.T) {
	d := Parse("He{emphasis}llo\nWo{/emphasis}rld")
	open := `<span style="color:` + EmphasisColor + `">`

	tests := []struct {
		cutoff int
		want   []string
	}{
		{2, []string{"He"}},
		{4, []string{"He" + open + "ll</span>"}},
		{7, []string{"He" + open + "llo</span>", open + "W</span>"}},
	}
	for _, tt := range tests {
		if got := d.HTMLLines(tt.cutoff); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("HTMLLines(%d) = %q, want %q", tt.cutoff, got, tt.want)
		}
	}
}

func TestHTMLLines_EscapesText(t *testing.T) {
	d := Parse("a < b & c")
	if got := d.HTMLLines(-1)[0]; got != "a &lt; b &amp; c" {
		t.Errorf("HTMLLines = %q", got)
	}
}

func TestSegments(t *testing.T) {
	d := Parse("I {aside}think{/aside} so")
	got := d.Segments(-1)
	want := [][]Segment{{
		{Text: "I "},
		{Text: "think", Color: AsideColor},
		{Text: " so"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Segments = %+v, want %+v", got, want)
	}
}

func TestHTMLLines_InterleavedSpans(t *testing.T) {
	aside := `<span style="color:` + AsideColor + `">`
	emph := `<span style="color:` + EmphasisColor + `">`

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"aside closes first",
			"{aside}ab{emphasis}cd{/aside}ef{/emphasis}gh",
			[]string{aside + "ab" + emph + "cd</span></span>" + emph + "ef</span>gh"},
		},
		{
			"crosses line",
			"{aside}ab{emphasis}c\nd{/aside}ef{/emphasis}g",
			[]string{
				aside + "ab" + emph + "c</span></span>",
				aside + emph + "d</span></span>" + emph + "ef</span>g",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.text).HTMLLines(-1); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("HTMLLines(-1) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSegments_InterleavedSpans(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][]Segment
	}{
		{
			"aside closes first",
			"{aside}ab{emphasis}cd{/aside}ef{/emphasis}gh",
			[][]Segment{{
				{Text: "ab", Color: AsideColor},
				{Text: "cd", Color: EmphasisColor},
				{Text: "ef", Color: EmphasisColor},
				{Text: "gh"},
			}},
		},
		{
			"crosses line",
			"{aside}ab{emphasis}c\nd{/aside}ef{/emphasis}g",
			[][]Segment{
				{{Text: "ab", Color: AsideColor}, {Text: "c", Color: EmphasisColor}},
				{{Text: "d", Color: EmphasisColor}, {Text: "ef", Color: EmphasisColor}, {Text: "g"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.text).Segments(-1); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segments(-1) = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPlayer_RevealsAndStopsOnce(t *testing.T) {
	h := newHarness("Hi", Options{})
	h.player.Start()

	if h.player.Position() != 0 || !h.view.last().Talking {
		t.Fatalf("after start: pos=%d talking=%v", h.player.Position(), h.view.last().Talking)
	}
	h.advance(33)
	if h.player.Position() != 1 {
		t.Errorf("pos = %d, want 1", h.player.Position())
	}
	h.advance(40)
	if h.player.Phase() != Finished {
		t.Fatalf("phase = %v, want finished", h.player.Phase())
	}
	if h.view.last().Talking {
		t.Error("final frame should not be talking")
	}

	h.advance(100)
	h.player.Stop()
	if h.finished != 1 {
		t.Errorf("OnFinished called %d times, want 1", h.finished)
	}
	if h.timer.Stops() != 1 {
		t.Errorf("timer stopped %d times, want 1", h.timer.Stops())
	}
}

func TestPlayer_CarriesRemainder(t *testing.T) {
	h := newHarness("abcdef", Options{})
	h.player.Start()
	h.advance(20)
	h.advance(20)
	if h.player.Position() != 1 {
		t.Errorf("pos = %d after 40ms, want 1", h.player.Position())
	}
	h.advance(26)
	if h.player.Position() != 2 {
		t.Errorf("pos = %d after 66ms, want 2", h.player.Position())
	}
}

func TestPlayer_PauseDrainsAudioThenSilent(t *testing.T) {
	h := newHarness("A{pause:600}B", Options{})
	h.player.Start()

	h.advance(33)
	if h.player.Phase() != PausedForAudio {
		t.Fatalf("phase = %v, want audio-paused", h.player.Phase())
	}
	if h.view.last().Talking {
		t.Error("should not be talking during an audio pause")
	}

	h.advance(300)
	if h.player.Phase() != PausedForDialog {
		t.Fatalf("phase = %v, want paused", h.player.Phase())
	}

	h.advance(299)
	if h.player.Position() != 1 {
		t.Errorf("pos = %d during pause, want 1", h.player.Position())
	}
	h.advance(1)
	h.advance(33)
	if h.player.Phase() != Finished {
		t.Errorf("phase = %v, want finished", h.player.Phase())
	}
}

func TestPlayer_SpeedAndMouth(t *testing.T) {
	h := newHarness("{speed:10}{mouth:off}abc{mouth:on}d", Options{})
	h.player.Start()
	if h.view.last().Talking {
		t.Error("mouth off should suppress talking")
	}
	h.advance(30)
	if h.player.Position() != 3 {
		t.Errorf("pos = %d, want 3", h.player.Position())
	}
	if !h.view.last().Talking {
		t.Error("mouth on should resume talking")
	}
}

func TestPlayer_EmotionEventsFollowSpeaker(t *testing.T) {
	h := newHarness("{emotion:Angry}{otherEmotion:Smirk}Hi", Options{
		Speaker:          types.PositionRight,
		LeftCharacterID:  "Phoenix",
		LeftEmotionID:    "Normal",
		RightCharacterID: "Edgeworth",
		RightEmotionID:   "Normal",
	})
	h.player.Start()
	f := h.view.last()
	if f.RightEmotionID != "Angry" || f.LeftEmotionID != "Smirk" {
		t.Errorf("emotions = left %q right %q", f.LeftEmotionID, f.RightEmotionID)
	}
}

func TestPlayer_SoundFiresAtPosition(t *testing.T) {
	h := newHarness("ab{sound:gavel}c", Options{})
	h.player.Start()
	h.advance(33)
	if len(h.audio.sounds) != 0 {
		t.Errorf("sound fired early: %v", h.audio.sounds)
	}
	h.advance(33)
	if !reflect.DeepEqual(h.audio.sounds, []string{"gavel"}) {
		t.Errorf("sounds = %v", h.audio.sounds)
	}
}

func TestPlayer_WaitsForVoiceOver(t *testing.T) {
	h := newHarness("A", Options{VoiceOverID: "vo1"})
	h.player.Start()
	if h.audio.voice != "vo1" {
		t.Fatalf("voice = %q, want vo1", h.audio.voice)
	}
	h.advance(100)
	if !h.player.Playing() {
		t.Fatal("should keep playing while voice-over plays")
	}
	if !h.view.last().Talking {
		t.Error("should be talking while voice-over plays")
	}
	h.audio.playing = false
	h.advance(16)
	if h.player.Playing() {
		t.Error("should stop once voice-over ends")
	}
}

func TestPlayer_ExplicitStopIsIdempotent(t *testing.T) {
	h := newHarness("A long line", Options{VoiceOverID: "vo1"})
	h.player.Start()
	h.player.Stop()
	h.player.Stop()

	if h.audio.stops != 1 {
		t.Errorf("StopDialog called %d times, want 1", h.audio.stops)
	}
	if h.finished != 1 {
		t.Errorf("OnFinished called %d times, want 1", h.finished)
	}
	if h.timer.Running() {
		t.Error("timer still running")
	}
	if f := h.view.last(); f.Talking || !f.Finished {
		t.Errorf("final frame = %+v", f)
	}
}

func TestPlayer_Skip(t *testing.T) {
	h := newHarness("{sound:x}ab{emotion:Sad}c", Options{Speaker: types.PositionLeft})
	h.player.Start()
	h.audio.sounds = nil
	h.player.Skip()

	f := h.view.last()
	if f.Position != 3 || f.LeftEmotionID != "Sad" || !f.Finished {
		t.Errorf("after skip: %+v", f)
	}
	if len(h.audio.sounds) != 0 {
		t.Errorf("skip played sounds: %v", h.audio.sounds)
	}
}

func TestPlayer_EmptyTextFinishesImmediately(t *testing.T) {
	h := newHarness("", Options{})
	h.player.Start()
	if h.player.Playing() || h.finished != 1 {
		t.Errorf("playing=%v finished=%d", h.player.Playing(), h.finished)
	}
}
