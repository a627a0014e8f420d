package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/casecore/engine"
	"github.com/nathoo/casecore/engine/audio"
	"github.com/nathoo/casecore/engine/dialog"
)

// tickMsg advances the stage identified by id.
type tickMsg struct {
	id int
}

// stage plays the pending dialog line character by character. It is the
// Player's view and keeps the last frame it was given.
type stage struct {
	id      int
	speaker string
	line    string // the line as it appears in the backlog
	dialog  *dialog.Dialog
	timer   *dialog.ManualTimer
	player  *dialog.Player
	frame   dialog.Frame
	done    bool
	logged  bool
}

func (s *stage) Render(f dialog.Frame) { s.frame = f }

// startedVoice forwards to the engine's audio. The runner has already
// started the line's voice-over by the time the stage plays it.
type startedVoice struct {
	audio.Service
}

func (startedVoice) PlayDialog(string) {}

// newStage starts playing the line of the engine's pending prompt, or
// returns nil when there is no line to play.
func newStage(eng *engine.Engine, id, msPerChar int, clock dialog.Clock) *stage {
	if eng.Runner == nil || eng.Runner.Prompt() == nil || eng.Runner.Prompt().Line == nil {
		return nil
	}
	pr := eng.Runner.Prompt()
	d := dialog.Parse(pr.Line.Text)
	s := &stage{
		id:      id,
		speaker: engine.SpeakerName(eng.Case.Registry, pr.Screen, pr.Line),
		dialog:  d,
		timer:   &dialog.ManualTimer{},
	}
	s.line = d.Text
	if s.speaker != "" {
		s.line = s.speaker + ": " + d.Text
	}

	// Emotion tags play out from the screen as it was before the line.
	screen := eng.Runner.Screen()
	s.player = dialog.NewPlayer(d, dialog.Options{
		Speaker:          pr.Line.Speaker,
		LeftCharacterID:  screen.LeftCharacterID,
		LeftEmotionID:    screen.LeftEmotionID,
		RightCharacterID: screen.RightCharacterID,
		RightEmotionID:   screen.RightEmotionID,
		VoiceOverID:      pr.Line.VoiceOverID,
		MsPerCharacter:   msPerChar,
		OnFinished:       func() { s.done = true },
	}, clock, s.timer, s, startedVoice{eng.Audio})
	s.player.Start()
	return s
}

// tick schedules the next tickMsg for the stage.
func (s *stage) tick() tea.Cmd {
	id := s.id
	return tea.Tick(dialog.TickInterval, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

// advance fires the player's timer and reports whether it is still playing.
func (s *stage) advance() bool {
	s.timer.Fire()
	return s.player.Playing()
}

// render draws the speaker and the revealed text in a box width wide.
func (s *stage) render(width int) string {
	var b strings.Builder
	if s.speaker != "" {
		b.WriteString(styleSpeaker.Render(s.speaker))
		if s.frame.Talking {
			b.WriteString(styleSystem.Render(" ..."))
		}
		b.WriteString("\n")
	}
	for i, line := range s.dialog.Segments(s.frame.Position) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderSegments(line))
	}
	if s.done {
		b.WriteString(styleSystem.Render(" >"))
	}
	return styleStage.Width(width).Render(b.String())
}

// renderSegments colors each segment of a line. Aside and emphasis spans
// carry their own colors; plain text uses the dialogue style.
func renderSegments(line []dialog.Segment) string {
	var b strings.Builder
	for _, seg := range line {
		if seg.Color == "" {
			b.WriteString(styleDialogue.Render(seg.Text))
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(seg.Color)).Render(seg.Text))
	}
	return b.String()
}
