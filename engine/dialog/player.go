package dialog

import (
	"time"

	"github.com/nathoo/casecore/types"
)

const (
	// TickInterval is how often a playing dialog is advanced.
	TickInterval = 16 * time.Millisecond

	// DefaultMsPerCharacter is the reveal interval when no speed is set.
	DefaultMsPerCharacter = 33
)

// Audio is the sound service a dialog plays through.
type Audio interface {
	PlaySound(id string)
	PlayDialog(id string)
	StopDialog()
	IsDialogPlaying() bool
}

// Frame is what a View is asked to show.
type Frame struct {
	LeftCharacterID  string
	LeftEmotionID    string
	RightCharacterID string
	RightEmotionID   string
	Position         int
	Lines            []string // HTML, one per line of visible text
	Talking          bool
	Finished         bool
}

// View receives frames as a dialog plays.
type View interface {
	Render(f Frame)
}

// Phase is the playback state of a Player.
type Phase int

const (
	Idle Phase = iota
	Playing
	PausedForDialog
	PausedForAudio
	Finished
)

var phaseNames = [...]string{"idle", "playing", "paused", "audio-paused", "finished"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Options configures a Player.
type Options struct {
	Speaker          types.Position
	LeftCharacterID  string
	LeftEmotionID    string
	RightCharacterID string
	RightEmotionID   string
	VoiceOverID      string
	MsPerCharacter   int // zero means DefaultMsPerCharacter

	// OnFinished is called once when playback stops.
	OnFinished func()
}

// Player plays a Dialog against a Clock, pushing frames to a View.
type Player struct {
	d     *Dialog
	opts  Options
	clock Clock
	timer Timer
	view  View
	audio Audio

	phase       Phase
	pos         int
	nextEvent   int
	last        time.Time
	carry       time.Duration
	msPerChar   time.Duration
	silentPause time.Duration
	audioPause  time.Duration
	mouthOff    bool
	leftEmo     string
	rightEmo    string
}

// NewPlayer creates a player. audio may be nil.
func NewPlayer(d *Dialog, opts Options, clock Clock, timer Timer, view View, audio Audio) *Player {
	return &Player{d: d, opts: opts, clock: clock, timer: timer, view: view, audio: audio}
}

// Phase returns the current playback state.
func (p *Player) Phase() Phase {
	if p.phase != Playing {
		return p.phase
	}
	switch {
	case p.audioPause > 0:
		return PausedForAudio
	case p.silentPause > 0:
		return PausedForDialog
	}
	return Playing
}

// Playing reports whether playback is in progress.
func (p *Player) Playing() bool { return p.phase == Playing }

// Position returns the number of characters revealed.
func (p *Player) Position() int { return p.pos }

// Start begins playback from the first character.
func (p *Player) Start() {
	p.pos = 0
	p.nextEvent = 0
	p.carry = 0
	p.silentPause = 0
	p.audioPause = 0
	p.mouthOff = false
	p.leftEmo = p.opts.LeftEmotionID
	p.rightEmo = p.opts.RightEmotionID
	p.msPerChar = DefaultMsPerCharacter * time.Millisecond
	if p.opts.MsPerCharacter > 0 {
		p.msPerChar = time.Duration(p.opts.MsPerCharacter) * time.Millisecond
	}
	p.phase = Playing
	p.last = p.clock.Now()

	p.timer.Start(TickInterval, p.Tick)
	if p.opts.VoiceOverID != "" && p.audio != nil {
		p.audio.PlayDialog(p.opts.VoiceOverID)
	}
	p.Tick()
}

// Tick advances playback by the time elapsed since the previous tick.
func (p *Player) Tick() {
	if p.phase != Playing {
		return
	}
	now := p.clock.Now()
	elapsed := now.Sub(p.last) + p.carry
	p.last = now
	p.carry = 0

	p.fireDue()
	for {
		if p.audioPause > 0 {
			if elapsed < p.audioPause {
				p.audioPause -= elapsed
				elapsed = 0
				break
			}
			elapsed -= p.audioPause
			p.audioPause = 0
			p.fireDue()
			continue
		}
		if p.silentPause > 0 {
			if elapsed < p.silentPause {
				p.silentPause -= elapsed
				elapsed = 0
				break
			}
			elapsed -= p.silentPause
			p.silentPause = 0
			p.fireDue()
			continue
		}
		if p.pos >= p.d.Len() || elapsed < p.msPerChar {
			break
		}
		elapsed -= p.msPerChar
		p.pos++
		p.fireDue()
	}
	if p.pos < p.d.Len() {
		p.carry = elapsed
	}

	if p.pos >= p.d.Len() && p.silentPause == 0 && p.audioPause == 0 && !p.voicePlaying() {
		p.Stop()
		return
	}
	p.render()
}

// Stop ends playback, silencing the voice-over and rendering a final
// non-talking frame. Calling Stop again has no effect.
func (p *Player) Stop() {
	if p.phase != Playing {
		return
	}
	p.phase = Finished
	p.timer.Stop()
	if p.audio != nil && p.opts.VoiceOverID != "" {
		p.audio.StopDialog()
	}
	p.render()
	if p.opts.OnFinished != nil {
		p.opts.OnFinished()
	}
}

// Skip reveals the rest of the text and stops. Remaining emotion, speed and
// mouth events are applied; sounds and pauses are dropped.
func (p *Player) Skip() {
	if p.phase != Playing {
		return
	}
	for ; p.nextEvent < len(p.d.Events); p.nextEvent++ {
		switch e := p.d.Events[p.nextEvent].(type) {
		case *PlaySound, *Pause, *AudioPause:
		default:
			e.fire(p)
		}
	}
	p.silentPause, p.audioPause = 0, 0
	p.pos = p.d.Len()
	p.Stop()
}

// fireDue fires events at or before the current position. It stops early
// when an event starts a pause, so later events wait for it to drain.
func (p *Player) fireDue() {
	for p.nextEvent < len(p.d.Events) {
		e := p.d.Events[p.nextEvent]
		if e.Position() > p.pos {
			return
		}
		p.nextEvent++
		e.fire(p)
		if p.silentPause > 0 || p.audioPause > 0 {
			return
		}
	}
}

func (p *Player) setEmotion(side types.Position, emotion string) {
	switch side {
	case types.PositionLeft:
		p.leftEmo = emotion
	case types.PositionRight:
		p.rightEmo = emotion
	}
}

func (p *Player) voicePlaying() bool {
	return p.audio != nil && p.opts.VoiceOverID != "" && p.audio.IsDialogPlaying()
}

func (p *Player) talking() bool {
	if p.phase != Playing || p.audioPause > 0 || p.mouthOff {
		return false
	}
	return p.pos < p.d.Len() || p.voicePlaying()
}

func (p *Player) render() {
	if p.view == nil {
		return
	}
	p.view.Render(Frame{
		LeftCharacterID:  p.opts.LeftCharacterID,
		LeftEmotionID:    p.leftEmo,
		RightCharacterID: p.opts.RightCharacterID,
		RightEmotionID:   p.rightEmo,
		Position:         p.pos,
		Lines:            p.d.HTMLLines(p.pos),
		Talking:          p.talking(),
		Finished:         p.phase == Finished,
	})
}

func otherSide(pos types.Position) types.Position {
	switch pos {
	case types.PositionLeft:
		return types.PositionRight
	case types.PositionRight:
		return types.PositionLeft
	}
	return types.PositionNone
}
