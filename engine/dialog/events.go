package dialog

import "time"

// Event is a timed dialog event. It fires once playback reaches its
// position in the parsed text.
type Event interface {
	Position() int
	fire(p *Player)
}

// SpeedChange sets the reveal interval per character.
type SpeedChange struct {
	At             int
	MsPerCharacter int
}

// EmotionChange sets the speaker's emotion.
type EmotionChange struct {
	At      int
	Emotion string
}

// OtherEmotionChange sets the emotion of the character opposite the speaker.
type OtherEmotionChange struct {
	At      int
	Emotion string
}

// Pause holds the text for AudioMs and then for SilentMs.
type Pause struct {
	At       int
	SilentMs int
	AudioMs  int
}

// AudioPause holds the text while the voice-over catches up.
type AudioPause struct {
	At int
	Ms int
}

// MouthChange turns the talking animation off or back on.
type MouthChange struct {
	At  int
	Off bool
}

// PlaySound plays a one-shot sound effect.
type PlaySound struct {
	At      int
	SoundID string
}

func (e *SpeedChange) Position() int        { return e.At }
func (e *EmotionChange) Position() int      { return e.At }
func (e *OtherEmotionChange) Position() int { return e.At }
func (e *Pause) Position() int              { return e.At }
func (e *AudioPause) Position() int         { return e.At }
func (e *MouthChange) Position() int        { return e.At }
func (e *PlaySound) Position() int          { return e.At }

func (e *SpeedChange) fire(p *Player) {
	p.msPerChar = time.Duration(e.MsPerCharacter) * time.Millisecond
}

func (e *EmotionChange) fire(p *Player) {
	p.setEmotion(p.opts.Speaker, e.Emotion)
}

func (e *OtherEmotionChange) fire(p *Player) {
	p.setEmotion(otherSide(p.opts.Speaker), e.Emotion)
}

func (e *Pause) fire(p *Player) {
	p.silentPause += time.Duration(e.SilentMs) * time.Millisecond
	p.audioPause += time.Duration(e.AudioMs) * time.Millisecond
}

func (e *AudioPause) fire(p *Player) {
	p.audioPause += time.Duration(e.Ms) * time.Millisecond
}

func (e *MouthChange) fire(p *Player) {
	p.mouthOff = e.Off
}

func (e *PlaySound) fire(p *Player) {
	if p.audio != nil {
		p.audio.PlaySound(e.SoundID)
	}
}
