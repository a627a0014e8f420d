// Package audio defines the sound service the engine plays through and a
// silent implementation for terminal front ends and tests.
package audio

import (
	"log"
	"sort"
)

// Kind is a category of audio asset.
type Kind int

const (
	Bgm Kind = iota
	Ambiance
	Sound
	Voice
)

func (k Kind) String() string {
	switch k {
	case Bgm:
		return "bgm"
	case Ambiance:
		return "ambiance"
	case Sound:
		return "sound"
	case Voice:
		return "voice"
	}
	return "unknown"
}

// Service is the audio player consumed by the runtime.
type Service interface {
	Preload(k Kind, id string)
	PlayBgm(id string)
	PauseBgm()
	ResumeBgm()
	StopBgm(instant bool)
	PlayAmbiance(id string)
	PauseAmbiance()
	ResumeAmbiance()
	StopAmbiance(instant bool)
	PlaySound(id string)
	PlayDialog(id string)
	StopDialog()
	IsDialogPlaying() bool
}

// Silent records what would be played without producing sound.
type Silent struct {
	Verbose bool

	Bgm      string
	Ambiance string
	Paused   bool
	Played   []string

	preloaded map[Kind]map[string]bool
}

func (s *Silent) logf(format string, args ...any) {
	if s.Verbose {
		log.Printf("audio: "+format, args...)
	}
}

func (s *Silent) Preload(k Kind, id string) {
	if s.preloaded == nil {
		s.preloaded = map[Kind]map[string]bool{}
	}
	if s.preloaded[k] == nil {
		s.preloaded[k] = map[string]bool{}
	}
	s.preloaded[k][id] = true
	s.logf("preload %s %s", k, id)
}

// Preloaded returns the sorted ids preloaded for k.
func (s *Silent) Preloaded(k Kind) []string {
	var ids []string
	for id := range s.preloaded[k] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Silent) PlayBgm(id string) {
	s.Bgm, s.Paused = id, false
	s.logf("play bgm %s", id)
}

func (s *Silent) PauseBgm()  { s.Paused = true }
func (s *Silent) ResumeBgm() { s.Paused = false }

func (s *Silent) StopBgm(instant bool) {
	s.logf("stop bgm %s (instant=%v)", s.Bgm, instant)
	s.Bgm = ""
}

func (s *Silent) PlayAmbiance(id string) {
	s.Ambiance = id
	s.logf("play ambiance %s", id)
}

func (s *Silent) PauseAmbiance()            {}
func (s *Silent) ResumeAmbiance()           {}
func (s *Silent) StopAmbiance(instant bool) { s.Ambiance = "" }

func (s *Silent) PlaySound(id string) {
	s.Played = append(s.Played, id)
	s.logf("play sound %s", id)
}

// Voice-over never plays, so dialog is paced by text alone.
func (s *Silent) PlayDialog(id string)  { s.logf("voice %s", id) }
func (s *Silent) StopDialog()           {}
func (s *Silent) IsDialogPlaying() bool { return false }
