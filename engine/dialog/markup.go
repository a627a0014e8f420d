// Package dialog implements incremental dialog rendering: inline markup
// parsing, timed playback against a clock, and per-line colored output.
package dialog

import (
	"sort"
	"strconv"
	"strings"
)

// Colors used for aside and emphasis spans.
const (
	AsideColor    = "#7fb2ff"
	EmphasisColor = "#ff8a65"
)

// ColorMarker marks the start or end of a colored span in parsed text.
type ColorMarker struct {
	Position int
	Color    string
	IsEnd    bool
}

// Dialog is a parsed dialog line.
type Dialog struct {
	Raw     string
	Text    string // markup stripped
	Events  []Event
	Markers []ColorMarker
	length  int
}

// Len returns the number of characters in the parsed text.
func (d *Dialog) Len() int {
	return d.length
}

// Sounds returns the ids of sounds played by {sound:} tags, in order.
func (d *Dialog) Sounds() []string {
	var ids []string
	for _, e := range d.Events {
		if s, ok := e.(*PlaySound); ok {
			ids = append(ids, s.SoundID)
		}
	}
	return ids
}

// Parse strips inline markup from raw and records the events and color
// markers it describes. Tags that are not recognized stay in the text.
func Parse(raw string) *Dialog {
	d := &Dialog{Raw: raw}
	src := []rune(raw)
	var out []rune

	for i := 0; i < len(src); i++ {
		if src[i] != '{' {
			out = append(out, src[i])
			continue
		}
		end := indexRune(src, '}', i+1)
		if end < 0 {
			out = append(out, src[i:]...)
			break
		}
		if !d.applyTag(string(src[i+1:end]), len(out)) {
			out = append(out, src[i:end+1]...)
		}
		i = end
	}

	d.Text = string(out)
	d.length = len(out)
	sort.SliceStable(d.Markers, func(i, j int) bool {
		a, b := d.Markers[i], d.Markers[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.IsEnd && !b.IsEnd
	})
	return d
}

func (d *Dialog) applyTag(tag string, pos int) bool {
	name, value, _ := strings.Cut(tag, ":")
	switch name {
	case "aside", "/aside":
		d.Markers = append(d.Markers, ColorMarker{Position: pos, Color: AsideColor, IsEnd: name[0] == '/'})
	case "emphasis", "/emphasis":
		d.Markers = append(d.Markers, ColorMarker{Position: pos, Color: EmphasisColor, IsEnd: name[0] == '/'})
	case "emotion":
		if value == "" {
			return false
		}
		d.Events = append(d.Events, &EmotionChange{At: pos, Emotion: value})
	case "otherEmotion":
		if value == "" {
			return false
		}
		d.Events = append(d.Events, &OtherEmotionChange{At: pos, Emotion: value})
	case "sound":
		if value == "" {
			return false
		}
		d.Events = append(d.Events, &PlaySound{At: pos, SoundID: value})
	case "mouth":
		switch value {
		case "on":
			d.Events = append(d.Events, &MouthChange{At: pos, Off: false})
		case "off":
			d.Events = append(d.Events, &MouthChange{At: pos, Off: true})
		default:
			return false
		}
	case "speed", "pause", "audioPause":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return false
		}
		switch name {
		case "speed":
			if n == 0 {
				return false
			}
			d.Events = append(d.Events, &SpeedChange{At: pos, MsPerCharacter: n})
		case "pause":
			silent, audio := SplitPause(n)
			d.Events = append(d.Events, &Pause{At: pos, SilentMs: silent, AudioMs: audio})
		default:
			d.Events = append(d.Events, &AudioPause{At: pos, Ms: n})
		}
	default:
		return false
	}
	return true
}

// SplitPause divides a pause of d milliseconds into a silent part and an
// audio part that together add up to d.
func SplitPause(d int) (silent, audio int) {
	if d > 500 {
		silent = d - 300
	} else {
		silent = d * 2 / 5
	}
	return silent, d - silent
}

// EmotionTag is an {emotion:X} or {otherEmotion:X} tag found in raw text.
type EmotionTag struct {
	Emotion string
	Other   bool
}

// EmotionTags returns the emotion tags in raw, in order of appearance.
func EmotionTags(raw string) []EmotionTag {
	var tags []EmotionTag
	for _, e := range Parse(raw).Events {
		switch ev := e.(type) {
		case *EmotionChange:
			tags = append(tags, EmotionTag{Emotion: ev.Emotion})
		case *OtherEmotionChange:
			tags = append(tags, EmotionTag{Emotion: ev.Emotion, Other: true})
		}
	}
	return tags
}

func indexRune(rs []rune, r rune, from int) int {
	for i := from; i < len(rs); i++ {
		if rs[i] == r {
			return i
		}
	}
	return -1
}
