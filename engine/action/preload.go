package action

import "github.com/nathoo/casecore/engine/audio"

// Preloader receives the audio ids a script may play.
type Preloader interface {
	Preload(k audio.Kind, id string)
}

// PreloadAudio walks the tree and preloads every bgm, ambiance, sound
// effect and voice-over it references, including {sound:} tags in dialog.
func PreloadAudio(root List, p Preloader) {
	Walk(root, func(_ Path, a Action) {
		switch a := a.(type) {
		case *PlayBgm:
			p.Preload(audio.Bgm, a.BgmID)
		case *PlayAmbiance:
			p.Preload(audio.Ambiance, a.AmbianceID)
		case *PlaySound:
			p.Preload(audio.Sound, a.SoundID)
		case Speaker:
			line := a.DialogLine()
			if line.VoiceOverID != "" {
				p.Preload(audio.Voice, line.VoiceOverID)
			}
			for _, id := range line.Dialog().Sounds() {
				p.Preload(audio.Sound, id)
			}
		}
	})
}
