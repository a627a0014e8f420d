// Package state holds the on-screen character state used by conversations
// and the player progress helpers consulted by conditions and the runtime.
package state

import (
	"fmt"

	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/types"
)

// State is a snapshot of which characters are displayed on each side of
// the screen and with which emotion. The zero value is an empty stage.
type State struct {
	LeftCharacterID  string
	LeftEmotionID    string
	RightCharacterID string
	RightEmotionID   string
}

// Clone returns an independent copy.
func (s State) Clone() State {
	return s
}

// CharacterAt returns the character id shown at pos.
func (s State) CharacterAt(pos types.Position) string {
	switch pos {
	case types.PositionLeft:
		return s.LeftCharacterID
	case types.PositionRight:
		return s.RightCharacterID
	}
	return ""
}

// EmotionAt returns the emotion id shown at pos.
func (s State) EmotionAt(pos types.Position) string {
	switch pos {
	case types.PositionLeft:
		return s.LeftEmotionID
	case types.PositionRight:
		return s.RightEmotionID
	}
	return ""
}

func (s State) String() string {
	return fmt.Sprintf("left=%s(%s) right=%s(%s)",
		orDash(s.LeftCharacterID), orDash(s.LeftEmotionID),
		orDash(s.RightCharacterID), orDash(s.RightEmotionID))
}

// SetLeftCharacter sets the left character. An empty id clears the side.
// It returns false and leaves s unchanged if the id is unknown.
func (s *State) SetLeftCharacter(reg *content.Registry, id string) bool {
	canonical, ok := resolveCharacter(reg, id)
	if !ok {
		return false
	}
	s.LeftCharacterID = canonical
	return true
}

// SetRightCharacter sets the right character. An empty id clears the side.
// It returns false and leaves s unchanged if the id is unknown.
func (s *State) SetRightCharacter(reg *content.Registry, id string) bool {
	canonical, ok := resolveCharacter(reg, id)
	if !ok {
		return false
	}
	s.RightCharacterID = canonical
	return true
}

// SetLeftEmotion sets the emotion of the left character. It returns false
// and leaves s unchanged if the emotion does not exist on that character.
func (s *State) SetLeftEmotion(reg *content.Registry, emotionID string) bool {
	canonical, ok := resolveEmotion(reg, s.LeftCharacterID, emotionID)
	if !ok {
		return false
	}
	s.LeftEmotionID = canonical
	return true
}

// SetRightEmotion sets the emotion of the right character. It returns false
// and leaves s unchanged if the emotion does not exist on that character.
func (s *State) SetRightEmotion(reg *content.Registry, emotionID string) bool {
	canonical, ok := resolveEmotion(reg, s.RightCharacterID, emotionID)
	if !ok {
		return false
	}
	s.RightEmotionID = canonical
	return true
}

// SetCharacter sets the character at pos. Positions other than left and
// right are rejected.
func (s *State) SetCharacter(reg *content.Registry, pos types.Position, id string) bool {
	switch pos {
	case types.PositionLeft:
		return s.SetLeftCharacter(reg, id)
	case types.PositionRight:
		return s.SetRightCharacter(reg, id)
	}
	return false
}

// SetEmotion sets the emotion at pos.
func (s *State) SetEmotion(reg *content.Registry, pos types.Position, emotionID string) bool {
	switch pos {
	case types.PositionLeft:
		return s.SetLeftEmotion(reg, emotionID)
	case types.PositionRight:
		return s.SetRightEmotion(reg, emotionID)
	}
	return false
}

// Place puts characterID at pos showing emotionID. An empty emotion falls
// back to the character's default emotion, and an empty character clears
// the side. Either both fields change or neither does.
func (s *State) Place(reg *content.Registry, pos types.Position, characterID, emotionID string) bool {
	next := *s
	if !next.SetCharacter(reg, pos, characterID) {
		return false
	}
	if characterID == "" {
		next.setEmotionField(pos, "")
		*s = next
		return true
	}
	if emotionID == "" {
		c, _ := reg.Character(characterID)
		emotionID = c.DefaultEmotion
	}
	if emotionID == "" {
		next.setEmotionField(pos, "")
	} else if !next.SetEmotion(reg, pos, emotionID) {
		return false
	}
	*s = next
	return true
}

func (s *State) setEmotionField(pos types.Position, v string) {
	if pos == types.PositionLeft {
		s.LeftEmotionID = v
	} else {
		s.RightEmotionID = v
	}
}

// Other returns the opposite side of pos, or PositionNone.
func Other(pos types.Position) types.Position {
	switch pos {
	case types.PositionLeft:
		return types.PositionRight
	case types.PositionRight:
		return types.PositionLeft
	}
	return types.PositionNone
}

func resolveCharacter(reg *content.Registry, id string) (string, bool) {
	if id == "" {
		return "", true
	}
	if reg == nil {
		return "", false
	}
	c, ok := reg.Character(id)
	if !ok {
		return "", false
	}
	return c.ID, true
}

func resolveEmotion(reg *content.Registry, characterID, emotionID string) (string, bool) {
	if reg == nil || characterID == "" {
		return "", false
	}
	c, ok := reg.Character(characterID)
	if !ok {
		return "", false
	}
	return c.Emotion(emotionID)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
