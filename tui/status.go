package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/casecore/engine/state"
)

// locationName returns the display name of the current location, falling
// back to a title-cased id: "detention_center" -> "Detention Center".
func (m Model) locationName() string {
	id := m.engine.Progress.Location
	if l, ok := m.engine.Case.Registry.Locations.Get(id); ok && l.Name != "" {
		return l.Name
	}
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// onScreen describes who is shown, with emotions while a line plays.
func (m Model) onScreen() string {
	var s state.State
	switch {
	case m.stage != nil:
		s = state.State{
			LeftCharacterID:  m.stage.frame.LeftCharacterID,
			LeftEmotionID:    m.stage.frame.LeftEmotionID,
			RightCharacterID: m.stage.frame.RightCharacterID,
			RightEmotionID:   m.stage.frame.RightEmotionID,
		}
	case m.engine.Runner != nil:
		s = m.engine.Runner.Screen()
	case m.engine.Encounter != nil:
		s.LeftCharacterID = m.engine.Encounter.InitialLeftCharacterID
		s.RightCharacterID = m.engine.Encounter.InitialRightCharacterID
	}

	reg := m.engine.Case.Registry
	var parts []string
	for _, side := range [][2]string{
		{s.LeftCharacterID, s.LeftEmotionID},
		{s.RightCharacterID, s.RightEmotionID},
	} {
		if side[0] == "" {
			continue
		}
		part := reg.CharacterName(side[0])
		if side[1] != "" {
			part += " (" + side[1] + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " / ")
}

// renderStatusBar produces a full-width inverted status line showing the
// location, who is on screen, the partner, the Court Record size and the
// confrontation health.
func (m Model) renderStatusBar() string {
	p := m.engine.Progress

	left := " " + m.locationName()
	if who := m.onScreen(); who != "" {
		left += " | " + who
	}

	var right []string
	if r := m.engine.Runner; r != nil {
		if h, ok := r.Health(); ok {
			right = append(right, fmt.Sprintf("HP %d/%d vs %d/%d", h.Player, h.PlayerMax, h.Opponent, h.OpponentMax))
		}
	}
	if p.PartnerID != "" {
		right = append(right, "Partner: "+m.partnerName())
	}
	right = append(right, fmt.Sprintf("Record: %d", len(p.Evidence)))
	rightStr := strings.Join(right, " | ") + " "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + rightStr
	return styleStatusBar.Width(m.width).Render(bar)
}

func (m Model) partnerName() string {
	id := m.engine.Progress.PartnerID
	reg := m.engine.Case.Registry
	pt, ok := reg.Partners.Get(id)
	switch {
	case !ok:
	case pt.Name != "":
		return pt.Name
	case pt.CharacterID != "":
		return reg.CharacterName(pt.CharacterID)
	}
	return id
}
