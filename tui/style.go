package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleSpeaker = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true)

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleOption = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleHint = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	styleNotice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleStage = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindDialogue
	kindOption
	kindHint
	kindNotice
	kindSystem
	kindError
	kindTrace
)

// maxSpeakerLen bounds the "Name: " prefix recognized as a speaker.
const maxSpeakerLen = 24

var hints = []string{
	"Press enter to continue.",
	"Choose an option.",
	"Present evidence.",
	"Present evidence, or end.",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "  ") && isNumbered(strings.TrimLeft(line, " ")):
		return kindOption
	case isHint(line):
		return kindHint
	case strings.HasPrefix(line, "Health:"),
		strings.HasSuffix(line, "the Court Record."),
		strings.HasPrefix(line, "Moved to "),
		strings.HasSuffix(line, "is now your partner."),
		line == "Your partner has left.",
		line == "You have been defeated.",
		line == "Case closed.",
		line == "The case has ended.":
		return kindNotice
	case strings.HasPrefix(line, "Nobody here"),
		strings.HasPrefix(line, "There is nothing to press"),
		strings.HasPrefix(line, "You must"),
		strings.HasPrefix(line, "no "),
		strings.HasPrefix(line, "which "),
		strings.HasSuffix(line, " what?"),
		line == "What do you want to do?":
		return kindError
	case speakerOf(line) != "":
		return kindDialogue
	default:
		return kindNarration
	}
}

func isHint(line string) bool {
	for _, h := range hints {
		if line == h {
			return true
		}
	}
	return strings.HasPrefix(line, "(next, press")
}

// isNumbered reports whether s starts with "<digits>. ".
func isNumbered(s string) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && strings.HasPrefix(s[i:], ". ")
}

// speakerOf returns the name in a "Name: text" dialog line, or "".
func speakerOf(line string) string {
	name, _, ok := strings.Cut(line, ": ")
	if !ok || name == "" || len(name) > maxSpeakerLen || strings.HasPrefix(name, " ") {
		return ""
	}
	if strings.ContainsAny(name, ".!?") {
		return ""
	}
	return name
}

// styledDialogue renders "Name: text" with the name highlighted.
func styledDialogue(line string) string {
	name := speakerOf(line)
	if name == "" {
		return styleDialogue.Render(line)
	}
	return styleSpeaker.Render(name+":") + " " + styleDialogue.Render(line[len(name)+2:])
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindDialogue:
		return styledDialogue(line)
	case kindOption:
		return styleOption.Render(line)
	case kindHint:
		return styleHint.Render(line)
	case kindNotice:
		return styleNotice.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}
