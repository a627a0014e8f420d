// Package engine provides the Step() orchestrator that wires together
// parsing, resolution, the script runner and events into a single turn.
package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/engine/audio"
	"github.com/nathoo/casecore/engine/availability"
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/engine/dialog"
	"github.com/nathoo/casecore/engine/events"
	"github.com/nathoo/casecore/engine/parser"
	"github.com/nathoo/casecore/engine/resolve"
	"github.com/nathoo/casecore/engine/save"
	"github.com/nathoo/casecore/engine/state"
	"github.com/nathoo/casecore/types"
)

// GameOverMessage is shown for any command once the case has ended.
const GameOverMessage = "The case is over. Use /load to restore a save or /quit to exit."

// Engine holds the loaded case and the player's progress through it.
type Engine struct {
	Case      *Case
	Progress  *types.Progress
	Audio     audio.Service
	Encounter *conversation.Encounter
	Runner    *Runner

	ended bool
}

// New creates an engine at the start of cs. A nil au plays nothing.
func New(cs *Case, au audio.Service) *Engine {
	if au == nil {
		au = &audio.Silent{}
	}
	cs.PreloadAudio(au)
	e := &Engine{Case: cs, Progress: state.NewProgress(), Audio: au}
	if enc, ok := cs.Encounter(cs.Info.StartEncounter); ok {
		e.Encounter = enc
		e.Progress.Location, _ = cs.LocationOf(enc.ID)
	}
	return e
}

// Ended reports whether the case is over.
func (e *Engine) Ended() bool { return e.ended }

// Begin shows the case intro and enters the starting encounter.
func (e *Engine) Begin() types.Result {
	var result types.Result
	if e.Case.Info.Intro != "" {
		result.Output = append(result.Output, e.Case.Info.Intro)
	}
	if e.Encounter == nil {
		result.Output = append(result.Output, fmt.Sprintf("Start encounter %q not found.", e.Case.Info.StartEncounter))
		return result
	}
	e.enter(&result)
	result.Output = append(result.Output, e.View()...)
	return result
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 0. Case over: block all commands.
	if e.ended {
		result.Output = append(result.Output, GameOverMessage)
		return result
	}

	// 1. Parse input.
	intent := parser.Parse(input)

	// 2. Log the command.
	e.Progress.CommandLog = append(e.Progress.CommandLog, input)

	// 3. Empty input continues a dialog line.
	if intent.Verb == "" {
		if e.waiting(PromptDialog) || e.waiting(PromptTestimony) {
			intent.Verb = parser.VerbNext
		} else {
			result.Output = append(result.Output, "What do you want to do?")
			return result
		}
	}

	// 4. Commands available at any time.
	switch intent.Verb {
	case parser.VerbEvidence:
		result.Output = append(result.Output, e.courtRecord()...)
		return result
	case parser.VerbLook:
		result.Output = append(result.Output, e.View()...)
		return result
	}

	// 5. Answer the pending prompt, or start a script.
	var msg string
	if e.Runner != nil {
		msg = e.respond(intent, input)
	} else {
		msg = e.idle(intent)
	}
	if msg != "" {
		result.Output = append(result.Output, msg)
		return result
	}

	// 6. Collect events and follow exits.
	e.settle(&result)

	// 7. Show what comes next.
	result.Output = append(result.Output, e.View()...)
	return result
}

// Available returns the scripts the player can start in the current
// encounter.
func (e *Engine) Available() []conversation.Script {
	if e.Encounter == nil {
		return nil
	}
	return availability.Scripts(e.Encounter, e.Progress, e.Case.Unlock)
}

// Save serializes the player's progress. A script in progress is not
// saved; loading returns to the encounter between scripts.
func (e *Engine) Save() ([]byte, error) {
	encID := ""
	if e.Encounter != nil {
		encID = e.Encounter.ID
	}
	return save.Save(e.Progress, e.Case.Info, encID)
}

// Restore replaces the player's progress with sd.
func (e *Engine) Restore(sd *save.SaveData) {
	e.Progress = state.NewProgress()
	save.ApplySave(e.Progress, sd)
	e.Runner = nil
	e.ended = false
	if enc, ok := e.Case.Encounter(sd.Encounter); ok {
		e.Encounter = enc
	} else if enc, ok := e.Case.EncounterAt(sd.Location); ok {
		e.Encounter = enc
	}
}

func (e *Engine) waiting(k PromptKind) bool {
	return e.Runner != nil && e.Runner.Prompt() != nil && e.Runner.Prompt().Kind == k
}

// respond turns intent into a response to the pending prompt. It returns
// a message for the player if the command does not answer it.
func (e *Engine) respond(intent types.Intent, input string) string {
	pr := e.Runner.Prompt()
	var resp Response

	switch pr.Kind {
	case PromptDialog:
		if intent.Verb != parser.VerbNext {
			return "Press enter to continue."
		}

	case PromptChoice, PromptTopic, PromptRestart:
		name := intent.Object
		if intent.Verb != parser.VerbChoose && intent.Verb != parser.VerbTalk {
			name = input
		}
		if name == "" {
			return "Choose an option."
		}
		i, err := resolve.Option(pr.Options, name)
		if err != nil {
			return err.Error()
		}
		resp.Choice = i

	case PromptEvidence, PromptTestimony:
		switch intent.Verb {
		case parser.VerbPresent:
			if intent.Object == "" {
				return "Present what?"
			}
			id, err := resolve.Evidence(e.Progress, e.Case.Registry, intent.Object)
			if err != nil {
				return err.Error()
			}
			resp.EvidenceID = id
		case parser.VerbEnd:
			resp.End = true
		case parser.VerbPress:
			if pr.Kind != PromptTestimony {
				return "There is nothing to press."
			}
			resp.Press = true
		case parser.VerbNext:
			if pr.Kind != PromptTestimony {
				return "You must present evidence."
			}
		default:
			return promptHint(pr)
		}
	}
	if err := e.Runner.Respond(resp); err != nil {
		return err.Error()
	}
	return ""
}

// idle handles a command given between scripts.
func (e *Engine) idle(intent types.Intent) string {
	if e.Encounter == nil {
		return "There is nobody here."
	}
	switch intent.Verb {
	case parser.VerbTalk:
		if intent.Object == "" {
			return "Talk about what?"
		}
		s, err := resolve.Script(e.Available(), intent.Object)
		if err != nil {
			return err.Error()
		}
		e.start(s)
	case parser.VerbPresent:
		if intent.Object == "" {
			return "Present what?"
		}
		id, err := resolve.Evidence(e.Progress, e.Case.Registry, intent.Object)
		if err != nil {
			return err.Error()
		}
		c, ok := e.Encounter.EvidenceConversations.Get(id)
		if !ok {
			return fmt.Sprintf("Nobody here has anything to say about the %s.", e.Case.Registry.EvidenceName(id))
		}
		e.start(c)
	default:
		return "Nothing is happening. Try talk <conversation>, present <evidence> or look."
	}
	return ""
}

func (e *Engine) start(s conversation.Script) {
	e.Runner = NewRunner(e.Case, e.Encounter, s, e.Progress, e.Audio)
}

// enter runs the encounter's one-shot conversation the first time the
// player arrives.
func (e *Engine) enter(result *types.Result) {
	first := e.Encounter.OneShot
	if first != nil && !e.Progress.CompletedConversation[state.ConversationKey(e.Encounter.ID, first.ID)] {
		e.start(first)
		e.settle(result)
	}
}

// settle drains runner events into result and follows the outcome of a
// finished script.
func (e *Engine) settle(result *types.Result) {
	for e.Runner != nil {
		for _, ev := range e.Runner.Events() {
			result.Events = append(result.Events, ev)
			if msg := events.Describe(ev, e.Case.Registry); msg != "" {
				result.Output = append(result.Output, msg)
			}
		}
		if !e.Runner.Done() {
			return
		}
		outcome := e.Runner.Outcome()
		e.Runner = nil

		switch outcome {
		case OutcomeCaseEnded:
			e.ended = true
		case OutcomeMoved:
			enc, ok := e.Case.EncounterAt(e.Progress.Location)
			if !ok {
				e.Encounter = nil
				return
			}
			e.Encounter = enc
			e.enter(result)
		}
	}
}

// View describes what the player is looking at: the pending prompt, or the
// encounter's scripts between them.
func (e *Engine) View() []string {
	if e.ended {
		return nil
	}
	if e.Runner != nil && e.Runner.Prompt() != nil {
		return e.promptView(e.Runner.Prompt())
	}
	return e.encounterView()
}

func (e *Engine) promptView(pr *Prompt) []string {
	var out []string
	if h, ok := e.Runner.Health(); ok {
		out = append(out, fmt.Sprintf("[You %d/%d | Opponent %d/%d]", h.Player, h.PlayerMax, h.Opponent, h.OpponentMax))
	}
	if pr.Line != nil {
		text := dialog.Parse(pr.Line.Text).Text
		if name := SpeakerName(e.Case.Registry, pr.Screen, pr.Line); name != "" {
			text = name + ": " + text
		}
		out = append(out, text)
	}
	for i, o := range pr.Options {
		out = append(out, fmt.Sprintf("  %d. %s", i+1, o))
	}
	if hint := promptHint(pr); hint != "" && pr.Kind != PromptDialog {
		out = append(out, hint)
	}
	return out
}

func (e *Engine) encounterView() []string {
	if e.Encounter == nil {
		return []string{"There is nobody here."}
	}
	var out []string
	if l, ok := e.Case.Registry.Locations.Get(e.Progress.Location); ok && l.Name != "" {
		out = append(out, l.Name)
	}
	scripts := e.Available()
	if len(scripts) == 0 {
		return append(out, "There is nothing to talk about.")
	}
	out = append(out, "You can talk about:")
	for i, s := range scripts {
		name := s.Root().Name
		if name == "" {
			name = s.Root().ID
		}
		out = append(out, fmt.Sprintf("  %d. %s", i+1, name))
	}
	return out
}

func (e *Engine) courtRecord() []string {
	if len(e.Progress.Evidence) == 0 {
		return []string{"The Court Record is empty."}
	}
	out := []string{"Court Record:"}
	for i, id := range e.Progress.Evidence {
		line := fmt.Sprintf("  %d. %s", i+1, e.Case.Registry.EvidenceName(id))
		if ev, ok := e.Case.Registry.Evidence.Get(id); ok && ev.Description != "" {
			line += " - " + ev.Description
		}
		out = append(out, line)
	}
	return out
}

func promptHint(pr *Prompt) string {
	switch pr.Kind {
	case PromptDialog:
		return "Press enter to continue."
	case PromptChoice, PromptTopic, PromptRestart:
		return "Choose an option."
	case PromptEvidence:
		if pr.CanEnd {
			return "Present evidence, or end."
		}
		return "Present evidence."
	case PromptTestimony:
		parts := []string{"next", "press", "present <evidence>"}
		if pr.CanEnd {
			parts = append(parts, "end")
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return ""
}

// SpeakerName returns the display name of the character speaking l on
// screen s, or "" for narration.
func SpeakerName(reg *content.Registry, s state.State, l *action.Line) string {
	id := l.CharacterID
	if id == "" {
		id = s.CharacterAt(l.Speaker)
	}
	if id == "" {
		return ""
	}
	return reg.CharacterName(id)
}
