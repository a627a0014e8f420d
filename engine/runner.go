package engine

import (
	"errors"
	"fmt"
	"log"

	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/engine/audio"
	"github.com/nathoo/casecore/engine/availability"
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/engine/effects"
	"github.com/nathoo/casecore/engine/events"
	"github.com/nathoo/casecore/engine/state"
	"github.com/nathoo/casecore/types"
)

// PromptKind is the kind of input a runner is waiting for.
type PromptKind int

const (
	PromptDialog    PromptKind = iota // continue
	PromptChoice                      // pick an option
	PromptEvidence                    // present evidence, or end if allowed
	PromptTestimony                   // continue, press, present or end
	PromptTopic                       // pick a confrontation topic
	PromptRestart                     // try again or give up
)

func (k PromptKind) String() string {
	switch k {
	case PromptDialog:
		return "dialog"
	case PromptChoice:
		return "choice"
	case PromptEvidence:
		return "evidence"
	case PromptTestimony:
		return "testimony"
	case PromptTopic:
		return "topic"
	case PromptRestart:
		return "restart"
	}
	return "unknown"
}

// Prompt is what the runner shows while it waits for a Response.
type Prompt struct {
	Kind   PromptKind
	Action action.Action
	Line   *action.Line
	// Screen is the on-screen state as the line begins, with the line's
	// emotion markup applied.
	Screen  state.State
	Options []string
	CanEnd  bool
}

// Response answers a Prompt. The zero value continues a dialog or moves
// past a testimony statement.
type Response struct {
	Choice     int
	EvidenceID string
	Press      bool
	End        bool
}

// Outcome is how a script stopped.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeExitEncounter
	OutcomeMoved
	OutcomeCaseEnded
)

// ErrNotWaiting is returned by Respond when no prompt is pending.
var ErrNotWaiting = errors.New("not waiting for input")

// Runner executes one script step by step. It runs actions until one needs
// player input, then waits for Respond.
type Runner struct {
	cs       *Case
	enc      *conversation.Encounter
	script   conversation.Script
	conf     *conversation.Confrontation
	progress *types.Progress
	ctx      effects.Context

	stack     []*frame
	screen    state.State
	health    Health
	selection *action.ConfrontationTopicSelection
	prompt    *Prompt
	topics    []*conversation.Topic
	prompts   int
	events    []types.Event
	done      bool
	outcome   Outcome
}

// frame is one action list being executed.
type frame struct {
	list  action.List
	i     int
	owner action.Action // construct the list belongs to; nil at the root
	loop  bool          // restart from the top when exhausted
	mark  int           // prompts seen when the current pass began
	exit  func()        // runs when the list is exhausted
}

// NewRunner starts s, running it up to the first prompt.
func NewRunner(cs *Case, enc *conversation.Encounter, s conversation.Script, p *types.Progress, au audio.Service) *Runner {
	if au == nil {
		au = &audio.Silent{}
	}
	r := &Runner{
		cs:       cs,
		enc:      enc,
		script:   s,
		progress: p,
		ctx:      effects.Context{EncounterID: enc.ID, Audio: au},
	}
	if conf, ok := s.(*conversation.Confrontation); ok {
		r.conf = conf
		r.ctx.ConfrontationID = conf.ID
	}
	r.reset()
	r.run()
	return r
}

func (r *Runner) reset() {
	r.screen = r.enc.InitialState()
	if r.conf != nil {
		r.health = NewHealth(r.conf)
	}
	r.selection = nil
	r.stack = []*frame{{list: r.script.Root().Actions}}
}

func (r *Runner) Script() conversation.Script { return r.script }
func (r *Runner) Prompt() *Prompt             { return r.prompt }
func (r *Runner) Done() bool                  { return r.done }
func (r *Runner) Outcome() Outcome            { return r.outcome }
func (r *Runner) Screen() state.State         { return r.screen }

// Health returns the health contest, if the script is a confrontation.
func (r *Runner) Health() (Health, bool) {
	return r.health, r.conf != nil
}

// Events returns and clears the events emitted since the last call.
func (r *Runner) Events() []types.Event {
	evts := r.events
	r.events = nil
	return evts
}

// Respond answers the pending prompt and runs to the next one. An invalid
// response returns an error and leaves the prompt pending.
func (r *Runner) Respond(resp Response) error {
	pr := r.prompt
	if pr == nil {
		return ErrNotWaiting
	}

	switch pr.Kind {
	case PromptDialog:

	case PromptChoice:
		mc := pr.Action.(*action.MultipleChoice)
		if resp.Choice < 0 || resp.Choice >= len(mc.Options) {
			return fmt.Errorf("no option %d", resp.Choice+1)
		}
		r.push(&frame{list: mc.Options[resp.Choice].Actions, owner: mc, exit: func() { r.askChoice(mc) }})

	case PromptEvidence:
		mpe := pr.Action.(*action.MustPresentEvidence)
		switch {
		case resp.End:
			if !mpe.CanEndBeRequested {
				return errors.New("you must present something")
			}
			r.push(&frame{list: mpe.EndRequested, owner: mpe})
		case !state.HasEvidence(r.progress, resp.EvidenceID):
			return fmt.Errorf("you don't have %q", resp.EvidenceID)
		case mpe.IsCorrect(resp.EvidenceID):
			r.penalize(false)
			r.push(&frame{list: mpe.Correct, owner: mpe})
		default:
			r.penalize(true)
			r.push(&frame{list: mpe.Wrong, owner: mpe, exit: r.afterWrong(func() { r.askEvidence(mpe) })})
		}

	case PromptTestimony:
		si := pr.Action.(*action.ShowInterrogation)
		switch {
		case resp.Press:
			r.push(&frame{list: si.Press, owner: si})
		case resp.End:
			if !pr.CanEnd {
				return errors.New("the testimony cannot be ended here")
			}
			r.push(&frame{list: si.EndRequested, owner: si})
		case resp.EvidenceID != "":
			if !state.HasEvidence(r.progress, resp.EvidenceID) {
				return fmt.Errorf("you don't have %q", resp.EvidenceID)
			}
			if l, ok := si.EvidenceActions(resp.EvidenceID); ok {
				r.penalize(false)
				r.push(&frame{list: l, owner: si})
			} else {
				r.penalize(true)
				r.push(&frame{list: si.WrongEvidence, owner: si, exit: r.afterWrong(nil)})
			}
		}

	case PromptTopic:
		if resp.Choice < 0 || resp.Choice >= len(r.topics) {
			return fmt.Errorf("no topic %d", resp.Choice+1)
		}
		sel := pr.Action.(*action.ConfrontationTopicSelection)
		r.push(&frame{list: r.topics[resp.Choice].Actions, owner: sel, exit: func() { r.askTopic(sel) }})

	case PromptRestart:
		rd := pr.Action.(*action.RestartDecision)
		switch resp.Choice {
		case 0:
			r.push(&frame{list: rd.Restart, owner: rd})
		case 1:
			r.push(&frame{list: rd.GiveUp, owner: rd})
		default:
			return fmt.Errorf("no option %d", resp.Choice+1)
		}
	}

	r.prompt = nil
	r.run()
	return nil
}

// run executes actions until a prompt is pending or the script stops.
func (r *Runner) run() {
	for r.prompt == nil && !r.done {
		if len(r.stack) == 0 {
			r.finish(OutcomeCompleted)
			return
		}
		f := r.stack[len(r.stack)-1]
		if f.i >= len(f.list) {
			if f.loop && r.prompts > f.mark {
				f.i, f.mark = 0, r.prompts
				continue
			}
			if f.loop {
				log.Printf("runner: %s repeats without asking for input; leaving it", f.owner.Kind())
			}
			r.stack = r.stack[:len(r.stack)-1]
			if f.exit != nil {
				f.exit()
			}
			continue
		}
		a := f.list[f.i]
		f.i++
		r.exec(a)
	}
}

func (r *Runner) exec(a action.Action) {
	reg := r.cs.Registry
	switch a := a.(type) {
	case *action.CharacterChange:
		if !r.screen.Place(reg, a.Position, a.CharacterID, a.EmotionID) {
			log.Printf("runner: cannot place %q (%q) at %s", a.CharacterID, a.EmotionID, a.Position)
		}

	case *action.ShowDialog:
		r.askLine(&Prompt{Kind: PromptDialog, Action: a, Line: &a.Line})

	case *action.BranchOnCondition:
		if a.Condition.Condition != nil && a.Condition.Eval(state.Env(r.progress)) {
			r.push(&frame{list: a.True, owner: a})
		} else {
			r.push(&frame{list: a.False, owner: a})
		}

	case *action.MustPresentEvidence:
		r.askEvidence(a)

	case *action.MultipleChoice:
		r.askChoice(a)

	case *action.ExitMultipleChoice:
		if !r.unwind(ownedBy[*action.MultipleChoice]) {
			log.Printf("runner: ExitMultipleChoice outside a multiple choice")
		}

	case *action.InterrogationRepeat:
		r.push(&frame{list: a.Actions, owner: a, loop: true, mark: r.prompts})

	case *action.ExitInterrogationRepeat:
		if !r.unwind(ownedBy[*action.InterrogationRepeat]) {
			log.Printf("runner: ExitInterrogationRepeat outside an interrogation repeat")
		}

	case *action.ShowInterrogation:
		r.askLine(&Prompt{Kind: PromptTestimony, Action: a, Line: &a.Line, CanEnd: len(a.EndRequested) > 0})

	case *action.GoToPresentWrongEvidence:
		r.presentWrong()

	case *action.ConfrontationTopicSelection:
		r.selection = a
		r.push(&frame{list: a.Initial, owner: a, exit: func() { r.askTopic(a) }})

	case *action.RestartConfrontationTopicSelection:
		sel := r.selection
		if sel == nil || !r.unwind(owned(sel)) {
			log.Printf("runner: RestartConfrontationTopicSelection outside a topic selection")
			return
		}
		r.askTopic(sel)

	case *action.RestartConfrontation:
		r.reset()

	case *action.RestartDecision:
		r.ask(&Prompt{
			Kind:    PromptRestart,
			Action:  a,
			Screen:  r.screen.Clone(),
			Options: []string{conversation.RestartOptionText, conversation.GiveUpOptionText},
		})

	case *action.ExitEncounter:
		r.emit(events.EncounterExited, "encounter", r.enc.ID)
		r.finish(OutcomeExitEncounter)

	case *action.MoveToLocation:
		r.apply(a)
		r.finish(OutcomeMoved)

	case *action.EndCase:
		r.apply(a)
		r.finish(OutcomeCaseEnded)

	default:
		r.apply(a)
	}
}

func (r *Runner) apply(a action.Action) {
	evts, ok := effects.Apply(r.progress, a, r.ctx)
	if !ok {
		log.Printf("runner: no effect for %s", a.Kind())
		return
	}
	r.events = append(r.events, evts...)
}

func (r *Runner) ask(p *Prompt) {
	r.prompt = p
	r.prompts++
}

func (r *Runner) askChoice(mc *action.MultipleChoice) {
	opts := make([]string, len(mc.Options))
	for i, o := range mc.Options {
		opts[i] = o.Text
	}
	r.ask(&Prompt{Kind: PromptChoice, Action: mc, Screen: r.screen.Clone(), Options: opts})
}

func (r *Runner) askEvidence(mpe *action.MustPresentEvidence) {
	r.askLine(&Prompt{Kind: PromptEvidence, Action: mpe, Line: &mpe.Line, CanEnd: mpe.CanEndBeRequested})
}

// askTopic offers the enabled topics. With none enabled the selection is
// over and execution continues after it.
func (r *Runner) askTopic(sel *action.ConfrontationTopicSelection) {
	if r.conf == nil {
		return
	}
	r.topics = availability.Topics(r.conf, r.progress)
	if len(r.topics) == 0 {
		return
	}
	opts := make([]string, len(r.topics))
	for i, t := range r.topics {
		opts[i] = t.Name
		if opts[i] == "" {
			opts[i] = t.ID
		}
	}
	r.ask(&Prompt{Kind: PromptTopic, Action: sel, Screen: r.screen.Clone(), Options: opts})
}

// presentWrong jumps to the wrong-evidence actions of the innermost
// evidence prompt or testimony statement being answered.
func (r *Runner) presentWrong() {
	for i := len(r.stack) - 1; i >= 0; i-- {
		switch o := r.stack[i].owner.(type) {
		case *action.MustPresentEvidence:
			r.stack = r.stack[:i]
			r.penalize(true)
			r.push(&frame{list: o.Wrong, owner: o, exit: r.afterWrong(func() { r.askEvidence(o) })})
			return
		case *action.ShowInterrogation:
			r.stack = r.stack[:i]
			r.penalize(true)
			r.push(&frame{list: o.WrongEvidence, owner: o, exit: r.afterWrong(nil)})
			return
		}
	}
	log.Printf("runner: GoToPresentWrongEvidence outside an evidence prompt")
}

func (r *Runner) push(f *frame) {
	r.stack = append(r.stack, f)
}

// unwind pops frames up to and including the innermost one whose owner
// matches. It returns false, popping nothing, if none does.
func (r *Runner) unwind(match func(action.Action) bool) bool {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if o := r.stack[i].owner; o != nil && match(o) {
			r.stack = r.stack[:i]
			return true
		}
	}
	return false
}

func ownedBy[T action.Action](a action.Action) bool {
	_, ok := a.(T)
	return ok
}

func owned(target action.Action) func(action.Action) bool {
	return func(a action.Action) bool { return a == target }
}

// askLine asks p, showing its dialog line: the line's emotion markup is
// applied to the prompt's screen and its voice-over starts.
func (r *Runner) askLine(p *Prompt) {
	p.Screen = r.screen.Clone()
	conversation.ApplyMarkup(r.cs.Registry, &p.Screen, p.Line)
	if r.ctx.Audio != nil && p.Line.VoiceOverID != "" {
		r.ctx.Audio.PlayDialog(p.Line.VoiceOverID)
	}
	r.ask(p)
}

func (r *Runner) emit(typ string, kv ...any) {
	r.events = append(r.events, events.New(typ, kv...))
}

func (r *Runner) finish(o Outcome) {
	r.done = true
	r.outcome = o
	r.stack = nil
	r.prompt = nil
	r.progress.CompletedConversation[state.ConversationKey(r.enc.ID, r.script.Root().ID)] = true
}
