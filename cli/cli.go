// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for playing a case in a plain terminal.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/casecore/config"
	"github.com/nathoo/casecore/engine"
	"github.com/nathoo/casecore/engine/save"
	"github.com/nathoo/casecore/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine:  eng,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: config.DefaultSaveDir(),
	}
}

// Run starts the case. It shows the intro and the opening scene, then
// loops: prompt, input, dispatch, output.
func (c *CLI) Run() {
	c.printResult(c.Engine.Begin())

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else if input != "" {
			c.lastCmd = input
		}

		// An empty line advances the dialog.
		result := c.Engine.Step(input)
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}
	if c.Engine.Runner != nil {
		c.printSystem("The current conversation will not be saved; loading resumes before it.")
	}

	data, err := c.Engine.Save()
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if title := c.Engine.Case.Info.Title; sd.Case != title {
		c.printSystem(fmt.Sprintf("Load failed: %s is a save of %q, not %q.", name, sd.Case, title))
		return
	}

	c.Engine.Restore(sd)
	c.printSystem(fmt.Sprintf("Game loaded from %s.", name))

	// Show where the player is after loading.
	for _, line := range c.Engine.View() {
		c.printLine(line)
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save progress (default: quicksave)",
		"  /load [name]  Load progress (default: quicksave)",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Debug: dump current progress",
		"  /trace        Toggle debug trace output",
		"",
		"Case commands:",
		"  (enter)                   Continue the dialog",
		"  talk <conversation> (t)   Start a conversation",
		"  <number>                  Pick a numbered option",
		"  present <evidence> (p)    Present evidence",
		"  press                     Press the witness",
		"  next                      Move to the next statement",
		"  end                       Stop presenting when allowed",
		"  evidence (i)              Show the Court Record",
		"  look (l)                  Show what is happening",
		"  again (g)                 Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	p := c.Engine.Progress
	if c.Engine.Encounter != nil {
		c.printSystem(fmt.Sprintf("Encounter: %s", c.Engine.Encounter.ID))
	}
	c.printSystem(fmt.Sprintf("Location: %s", p.Location))
	c.printSystem(fmt.Sprintf("Evidence: %v", p.Evidence))
	if p.PartnerID != "" {
		c.printSystem(fmt.Sprintf("Partner: %s", p.PartnerID))
	}
	if flags := setKeys(p.Flags); len(flags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %v", flags))
	}
	if done := setKeys(p.CompletedConversation); len(done) > 0 {
		c.printSystem(fmt.Sprintf("Completed: %v", done))
	}
	if r := c.Engine.Runner; r != nil {
		c.printSystem(fmt.Sprintf("Running: %s", r.Script().Root().ID))
		if h, ok := r.Health(); ok {
			c.printSystem(fmt.Sprintf("Health: you %d/%d, opponent %d/%d", h.Player, h.PlayerMax, h.Opponent, h.OpponentMax))
		}
	}
}

func setKeys(m map[string]bool) []string {
	var out []string
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
