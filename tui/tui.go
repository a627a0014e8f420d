package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nathoo/casecore/config"
	"github.com/nathoo/casecore/engine"
	"github.com/nathoo/casecore/engine/dialog"
	"github.com/nathoo/casecore/engine/save"
	"github.com/nathoo/casecore/types"
)

// maxBacklog is how many output lines the backlog keeps.
const maxBacklog = 2000

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Options configures the TUI.
type Options struct {
	SaveDir        string
	MsPerCharacter int
	Trace          bool
}

// Model is the Bubble Tea model for playing a case.
type Model struct {
	engine *engine.Engine

	viewport viewport.Model
	input    textinput.Model
	history  *History
	backlog  ring[rawLine] // accumulated output lines (unstyled, for re-wrapping)

	stage     *stage
	stages    int // id of the most recent stage
	clock     dialog.Clock
	msPerChar int

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
	saveDir  string
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	saveDir := opts.SaveDir
	if saveDir == "" {
		saveDir = config.DefaultSaveDir()
	}
	return Model{
		engine:    eng,
		input:     ti,
		history:   NewHistory(100),
		backlog:   newRing[rawLine](maxBacklog),
		clock:     dialog.SystemClock{},
		msPerChar: opts.MsPerCharacter,
		trace:     opts.Trace,
		saveDir:   saveDir,
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, opts Options) error {
	m := New(eng, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the title, the intro and
// the opening scene.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		info := m.engine.Case.Info
		title := info.Title
		if info.Version != "" {
			title += " v" + info.Version
		}
		if info.Author != "" {
			title += " by " + info.Author
		}
		lines := []string{title, ""}

		result := m.engine.Begin()
		lines = append(lines, result.Output...)
		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, ticks, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(m.width, 1)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		}
		m.layout()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case tickMsg:
		if m.stage == nil || m.stage.id != msg.id || m.stage.done {
			return m, nil
		}
		if m.stage.advance() {
			return m, m.stage.tick()
		}
		m.layout()
		return m, nil

	case gameOutputMsg:
		var cmd tea.Cmd
		m, cmd = m.show(msg)
		cmds = append(cmds, cmd)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line. An empty line continues
// the dialog; while a line is still typing, enter reveals the rest of it.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.stage != nil && !m.stage.done {
		m.stage.player.Skip()
		m.layout()
		return m, nil
	}

	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input != "" {
		m.history.Push(input)
	}
	m.history.ResetCursor()

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			return m.show(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
		}
		input = m.lastCmd
	} else if input != "" && !strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m.show(gameOutputMsg{input: input, lines: output, isSystem: true})
	}

	// Case command.
	m.dismissStage()
	result := m.engine.Step(input)
	output := result.Output
	if m.trace {
		output = append(output, m.formatTrace(result)...)
	}
	return m.show(gameOutputMsg{input: input, lines: output})
}

// show appends msg to the backlog. When the engine is waiting on a dialog
// line, the line moves from the backlog to a new stage that types it out.
func (m Model) show(msg gameOutputMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	lines := msg.lines
	if !msg.isSystem && m.stage == nil {
		m.stages++
		if s := newStage(m.engine, m.stages, m.msPerChar, m.clock); s != nil {
			m.stage = s
			lines = withoutLast(lines, s.line)
			if !s.done {
				cmd = s.tick()
			}
		}
	}
	msg.lines = lines
	m = m.appendOutput(msg)
	m.layout()
	return m, cmd
}

// dismissStage moves the staged line into the backlog.
func (m *Model) dismissStage() {
	if m.stage == nil {
		return
	}
	m.stage.player.Stop()
	m.backlog.push(rawLine{text: m.stage.line, kind: kindDialogue})
	m.stage = nil
}

// withoutLast returns lines with the last occurrence of line removed.
func withoutLast(lines []string, line string) []string {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] == line {
			out := make([]string, 0, len(lines)-1)
			out = append(out, lines[:i]...)
			return append(out, lines[i+1:]...)
		}
	}
	return lines
}

// appendOutput adds lines to the backlog and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.backlog.push(rawLine{text: "> " + msg.input, isInput: true})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.backlog.push(rl)
	}

	// Blank line separator between turns.
	if len(msg.lines) > 0 || msg.input != "" {
		m.backlog.push(rawLine{})
	}

	m.refreshViewport()

	return m
}

// layout sizes the viewport around the stage, status bar and input line.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	vpHeight := m.height - 2 // 1 status bar + 1 input line
	if m.stage != nil {
		vpHeight -= lipgloss.Height(m.stage.render(m.width))
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.refreshViewport()
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.backlog.items {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := ansi.Wordwrap(rl.text, width, "")

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// View renders the full TUI layout: backlog, stage, status bar and input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	parts := []string{m.viewport.View()}
	if m.stage != nil {
		parts = append(parts, m.stage.render(m.width))
	}
	parts = append(parts, m.renderStatusBar(), m.input.View())
	return strings.Join(parts, "\n")
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/speed":
		return m.cmdSpeed(arg), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	var output []string
	if m.engine.Runner != nil {
		output = append(output, "The current conversation will not be saved; loading resumes before it.")
	}

	data, err := m.engine.Save()
	if err != nil {
		return append(output, fmt.Sprintf("Save failed: %v", err))
	}

	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return append(output, fmt.Sprintf("Save failed: %v", err))
	}

	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return append(output, fmt.Sprintf("Save failed: %v", err))
	}
	config.Debugf("tui: saved %s", path)

	return append(output, fmt.Sprintf("Game saved to %s.", name))
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(m.saveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	if title := m.engine.Case.Info.Title; sd.Case != title {
		return []string{fmt.Sprintf("Load failed: %s is a save of %q, not %q.", name, sd.Case, title)}
	}

	m.dismissStage()
	m.engine.Restore(sd)
	output := []string{fmt.Sprintf("Game loaded from %s.", name)}
	return append(output, m.engine.View()...)
}

func (m *Model) cmdSpeed(arg string) []string {
	if arg == "" {
		speed := m.msPerChar
		if speed <= 0 {
			speed = dialog.DefaultMsPerCharacter
		}
		return []string{fmt.Sprintf("Text speed: %d ms per character.", speed)}
	}
	ms, err := strconv.Atoi(arg)
	if err != nil || ms <= 0 {
		return []string{fmt.Sprintf("Invalid speed %q: want a positive number of milliseconds.", arg)}
	}
	m.msPerChar = ms
	return []string{fmt.Sprintf("Text speed set to %d ms per character.", ms)}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]  Save progress (default: quicksave)",
		"  /load [name]  Load progress (default: quicksave)",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Debug: dump current progress",
		"  /speed [ms]   Show or set the text speed",
		"  /trace        Toggle debug trace output",
		"",
		"Case commands:",
		"  (enter)                   Continue the dialog, or finish a typing line",
		"  talk <conversation> (t)   Start a conversation",
		"  <number>                  Pick a numbered option",
		"  present <evidence> (p)    Present evidence",
		"  press                     Press the witness",
		"  next                      Move to the next statement",
		"  end                       Stop presenting when allowed",
		"  evidence (i)              Show the Court Record",
		"  look (l)                  Show what is happening",
		"  again (g)                 Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	p := m.engine.Progress
	var output []string
	if m.engine.Encounter != nil {
		output = append(output, fmt.Sprintf("Encounter: %s", m.engine.Encounter.ID))
	}
	output = append(output,
		fmt.Sprintf("Location: %s", p.Location),
		fmt.Sprintf("Evidence: %v", p.Evidence),
	)
	if p.PartnerID != "" {
		output = append(output, fmt.Sprintf("Partner: %s", p.PartnerID))
	}
	if flags := setKeys(p.Flags); len(flags) > 0 {
		output = append(output, fmt.Sprintf("Flags: %v", flags))
	}
	if done := setKeys(p.CompletedConversation); len(done) > 0 {
		output = append(output, fmt.Sprintf("Completed: %v", done))
	}
	if r := m.engine.Runner; r != nil {
		output = append(output, fmt.Sprintf("Running: %s", r.Script().Root().ID))
		if pr := r.Prompt(); pr != nil {
			output = append(output, fmt.Sprintf("Waiting: %s", pr.Kind))
		}
	}
	return output
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

func (m *Model) formatTrace(result types.Result) []string {
	var lines []string
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
