package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathoo/casecore/cli"
	"github.com/nathoo/casecore/config"
	"github.com/nathoo/casecore/engine"
	"github.com/nathoo/casecore/engine/audio"
	"github.com/nathoo/casecore/loader"
	"github.com/nathoo/casecore/tui"
)

type playOptions struct {
	envFile   string
	plain     bool
	trace     bool
	script    string
	saveDir   string
	textSpeed int
}

func newPlayCmd() *cobra.Command {
	var opts playOptions
	cmd := &cobra.Command{
		Use:   "play [case]",
		Short: "Play a case",
		Long: `Play a case in the terminal.

The case defaults to CASECORE_CONTENT_DIR. The full-screen player is used
when stdout is a terminal; --plain or a redirected stdout selects the line
player, and --script feeds commands from a file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.envFile, "env", "", "read settings from this .env file instead of ./.env")
	f.BoolVar(&opts.plain, "plain", false, "use the line player instead of the full-screen one")
	f.BoolVar(&opts.trace, "trace", false, "print the events of every command")
	f.StringVar(&opts.script, "script", "", "read commands from a file (implies --plain)")
	f.StringVar(&opts.saveDir, "save-dir", "", "directory for save files (default from CASECORE_SAVE_DIR)")
	f.IntVar(&opts.textSpeed, "text-speed", 0, "milliseconds per revealed character (default from CASECORE_TEXT_SPEED_MS)")
	return cmd
}

func runPlay(cmd *cobra.Command, args []string, opts playOptions) error {
	cfg, err := loadConfig(opts.envFile)
	if err != nil {
		return err
	}
	if opts.saveDir != "" {
		cfg.SaveDir = opts.saveDir
	}
	if opts.textSpeed < 0 {
		return fmt.Errorf("--text-speed must be positive, got %d", opts.textSpeed)
	}
	if opts.textSpeed > 0 {
		cfg.TextSpeedMs = opts.textSpeed
	}
	if opts.plain {
		cfg.Plain = true
	}

	path := cfg.ContentDir
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no case given: pass a case path or set CASECORE_CONTENT_DIR")
	}

	cs, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("loading case: %w", err)
	}
	config.Debugf("play: loaded %q from %s", cs.Info.Title, path)

	eng := engine.New(cs, &audio.Silent{Verbose: cfg.Verbose})

	// Script mode: open file, force plain, echo commands.
	if opts.script != "" {
		f, err := os.Open(opts.script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := newLinePlayer(cmd, eng, cfg, opts.trace)
		c.In = f
		c.EchoInput = true
		c.Run()
		return nil
	}

	// Use the line player if asked to or stdout is not a terminal.
	if cfg.Plain || !isTerminal() {
		c := newLinePlayer(cmd, eng, cfg, opts.trace)
		c.In = cmd.InOrStdin()
		c.Run()
		return nil
	}

	return tui.Run(eng, tui.Options{
		SaveDir:        cfg.SaveDir,
		MsPerCharacter: cfg.TextSpeedMs,
		Trace:          opts.trace,
	})
}

func newLinePlayer(cmd *cobra.Command, eng *engine.Engine, cfg *config.Config, trace bool) *cli.CLI {
	info := eng.Case.Info
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s v%s by %s\n\n", info.Title, info.Version, info.Author)
	c := cli.New(eng)
	c.Out = out
	c.SaveDir = cfg.SaveDir
	c.Trace = trace
	return c
}

func loadConfig(envFile string) (*config.Config, error) {
	if envFile != "" {
		return config.LoadFile(envFile)
	}
	return config.Load()
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
