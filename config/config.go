// Package config reads casecore settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the player settings. Command-line flags override it.
type Config struct {
	ContentDir  string `env:"CASECORE_CONTENT_DIR"`
	SaveDir     string `env:"CASECORE_SAVE_DIR"`
	TextSpeedMs int    `env:"CASECORE_TEXT_SPEED_MS" envDefault:"33"`
	Verbose     bool   `env:"CASECORE_VERBOSE"`
	Plain       bool   `env:"CASECORE_PLAIN"`
}

// Verbose enables Debugf output. Load sets it from CASECORE_VERBOSE.
var Verbose bool

// Load reads .env from the working directory if present, then parses the
// environment. Values already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	return parse()
}

// LoadFile is Load with an explicit .env path.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return parse()
}

func parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TextSpeedMs <= 0 {
		return nil, fmt.Errorf("CASECORE_TEXT_SPEED_MS must be positive, got %d", cfg.TextSpeedMs)
	}
	if cfg.SaveDir == "" {
		cfg.SaveDir = DefaultSaveDir()
	}
	cfg.SaveDir = expandHome(cfg.SaveDir)
	cfg.ContentDir = expandHome(cfg.ContentDir)
	Verbose = cfg.Verbose
	return &cfg, nil
}

// DefaultSaveDir is ~/.casecore/saves, or a relative saves directory when
// the home directory is unknown.
func DefaultSaveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".casecore", "saves")
	}
	return filepath.Join(home, ".casecore", "saves")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Debugf logs when Verbose is on.
func Debugf(format string, args ...any) {
	if Verbose {
		log.Printf(format, args...)
	}
}
