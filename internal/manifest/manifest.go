// Package manifest handles vortex.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
)

// FileName is the name of the project file.
const FileName = "vortex.toml"

// DefaultEntry is the entry file used when [project] entry is unset.
const DefaultEntry = "main.vrtx"

// Environment variables that override manifest settings.
const (
	EnvMaxSteps     = "VORTEX_MAX_STEPS"
	EnvLogVerbosity = "VORTEX_LOG_VERBOSITY"
)

var log = commonlog.GetLogger("vortex")

// Manifest represents a vortex.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Run     Run     `toml:"run"`
	Debug   Debug   `toml:"debug"`
	Log     Log     `toml:"log"`

	// Dir is the directory containing the vortex.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name  string `toml:"name"`
	Entry string `toml:"entry"`
}

// Run configures program execution.
type Run struct {
	// MaxSteps bounds executed instructions; 0 means unlimited.
	MaxSteps int `toml:"max-steps"`
}

// Debug selects the listings printed before a program runs.
type Debug struct {
	Tokens      bool `toml:"tokens"`
	AST         bool `toml:"ast"`
	Disassemble bool `toml:"disassemble"`
}

// Log configures commonlog output.
type Log struct {
	Verbosity int `toml:"verbosity"`
}

// Load parses a vortex.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(string(data), path)
	if err != nil {
		return nil, err
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes manifest text. Unknown keys are logged and ignored; path
// is used in messages only.
func Parse(text, path string) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(text, &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.Warningf("%s: unknown key %q", path, key.String())
	}

	if m.Run.MaxSteps < 0 {
		return nil, fmt.Errorf("%s: run.max-steps must not be negative", path)
	}

	// Defaults
	if m.Project.Entry == "" {
		m.Project.Entry = DefaultEntry
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a vortex.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// EntryPath returns the absolute path of the entry file.
func (m *Manifest) EntryPath() string {
	if filepath.IsAbs(m.Project.Entry) {
		return m.Project.Entry
	}
	return filepath.Join(m.Dir, m.Project.Entry)
}

// ApplyEnv overrides settings from environment variables, read through
// lookup (normally os.LookupEnv).
func (m *Manifest) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvMaxSteps); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return fmt.Errorf("%s: invalid step count %q", EnvMaxSteps, v)
		}
		m.Run.MaxSteps = n
	}
	if v, ok := lookup(EnvLogVerbosity); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid verbosity %q", EnvLogVerbosity, v)
		}
		m.Log.Verbosity = n
	}
	return nil
}
