package vortex

import (
	"io"

	"github.com/aabanakhtar-github/vortex-lang/internal/compiler"
	"github.com/aabanakhtar-github/vortex-lang/internal/diag"
)

// DefaultFilename names programs compiled without a Config.Filename.
const DefaultFilename = "<input>"

// Config holds configuration options for compiling and running programs.
// A nil *Config is valid and means all defaults.
type Config struct {
	// Filename is the source name used in diagnostics (default: "<input>").
	Filename string

	// Output is the writer for print statements.
	// If nil, output is captured and returned from Run.
	Output io.Writer

	// Diagnostics receives syntax and compile errors as they are found, in
	// the three-line "VORTEX ERROR" form. If nil, they are only returned.
	Diagnostics io.Writer

	// LogDiagnostics also forwards syntax and compile errors to the
	// "vortex" logger.
	LogDiagnostics bool

	// MaxSteps bounds the number of executed instructions.
	// Zero means no limit.
	MaxSteps int

	// maxConstants lowers the constant pool limit; used by tests.
	maxConstants int
}

// withDefaults returns a copy of c with default values for unset fields.
func (c *Config) withDefaults() *Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.Filename == "" {
		out.Filename = DefaultFilename
	}
	return &out
}

// reporter returns the diagnostics sink for one compilation: errs, plus the
// writer and logger selected by the configuration.
func (c *Config) reporter(errs *diag.Collector) diag.Reporter {
	reporters := []diag.Reporter{errs}
	if c.Diagnostics != nil {
		reporters = append(reporters, &diag.WriterReporter{W: c.Diagnostics})
	}
	if c.LogDiagnostics {
		reporters = append(reporters, diag.NewLogReporter("vortex"))
	}
	if len(reporters) == 1 {
		return errs
	}
	return diag.Tee(reporters...)
}

func (c *Config) compilerOptions() []compiler.Option {
	if c.maxConstants > 0 {
		return []compiler.Option{compiler.WithMaxConstants(c.maxConstants)}
	}
	return nil
}
