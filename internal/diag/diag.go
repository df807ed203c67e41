// Package diag is the diagnostics channel shared by the parser and the code
// generator. Reporting is fire-and-forget: a Reporter never stops the stage
// that calls it.
package diag

import (
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/tliron/commonlog"

	"github.com/aabanakhtar-github/vortex-lang/internal/token"
)

// Stage identifies the pipeline stage that produced a diagnostic.
type Stage uint8

const (
	StageSyntax Stage = iota
	StageCompile
)

func (s Stage) String() string {
	if s == StageCompile {
		return "compile"
	}
	return "syntax"
}

// Diagnostic is a single reported problem. Pos.Filename and Pos.Line may be
// unset when the location is unknown.
type Diagnostic struct {
	Stage   Stage
	Pos     token.Position
	Message string
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	switch {
	case d.Pos.Filename != "" && d.Pos.Line > 0:
		return fmt.Sprintf("%s:%d: %s", d.Pos.Filename, d.Pos.Line, d.Message)
	case d.Pos.Line > 0:
		return fmt.Sprintf("line %d: %s", d.Pos.Line, d.Message)
	}
	return d.Message
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// Collector accumulates diagnostics in report order.
// It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.diags = append(c.diags, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.diags...)
}

// Len returns the number of diagnostics reported so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.diags)
}

// Err returns nil if nothing was reported, otherwise a *multierror.Error
// holding one Diagnostic per entry.
func (c *Collector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result *multierror.Error
	for _, d := range c.diags {
		result = multierror.Append(result, d)
	}
	return result.ErrorOrNil()
}

// Tee fans each diagnostic out to every reporter in order.
func Tee(reporters ...Reporter) Reporter {
	return ReporterFunc(func(d Diagnostic) {
		for _, r := range reporters {
			if r != nil {
				r.Report(d)
			}
		}
	})
}

// LogReporter forwards diagnostics to a commonlog logger.
type LogReporter struct {
	Log commonlog.Logger
}

// NewLogReporter returns a LogReporter using the named logger.
func NewLogReporter(name string) *LogReporter {
	return &LogReporter{Log: commonlog.GetLogger(name)}
}

func (r *LogReporter) Report(d Diagnostic) {
	r.Log.Errorf("%s error: %s", d.Stage, d.Error())
}

// WriterReporter prints diagnostics in the user-facing three-line form:
//
//	VORTEX ERROR: message
//	in file: main.vrtx
//	on line: 3
//
// The file and line lines are omitted when unknown. Write errors are ignored.
type WriterReporter struct {
	W io.Writer
}

func (r *WriterReporter) Report(d Diagnostic) {
	fmt.Fprintf(r.W, "VORTEX ERROR: %s\n", d.Message)
	if d.Pos.Filename != "" {
		fmt.Fprintf(r.W, "in file: %s\n", d.Pos.Filename)
	}
	if d.Pos.Line > 0 {
		fmt.Fprintf(r.W, "on line: %d\n", d.Pos.Line)
	}
}
