package vortex

import (
	"errors"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/aabanakhtar-github/vortex-lang/internal/compiler"
	"github.com/aabanakhtar-github/vortex-lang/internal/diag"
	"github.com/aabanakhtar-github/vortex-lang/internal/parser"
	"github.com/aabanakhtar-github/vortex-lang/internal/vm"
)

// ErrSessionAborted is returned by Session.Eval after a fatal compile error
// has made the session unusable.
var ErrSessionAborted = errors.New("vortex: session aborted by a fatal compile error")

// Session compiles and runs source one chunk at a time, keeping global
// variables from earlier chunks. It backs the interactive prompt.
//
// All chunks are appended to a single bytecode program; each Eval runs
// only the code generated for its own chunk.
type Session struct {
	config *Config
	gen    *compiler.Generator
	vm     *vm.VM
}

// NewSession creates an empty session. Printed values go to config.Output,
// or os.Stdout if it is nil.
func NewSession(config *Config) *Session {
	config = config.withDefaults()
	if config.Output == nil {
		config.Output = os.Stdout
	}
	gen := compiler.NewGenerator(compiler.NewProgram(config.Filename), nil, config.compilerOptions()...)
	return &Session{
		config: config,
		gen:    gen,
		vm:     vm.New(gen.Program(), vm.Config{Output: config.Output, MaxSteps: config.MaxSteps}),
	}
}

// Eval compiles a chunk of source and runs the statements that compiled.
// The returned error lists syntax and compile errors and any runtime error.
func (s *Session) Eval(source string) error {
	if s.gen.Fatal() {
		return ErrSessionAborted
	}

	var errs diag.Collector
	reporter := s.config.reporter(&errs)

	tree := parser.ParseSource(source, s.config.Filename, reporter)
	start := s.gen.Reopen()
	s.gen.GenerateProgram(tree)
	s.gen.Finish()

	err := convertDiagnostics(errs.Diagnostics())
	if s.gen.Fatal() {
		return err
	}
	if runErr := s.vm.Resume(start); runErr != nil {
		if err == nil {
			return convertRuntimeError(runErr)
		}
		err = multierror.Append(err, convertRuntimeError(runErr))
	}
	return err
}

// Globals returns the names of the globals declared so far.
func (s *Session) Globals() []string {
	return append([]string(nil), s.gen.Program().Globals...)
}

// Global returns the printed form of a global variable's current value.
func (s *Session) Global(name string) (string, bool) {
	v, ok := s.vm.Global(name)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// Disassemble returns a listing of all code generated so far.
func (s *Session) Disassemble() string {
	return s.gen.Program().Disassemble()
}
