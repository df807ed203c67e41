package vortex

import (
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/tliron/commonlog"

	"github.com/aabanakhtar-github/vortex-lang/internal/compiler"
	"github.com/aabanakhtar-github/vortex-lang/internal/diag"
	"github.com/aabanakhtar-github/vortex-lang/internal/parser"
)

// Version is the vortex version string.
const Version = "0.1.0"

var log = commonlog.GetLogger("vortex")

// Run compiles and executes a Vortex program.
// This is a convenience function for one-off execution.
// For repeated execution of the same program, use Compile followed by Program.Run.
//
// Returns the program output as a string. If config.Output is set, output
// is written there and the returned string is empty.
//
// A program with only recoverable compile errors still runs whatever
// compiled; the returned error then lists the compile errors together with
// any runtime error.
//
// Example:
//
//	output, err := vortex.Run(`print 1 + 2 * 3;`, nil)
//	// output: "7\n"
func Run(source string, config *Config) (string, error) {
	prog, err := Compile(source, config)
	if prog == nil {
		return "", err
	}
	output, runErr := prog.Run(config)
	if runErr != nil {
		if err == nil {
			return output, runErr
		}
		err = multierror.Append(err, runErr)
	}
	return output, err
}

// Compile parses and compiles a Vortex program.
//
// Compile follows go/parser: it returns whatever it could build together
// with an error listing every *ParseError and *CompileError found. The
// Program is nil only when a fatal error (such as constant pool
// exhaustion) stopped code generation. Diagnostics are also written to
// config.Diagnostics as they are found.
//
// Example:
//
//	prog, err := vortex.Compile(`x : Float -> 2; print x * x;`, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	output, _ := prog.Run(nil)
func Compile(source string, config *Config) (*Program, error) {
	config = config.withDefaults()

	var errs diag.Collector
	reporter := config.reporter(&errs)

	tree := parser.ParseSource(source, config.Filename, reporter)
	gen := compiler.NewGenerator(compiler.NewProgram(config.Filename), reporter, config.compilerOptions()...)
	gen.GenerateProgram(tree)
	compiled := gen.Finish()

	err := convertDiagnostics(errs.Diagnostics())
	if gen.Fatal() {
		log.Errorf("compilation of %s aborted", config.Filename)
		return nil, err
	}
	log.Debugf("compiled %s: %d bytes of code", config.Filename, len(compiled.Code))
	return &Program{compiled: compiled, source: source}, err
}

// Exec is a simplified interface for running a Vortex program.
// It writes printed values to output and returns any error.
//
// Example:
//
//	err := vortex.Exec(`print "hello";`, os.Stdout, nil)
func Exec(source string, output io.Writer, config *Config) error {
	c := Config{}
	if config != nil {
		c = *config
	}
	c.Output = output
	_, err := Run(source, &c)
	return err
}

// MustCompile is like Compile but panics on any error.
// It simplifies initialization of global program variables.
//
// Example:
//
//	var squares = vortex.MustCompile(`i : Float -> 1; while i <= 3 { print i * i; i -> i + 1; }`)
func MustCompile(source string) *Program {
	prog, err := Compile(source, nil)
	if err != nil {
		panic(err)
	}
	return prog
}
