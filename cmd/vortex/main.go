// vortex - Vortex language compiler and virtual machine
//
// Runs a Vortex source file, a compiled .vrtxc file, source given with -e,
// the entry file of the enclosing vortex.toml project, or an interactive
// prompt.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tliron/commonlog"

	vortex "github.com/aabanakhtar-github/vortex-lang"
	"github.com/aabanakhtar-github/vortex-lang/internal/ast"
	"github.com/aabanakhtar-github/vortex-lang/internal/lexer"
	"github.com/aabanakhtar-github/vortex-lang/internal/manifest"
	"github.com/aabanakhtar-github/vortex-lang/internal/parser"
	"github.com/aabanakhtar-github/vortex-lang/internal/semantic"

	_ "github.com/tliron/commonlog/simple"
)

// version is set at build time via -ldflags.
// For development builds, it will be "dev".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitRuntime = 1
	exitFailure = 2 // usage, I/O or compile errors
)

// compiledExt marks files holding a compiled program.
const compiledExt = ".vrtxc"

const (
	shortUsage = "usage: vortex [options] [file.vrtx | file.vrtxc | -e source]"
	longUsage  = `Options:
  -e source         run source given on the command line
  -o file.vrtxc     write the compiled program to a file and exit
  -max-steps N      stop after N executed instructions (0 = unlimited)
  -v N              log verbosity (default 0)
  -W                report lint warnings before running

Debugging arguments:
  -tokens           print the token stream before running
  -ast              print the syntax tree before running
  -d                print bytecode assembly before running

Other:
  -h, --help        show this help message
  -version          show vortex version and exit

Without a file or -e, the entry file of the nearest vortex.toml is run.
Without a project either, an interactive prompt is started.

Environment (also read from .env):
  VORTEX_MAX_STEPS      default for -max-steps
  VORTEX_LOG_VERBOSITY  default for -v
`
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options holds the parsed command line. The *Set fields record whether a
// flag was given, so that it can override the manifest and environment.
type options struct {
	source    string
	hasSource bool
	file      string
	outFile   string

	maxSteps     int
	maxStepsSet  bool
	verbosity    int
	verbositySet bool

	tokens bool
	ast    bool
	disasm bool
	lint   bool

	help        bool
	showVersion bool
}

// settings are the effective options after merging flags, environment and
// manifest.
type settings struct {
	maxSteps  int
	verbosity int
	tokens    bool
	ast       bool
	disasm    bool
	lint      bool
	outFile   string
}

// parseArgs parses arguments manually rather than using the "flag"
// package, so that the single-dash long flags read like the rest of the
// toolchain and a file name may come before or after the flags.
func parseArgs(args []string) (options, error) {
	var opts options

	needArg := func(i int, flag string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("flag needs an argument: %s", flag)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-e":
			v, err := needArg(i, arg)
			if err != nil {
				return opts, err
			}
			i++
			opts.source, opts.hasSource = v, true
		case "-o":
			v, err := needArg(i, arg)
			if err != nil {
				return opts, err
			}
			i++
			opts.outFile = v
		case "-max-steps", "--max-steps":
			v, err := needArg(i, arg)
			if err != nil {
				return opts, err
			}
			i++
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return opts, fmt.Errorf("invalid step count: %s", v)
			}
			opts.maxSteps, opts.maxStepsSet = n, true
		case "-v":
			v, err := needArg(i, arg)
			if err != nil {
				return opts, err
			}
			i++
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, fmt.Errorf("invalid verbosity: %s", v)
			}
			opts.verbosity, opts.verbositySet = n, true
		case "-tokens":
			opts.tokens = true
		case "-ast":
			opts.ast = true
		case "-d":
			opts.disasm = true
		case "-W":
			opts.lint = true
		case "-h", "--help":
			opts.help = true
		case "-version", "--version":
			opts.showVersion = true
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return opts, fmt.Errorf("flag provided but not defined: %s", arg)
			}
			if opts.file != "" {
				return opts, fmt.Errorf("more than one input file: %s", arg)
			}
			opts.file = arg
		}
	}

	if opts.hasSource && opts.file != "" {
		return opts, errors.New("-e cannot be combined with an input file")
	}
	return opts, nil
}

// resolve merges the layers: flags override the environment, which
// overrides the manifest.
func resolve(opts options, m *manifest.Manifest) settings {
	s := settings{
		maxSteps:  m.Run.MaxSteps,
		verbosity: m.Log.Verbosity,
		tokens:    m.Debug.Tokens || opts.tokens,
		ast:       m.Debug.AST || opts.ast,
		disasm:    m.Debug.Disassemble || opts.disasm,
		lint:      opts.lint,
		outFile:   opts.outFile,
	}
	if opts.maxStepsSet {
		s.maxSteps = opts.maxSteps
	}
	if opts.verbositySet {
		s.verbosity = opts.verbosity
	}
	return s
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "vortex: %v\n%s\n", err, shortUsage)
		return exitFailure
	}
	if opts.help {
		fmt.Fprintf(stdout, "vortex %s - Vortex language\n\n%s\n\n%s", version, shortUsage, longUsage)
		return exitOK
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "vortex version %s\n", version)
		fmt.Fprintf(stdout, "  commit: %s\n", commit)
		fmt.Fprintf(stdout, "  built:  %s\n", date)
		fmt.Fprintf(stdout, "  language: %s\n", vortex.Version)
		return exitOK
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "vortex: .env: %v\n", err)
		return exitFailure
	}

	found, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(stderr, "vortex: %v\n", err)
		return exitFailure
	}
	m := found
	if m == nil {
		m = &manifest.Manifest{}
	}
	if err := m.ApplyEnv(os.LookupEnv); err != nil {
		fmt.Fprintf(stderr, "vortex: %v\n", err)
		return exitFailure
	}

	s := resolve(opts, m)
	commonlog.Configure(s.verbosity, nil)

	switch {
	case opts.hasSource:
		return runSource(opts.source, "<command-line>", s, stdout, stderr)
	case opts.file != "":
		if strings.HasSuffix(opts.file, compiledExt) {
			return runCompiled(opts.file, s, stdout, stderr)
		}
		return runFile(opts.file, stdin, s, stdout, stderr)
	case found != nil:
		return runFile(found.EntryPath(), stdin, s, stdout, stderr)
	default:
		return repl(stdin, s, stdout, stderr)
	}
}

// runFile runs a source file; "-" reads the program from stdin.
func runFile(path string, stdin io.Reader, s settings, stdout, stderr io.Writer) int {
	var src []byte
	var err error
	if path == "-" {
		src, err = io.ReadAll(stdin)
		path = "<stdin>"
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(stderr, "vortex: cannot read %s: %v\n", path, err)
		return exitFailure
	}
	return runSource(string(src), path, s, stdout, stderr)
}

// runSource compiles and runs source. Syntax and compile errors are printed
// as they are found; the statements that compiled still run.
func runSource(src, filename string, s settings, stdout, stderr io.Writer) int {
	if s.tokens {
		for _, tok := range lexer.Tokenize(src, filename) {
			fmt.Fprintln(stdout, tok)
		}
	}
	if s.ast {
		fmt.Fprint(stdout, ast.String(parser.ParseSource(src, filename, nil)))
	}
	if s.lint {
		for _, w := range semantic.Check(parser.ParseSource(src, filename, nil)) {
			fmt.Fprintln(stderr, w)
		}
	}

	prog, compileErr := vortex.Compile(src, &vortex.Config{
		Filename:       filename,
		Diagnostics:    stderr,
		LogDiagnostics: s.verbosity > 0,
	})
	if prog == nil {
		return exitFailure
	}
	if s.disasm {
		if err := prog.WriteDisassembly(stdout); err != nil {
			fmt.Fprintf(stderr, "vortex: %v\n", err)
			return exitFailure
		}
	}

	if s.outFile != "" {
		if compileErr != nil {
			fmt.Fprintf(stderr, "vortex: not writing %s: program has errors\n", s.outFile)
			return exitFailure
		}
		data, err := prog.MarshalBinary()
		if err == nil {
			err = os.WriteFile(s.outFile, data, 0o644)
		}
		if err != nil {
			fmt.Fprintf(stderr, "vortex: %v\n", err)
			return exitFailure
		}
		return exitOK
	}

	code := execute(prog, s, stdout, stderr)
	if code == exitOK && compileErr != nil {
		return exitFailure
	}
	return code
}

func runCompiled(path string, s settings, stdout, stderr io.Writer) int {
	prog, err := vortex.LoadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "vortex: cannot load %s: %v\n", path, err)
		return exitFailure
	}
	if s.disasm {
		if err := prog.WriteDisassembly(stdout); err != nil {
			fmt.Fprintf(stderr, "vortex: %v\n", err)
			return exitFailure
		}
	}
	return execute(prog, s, stdout, stderr)
}

// execute runs prog with buffered output.
func execute(prog *vortex.Program, s settings, stdout, stderr io.Writer) int {
	out := bufio.NewWriter(stdout)
	_, err := prog.Run(&vortex.Config{Output: out, MaxSteps: s.maxSteps})
	out.Flush()
	if err != nil {
		fmt.Fprintf(stderr, "vortex: %v\n", err)
		return exitRuntime
	}
	return exitOK
}

// repl reads statements line by line and runs each as soon as it is read.
// Globals persist between lines.
func repl(stdin io.Reader, s settings, stdout, stderr io.Writer) int {
	const prompt = ">> "

	fmt.Fprintf(stdout, "vortex %s (%s); end input to exit\n", vortex.Version, version)
	session := vortex.NewSession(&vortex.Config{
		Filename:       "<stdin>",
		Output:         stdout,
		Diagnostics:    stderr,
		LogDiagnostics: s.verbosity > 0,
		MaxSteps:       s.maxSteps,
	})

	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, prompt)
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		err := session.Eval(line)
		if errors.Is(err, vortex.ErrSessionAborted) {
			fmt.Fprintf(stderr, "vortex: %v\n", err)
			return exitFailure
		}
		var rerr *vortex.RuntimeError
		if errors.As(err, &rerr) {
			fmt.Fprintf(stderr, "vortex: %v\n", rerr)
		}
		if s.disasm {
			fmt.Fprint(stdout, session.Disassemble())
		}
	}
	fmt.Fprintln(stdout)

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "vortex: %v\n", err)
		return exitFailure
	}
	return exitOK
}
