package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/aabanakhtar-github/vortex-lang/internal/compiler"
	"github.com/aabanakhtar-github/vortex-lang/internal/diag"
	"github.com/aabanakhtar-github/vortex-lang/internal/parser"
	"github.com/aabanakhtar-github/vortex-lang/internal/types"
)

// compileSource parses and compiles a program, failing on any diagnostic.
func compileSource(t *testing.T, source string) *compiler.Program {
	t.Helper()

	var errs diag.Collector
	tree := parser.ParseSource(source, "test.vrtx", &errs)
	prog := compiler.Compile(tree, "test.vrtx", &errs)
	if errs.Len() != 0 {
		t.Fatalf("compile errors: %v", errs.Err())
	}
	return prog
}

// run executes source and returns its output.
func run(t *testing.T, source string) string {
	t.Helper()

	var output bytes.Buffer
	vm := New(compileSource(t, source), Config{Output: &output})
	if err := vm.Run(); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if vm.StackDepth() != 0 {
		t.Errorf("stack depth after run = %d, want 0", vm.StackDepth())
	}
	return output.String()
}

// runError executes source and returns the runtime error.
func runError(t *testing.T, source string) *RuntimeError {
	t.Helper()

	vm := New(compileSource(t, source), Config{Output: &bytes.Buffer{}, MaxSteps: 10000})
	err := vm.Run()
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("Run() error = %v, want *RuntimeError", err)
	}
	return rerr
}

func TestPrint(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"precedence", "print 1 + 2 * 3;", "7\n"},
		{"grouping", "print (1 + 2) * 3;", "9\n"},
		{"left assoc subtraction", "print 10 - 4 - 3;", "3\n"},
		{"left assoc division", "print 8 / 4 / 2;", "1\n"},
		{"fraction", "print 7 / 2;", "3.5\n"},
		{"negation", "print -(2 + 3);", "-5\n"},
		{"float literal", "print 0.25;", "0.25\n"},
		{"trailing zero", "print 2.50;", "2.5\n"},
		{"large", "print 1000000 * 1000000;", "1000000000000\n"},
		{"division by zero", "print 1 / 0;", "inf\n"},
		{"string", `print "hello, world";`, "hello, world\n"},
		{"true", "print true;", "true\n"},
		{"false", "print false;", "false\n"},
		{"nil", "print nil;", "nil\n"},
		{"not", "print !true; print !nil; print !0;", "false\ntrue\nfalse\n"},
		{"equality", "print 1 == 1; print 1 != 1; print 1 == 2;", "true\nfalse\nfalse\n"},
		{"equality chain", "print 1 == 1 == true;", "true\n"},
		{"mixed kinds unequal", `print 1 == "1"; print nil == false;`, "false\nfalse\n"},
		{"string equality", `print "ab" == "ab"; print "ab" != "ba";`, "true\ntrue\n"},
		{"nil equality", "print nil == nil;", "true\n"},
		{"relational", "print 1 < 2; print 2 <= 2; print 1 > 2; print 3 >= 4;", "true\ntrue\nfalse\nfalse\n"},
		{"string ordering", `print "a" < "b"; print "b" >= "a"; print "a" > "a";`, "true\ntrue\nfalse\n"},
		{"multi-line string", "print \"a\nb\";", "a\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.source); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVariables(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"global", "x : Float -> 5; print x;", "5\n"},
		{"global assignment", "x : Float -> 5; x -> x * 2; print x;", "10\n"},
		{"global string", `s : String -> "hi"; print s;`, "hi\n"},
		{"local", "{ a : Float -> 1; print a + 1; }", "2\n"},
		{"local assignment", "{ a : Float -> 1; a -> a + 41; print a; }", "42\n"},
		{"locals in order", "{ a : Float -> 1; b : Float -> 2; print a; print b; print a - b; }", "1\n2\n-1\n"},
		{"global from block", "g : Float -> 3; { a : Float -> g; g -> a + 1; } print g;", "4\n"},
		{
			name:   "shadowing",
			source: "x : Float -> 1; { x : Float -> 2; print x; } print x;",
			want:   "2\n1\n",
		},
		{
			name:   "nested shadowing",
			source: "{ a : Float -> 1; { a : Float -> 2; { a : Float -> 3; print a; } print a; } print a; }",
			want:   "3\n2\n1\n",
		},
		{
			name:   "outer local from inner block",
			source: "{ a : Float -> 1; { b : Float -> 10; a -> a + b; } print a; }",
			want:   "11\n",
		},
		{
			name:   "sibling blocks reuse slots",
			source: "{ a : Float -> 1; } { b : Float -> 2; print b; }",
			want:   "2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.source); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestControlFlow(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"if true", "if true print 1;", "1\n"},
		{"if false", "if false print 1; print 2;", "2\n"},
		{"if else true", "if 1 < 2 print \"yes\"; else print \"no\";", "yes\n"},
		{"if else false", "if 1 > 2 print \"yes\"; else print \"no\";", "no\n"},
		{"nil is falsy", "if nil print 1; else print 2;", "2\n"},
		{"zero is truthy", "if 0 print 1; else print 2;", "1\n"},
		{"empty string is truthy", `if "" print 1; else print 2;`, "1\n"},
		{"block bodies", "if true { print 1; print 2; } else { print 3; }", "1\n2\n"},
		{"else if", "x : Float -> 2; if x == 1 print 1; else if x == 2 print 2; else print 3;", "2\n"},
		{"locals in branch", "if true { a : Float -> 5; print a; } print 6;", "5\n6\n"},
		{"declaration as body", "if true a : Float -> 5; print 1;", "1\n"},
		{
			name:   "while",
			source: "i : Float -> 0; while i < 3 { print i; i -> i + 1; }",
			want:   "0\n1\n2\n",
		},
		{
			name:   "while never runs",
			source: "while false print 1; print 2;",
			want:   "2\n",
		},
		{
			name:   "while with local",
			source: "n : Float -> 3; s : Float -> 0; while n > 0 { d : Float -> n * 2; s -> s + d; n -> n - 1; } print s;",
			want:   "12\n",
		},
		{
			name:   "nested loops",
			source: "i : Float -> 0; t : Float -> 0; while i < 3 { j : Float -> 0; while j < i { t -> t + 1; j -> j + 1; } i -> i + 1; } print t;",
			want:   "3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.source); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestLiteralRoundTrip checks that printing a literal reproduces it.
func TestLiteralRoundTrip(t *testing.T) {
	for _, lit := range []string{"0", "1", "42", "3.5", "0.125", "123456.789", "true", "false", "nil"} {
		t.Run(lit, func(t *testing.T) {
			if got := run(t, "print "+lit+";"); got != lit+"\n" {
				t.Errorf("print %s = %q", lit, got)
			}
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
		line    int
	}{
		{"add string", `print 1 + "a";`, "operands of ADD must be numbers, got number and string", 1},
		{"multiply bool", "print true * 2;", "operands of MUL must be numbers", 1},
		{"negate string", `print -"a";`, "operand of NEGATE must be a number, got string", 1},
		{"compare mixed", `print 1 < "a";`, "operands of LESS must be two numbers or two strings", 1},
		{"compare nil", "print nil >= nil;", "operands of GREATER_EQ", 1},
		{"line number", "print 1;\n\nprint nil - 1;", "operands of SUB", 3},
		{"infinite loop", "while true { }", "step limit of 10000 exceeded", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runError(t, tt.source)
			if !strings.Contains(err.Message, tt.message) {
				t.Errorf("message = %q, want it to contain %q", err.Message, tt.message)
			}
			if err.Line != tt.line {
				t.Errorf("line = %d, want %d", err.Line, tt.line)
			}
		})
	}
}

func TestRuntimeErrorStopsExecution(t *testing.T) {
	var output bytes.Buffer
	vm := New(compileSource(t, `print 1; print -"x"; print 2;`), Config{Output: &output})
	if err := vm.Run(); err == nil {
		t.Fatal("expected runtime error")
	}
	if output.String() != "1\n" {
		t.Errorf("output = %q, want only the first print", output.String())
	}
}

func TestMalformedBytecode(t *testing.T) {
	tests := []struct {
		name    string
		code    []byte
		consts  []types.Value
		message string
	}{
		{"empty", nil, nil, "ran off the end"},
		{"no halt", []byte{byte(compiler.PushNil)}, nil, "ran off the end"},
		{"underflow", []byte{byte(compiler.Print), byte(compiler.Halt)}, nil, "stack underflow"},
		{"binary underflow", []byte{byte(compiler.PushTrue), byte(compiler.Equal), byte(compiler.Halt)}, nil, "stack underflow"},
		{"unknown opcode", []byte{0xfe}, nil, "unknown opcode 0xfe"},
		{"truncated operand", []byte{byte(compiler.PushConst), 0}, nil, "truncated"},
		{"bad constant", []byte{byte(compiler.PushConst), 0, 0, 5, byte(compiler.Halt)}, nil, "constant index 5 out of range"},
		{
			name:    "jump out of range",
			code:    []byte{byte(compiler.PushConst), 0, 0, 0, byte(compiler.Jump), byte(compiler.Halt)},
			consts:  []types.Value{types.Num(100)},
			message: "invalid jump target 100",
		},
		{
			name:    "jump to non-number",
			code:    []byte{byte(compiler.PushTrue), byte(compiler.Jump), byte(compiler.Halt)},
			message: "invalid jump target true",
		},
		{
			name:    "bad global",
			code:    []byte{byte(compiler.PushConst), 0, 0, 0, byte(compiler.LoadGlobal), byte(compiler.Halt)},
			consts:  []types.Value{types.Num(0)},
			message: "invalid global slot 0",
		},
		{
			name:    "bad local",
			code:    []byte{byte(compiler.PushConst), 0, 0, 0, byte(compiler.GetLocal), byte(compiler.Halt)},
			consts:  []types.Value{types.Num(0.5)},
			message: "invalid local slot 0.5",
		},
		{
			name:    "local slot is its own operand",
			code:    []byte{byte(compiler.PushNil), byte(compiler.PushConst), 0, 0, 0, byte(compiler.GetLocal), byte(compiler.Halt)},
			consts:  []types.Value{types.Num(1)},
			message: "invalid local slot 1",
		},
		{
			name: "store into the stored value",
			code: []byte{
				byte(compiler.PushNil), byte(compiler.PushTrue),
				byte(compiler.PushConst), 0, 0, 0, byte(compiler.SetLocal), byte(compiler.Halt),
			},
			consts:  []types.Value{types.Num(1)},
			message: "invalid local slot 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := compiler.NewProgram("bad")
			prog.Code = tt.code
			prog.Constants = tt.consts
			err := New(prog, Config{Output: &bytes.Buffer{}}).Run()
			var rerr *RuntimeError
			if !errors.As(err, &rerr) {
				t.Fatalf("Run() error = %v, want *RuntimeError", err)
			}
			if !strings.Contains(rerr.Message, tt.message) {
				t.Errorf("message = %q, want it to contain %q", rerr.Message, tt.message)
			}
		})
	}
}

func TestRunIsRepeatable(t *testing.T) {
	prog := compileSource(t, "x : Float -> 1; x -> x + 1; print x;")
	for i := 0; i < 2; i++ {
		var output bytes.Buffer
		if err := New(prog, Config{Output: &output}).Run(); err != nil {
			t.Fatal(err)
		}
		if output.String() != "2\n" {
			t.Errorf("run %d output = %q, want %q", i, output.String(), "2\n")
		}
	}
}

func TestGlobalLookup(t *testing.T) {
	prog := compileSource(t, `x : Float -> 6 * 7; s : String -> "v";`)
	vm := New(prog, Config{Output: &bytes.Buffer{}})
	if err := vm.Run(); err != nil {
		t.Fatal(err)
	}
	if v, ok := vm.Global("x"); !ok || v.AsNum() != 42 {
		t.Errorf("Global(x) = %v, %v", v, ok)
	}
	if v, ok := vm.Global("s"); !ok || v.String() != "v" {
		t.Errorf("Global(s) = %v, %v", v, ok)
	}
	if _, ok := vm.Global("missing"); ok {
		t.Error("Global(missing) found")
	}
}

// TestResume runs a program that grows between runs, the way the
// interactive session does.
func TestResume(t *testing.T) {
	var output bytes.Buffer
	g := compiler.NewGenerator(compiler.NewProgram("repl"), nil)
	prog := g.Program()
	vm := New(prog, Config{Output: &output})

	for _, line := range []string{"x : Float -> 1;", "x -> x + 1;", "print x;"} {
		start := g.Reopen()
		g.GenerateProgram(parser.ParseSource(line, "repl", nil))
		g.Finish()
		if err := vm.Resume(start); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}
	if output.String() != "2\n" {
		t.Errorf("output = %q, want %q", output.String(), "2\n")
	}
}

func TestStepLimitCountsInstructions(t *testing.T) {
	prog := compileSource(t, "print 1;")
	// PUSHC, PRINT, HALT
	if err := New(prog, Config{Output: &bytes.Buffer{}, MaxSteps: 3}).Run(); err != nil {
		t.Errorf("3 steps: %v", err)
	}
	if err := New(prog, Config{Output: &bytes.Buffer{}, MaxSteps: 2}).Run(); err == nil {
		t.Error("2 steps: expected step limit error")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPrintWriteError(t *testing.T) {
	err := New(compileSource(t, "print 1;"), Config{Output: failingWriter{}}).Run()
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Run() error = %v, want write failure", err)
	}
}
