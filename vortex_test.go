package vortex_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	vortex "github.com/aabanakhtar-github/vortex-lang"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		program string
		want    string
	}{
		{
			name:    "arithmetic",
			program: `print 2 + 3 * 4;`,
			want:    "14\n",
		},
		{
			name:    "literals",
			program: `print 3.5; print "hi"; print true; print nil;`,
			want:    "3.5\nhi\ntrue\nnil\n",
		},
		{
			name:    "globals",
			program: `x : Float -> 1; x -> x + 1; print x;`,
			want:    "2\n",
		},
		{
			name:    "shadowing",
			program: `x : Float -> 1; { x : Float -> 2; print x; } print x;`,
			want:    "2\n1\n",
		},
		{
			name:    "if else",
			program: `if (false) { print 1; } else { print 2; }`,
			want:    "2\n",
		},
		{
			name:    "if without else",
			program: `if (true) { print 1; } print 3;`,
			want:    "1\n3\n",
		},
		{
			name:    "while",
			program: "n : Float -> 1; while n <= 16 { print n; n -> n * 2; }",
			want:    "1\n2\n4\n8\n16\n",
		},
		{
			name:    "comments",
			program: "# greeting\nprint \"hello\"; # trailing\n",
			want:    "hello\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vortex.Run(tt.program, nil)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Run() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	// Test that Compile returns a reusable program
	prog, err := vortex.Compile(`total : Float -> 0; i : Float -> 1; while i <= 4 { total -> total + i; i -> i + 1; } print total;`, nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := prog.Run(nil)
		if err != nil {
			t.Errorf("Run(%d) error = %v", i, err)
			continue
		}
		if got != "10\n" {
			t.Errorf("Run(%d) = %q, want %q", i, got, "10\n")
		}
	}
}

func TestMustCompile(t *testing.T) {
	// Test that MustCompile panics on error
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustCompile() should panic on invalid program")
		}
	}()

	_ = vortex.MustCompile(`{ print 1;`) // Missing closing brace
}

func TestMustCompileValid(t *testing.T) {
	prog := vortex.MustCompile(`print 1;`)
	if prog == nil {
		t.Error("MustCompile() returned nil for valid program")
	}
}

func TestParseError(t *testing.T) {
	prog, err := vortex.Compile("print 1;\nprint 2 +;", &vortex.Config{Filename: "main.vrtx"})
	if err == nil {
		t.Fatal("expected error for invalid program")
	}

	var pe *vortex.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Filename != "main.vrtx" || pe.Line != 2 {
		t.Errorf("ParseError at %s:%d, want main.vrtx:2", pe.Filename, pe.Line)
	}
	if prog == nil {
		t.Fatal("recoverable syntax error should still return a program")
	}
}

func TestCompileError(t *testing.T) {
	_, err := vortex.Compile("x : Float -> 1;\nx : Float -> 2;", nil)
	var ce *vortex.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %T (%v)", err, err)
	}
	if ce.Line != 2 || !strings.Contains(ce.Message, "already declared") {
		t.Errorf("CompileError = %+v", ce)
	}
	if ce.Filename != vortex.DefaultFilename {
		t.Errorf("Filename = %q, want %q", ce.Filename, vortex.DefaultFilename)
	}
}

func TestErrorsAreCollected(t *testing.T) {
	_, err := vortex.Compile("print ;\nprint y;\nprint (1;", nil)
	if err == nil {
		t.Fatal("expected errors")
	}
	msg := err.Error()
	for _, want := range []string{"3 errors occurred", "syntax error", "undefined variable 'y'"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not contain %q", msg, want)
		}
	}
}

// TestRecoverableErrorsStillRun checks that statements without errors run
// even when others failed to compile.
func TestRecoverableErrorsStillRun(t *testing.T) {
	got, err := vortex.Run("print 1;\nprint missing;\nprint 2 +;\nprint 3;", nil)
	if err == nil {
		t.Fatal("expected errors")
	}
	if got != "1\n3\n" {
		t.Errorf("Run() = %q, want %q", got, "1\n3\n")
	}
}

func TestFatalCompileError(t *testing.T) {
	config := (&vortex.Config{}).SetMaxConstants(2)
	prog, err := vortex.Compile("print 1; print 2; print 3;", config)
	if prog != nil {
		t.Error("fatal error should not return a program")
	}
	var ce *vortex.CompileError
	if !errors.As(err, &ce) || !strings.Contains(ce.Message, "too many constants") {
		t.Errorf("err = %v, want constant pool error", err)
	}

	out, err := vortex.Run("print 1; print 2; print 3;", config)
	if err == nil || out != "" {
		t.Errorf("Run() = %q, %v; want no output and an error", out, err)
	}
}

func TestRuntimeError(t *testing.T) {
	out, err := vortex.Run("print 1;\nprint \"a\" + 1;\nprint 2;", nil)
	var re *vortex.RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RuntimeError, got %T (%v)", err, err)
	}
	if re.Line != 2 {
		t.Errorf("Line = %d, want 2", re.Line)
	}
	if out != "1\n" {
		t.Errorf("output before error = %q, want %q", out, "1\n")
	}
}

func TestMaxSteps(t *testing.T) {
	_, err := vortex.Run("while true { }", &vortex.Config{MaxSteps: 1000})
	var re *vortex.RuntimeError
	if !errors.As(err, &re) || !strings.Contains(re.Message, "step limit") {
		t.Errorf("err = %v, want step limit error", err)
	}
}

func TestDiagnosticsWriter(t *testing.T) {
	var diags bytes.Buffer
	_, _ = vortex.Compile("print 1;\nprint y;", &vortex.Config{Filename: "a.vrtx", Diagnostics: &diags})
	want := "VORTEX ERROR: undefined variable 'y'\nin file: a.vrtx\non line: 2\n"
	if diags.String() != want {
		t.Errorf("diagnostics = %q, want %q", diags.String(), want)
	}
}

func TestLogDiagnostics(t *testing.T) {
	var diags bytes.Buffer
	config := &vortex.Config{Filename: "a.vrtx", Diagnostics: &diags, LogDiagnostics: true}
	prog, err := vortex.Compile("print y;", config)
	if prog == nil || err == nil {
		t.Fatalf("Compile = %v, %v; want a program and an error", prog, err)
	}
	if !strings.Contains(diags.String(), "undefined variable 'y'") {
		t.Errorf("diagnostics = %q", diags.String())
	}

	session := vortex.NewSession(&vortex.Config{Output: &bytes.Buffer{}, LogDiagnostics: true})
	if err := session.Eval("print z;"); err == nil {
		t.Error("Eval returned nil error for an undefined variable")
	}
}

func TestExec(t *testing.T) {
	var out bytes.Buffer
	if err := vortex.Exec(`print "to writer";`, &out, nil); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if out.String() != "to writer\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestProgramDisassemble(t *testing.T) {
	prog := vortex.MustCompile(`x : Float -> 1; print x;`)

	dis := prog.Disassemble()
	for _, want := range []string{"PUSHC", "SAVE_GLOB", "LOAD_GLOB", "PRINT", "HALT"} {
		if !strings.Contains(dis, want) {
			t.Errorf("Disassemble() should contain %q, got: %s", want, dis)
		}
	}
	if prog.Disassemble() != dis {
		t.Error("Disassemble() is not idempotent")
	}
}

func TestProgramSource(t *testing.T) {
	source := `print 1;`
	prog := vortex.MustCompile(source)
	if prog.Source() != source {
		t.Errorf("Source() = %q, want %q", prog.Source(), source)
	}
	if got := vortex.MustCompile(`a : Float -> 1; b : Bool -> true;`).Globals(); strings.Join(got, ",") != "a,b" {
		t.Errorf("Globals() = %v", got)
	}
}

func TestMarshalAndLoad(t *testing.T) {
	prog := vortex.MustCompile(`s : String -> "saved"; if s == "saved" print s;`)
	data, err := prog.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}

	loaded, err := vortex.Load(data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, err := loaded.Run(nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "saved\n" {
		t.Errorf("Run() = %q, want %q", got, "saved\n")
	}
	if loaded.Disassemble() != prog.Disassemble() {
		t.Error("loaded program disassembles differently")
	}

	if _, err := vortex.Load([]byte("not bytecode")); err == nil {
		t.Error("Load() accepted garbage")
	}
}

// Benchmark tests
func BenchmarkCompileAndRun(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = vortex.Run(`i : Float -> 0; while i < 100 { i -> i + 1; }`, nil)
	}
}

func BenchmarkCompiledRun(b *testing.B) {
	prog := vortex.MustCompile(`i : Float -> 0; while i < 100 { i -> i + 1; }`)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = prog.Run(nil)
	}
}

// Example functions for documentation
func ExampleRun() {
	output, _ := vortex.Run(`print 1 + 2 * 3;`, nil)
	fmt.Print(output)
	// Output: 7
}

func ExampleCompile() {
	prog, _ := vortex.Compile(`x : Float -> 1; { x : Float -> 2; print x; } print x;`, nil)
	output, _ := prog.Run(nil)
	fmt.Print(output)
	// Output:
	// 2
	// 1
}

func ExampleSession() {
	var out bytes.Buffer
	s := vortex.NewSession(&vortex.Config{Output: &out})
	_ = s.Eval(`greeting : String -> "hello";`)
	_ = s.Eval(`print greeting;`)
	fmt.Print(out.String())
	// Output: hello
}
