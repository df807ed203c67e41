package vortex

import (
	"bytes"
	"io"
	"os"

	"github.com/aabanakhtar-github/vortex-lang/internal/compiler"
	"github.com/aabanakhtar-github/vortex-lang/internal/vm"
)

// Program represents a compiled Vortex program ready for execution.
// It is safe for concurrent use; each call to Run creates an
// independent VM with its own globals.
type Program struct {
	compiled *compiler.Program
	source   string // Original source for debugging
}

// Run executes the program. Returns the output as a string, or an error
// if execution fails.
//
// If config is nil, default configuration is used.
// If config.Output is set, output is written there and the returned
// string will be empty.
func (p *Program) Run(config *Config) (string, error) {
	config = config.withDefaults()

	var outputBuf *bytes.Buffer
	output := config.Output
	if output == nil {
		outputBuf = &bytes.Buffer{}
		output = outputBuf
	}

	v := vm.New(p.compiled, vm.Config{Output: output, MaxSteps: config.MaxSteps})
	if err := v.Run(); err != nil {
		if outputBuf != nil {
			return outputBuf.String(), convertRuntimeError(err)
		}
		return "", convertRuntimeError(err)
	}

	if outputBuf != nil {
		return outputBuf.String(), nil
	}
	return "", nil
}

// Disassemble returns a human-readable representation of the compiled bytecode.
// Useful for debugging and understanding program structure.
func (p *Program) Disassemble() string {
	return p.compiled.Disassemble()
}

// WriteDisassembly writes the listing returned by Disassemble to w.
func (p *Program) WriteDisassembly(w io.Writer) error {
	return p.compiled.WriteDisassembly(w)
}

// Source returns the original source code. It is empty for programs
// loaded from compiled form.
func (p *Program) Source() string {
	return p.source
}

// Globals returns the names of the program's global variables in
// declaration order.
func (p *Program) Globals() []string {
	return append([]string(nil), p.compiled.Globals...)
}

// MarshalBinary encodes the compiled program in the .vrtxc file format.
func (p *Program) MarshalBinary() ([]byte, error) {
	return p.compiled.MarshalBinary()
}

// Load decodes a program written by MarshalBinary.
func Load(data []byte) (*Program, error) {
	compiled, err := compiler.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &Program{compiled: compiled}, nil
}

// LoadFile reads and decodes a .vrtxc file.
func LoadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}
