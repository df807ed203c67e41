package compiler

import (
	"fmt"
	"io"
	"strings"

	"github.com/aabanakhtar-github/vortex-lang/internal/types"
)

// Program is a compiled Vortex program: a flat instruction stream plus the
// tables it indexes. The generator appends to it; the VM only reads it, so
// one Program can be run any number of times.
type Program struct {
	// Filename is the source name, used in listings.
	Filename string

	// Code is the instruction stream.
	Code []byte

	// Constants is the constant pool, one entry per literal occurrence.
	Constants []types.Value

	// Globals holds global variable names by slot index, in declaration order.
	Globals []string

	// Strings holds the heap string objects allocated for this program.
	Strings []*types.String

	// Lines maps code offsets to source lines, run-length encoded.
	Lines []LineInfo

	globalIndex map[string]int
}

// LineInfo records that bytes from Offset up to the next entry's offset
// were generated from source line Line.
type LineInfo struct {
	Offset int `cbor:"1,keyasint"`
	Line   int `cbor:"2,keyasint"`
}

// NewProgram returns an empty program.
func NewProgram(filename string) *Program {
	return &Program{Filename: filename, globalIndex: make(map[string]int)}
}

// NewString allocates a heap string object owned by the program.
func (p *Program) NewString(s string) *types.String {
	obj := &types.String{Chars: s}
	p.Strings = append(p.Strings, obj)
	return obj
}

// AddConstant appends v to the constant pool and returns its index.
// Identical values are not shared.
func (p *Program) AddConstant(v types.Value) int {
	p.Constants = append(p.Constants, v)
	return len(p.Constants) - 1
}

// GlobalIndex returns the slot of a declared global.
func (p *Program) GlobalIndex(name string) (int, bool) {
	idx, ok := p.globalIndex[name]
	return idx, ok
}

// DefineGlobal registers a new global and returns its slot.
func (p *Program) DefineGlobal(name string) int {
	if p.globalIndex == nil {
		p.globalIndex = make(map[string]int)
	}
	idx := len(p.Globals)
	p.Globals = append(p.Globals, name)
	p.globalIndex[name] = idx
	return idx
}

// write appends one byte generated from the given source line.
func (p *Program) write(b byte, line int) {
	if n := len(p.Lines); n == 0 || p.Lines[n-1].Line != line {
		p.Lines = append(p.Lines, LineInfo{Offset: len(p.Code), Line: line})
	}
	p.Code = append(p.Code, b)
}

// LineAt returns the source line of the byte at offset, or 0 if unknown.
func (p *Program) LineAt(offset int) int {
	line := 0
	for _, li := range p.Lines {
		if li.Offset > offset {
			break
		}
		line = li.Line
	}
	return line
}

// mark captures the sizes of every growable table.
type mark struct {
	code, constants, globals, strings, lines int
}

func (p *Program) mark() mark {
	return mark{len(p.Code), len(p.Constants), len(p.Globals), len(p.Strings), len(p.Lines)}
}

// rollback discards everything appended since m was taken.
func (p *Program) rollback(m mark) {
	for _, name := range p.Globals[m.globals:] {
		delete(p.globalIndex, name)
	}
	p.Code = p.Code[:m.code]
	p.Constants = p.Constants[:m.constants]
	p.Globals = p.Globals[:m.globals]
	p.Strings = p.Strings[:m.strings]
	p.Lines = p.Lines[:m.lines]
}

// Disassemble returns a human-readable listing of the program.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	p.WriteDisassembly(&sb)
	return sb.String()
}

// WriteDisassembly writes one line per instruction: byte offset, source
// line ("|" when unchanged), mnemonic and decoded operand. A table of
// globals follows.
func (p *Program) WriteDisassembly(w io.Writer) error {
	name := p.Filename
	if name == "" {
		name = "<program>"
	}
	if _, err := fmt.Fprintf(w, "== %s ==\n", name); err != nil {
		return err
	}

	prevLine := -1
	for offset := 0; offset < len(p.Code); {
		var sb strings.Builder
		next := p.disassembleInstruction(&sb, offset, prevLine)
		prevLine = p.LineAt(offset)
		offset = next
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}

	if len(p.Globals) > 0 {
		if _, err := io.WriteString(w, "-- globals --\n"); err != nil {
			return err
		}
		for i, g := range p.Globals {
			if _, err := fmt.Fprintf(w, "  [%d] %s\n", i, g); err != nil {
				return err
			}
		}
	}
	return nil
}

// disassembleInstruction formats the instruction at offset and returns the
// offset of the next one.
func (p *Program) disassembleInstruction(sb *strings.Builder, offset, prevLine int) int {
	fmt.Fprintf(sb, "%04d ", offset)
	if line := p.LineAt(offset); line == prevLine {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", line)
	}

	op := Opcode(p.Code[offset])
	if !op.Valid() {
		fmt.Fprintf(sb, "UNKNOWN 0x%02x\n", byte(op))
		return offset + 1
	}
	if op != PushConst {
		fmt.Fprintf(sb, "%s\n", op)
		return offset + 1
	}

	if offset+op.Width() > len(p.Code) {
		fmt.Fprintf(sb, "%-16s <truncated>\n", op)
		return len(p.Code)
	}
	idx := ReadOperand(p.Code, offset+1)
	if idx < len(p.Constants) {
		fmt.Fprintf(sb, "%-16s [%d] %s\n", op, idx, p.Constants[idx].Repr())
	} else {
		fmt.Fprintf(sb, "%-16s [%d] <out of range>\n", op, idx)
	}
	return offset + op.Width()
}
