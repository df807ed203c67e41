// Package compiler generates bytecode for the VM from a Vortex AST.
package compiler

// Opcode represents a virtual machine instruction. Every opcode is one byte;
// PushConst is followed by a 3-byte big-endian constant pool index. All
// other opcodes take their arguments from the stack.
type Opcode byte

const (
	// Constants
	PushConst Opcode = iota // Push constant: PUSHC index24
	PushTrue                // Push true
	PushFalse               // Push false
	PushNil                 // Push nil

	// Arithmetic: pop right, pop left, push left OP right (numbers only)
	Add
	Subtract
	Multiply
	Divide

	// Comparison: pop right, pop left, push bool
	Equal
	Less
	LessEqual
	Greater
	GreaterEqual

	// Unary: pop operand, push result
	Negate
	Not

	// Locals live on the stack; offsets are relative to the frame base.
	AddLocal // Top of stack becomes a new local in place
	GetLocal // Pop offset, push local at offset
	SetLocal // Pop offset, pop value, overwrite local at offset
	PopLocal // Discard top of stack when a local goes out of scope

	// Globals are addressed by slot index.
	LoadGlobal // Pop index, push global
	SaveGlobal // Pop index, pop value, store global

	Print // Pop value and print it

	// Control flow: pop an absolute byte offset pushed by a preceding PushConst.
	JumpIfFalse // Pop target, pop condition, jump if condition is falsy
	Jump        // Pop target, jump

	// Halt stops execution.
	Halt

	numOpcodes
)

const (
	// OperandWidth is the size in bytes of a PushConst operand.
	OperandWidth = 3

	// MaxConstants is the size of the 24-bit constant index space.
	MaxConstants = 1 << (8 * OperandWidth)
)

var mnemonics = [numOpcodes]string{
	PushConst:    "PUSHC",
	PushTrue:     "PUSH_TRUE",
	PushFalse:    "PUSH_FALSE",
	PushNil:      "PUSH_NIL",
	Add:          "ADD",
	Subtract:     "SUB",
	Multiply:     "MUL",
	Divide:       "DIV",
	Equal:        "EQ",
	Less:         "LESS",
	LessEqual:    "LESS_EQ",
	Greater:      "GREATER",
	GreaterEqual: "GREATER_EQ",
	Negate:       "NEGATE",
	Not:          "NOT",
	AddLocal:     "ADD_LOCAL",
	GetLocal:     "GET_LOCAL",
	SetLocal:     "SET_LOCAL",
	PopLocal:     "POP_LOCAL",
	LoadGlobal:   "LOAD_GLOB",
	SaveGlobal:   "SAVE_GLOB",
	Print:        "PRINT",
	JumpIfFalse:  "JMP_TO_IF_FALSE",
	Jump:         "JMP_TO",
	Halt:         "HALT",
}

// String returns the opcode mnemonic.
func (op Opcode) String() string {
	if op.Valid() {
		return mnemonics[op]
	}
	return "UNKNOWN"
}

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	return op < numOpcodes
}

// Width returns the encoded size of the instruction in bytes.
func (op Opcode) Width() int {
	if op == PushConst {
		return 1 + OperandWidth
	}
	return 1
}

// ReadOperand decodes the 3-byte big-endian operand starting at code[at].
func ReadOperand(code []byte, at int) int {
	return int(code[at])<<16 | int(code[at+1])<<8 | int(code[at+2])
}

// putOperand encodes n as a 3-byte big-endian operand at code[at].
func putOperand(code []byte, at, n int) {
	code[at] = byte(n >> 16)
	code[at+1] = byte(n >> 8)
	code[at+2] = byte(n)
}
