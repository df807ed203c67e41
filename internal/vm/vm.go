// Package vm executes compiled Vortex bytecode.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/aabanakhtar-github/vortex-lang/internal/compiler"
	"github.com/aabanakhtar-github/vortex-lang/internal/types"
)

var log = commonlog.GetLogger("vortex.vm")

// DefaultStackSize is the initial stack capacity.
const DefaultStackSize = 256

// RuntimeError is a fatal error raised while executing bytecode. Offset is
// the byte offset of the failing instruction.
type RuntimeError struct {
	Message string
	Offset  int
	Line    int
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Config holds VM configuration options.
type Config struct {
	// Output receives printed values. Defaults to os.Stdout.
	Output io.Writer

	// MaxSteps bounds the number of executed instructions. Zero means no
	// limit.
	MaxSteps int
}

// VM is the Vortex virtual machine.
type VM struct {
	program *compiler.Program

	// Value stack. Locals occupy the bottom of the stack; operands sit
	// above them.
	stackData []types.Value
	sp        int // Stack pointer (index of next free slot)

	// Global slots, indexed like program.Globals.
	globals []types.Value

	pc     int // Offset of the next byte to fetch
	opPC   int // Offset of the executing instruction
	steps  int
	config Config
	output io.Writer
}

// New creates a VM for the given program.
func New(prog *compiler.Program, config Config) *VM {
	vm := &VM{
		program:   prog,
		stackData: make([]types.Value, DefaultStackSize),
		config:    config,
		output:    config.Output,
	}
	if vm.output == nil {
		vm.output = os.Stdout
	}
	return vm
}

// SetOutput redirects printed values.
func (vm *VM) SetOutput(w io.Writer) {
	vm.output = w
}

// Run executes the program from offset 0 with fresh globals.
func (vm *VM) Run() error {
	vm.globals = vm.globals[:0]
	return vm.Resume(0)
}

// Resume executes from pc until HALT, keeping the values of globals set by
// earlier runs. The program may have grown since the last run.
func (vm *VM) Resume(pc int) error {
	for len(vm.globals) < len(vm.program.Globals) {
		vm.globals = append(vm.globals, types.Nil())
	}
	vm.sp = 0
	vm.pc = pc
	vm.steps = 0
	log.Debugf("executing %s from offset %d", vm.program.Filename, pc)
	return vm.execute()
}

// Global returns the current value of a global variable.
func (vm *VM) Global(name string) (types.Value, bool) {
	idx, ok := vm.program.GlobalIndex(name)
	if !ok || idx >= len(vm.globals) {
		return types.Nil(), false
	}
	return vm.globals[idx], true
}

// StackDepth returns the number of values on the stack. It is zero after a
// successful run.
func (vm *VM) StackDepth() int {
	return vm.sp
}

// -----------------------------------------------------------------------------
// Stack operations
// -----------------------------------------------------------------------------

func (vm *VM) push(v types.Value) {
	if vm.sp >= len(vm.stackData) {
		vm.growStack()
	}
	vm.stackData[vm.sp] = v
	vm.sp++
}

// pop removes and returns the top value from the stack.
func (vm *VM) pop() types.Value {
	if vm.sp == 0 {
		vm.errorf("stack underflow")
	}
	vm.sp--
	return vm.stackData[vm.sp]
}

// peekPop returns the second-from-top value and pops the top value.
// Returns (second-from-top, top).
func (vm *VM) peekPop() (types.Value, types.Value) {
	if vm.sp < 2 {
		vm.errorf("stack underflow")
	}
	vm.sp--
	return vm.stackData[vm.sp-1], vm.stackData[vm.sp]
}

// replaceTop replaces the top value without pop/push overhead.
func (vm *VM) replaceTop(v types.Value) {
	vm.stackData[vm.sp-1] = v
}

func (vm *VM) growStack() {
	newStack := make([]types.Value, len(vm.stackData)*2)
	copy(newStack, vm.stackData)
	vm.stackData = newStack
}

// popIndex pops a value that must be a non-negative integer below limit.
func (vm *VM) popIndex(what string, limit int) int {
	v := vm.pop()
	idx, ok := v.AsIndex()
	if !ok || idx >= limit {
		vm.errorf("invalid %s %s", what, v.Repr())
	}
	return idx
}

// popSlot pops a local slot index. The slot must lie below the reserved
// entries left on top of the stack after the pop.
func (vm *VM) popSlot(reserved int) int {
	v := vm.pop()
	idx, ok := v.AsIndex()
	if !ok || idx >= vm.sp-reserved {
		vm.errorf("invalid local slot %s", v.Repr())
	}
	return idx
}

func (vm *VM) errorf(format string, args ...any) {
	panic(&RuntimeError{
		Message: fmt.Sprintf(format, args...),
		Offset:  vm.opPC,
		Line:    vm.program.LineAt(vm.opPC),
	})
}

// -----------------------------------------------------------------------------
// Execution
// -----------------------------------------------------------------------------

func (vm *VM) execute() (err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(*RuntimeError)
			if !ok {
				panic(r)
			}
			log.Debugf("runtime error at offset %d: %s", rerr.Offset, rerr.Message)
			err = rerr
		}
	}()

	code := vm.program.Code
	for {
		if vm.pc < 0 || vm.pc >= len(code) {
			vm.opPC = vm.pc
			vm.errorf("execution ran off the end of the program at offset %d", vm.pc)
		}
		vm.opPC = vm.pc
		op := compiler.Opcode(code[vm.pc])
		vm.pc++

		if vm.config.MaxSteps > 0 {
			vm.steps++
			if vm.steps > vm.config.MaxSteps {
				vm.errorf("step limit of %d exceeded", vm.config.MaxSteps)
			}
		}

		switch op {
		case compiler.PushConst:
			if vm.pc+compiler.OperandWidth > len(code) {
				vm.errorf("truncated PUSHC operand")
			}
			idx := compiler.ReadOperand(code, vm.pc)
			vm.pc += compiler.OperandWidth
			if idx >= len(vm.program.Constants) {
				vm.errorf("constant index %d out of range", idx)
			}
			vm.push(vm.program.Constants[idx])

		case compiler.PushTrue:
			vm.push(types.Bool(true))

		case compiler.PushFalse:
			vm.push(types.Bool(false))

		case compiler.PushNil:
			vm.push(types.Nil())

		case compiler.Add, compiler.Subtract, compiler.Multiply, compiler.Divide:
			l, r := vm.peekPop()
			if !l.IsNum() || !r.IsNum() {
				vm.errorf("operands of %s must be numbers, got %s and %s", op, l.Kind(), r.Kind())
			}
			vm.replaceTop(types.Num(arith(op, l.AsNum(), r.AsNum())))

		case compiler.Equal:
			l, r := vm.peekPop()
			vm.replaceTop(types.Bool(l.Equal(r)))

		case compiler.Less, compiler.LessEqual, compiler.Greater, compiler.GreaterEqual:
			l, r := vm.peekPop()
			vm.replaceTop(types.Bool(vm.compare(op, l, r)))

		case compiler.Negate:
			v := vm.pop()
			if !v.IsNum() {
				vm.errorf("operand of NEGATE must be a number, got %s", v.Kind())
			}
			vm.push(types.Num(-v.AsNum()))

		case compiler.Not:
			vm.push(types.Bool(!vm.pop().Truthy()))

		case compiler.AddLocal:
			// The initializer already sits in the new local's slot.
			if vm.sp == 0 {
				vm.errorf("stack underflow")
			}

		case compiler.GetLocal:
			slot := vm.popSlot(0)
			vm.push(vm.stackData[slot])

		case compiler.SetLocal:
			slot := vm.popSlot(1)
			vm.stackData[slot] = vm.pop()

		case compiler.PopLocal:
			vm.pop()

		case compiler.LoadGlobal:
			idx := vm.popIndex("global slot", len(vm.globals))
			vm.push(vm.globals[idx])

		case compiler.SaveGlobal:
			idx := vm.popIndex("global slot", len(vm.globals))
			vm.globals[idx] = vm.pop()

		case compiler.Print:
			v := vm.pop()
			if _, err := io.WriteString(vm.output, v.String()+"\n"); err != nil {
				vm.errorf("print: %v", err)
			}

		case compiler.JumpIfFalse:
			target := vm.popIndex("jump target", len(code))
			if !vm.pop().Truthy() {
				vm.pc = target
			}

		case compiler.Jump:
			vm.pc = vm.popIndex("jump target", len(code))

		case compiler.Halt:
			log.Debugf("halted after %d steps", vm.steps)
			return nil

		default:
			vm.errorf("unknown opcode 0x%02x", byte(op))
		}
	}
}

func arith(op compiler.Opcode, l, r float64) float64 {
	switch op {
	case compiler.Add:
		return l + r
	case compiler.Subtract:
		return l - r
	case compiler.Multiply:
		return l * r
	default:
		return l / r
	}
}

// compare applies a relational opcode to two numbers or two strings.
func (vm *VM) compare(op compiler.Opcode, l, r types.Value) bool {
	var c int
	switch {
	case l.IsNum() && r.IsNum():
		a, b := l.AsNum(), r.AsNum()
		switch op {
		case compiler.Less:
			return a < b
		case compiler.LessEqual:
			return a <= b
		case compiler.Greater:
			return a > b
		default:
			return a >= b
		}
	case l.IsStr() && r.IsStr():
		a, b := l.AsStr().Chars, r.AsStr().Chars
		switch {
		case a < b:
			c = -1
		case a > b:
			c = 1
		}
	default:
		vm.errorf("operands of %s must be two numbers or two strings, got %s and %s", op, l.Kind(), r.Kind())
	}
	switch op {
	case compiler.Less:
		return c < 0
	case compiler.LessEqual:
		return c <= 0
	case compiler.Greater:
		return c > 0
	default:
		return c >= 0
	}
}
