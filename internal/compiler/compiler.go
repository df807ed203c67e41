package compiler

import (
	"fmt"

	"github.com/tliron/commonlog"
	"golang.org/x/exp/slices"

	"github.com/aabanakhtar-github/vortex-lang/internal/ast"
	"github.com/aabanakhtar-github/vortex-lang/internal/diag"
	"github.com/aabanakhtar-github/vortex-lang/internal/token"
	"github.com/aabanakhtar-github/vortex-lang/internal/types"
)

var log = commonlog.GetLogger("vortex.compiler")

// CompileError represents a code generation error. Generation panics with a
// *CompileError and the enclosing statement recovers from it.
type CompileError struct {
	Pos     token.Position
	Message string

	// Fatal errors stop generation of every later statement.
	Fatal bool

	// reported is set for placeholder nodes whose error the parser has
	// already reported.
	reported bool
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxConstants lowers the constant pool limit. Values outside
// (0, MaxConstants] are ignored.
func WithMaxConstants(n int) Option {
	return func(g *Generator) {
		if n > 0 && n <= MaxConstants {
			g.maxConstants = n
		}
	}
}

// local is a compile-time record of a stack-resident variable. The index of
// a local in Generator.locals is its runtime stack offset.
type local struct {
	name  string
	depth int
}

// Generator emits bytecode for statements into a Program. It keeps the
// local variable table between calls, so a compilation unit can be fed one
// statement at a time.
type Generator struct {
	program  *Program
	reporter diag.Reporter

	locals []local
	depth  int

	maxConstants int
	fatal        bool
}

// NewGenerator creates a generator appending to prog. A nil reporter
// discards diagnostics.
func NewGenerator(prog *Program, reporter diag.Reporter, opts ...Option) *Generator {
	if reporter == nil {
		reporter = diag.Discard
	}
	g := &Generator{program: prog, reporter: reporter, maxConstants: MaxConstants}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Compile generates a complete program, terminated by HALT.
func Compile(prog *ast.Program, filename string, reporter diag.Reporter, opts ...Option) *Program {
	g := NewGenerator(NewProgram(filename), reporter, opts...)
	g.GenerateProgram(prog)
	p := g.Finish()
	log.Debugf("compiled %s: %d bytes, %d constants, %d globals", filename, len(p.Code), len(p.Constants), len(p.Globals))
	return p
}

// Program returns the program being generated.
func (g *Generator) Program() *Program {
	return g.program
}

// Fatal reports whether a fatal error stopped generation.
func (g *Generator) Fatal() bool {
	return g.fatal
}

// GenerateProgram generates every top-level statement in order.
func (g *Generator) GenerateProgram(prog *ast.Program) {
	for _, stmt := range prog.Stmts {
		g.Generate(stmt)
	}
}

// Generate emits code for one statement. On error the statement's code is
// discarded, the error is reported and false is returned; the generator
// stays usable for the following statements.
func (g *Generator) Generate(stmt ast.Stmt) bool {
	return g.statement(stmt)
}

// Finish appends HALT and returns the program.
func (g *Generator) Finish() *Program {
	g.program.write(byte(Halt), g.lastLine())
	return g.program
}

// Reopen removes the HALT appended by Finish so generation can continue.
// It returns the offset where the next statement will start.
func (g *Generator) Reopen() int {
	p := g.program
	if n := len(p.Code); n > 0 && Opcode(p.Code[n-1]) == Halt {
		p.Code = p.Code[:n-1]
		if m := len(p.Lines); m > 0 && p.Lines[m-1].Offset == n-1 {
			p.Lines = p.Lines[:m-1]
		}
	}
	return len(p.Code)
}

func (g *Generator) lastLine() int {
	if n := len(g.program.Lines); n > 0 {
		return g.program.Lines[n-1].Line
	}
	return 0
}

// -----------------------------------------------------------------------------
// Emission helpers
// -----------------------------------------------------------------------------

func (g *Generator) emit(op Opcode, line int) {
	g.program.write(byte(op), line)
}

// emitConstant adds v to the pool and emits PUSHC for it.
func (g *Generator) emitConstant(v types.Value, pos token.Position) {
	idx := g.addConstant(v, pos)
	g.emit(PushConst, pos.Line)
	g.emitOperand(idx, pos.Line)
}

func (g *Generator) emitOperand(n, line int) {
	g.program.write(byte(n>>16), line)
	g.program.write(byte(n>>8), line)
	g.program.write(byte(n), line)
}

func (g *Generator) addConstant(v types.Value, pos token.Position) int {
	if len(g.program.Constants) >= g.maxConstants {
		panic(&CompileError{
			Pos:     pos,
			Message: fmt.Sprintf("too many constants in one program (limit %d)", g.maxConstants),
			Fatal:   true,
		})
	}
	return g.program.AddConstant(v)
}

// emitJump emits a placeholder PUSHC followed by a jump opcode and returns
// the offset of the placeholder operand. The constant slot is reserved now
// and filled in by patchJump.
func (g *Generator) emitJump(op Opcode, pos token.Position) int {
	idx := g.addConstant(types.Nil(), pos)
	g.emit(PushConst, pos.Line)
	at := len(g.program.Code)
	g.emitOperand(idx, pos.Line)
	g.emit(op, pos.Line)
	return at
}

// patchJump points the jump whose operand is at `at` to the current end of
// the code.
func (g *Generator) patchJump(at int) {
	g.patchJumpTo(at, len(g.program.Code))
}

// patchJumpTo stores target in the constant slot referenced by the operand
// at `at` and rewrites the operand bytes.
func (g *Generator) patchJumpTo(at, target int) {
	idx := ReadOperand(g.program.Code, at)
	g.program.Constants[idx] = types.Num(float64(target))
	putOperand(g.program.Code, at, idx)
}

func errorf(pos token.Position, format string, args ...any) {
	panic(&CompileError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

// statement compiles one statement as a unit: an error anywhere inside it
// rolls the program and the local table back to their state on entry.
func (g *Generator) statement(stmt ast.Stmt) (ok bool) {
	if g.fatal {
		return false
	}

	m := g.program.mark()
	nlocals, depth := len(g.locals), g.depth

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ce, isCompileErr := r.(*CompileError)
		if !isCompileErr {
			panic(r) // Re-panic for non-compile errors
		}
		g.program.rollback(m)
		g.locals, g.depth = g.locals[:nlocals], depth
		if ce.Fatal {
			g.fatal = true
		}
		if !ce.reported {
			g.reporter.Report(diag.Diagnostic{Stage: diag.StageCompile, Pos: ce.Pos, Message: ce.Message})
		}
		ok = false
	}()

	g.compileStmt(stmt)
	return true
}

func (g *Generator) compileStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.PrintStatement:
		g.compileExpr(s.Expr)
		g.emit(Print, s.Line())

	case *ast.VariableDeclaration:
		g.compileDeclaration(s)

	case *ast.Assignment:
		g.compileAssignment(s)

	case *ast.BlockScope:
		g.beginScope()
		for _, inner := range s.Stmts {
			g.statement(inner)
		}
		g.endScope(s.Line())

	case *ast.IfStatement:
		g.compileIf(s)

	case *ast.WhileStatement:
		g.compileWhile(s)

	case *ast.InvalidStatement:
		// Reported by the parser; emits nothing.

	default:
		errorf(stmt.Pos(), "unsupported statement %T", stmt)
	}
}

func (g *Generator) compileDeclaration(s *ast.VariableDeclaration) {
	if g.depth > 0 {
		if slices.ContainsFunc(g.locals, func(l local) bool { return l.depth == g.depth && l.name == s.Name }) {
			errorf(s.Pos(), "variable '%s' is already declared in this scope", s.Name)
		}
		g.compileExpr(s.Init)
		g.emit(AddLocal, s.Line())
		g.locals = append(g.locals, local{name: s.Name, depth: g.depth})
		return
	}

	if _, ok := g.program.GlobalIndex(s.Name); ok {
		errorf(s.Pos(), "global variable '%s' is already declared", s.Name)
	}
	g.compileExpr(s.Init)
	idx := g.program.DefineGlobal(s.Name)
	g.emitConstant(types.Num(float64(idx)), s.Pos())
	g.emit(SaveGlobal, s.Line())
}

func (g *Generator) compileAssignment(s *ast.Assignment) {
	if slot, ok := g.resolveLocal(s.Name); ok {
		g.compileExpr(s.Value)
		g.emitConstant(types.Num(float64(slot)), s.Pos())
		g.emit(SetLocal, s.Line())
		return
	}
	idx, ok := g.program.GlobalIndex(s.Name)
	if !ok {
		errorf(s.Pos(), "assignment to undeclared variable '%s'", s.Name)
	}
	g.compileExpr(s.Value)
	g.emitConstant(types.Num(float64(idx)), s.Pos())
	g.emit(SaveGlobal, s.Line())
}

func (g *Generator) compileIf(s *ast.IfStatement) {
	g.compileExpr(s.Cond)
	elseJump := g.emitJump(JumpIfFalse, s.Pos())
	g.compileBody(s.Then)
	if s.Else == nil {
		g.patchJump(elseJump)
		return
	}
	endJump := g.emitJump(Jump, s.Pos())
	g.patchJump(elseJump)
	g.compileBody(s.Else)
	g.patchJump(endJump)
}

func (g *Generator) compileWhile(s *ast.WhileStatement) {
	loopStart := len(g.program.Code)
	g.compileExpr(s.Cond)
	exitJump := g.emitJump(JumpIfFalse, s.Pos())
	g.compileBody(s.Body)
	back := g.emitJump(Jump, s.Pos())
	g.patchJumpTo(back, loopStart)
	g.patchJump(exitJump)
}

// compileBody compiles the body of an if or while. A body that is not a
// block still gets its own scope, so a declaration in a branch that may be
// skipped never leaves the stack unbalanced.
func (g *Generator) compileBody(body ast.Stmt) {
	if _, ok := body.(*ast.BlockScope); ok {
		g.statement(body)
		return
	}
	g.beginScope()
	g.statement(body)
	g.endScope(body.Line())
}

func (g *Generator) beginScope() {
	g.depth++
}

// endScope pops the locals of the innermost scope, newest first.
func (g *Generator) endScope(line int) {
	for len(g.locals) > 0 && g.locals[len(g.locals)-1].depth == g.depth {
		g.emit(PopLocal, line)
		g.locals = g.locals[:len(g.locals)-1]
	}
	g.depth--
}

// resolveLocal finds the innermost local named name.
func (g *Generator) resolveLocal(name string) (int, bool) {
	if g.depth == 0 {
		return 0, false
	}
	for i := len(g.locals) - 1; i >= 0; i-- {
		if g.locals[i].name == name {
			return i, true
		}
	}
	return 0, false
}

// -----------------------------------------------------------------------------
// Expressions
// -----------------------------------------------------------------------------

func (g *Generator) compileExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		g.compileLiteral(e)

	case *ast.VariableEval:
		if slot, ok := g.resolveLocal(e.Name); ok {
			g.emitConstant(types.Num(float64(slot)), e.Pos())
			g.emit(GetLocal, e.Line())
			return
		}
		idx, ok := g.program.GlobalIndex(e.Name)
		if !ok {
			errorf(e.Pos(), "undefined variable '%s'", e.Name)
		}
		g.emitConstant(types.Num(float64(idx)), e.Pos())
		g.emit(LoadGlobal, e.Line())

	case *ast.Grouping:
		g.compileExpr(e.Inner)

	case *ast.UnaryOperation:
		g.compileExpr(e.Operand)
		switch e.Op {
		case token.SUB:
			g.emit(Negate, e.Line())
		case token.NOT:
			g.emit(Not, e.Line())
		default:
			errorf(e.Pos(), "unexpected unary operator %s", e.Op)
		}

	case *ast.BinaryOperation:
		g.compileBinary(e)

	case *ast.InvalidExpression:
		panic(&CompileError{Pos: e.Pos(), Message: "invalid expression", reported: true})

	default:
		errorf(expr.Pos(), "unsupported expression %T", expr)
	}
}

func (g *Generator) compileLiteral(e *ast.Literal) {
	switch e.Value.Kind {
	case token.LitNumber:
		g.emitConstant(types.Num(e.Value.Num), e.Pos())
	case token.LitString:
		g.emitConstant(types.Str(g.program.NewString(e.Value.Str)), e.Pos())
	case token.LitBool:
		if e.Value.Bool {
			g.emit(PushTrue, e.Line())
		} else {
			g.emit(PushFalse, e.Line())
		}
	default:
		g.emit(PushNil, e.Line())
	}
}

var binaryOps = map[token.Token]Opcode{
	token.ADD:     Add,
	token.SUB:     Subtract,
	token.MUL:     Multiply,
	token.DIV:     Divide,
	token.EQUALS:  Equal,
	token.LESS:    Less,
	token.LTE:     LessEqual,
	token.GREATER: Greater,
	token.GTE:     GreaterEqual,
}

func (g *Generator) compileBinary(e *ast.BinaryOperation) {
	g.compileExpr(e.Left)
	g.compileExpr(e.Right)
	if e.Op == token.NOT_EQUALS {
		g.emit(Equal, e.Line())
		g.emit(Not, e.Line())
		return
	}
	op, ok := binaryOps[e.Op]
	if !ok {
		errorf(e.Pos(), "unexpected binary operator %s", e.Op)
	}
	g.emit(op, e.Line())
}
