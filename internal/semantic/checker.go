package semantic

import (
	"golang.org/x/exp/slices"

	"github.com/aabanakhtar-github/vortex-lang/internal/ast"
	"github.com/aabanakhtar-github/vortex-lang/internal/token"
)

// Checker walks a program with a scope chain and collects warnings.
type Checker struct {
	scope    *SymbolTable
	warnings WarningList

	// A tree with parse error placeholders may hide reads, so unused
	// variable warnings are suppressed for it.
	partial bool
}

// Check runs the lint pass over prog and returns its warnings sorted by
// position. The result is nil for a clean program.
func Check(prog *ast.Program) WarningList {
	if prog == nil {
		return nil
	}
	c := &Checker{
		scope:   NewSymbolTable(nil),
		partial: ast.HasInvalid(prog),
	}
	for _, stmt := range prog.Stmts {
		c.checkStmt(stmt)
	}
	c.closeScope()

	slices.SortStableFunc(c.warnings, func(a, b *Warning) int {
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line - b.Pos.Line
		}
		return a.Pos.Column - b.Pos.Column
	})
	return c.warnings
}

func (c *Checker) openScope() {
	c.scope = NewSymbolTable(c.scope)
}

// closeScope reports the unused symbols of the innermost scope and pops it.
func (c *Checker) closeScope() {
	if !c.partial {
		for _, sym := range c.scope.Symbols() {
			if !sym.Used {
				c.warnings.Add(sym.Pos, warnUnusedVar, sym.Name)
			}
		}
	}
	c.scope = c.scope.Parent()
}

func (c *Checker) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.PrintStatement:
		c.checkExpr(s.Expr)

	case *ast.VariableDeclaration:
		c.checkExpr(s.Init)
		c.checkLiteralType(s.Name, s.TypeName, s.Init, s.Pos())
		c.scope.Define(s.Name, s.TypeName, s.Pos())

	case *ast.Assignment:
		if v, ok := unparen(s.Value).(*ast.VariableEval); ok && v.Name == s.Name {
			c.warnings.Add(s.Pos(), warnSelfAssign, s.Name)
		}
		c.checkExpr(s.Value)
		if sym, ok := c.scope.Lookup(s.Name); ok {
			c.checkLiteralType(s.Name, sym.Type, s.Value, s.Pos())
		}

	case *ast.BlockScope:
		c.openScope()
		for _, inner := range s.Stmts {
			c.checkStmt(inner)
		}
		c.closeScope()

	case *ast.IfStatement:
		if lit, ok := unparen(s.Cond).(*ast.Literal); ok && lit.Value.Kind == token.LitBool {
			c.warnings.Add(s.Cond.Pos(), warnConstantCond, lit.Value.Bool)
		}
		c.checkExpr(s.Cond)
		c.checkBody(s.Then)
		if s.Else != nil {
			c.checkBody(s.Else)
		}

	case *ast.WhileStatement:
		c.checkExpr(s.Cond)
		c.checkBody(s.Body)
	}
}

// checkBody gives a non-block branch or loop body its own scope.
func (c *Checker) checkBody(body ast.Stmt) {
	if _, ok := body.(*ast.BlockScope); ok {
		c.checkStmt(body)
		return
	}
	c.openScope()
	c.checkStmt(body)
	c.closeScope()
}

func (c *Checker) checkExpr(expr ast.Expr) {
	ast.Walk(expr, func(n ast.Node) bool {
		if v, ok := n.(*ast.VariableEval); ok {
			if sym, found := c.scope.Lookup(v.Name); found {
				sym.Used = true
			}
		}
		return true
	})
}

// checkLiteralType warns when value is a literal of a different kind than
// the declared type. nil is accepted for every type.
func (c *Checker) checkLiteralType(name string, declared token.Token, value ast.Expr, pos token.Position) {
	lit, ok := unparen(value).(*ast.Literal)
	if !ok {
		return
	}
	var got token.Token
	switch lit.Value.Kind {
	case token.LitNumber:
		got = token.FLOAT_TYPE
	case token.LitString:
		got = token.STRING_TYPE
	case token.LitBool:
		got = token.BOOL_TYPE
	default:
		return
	}
	if got != declared {
		c.warnings.Add(pos, warnTypeMismatch, name, declared, got)
	}
}

func unparen(expr ast.Expr) ast.Expr {
	for {
		g, ok := expr.(*ast.Grouping)
		if !ok {
			return expr
		}
		expr = g.Inner
	}
}
