// Package ast defines the abstract syntax tree for Vortex programs.
//
// Expressions and statements are closed sets of variants: the marker
// methods are unexported, so only this package can add node kinds and
// consumers dispatch with type switches.
//
// Node hierarchy:
//
//	Node (interface)
//	├── Expr (interface) - expressions that produce values
//	│   ├── Literal, VariableEval - leaves
//	│   ├── BinaryOperation, UnaryOperation, Grouping - operations
//	│   └── InvalidExpression - parse error placeholder
//	├── Stmt (interface) - statements that perform actions
//	│   ├── PrintStatement, VariableDeclaration, Assignment - simple
//	│   ├── BlockScope, IfStatement, WhileStatement - compound
//	│   └── InvalidStatement - parse error placeholder
//	└── Program - ordered top-level statements
package ast

import "github.com/aabanakhtar-github/vortex-lang/internal/token"

// Node is the interface implemented by all AST nodes.
type Node interface {
	// Pos returns the position of the token that defines this node: the
	// operator for binary and unary operations, the introducing keyword or
	// identifier for statements.
	Pos() token.Position

	// Line returns Pos().Line.
	Line() int
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	exprNode() // marker method to prevent external implementations
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	stmtNode() // marker method to prevent external implementations
}

// BaseExpr provides the position shared by all expression nodes.
type BaseExpr struct {
	StartPos token.Position
}

func (b *BaseExpr) Pos() token.Position { return b.StartPos }
func (b *BaseExpr) Line() int           { return b.StartPos.Line }
func (b *BaseExpr) exprNode()           {}

// BaseStmt provides the position shared by all statement nodes.
type BaseStmt struct {
	StartPos token.Position
}

func (b *BaseStmt) Pos() token.Position { return b.StartPos }
func (b *BaseStmt) Line() int           { return b.StartPos.Line }
func (b *BaseStmt) stmtNode()           {}

// Program is an ordered sequence of top-level statements.
type Program struct {
	Stmts []Stmt
}

func (p *Program) Pos() token.Position {
	if len(p.Stmts) == 0 {
		return token.NoPos
	}
	return p.Stmts[0].Pos()
}

func (p *Program) Line() int { return p.Pos().Line }

// HasInvalid reports whether the tree contains a parse error placeholder.
func HasInvalid(node Node) bool {
	found := false
	Walk(node, func(n Node) bool {
		switch n.(type) {
		case *InvalidExpression, *InvalidStatement:
			found = true
		}
		return !found
	})
	return found
}
