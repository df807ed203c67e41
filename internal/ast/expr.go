package ast

import "github.com/aabanakhtar-github/vortex-lang/internal/token"

// Literal represents a number, string, bool or nil literal.
// Examples: 3.5, "hello", true, nil
type Literal struct {
	BaseExpr
	Value token.Literal // LitNone for nil
}

// VariableEval reads a variable.
type VariableEval struct {
	BaseExpr
	Name string
}

// BinaryOperation represents a binary operation.
// Examples: a + b, x == y, 1 < 2
type BinaryOperation struct {
	BaseExpr
	Op    token.Token
	Left  Expr
	Right Expr
}

// UnaryOperation represents a prefix operation: -x or !flag.
type UnaryOperation struct {
	BaseExpr
	Op      token.Token
	Operand Expr
}

// Grouping represents a parenthesized expression.
type Grouping struct {
	BaseExpr
	Inner Expr
}

// InvalidExpression stands in for an expression that failed to parse.
type InvalidExpression struct {
	BaseExpr
}

var (
	_ Expr = (*Literal)(nil)
	_ Expr = (*VariableEval)(nil)
	_ Expr = (*BinaryOperation)(nil)
	_ Expr = (*UnaryOperation)(nil)
	_ Expr = (*Grouping)(nil)
	_ Expr = (*InvalidExpression)(nil)
)
