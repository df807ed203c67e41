package ast

import "github.com/aabanakhtar-github/vortex-lang/internal/token"

// PrintStatement represents: print expr;
type PrintStatement struct {
	BaseStmt
	Expr Expr
}

// VariableDeclaration represents: name : Type -> init;
type VariableDeclaration struct {
	BaseStmt
	TypeName token.Token // BOOL_TYPE, FLOAT_TYPE or STRING_TYPE
	Name     string
	Init     Expr
}

// Assignment represents: name -> value;
type Assignment struct {
	BaseStmt
	Name  string
	Value Expr
}

// BlockScope represents: { stmts }
type BlockScope struct {
	BaseStmt
	Stmts []Stmt
	Depth int // lexical depth of the block's own scope, 1 for an outermost block
}

// IfStatement represents: if cond then [else else]
type IfStatement struct {
	BaseStmt
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else
}

// WhileStatement represents: while cond body
type WhileStatement struct {
	BaseStmt
	Cond Expr
	Body Stmt
}

// InvalidStatement stands in for a statement that failed to parse.
type InvalidStatement struct {
	BaseStmt
}

var (
	_ Stmt = (*PrintStatement)(nil)
	_ Stmt = (*VariableDeclaration)(nil)
	_ Stmt = (*Assignment)(nil)
	_ Stmt = (*BlockScope)(nil)
	_ Stmt = (*IfStatement)(nil)
	_ Stmt = (*WhileStatement)(nil)
	_ Stmt = (*InvalidStatement)(nil)
)
