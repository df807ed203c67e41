package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/aabanakhtar-github/vortex-lang/internal/token"
)

// Printer provides pretty-printing for AST nodes.
// Expressions are written in prefix form, e.g. (+ 1 (* 2 3)), which makes
// the tree shape explicit. Statements keep their source layout.
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

// NewPrinter creates a new Printer that writes to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes a pretty-printed representation of the node to the writer.
func (p *Printer) Print(node Node) error {
	p.printNode(node)
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) writeIndent() {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, strings.Repeat("    ", p.indent))
}

func (p *Printer) printNode(node Node) {
	switch n := node.(type) {
	case nil:
		p.printf("<nil>")
	case *Program:
		for _, s := range n.Stmts {
			p.printStmt(s)
			p.printf("\n")
		}
	case Expr:
		p.printExpr(n)
	case Stmt:
		p.printStmt(n)
	default:
		p.printf("<%T>", node)
	}
}

func (p *Printer) printExpr(e Expr) {
	switch n := e.(type) {
	case nil:
		p.printf("<nil>")

	case *Literal:
		if n.Value.Kind == token.LitNone {
			p.printf("nil")
		} else {
			p.printf("%s", n.Value)
		}

	case *VariableEval:
		p.printf("%s", n.Name)

	case *BinaryOperation:
		p.printf("(%s ", n.Op)
		p.printExpr(n.Left)
		p.printf(" ")
		p.printExpr(n.Right)
		p.printf(")")

	case *UnaryOperation:
		p.printf("(%s ", n.Op)
		p.printExpr(n.Operand)
		p.printf(")")

	case *Grouping:
		p.printf("(group ")
		p.printExpr(n.Inner)
		p.printf(")")

	case *InvalidExpression:
		p.printf("<invalid>")

	default:
		p.printf("<%T>", e)
	}
}

func (p *Printer) printStmt(s Stmt) {
	switch n := s.(type) {
	case nil:
		p.printf("<nil>")

	case *PrintStatement:
		p.printf("print ")
		p.printExpr(n.Expr)
		p.printf(";")

	case *VariableDeclaration:
		p.printf("%s : %s -> ", n.Name, n.TypeName)
		p.printExpr(n.Init)
		p.printf(";")

	case *Assignment:
		p.printf("%s -> ", n.Name)
		p.printExpr(n.Value)
		p.printf(";")

	case *BlockScope:
		p.printf("{\n")
		p.indent++
		for _, stmt := range n.Stmts {
			p.writeIndent()
			p.printStmt(stmt)
			p.printf("\n")
		}
		p.indent--
		p.writeIndent()
		p.printf("}")

	case *IfStatement:
		p.printf("if ")
		p.printExpr(n.Cond)
		p.printf(" ")
		p.printStmt(n.Then)
		if n.Else != nil {
			p.printf(" else ")
			p.printStmt(n.Else)
		}

	case *WhileStatement:
		p.printf("while ")
		p.printExpr(n.Cond)
		p.printf(" ")
		p.printStmt(n.Body)

	case *InvalidStatement:
		p.printf("<invalid>;")

	default:
		p.printf("<%T>", s)
	}
}

// String returns a string representation of the node.
func String(node Node) string {
	var sb strings.Builder
	p := NewPrinter(&sb)
	p.Print(node)
	return sb.String()
}
