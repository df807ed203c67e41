package ast_test

import (
	"strings"
	"testing"

	"github.com/aabanakhtar-github/vortex-lang/internal/ast"
	"github.com/aabanakhtar-github/vortex-lang/internal/token"
)

func at(line int) token.Position {
	return token.Position{Line: line, Column: 1}
}

func num(n float64) *ast.Literal {
	return &ast.Literal{BaseExpr: ast.BaseExpr{StartPos: at(1)}, Value: token.NumberLit(n)}
}

func ident(name string) *ast.VariableEval {
	return &ast.VariableEval{BaseExpr: ast.BaseExpr{StartPos: at(1)}, Name: name}
}

func binary(op token.Token, l, r ast.Expr) *ast.BinaryOperation {
	return &ast.BinaryOperation{BaseExpr: ast.BaseExpr{StartPos: at(1)}, Op: op, Left: l, Right: r}
}

// sample builds:
//
//	x : Float -> 1 + 2 * 3;
//	if x == 7 { print x; } else print -x;
//	while false x -> nil;
func sample() *ast.Program {
	return &ast.Program{Stmts: []ast.Stmt{
		&ast.VariableDeclaration{
			BaseStmt: ast.BaseStmt{StartPos: at(1)},
			TypeName: token.FLOAT_TYPE,
			Name:     "x",
			Init:     binary(token.ADD, num(1), binary(token.MUL, num(2), num(3))),
		},
		&ast.IfStatement{
			BaseStmt: ast.BaseStmt{StartPos: at(2)},
			Cond:     binary(token.EQUALS, ident("x"), num(7)),
			Then: &ast.BlockScope{
				BaseStmt: ast.BaseStmt{StartPos: at(2)},
				Depth:    1,
				Stmts:    []ast.Stmt{&ast.PrintStatement{BaseStmt: ast.BaseStmt{StartPos: at(2)}, Expr: ident("x")}},
			},
			Else: &ast.PrintStatement{
				BaseStmt: ast.BaseStmt{StartPos: at(2)},
				Expr:     &ast.UnaryOperation{BaseExpr: ast.BaseExpr{StartPos: at(2)}, Op: token.SUB, Operand: ident("x")},
			},
		},
		&ast.WhileStatement{
			BaseStmt: ast.BaseStmt{StartPos: at(3)},
			Cond:     &ast.Literal{BaseExpr: ast.BaseExpr{StartPos: at(3)}, Value: token.BoolLit(false)},
			Body: &ast.Assignment{
				BaseStmt: ast.BaseStmt{StartPos: at(3)},
				Name:     "x",
				Value:    &ast.Literal{BaseExpr: ast.BaseExpr{StartPos: at(3)}},
			},
		},
	}}
}

func TestNodeLines(t *testing.T) {
	prog := sample()
	for i, want := range []int{1, 2, 3} {
		if got := prog.Stmts[i].Line(); got != want {
			t.Errorf("stmt %d: Line() = %d, want %d", i, got, want)
		}
	}
	if prog.Line() != 1 {
		t.Errorf("program line = %d, want 1", prog.Line())
	}
	if (&ast.Program{}).Pos().IsValid() {
		t.Error("empty program should have no valid position")
	}
}

func TestWalkVisitsEveryNode(t *testing.T) {
	counts := map[string]int{}
	ast.Walk(sample(), func(n ast.Node) bool {
		switch n.(type) {
		case *ast.VariableEval:
			counts["var"]++
		case *ast.Literal:
			counts["lit"]++
		case *ast.BinaryOperation:
			counts["binary"]++
		case ast.Stmt:
			counts["stmt"]++
		}
		return true
	})

	want := map[string]int{"var": 3, "lit": 6, "binary": 3, "stmt": 7}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("%s: visited %d, want %d", k, counts[k], v)
		}
	}
}

func TestWalkPrune(t *testing.T) {
	visited := 0
	ast.Walk(sample(), func(n ast.Node) bool {
		visited++
		_, isIf := n.(*ast.IfStatement)
		return !isIf
	})
	// program, decl + its 5 expression nodes, if (pruned), while + cond + assignment + value
	if visited != 12 {
		t.Errorf("visited %d nodes, want 12", visited)
	}
}

func TestHasInvalid(t *testing.T) {
	if ast.HasInvalid(sample()) {
		t.Error("sample reported as invalid")
	}
	bad := &ast.Program{Stmts: []ast.Stmt{
		&ast.PrintStatement{Expr: binary(token.ADD, num(1), &ast.InvalidExpression{})},
	}}
	if !ast.HasInvalid(bad) {
		t.Error("invalid expression not found")
	}
}

func TestPrinter(t *testing.T) {
	tests := []struct {
		name string
		node ast.Node
		want string
	}{
		{"precedence", binary(token.ADD, num(1), binary(token.MUL, num(2), num(3))), "(+ 1 (* 2 3))"},
		{"left nested", binary(token.EQUALS, binary(token.EQUALS, ident("a"), ident("b")), ident("c")), "(== (== a b) c)"},
		{"grouping", &ast.Grouping{Inner: num(1.5)}, "(group 1.5)"},
		{"string", &ast.Literal{Value: token.StringLit("hi")}, `"hi"`},
		{"nil", &ast.Literal{}, "nil"},
		{"not", &ast.UnaryOperation{Op: token.NOT, Operand: &ast.Literal{Value: token.BoolLit(true)}}, "(! true)"},
		{"invalid", &ast.InvalidStatement{}, "<invalid>;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ast.String(tt.node); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintProgram(t *testing.T) {
	want := strings.Join([]string{
		"x : Float -> (+ 1 (* 2 3));",
		"if (== x 7) {",
		"    print x;",
		"} else print (- x);",
		"while false x -> nil;",
		"",
	}, "\n")
	if got := ast.String(sample()); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
