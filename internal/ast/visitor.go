package ast

// Walk traverses an AST in depth-first order.
// For each node, it calls fn(node). If fn returns false,
// the children of that node are not visited.
//
// Example: collect declared names
//
//	var names []string
//	ast.Walk(program, func(n ast.Node) bool {
//	    if d, ok := n.(*ast.VariableDeclaration); ok {
//	        names = append(names, d.Name)
//	    }
//	    return true
//	})
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}

	case *Literal, *VariableEval, *InvalidExpression, *InvalidStatement:
		// no children

	case *BinaryOperation:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *UnaryOperation:
		Walk(n.Operand, fn)

	case *Grouping:
		Walk(n.Inner, fn)

	case *PrintStatement:
		Walk(n.Expr, fn)

	case *VariableDeclaration:
		Walk(n.Init, fn)

	case *Assignment:
		Walk(n.Value, fn)

	case *BlockScope:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}

	case *IfStatement:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)

	case *WhileStatement:
		Walk(n.Cond, fn)
		Walk(n.Body, fn)
	}
}
