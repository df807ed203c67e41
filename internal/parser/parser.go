package parser

import (
	"github.com/aabanakhtar-github/vortex-lang/internal/ast"
	"github.com/aabanakhtar-github/vortex-lang/internal/diag"
	"github.com/aabanakhtar-github/vortex-lang/internal/lexer"
	"github.com/aabanakhtar-github/vortex-lang/internal/token"
)

// Parser is a recursive descent parser over a token stream.
//
// Parsing never fails: a malformed statement is reported once through the
// Reporter, replaced by an *ast.InvalidStatement, and the parser skips ahead
// to the next statement boundary.
type Parser struct {
	tokens   []lexer.Token // Token stream, always EOF-terminated
	pos      int           // Index of tok in tokens
	tok      lexer.Token   // Current token
	reporter diag.Reporter

	panicking bool // an error was reported and not yet recovered from
	depth     int  // lexical block depth
}

// New creates a Parser over tokens. A missing EOF sentinel is supplied.
// A nil reporter discards diagnostics.
func New(tokens []lexer.Token, reporter diag.Reporter) *Parser {
	if n := len(tokens); n == 0 || tokens[n-1].Type != token.EOF {
		eof := lexer.Token{Type: token.EOF}
		if n > 0 {
			eof.Pos = tokens[n-1].Pos
		}
		tokens = append(tokens[:n:n], eof)
	}
	if reporter == nil {
		reporter = diag.Discard
	}
	return &Parser{tokens: tokens, tok: tokens[0], reporter: reporter}
}

// Parse parses a whole program from a token stream.
func Parse(tokens []lexer.Token, reporter diag.Reporter) *ast.Program {
	return New(tokens, reporter).ParseProgram()
}

// ParseSource tokenizes and parses src.
func ParseSource(src, filename string, reporter diag.Reporter) *ast.Program {
	return Parse(lexer.Tokenize(src, filename), reporter)
}

// ParseExpr parses a single expression (useful for testing).
func ParseExpr(src string) (ast.Expr, error) {
	var errs diag.Collector
	p := New(lexer.Tokenize(src, ""), &errs)
	expr := p.parseExpr()
	if p.tok.Type != token.EOF {
		p.errorf("unexpected %s after expression", p.tokenDesc())
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return expr, nil
}

// ParseProgram parses statements until EOF.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.tok.Type != token.EOF {
		start := p.pos
		prog.Stmts = append(prog.Stmts, p.parseStatement())
		if p.pos == start {
			// A stray '}' stops resynchronization without being consumed.
			p.next()
		}
	}
	return prog
}

// -----------------------------------------------------------------------------
// Token handling
// -----------------------------------------------------------------------------

// next advances to the next token. The parser stays on the EOF token.
func (p *Parser) next() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.tok = p.tokens[p.pos]
}

// peek returns the token after the current one.
func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

// expect checks that the current token is tok and advances.
// If not, it records an error.
func (p *Parser) expect(tok token.Token) bool {
	if p.tok.Type != tok {
		p.expectedError("'" + tok.String() + "'")
		return false
	}
	p.next()
	return true
}

// match returns true if current token matches any of the given types.
func (p *Parser) match(types ...token.Token) bool {
	for _, t := range types {
		if p.tok.Type == t {
			return true
		}
	}
	return false
}

// isBoundary reports whether the current token is a point where
// resynchronization stops.
func (p *Parser) isBoundary() bool {
	return p.tok.Type.StartsStatement() || p.match(token.RBRACE, token.SEMICOLON, token.EOF)
}

// synchronize leaves panic mode by skipping tokens until a statement
// boundary: past a ';', or before a statement keyword, '{', '}' or EOF.
func (p *Parser) synchronize() {
	p.panicking = false
	for p.tok.Type != token.EOF {
		if p.tok.Type == token.SEMICOLON {
			p.next()
			return
		}
		if p.isBoundary() {
			return
		}
		p.next()
	}
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

// parseStatement parses one statement, recovering from any error inside it.
func (p *Parser) parseStatement() ast.Stmt {
	start := p.tok.Pos
	stmt := p.parseStatementNoRecover()
	if p.panicking || stmt == nil {
		p.synchronize()
		return &ast.InvalidStatement{BaseStmt: ast.BaseStmt{StartPos: start}}
	}
	return stmt
}

// parseStatementNoRecover returns nil after reporting an error.
func (p *Parser) parseStatementNoRecover() ast.Stmt {
	switch p.tok.Type {
	case token.PRINT:
		return p.parsePrint()
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.NAME:
		switch p.peek().Type {
		case token.COLON:
			return p.parseDeclaration()
		case token.ARROW:
			return p.parseAssignment()
		}
		name := p.tok.Lexeme
		p.next()
		p.expectedError("':' or '->' after " + name)
		return nil
	default:
		p.expectedError("statement")
		return nil
	}
}

// parsePrint parses: print expr ;
func (p *Parser) parsePrint() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	expr := p.parseExpr()
	if p.panicking || !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.PrintStatement{BaseStmt: ast.BaseStmt{StartPos: pos}, Expr: expr}
}

// parseDeclaration parses: name : Type -> expr ;
func (p *Parser) parseDeclaration() ast.Stmt {
	pos := p.tok.Pos
	name := p.tok.Lexeme
	p.next() // name
	p.next() // ':'

	typ := p.tok.Type
	if !typ.IsType() {
		p.expectedError("type name (Bool, Float or String)")
		return nil
	}
	p.next()

	if !p.expect(token.ARROW) {
		return nil
	}
	init := p.parseExpr()
	if p.panicking || !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.VariableDeclaration{
		BaseStmt: ast.BaseStmt{StartPos: pos},
		TypeName: typ,
		Name:     name,
		Init:     init,
	}
}

// parseAssignment parses: name -> expr ;
func (p *Parser) parseAssignment() ast.Stmt {
	pos := p.tok.Pos
	name := p.tok.Lexeme
	p.next() // name
	p.next() // '->'

	value := p.parseExpr()
	if p.panicking || !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.Assignment{BaseStmt: ast.BaseStmt{StartPos: pos}, Name: name, Value: value}
}

// parseBlock parses: { stmt* }
func (p *Parser) parseBlock() ast.Stmt {
	pos := p.tok.Pos
	p.next() // '{'

	p.depth++
	block := &ast.BlockScope{BaseStmt: ast.BaseStmt{StartPos: pos}, Depth: p.depth}
	for !p.match(token.RBRACE, token.EOF) {
		start := p.pos
		block.Stmts = append(block.Stmts, p.parseStatement())
		if p.pos == start {
			p.next()
		}
	}
	p.depth--

	if !p.expect(token.RBRACE) {
		return nil
	}
	return block
}

// parseIf parses: if expr stmt [else stmt]
func (p *Parser) parseIf() ast.Stmt {
	pos := p.tok.Pos
	p.next()

	cond := p.parseExpr()
	if p.panicking {
		return nil
	}
	stmt := &ast.IfStatement{BaseStmt: ast.BaseStmt{StartPos: pos}, Cond: cond}
	stmt.Then = p.parseStatement()
	if p.tok.Type == token.ELSE {
		p.next()
		stmt.Else = p.parseStatement()
	}
	return stmt
}

// parseWhile parses: while expr stmt
func (p *Parser) parseWhile() ast.Stmt {
	pos := p.tok.Pos
	p.next()

	cond := p.parseExpr()
	if p.panicking {
		return nil
	}
	body := p.parseStatement()
	return &ast.WhileStatement{BaseStmt: ast.BaseStmt{StartPos: pos}, Cond: cond, Body: body}
}

// -----------------------------------------------------------------------------
// Expressions
// -----------------------------------------------------------------------------
//
// Precedence, lowest first:
//
//	equality    == !=
//	relational  < <= > >=
//	additive    + -
//	multiplicative * /
//	unary       - !
//	primary     literal, name, ( expr )
//
// Every binary level folds iteratively, so operators of equal precedence
// associate to the left: a == b == c is (a == b) == c.

func (p *Parser) parseExpr() ast.Expr {
	return p.parseEquality()
}

func (p *Parser) parseEquality() ast.Expr {
	return p.parseBinary(p.parseRelational, token.EQUALS, token.NOT_EQUALS)
}

func (p *Parser) parseRelational() ast.Expr {
	return p.parseBinary(p.parseAdditive, token.LESS, token.LTE, token.GREATER, token.GTE)
}

func (p *Parser) parseAdditive() ast.Expr {
	return p.parseBinary(p.parseMultiplicative, token.ADD, token.SUB)
}

func (p *Parser) parseMultiplicative() ast.Expr {
	return p.parseBinary(p.parseUnary, token.MUL, token.DIV)
}

// parseBinary parses one left-associative precedence level whose operands
// are produced by operand.
func (p *Parser) parseBinary(operand func() ast.Expr, ops ...token.Token) ast.Expr {
	left := operand()
	for !p.panicking && p.match(ops...) {
		op := p.tok
		p.next()
		right := operand()
		left = &ast.BinaryOperation{
			BaseExpr: ast.BaseExpr{StartPos: op.Pos},
			Op:       op.Type,
			Left:     left,
			Right:    right,
		}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.match(token.SUB, token.NOT) {
		op := p.tok
		p.next()
		return &ast.UnaryOperation{
			BaseExpr: ast.BaseExpr{StartPos: op.Pos},
			Op:       op.Type,
			Operand:  p.parseUnary(),
		}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.tok
	base := ast.BaseExpr{StartPos: tok.Pos}

	switch tok.Type {
	case token.NUMBER, token.STRING, token.TRUE, token.FALSE:
		p.next()
		return &ast.Literal{BaseExpr: base, Value: tok.Literal}

	case token.NIL:
		p.next()
		return &ast.Literal{BaseExpr: base}

	case token.NAME:
		p.next()
		return &ast.VariableEval{BaseExpr: base, Name: tok.Lexeme}

	case token.LPAREN:
		p.next()
		inner := p.parseExpr()
		if p.panicking {
			return inner
		}
		if !p.expect(token.RPAREN) {
			return &ast.InvalidExpression{BaseExpr: base}
		}
		return &ast.Grouping{BaseExpr: base, Inner: inner}
	}

	p.expectedError("expression")
	if !p.isBoundary() {
		p.next()
	}
	return &ast.InvalidExpression{BaseExpr: base}
}
