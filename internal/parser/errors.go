// Package parser provides a Vortex recursive descent parser.
package parser

import (
	"fmt"

	"github.com/aabanakhtar-github/vortex-lang/internal/diag"
	"github.com/aabanakhtar-github/vortex-lang/internal/lexer"
	"github.com/aabanakhtar-github/vortex-lang/internal/token"
)

// errorAt reports a syntax error at tok and enters panic mode. While in
// panic mode further errors are suppressed until the parser resynchronizes.
func (p *Parser) errorAt(tok lexer.Token, format string, args ...any) {
	if p.panicking {
		return
	}
	p.panicking = true
	p.reporter.Report(diag.Diagnostic{
		Stage:   diag.StageSyntax,
		Pos:     tok.Pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// errorf reports a syntax error at the current token.
func (p *Parser) errorf(format string, args ...any) {
	p.errorAt(p.tok, format, args...)
}

// expectedError reports that want was expected at the current token.
func (p *Parser) expectedError(want string) {
	p.errorf("expected %s, got %s", want, p.tokenDesc())
}

// tokenDesc returns a description of the current token for error messages.
func (p *Parser) tokenDesc() string {
	switch p.tok.Type {
	case token.NAME, token.NUMBER, token.STRING:
		return p.tok.Lexeme
	case token.ILLEGAL:
		// ILLEGAL token's Lexeme contains the lexer's message
		return p.tok.Lexeme
	case token.EOF:
		return "end of file"
	default:
		return "'" + p.tok.Type.String() + "'"
	}
}
