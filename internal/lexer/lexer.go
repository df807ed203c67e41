// Package lexer provides Vortex source code tokenization.
package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/coregx/coregex"

	"github.com/aabanakhtar-github/vortex-lang/internal/token"
)

// Anchored patterns for the variable-length lexemes. They are applied to the
// remaining input, so a match always starts at the current character.
var (
	identPattern  = mustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
	numberPattern = mustCompile(`^[0-9]+(?:\.[0-9]*)?`)
)

func mustCompile(expr string) *coregex.Regexp {
	re, err := coregex.Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("lexer: compile %q: %v", expr, err))
	}
	return re
}

// Lexer tokenizes Vortex source code.
type Lexer struct {
	src     string         // Source code
	ch      byte           // Current character (0 at EOF)
	offset  int            // Offset of the character after ch
	pos     token.Position // Position of ch
	nextPos token.Position // Position of next character
}

// New creates a new Lexer for the given source code. The filename is only
// recorded in token positions.
func New(src, filename string) *Lexer {
	l := &Lexer{
		src: src,
		nextPos: token.Position{
			Filename: filename,
			Line:     1,
			Column:   1,
		},
	}
	l.pos = l.nextPos
	l.next() // Initialize first character
	return l
}

// Token represents a scanned token with its position, source text and
// decoded literal payload. For ILLEGAL tokens the lexeme holds the error
// message.
type Token struct {
	Type    token.Token
	Pos     token.Position
	Lexeme  string
	Literal token.Literal
}

// Line returns the 1-based source line of the token.
func (t Token) Line() int {
	return t.Pos.Line
}

func (t Token) String() string {
	switch t.Type {
	case token.EOF:
		return fmt.Sprintf("%d: EOF", t.Pos.Line)
	case token.NUMBER, token.STRING, token.TRUE, token.FALSE:
		return fmt.Sprintf("%d: %s %q %s", t.Pos.Line, t.Type, t.Lexeme, t.Literal)
	}
	return fmt.Sprintf("%d: %s %q", t.Pos.Line, t.Type, t.Lexeme)
}

// Tokenize scans the whole source. The result always ends with an EOF token.
func Tokenize(src, filename string) []Token {
	return New(src, filename).All()
}

// All scans the remaining input.
func (l *Lexer) All() []Token {
	var toks []Token
	for {
		tok := l.Scan()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

// Scan scans and returns the next token.
func (l *Lexer) Scan() Token {
	for {
		l.skipWhitespace()
		if l.ch != '#' {
			break
		}
		l.skipComment()
	}

	// Record position
	pos := l.pos

	if l.atEOF() {
		return Token{Type: token.EOF, Pos: pos}
	}

	switch l.ch {
	case '+':
		return l.single(token.ADD, pos)
	case '*':
		return l.single(token.MUL, pos)
	case '/':
		return l.single(token.DIV, pos)
	case '(':
		return l.single(token.LPAREN, pos)
	case ')':
		return l.single(token.RPAREN, pos)
	case '{':
		return l.single(token.LBRACE, pos)
	case '}':
		return l.single(token.RBRACE, pos)
	case ';':
		return l.single(token.SEMICOLON, pos)
	case ':':
		return l.single(token.COLON, pos)

	case '-':
		return l.pair('>', token.ARROW, token.SUB, pos)
	case '!':
		return l.pair('=', token.NOT_EQUALS, token.NOT, pos)
	case '<':
		return l.pair('=', token.LTE, token.LESS, pos)
	case '>':
		return l.pair('=', token.GTE, token.GREATER, pos)

	case '=':
		l.next()
		if l.ch == '=' {
			l.next()
			return Token{Type: token.EQUALS, Pos: pos, Lexeme: "=="}
		}
		return Token{Type: token.ILLEGAL, Pos: pos, Lexeme: "unexpected '=' (assignment is written '->')"}

	case '"':
		return l.scanString(pos)
	}

	if isDigit(l.ch) {
		return l.scanNumber(pos)
	}
	if isIdentStart(l.ch) {
		return l.scanIdent(pos)
	}

	r, size := utf8.DecodeRuneInString(l.src[pos.Offset:])
	for i := 0; i < size; i++ {
		l.next()
	}
	return Token{Type: token.ILLEGAL, Pos: pos, Lexeme: fmt.Sprintf("unexpected character %q", r)}
}

func (l *Lexer) single(typ token.Token, pos token.Position) Token {
	l.next()
	return Token{Type: typ, Pos: pos, Lexeme: typ.String()}
}

// pair scans a one- or two-character operator whose second character is
// second.
func (l *Lexer) pair(second byte, two, one token.Token, pos token.Position) Token {
	l.next()
	if l.ch == second && !l.atEOF() {
		l.next()
		return Token{Type: two, Pos: pos, Lexeme: two.String()}
	}
	return Token{Type: one, Pos: pos, Lexeme: one.String()}
}

func (l *Lexer) scanString(pos token.Position) Token {
	l.next() // consume opening quote
	start := l.pos.Offset

	for !l.atEOF() && l.ch != '"' {
		l.next()
	}
	if l.atEOF() {
		return Token{Type: token.ILLEGAL, Pos: pos, Lexeme: "unterminated string"}
	}

	value := l.src[start:l.pos.Offset]
	l.next() // consume closing quote
	return Token{
		Type:    token.STRING,
		Pos:     pos,
		Lexeme:  l.src[pos.Offset:l.endOffset()],
		Literal: token.StringLit(value),
	}
}

func (l *Lexer) scanNumber(pos token.Position) Token {
	lexeme := l.match(numberPattern, pos)
	if lexeme[len(lexeme)-1] == '.' {
		return Token{Type: token.ILLEGAL, Pos: pos, Lexeme: fmt.Sprintf("expected digits after '.' in %q", lexeme)}
	}
	n, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return Token{Type: token.ILLEGAL, Pos: pos, Lexeme: fmt.Sprintf("invalid number %q", lexeme)}
	}
	return Token{Type: token.NUMBER, Pos: pos, Lexeme: lexeme, Literal: token.NumberLit(n)}
}

func (l *Lexer) scanIdent(pos token.Position) Token {
	name := l.match(identPattern, pos)
	tok := Token{Type: token.LookupIdent(name), Pos: pos, Lexeme: name}
	switch tok.Type {
	case token.TRUE:
		tok.Literal = token.BoolLit(true)
	case token.FALSE:
		tok.Literal = token.BoolLit(false)
	}
	return tok
}

// match applies an anchored pattern at the current character and consumes
// the matched text. The caller guarantees the pattern matches at least one
// character.
func (l *Lexer) match(re *coregex.Regexp, pos token.Position) string {
	loc := re.FindStringIndex(l.src[pos.Offset:])
	n := 1
	if loc != nil && loc[1] > 0 {
		n = loc[1]
	}
	for i := 0; i < n; i++ {
		l.next()
	}
	return l.src[pos.Offset : pos.Offset+n]
}

// endOffset returns the correct end offset for slicing l.src.
func (l *Lexer) endOffset() int {
	if l.atEOF() {
		return len(l.src)
	}
	return l.pos.Offset
}

func (l *Lexer) atEOF() bool {
	return l.pos.Offset >= len(l.src)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && (l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n') {
		l.next()
	}
}

func (l *Lexer) skipComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.next()
	}
}

// next advances to the following byte, keeping line and column current.
func (l *Lexer) next() {
	if l.offset >= len(l.src) {
		l.ch = 0
		l.pos = l.nextPos
		l.pos.Offset = len(l.src)
		return
	}

	l.pos = l.nextPos
	l.ch = l.src[l.offset]
	l.offset++
	l.nextPos.Column++
	l.nextPos.Offset = l.offset

	if l.ch == '\n' {
		l.nextPos.Line++
		l.nextPos.Column = 1
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}
