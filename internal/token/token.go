// Package token defines lexical tokens for Vortex.
package token

// Token represents a lexical token type.
type Token uint8

const (
	// Special tokens
	ILLEGAL Token = iota // <illegal>
	EOF                  // EOF

	// Operators and delimiters
	operatorStart
	ADD   // +
	SUB   // -
	MUL   // *
	DIV   // /
	NOT   // !
	ARROW // ->

	EQUALS     // ==
	NOT_EQUALS // !=
	LESS       // <
	LTE        // <=
	GREATER    // >
	GTE        // >=

	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	SEMICOLON // ;
	COLON     // :
	operatorEnd

	// Keywords
	keywordStart
	PRINT // print
	IF    // if
	ELSE  // else
	WHILE // while
	TRUE  // true
	FALSE // false
	NIL   // nil
	keywordEnd

	// Built-in type names
	typeStart
	BOOL_TYPE   // Bool
	FLOAT_TYPE  // Float
	STRING_TYPE // String
	typeEnd

	// Literals
	NAME   // name
	NUMBER // number
	STRING // string
)

var names = [...]string{
	ILLEGAL:     "<illegal>",
	EOF:         "EOF",
	ADD:         "+",
	SUB:         "-",
	MUL:         "*",
	DIV:         "/",
	NOT:         "!",
	ARROW:       "->",
	EQUALS:      "==",
	NOT_EQUALS:  "!=",
	LESS:        "<",
	LTE:         "<=",
	GREATER:     ">",
	GTE:         ">=",
	LPAREN:      "(",
	RPAREN:      ")",
	LBRACE:      "{",
	RBRACE:      "}",
	SEMICOLON:   ";",
	COLON:       ":",
	PRINT:       "print",
	IF:          "if",
	ELSE:        "else",
	WHILE:       "while",
	TRUE:        "true",
	FALSE:       "false",
	NIL:         "nil",
	BOOL_TYPE:   "Bool",
	FLOAT_TYPE:  "Float",
	STRING_TYPE: "String",
	NAME:        "name",
	NUMBER:      "number",
	STRING:      "string",
}

// String returns the source spelling of operators and keywords, or a
// descriptive name for the other token types.
func (t Token) String() string {
	if int(t) < len(names) && names[t] != "" {
		return names[t]
	}
	return "<unknown>"
}

// IsOperator returns true if the token is an operator or delimiter.
func (t Token) IsOperator() bool {
	return t > operatorStart && t < operatorEnd
}

// IsKeyword returns true if the token is a keyword.
func (t Token) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// IsType returns true if the token names a built-in type.
func (t Token) IsType() bool {
	return t > typeStart && t < typeEnd
}

// IsLiteral returns true if the token is a literal (name, number, string).
func (t Token) IsLiteral() bool {
	return t == NAME || t == NUMBER || t == STRING
}

// StartsStatement reports whether a statement may begin with t. The parser
// resynchronizes on these tokens after a syntax error.
func (t Token) StartsStatement() bool {
	switch t {
	case PRINT, IF, WHILE, LBRACE:
		return true
	}
	return false
}

// keywords maps keyword strings to their token types.
var keywords = map[string]Token{
	"print":  PRINT,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"true":   TRUE,
	"false":  FALSE,
	"nil":    NIL,
	"Bool":   BOOL_TYPE,
	"Float":  FLOAT_TYPE,
	"String": STRING_TYPE,
}

// LookupIdent returns the token type for a given identifier.
// Returns a keyword or type token if found, otherwise NAME.
func LookupIdent(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return NAME
}

// Keywords returns the reserved words in no particular order.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	return out
}
