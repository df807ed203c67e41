package token

import "strconv"

// LiteralKind tags the payload carried by a Literal.
type LiteralKind uint8

const (
	LitNone LiteralKind = iota
	LitString
	LitNumber
	LitBool
)

// Literal is the decoded value attached to NUMBER, STRING, TRUE and FALSE
// tokens. Only the field selected by Kind is meaningful.
type Literal struct {
	Kind LiteralKind
	Str  string
	Num  float64
	Bool bool
}

// StringLit returns a string literal payload.
func StringLit(s string) Literal { return Literal{Kind: LitString, Str: s} }

// NumberLit returns a numeric literal payload.
func NumberLit(n float64) Literal { return Literal{Kind: LitNumber, Num: n} }

// BoolLit returns a boolean literal payload.
func BoolLit(b bool) Literal { return Literal{Kind: LitBool, Bool: b} }

// String renders the payload in source form; strings are quoted.
func (l Literal) String() string {
	switch l.Kind {
	case LitString:
		return strconv.Quote(l.Str)
	case LitNumber:
		return strconv.FormatFloat(l.Num, 'g', -1, 64)
	case LitBool:
		return strconv.FormatBool(l.Bool)
	}
	return "none"
}
