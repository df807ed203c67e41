// Package types defines runtime value types for Vortex.
package types

import (
	"math"
	"strconv"
)

// Kind represents the type of a Vortex value.
type Kind uint8

const (
	KindNil  Kind = iota // nil
	KindBool             // true or false
	KindNum              // double-precision number
	KindStr              // reference to a heap string object
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNum:
		return "number"
	case KindStr:
		return "string"
	default:
		return "unknown"
	}
}

// String is a heap-allocated string object. Objects are owned by the
// bytecode program that allocated them; values only reference them.
type String struct {
	Chars string
}

// Value represents a Vortex runtime value.
// Uses tagged union pattern; booleans are stored in num as 0 or 1.
type Value struct {
	kind Kind
	num  float64
	str  *String
}

// Constructors

// Nil returns the nil value.
func Nil() Value {
	return Value{kind: KindNil}
}

// Bool creates a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, num: 1}
	}
	return Value{kind: KindBool}
}

// Num creates a numeric value.
func Num(n float64) Value {
	return Value{kind: KindNum, num: n}
}

// Str creates a value referencing the string object s.
func Str(s *String) Value {
	return Value{kind: KindStr, str: s}
}

// Accessors

// Kind returns the value's type.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNum returns true if the value is a number.
func (v Value) IsNum() bool {
	return v.kind == KindNum
}

// IsStr returns true if the value is a string.
func (v Value) IsStr() bool {
	return v.kind == KindStr
}

// AsNum returns the numeric payload. Only meaningful for KindNum.
func (v Value) AsNum() float64 {
	return v.num
}

// AsBool returns the boolean payload. Only meaningful for KindBool.
func (v Value) AsBool() bool {
	return v.kind == KindBool && v.num != 0
}

// AsStr returns the referenced string object, or nil for other kinds.
func (v Value) AsStr() *String {
	if v.kind != KindStr {
		return nil
	}
	return v.str
}

// AsIndex interprets a numeric value as a non-negative integer index, as
// used for stack offsets, global slots and jump targets.
func (v Value) AsIndex() (int, bool) {
	if v.kind != KindNum || v.num < 0 || v.num != math.Trunc(v.num) || v.num > math.MaxInt32 {
		return 0, false
	}
	return int(v.num), true
}

// Truthy applies the truthiness rule: nil and false are falsy, every other
// value is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.num != 0
	default:
		return true
	}
}

// Equal reports whether two values are equal. Values of different kinds are
// never equal; strings compare by content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindStr:
		return v.str.Chars == other.str.Chars
	default:
		return v.num == other.num
	}
}

// String returns the text printed by the print statement: numbers in
// shortest round-trip form, strings without quotes.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindNum:
		return FormatNum(v.num)
	case KindStr:
		return v.str.Chars
	default:
		return "nil"
	}
}

// Repr is like String but quotes strings, for listings and diagnostics.
func (v Value) Repr() string {
	if v.kind == KindStr {
		return strconv.Quote(v.str.Chars)
	}
	return v.String()
}

// FormatNum formats a number the way Vortex prints it.
func FormatNum(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "nan"
	}
	if abs := math.Abs(n); abs == 0 || (abs >= 1e-4 && abs < 1e21) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
