// Package semantic provides a lint pass over Vortex programs.
//
// The checker runs after parsing and reports problems that are legal
// Vortex but almost certainly mistakes:
//   - Unused variables: declared but never read
//   - Type mismatches: a literal whose kind differs from the declared type
//   - Constant conditions: if statements whose condition is a bool literal
//   - Self-assignment: x -> x;
//
// Name resolution follows the code generator: a local is visible from the
// statement after its declaration, inner scopes may shadow outer ones and a
// global is registered once its initializer has been checked. Names that do
// not resolve are left to the generator to report.
package semantic

import (
	"fmt"
	"strings"

	"github.com/aabanakhtar-github/vortex-lang/internal/token"
)

// Warning represents a lint finding with source location.
type Warning struct {
	Pos     token.Position
	Message string
}

// String returns the warning as a formatted string.
func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// WarningList is a collection of warnings in source order.
type WarningList []*Warning

// Add appends a warning to the list.
func (wl *WarningList) Add(pos token.Position, format string, args ...any) {
	*wl = append(*wl, &Warning{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// String joins the warnings one per line.
func (wl WarningList) String() string {
	var sb strings.Builder
	for i, w := range wl {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(w.String())
	}
	return sb.String()
}

const (
	warnUnusedVar    = "variable %q is declared but never used"
	warnTypeMismatch = "%q is declared %s but assigned a %s literal"
	warnConstantCond = "if condition is always %t"
	warnSelfAssign   = "self-assignment of %q"
)
