package vortex

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/aabanakhtar-github/vortex-lang/internal/diag"
	"github.com/aabanakhtar-github/vortex-lang/internal/vm"
)

// ParseError represents a syntax error in Vortex source code.
type ParseError struct {
	Filename string // Source name
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Message  string // Error description
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s", e.Filename, e.Line, e.Column, e.Message)
}

// CompileError represents an error found while generating bytecode, such
// as an undefined or duplicate variable.
type CompileError struct {
	Filename string // Source name
	Line     int    // 1-based line number
	Message  string // Error description
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d: compile error: %s", e.Filename, e.Line, e.Message)
}

// RuntimeError represents an error during execution. Execution stops at
// the first runtime error.
type RuntimeError struct {
	Line    int    // Source line of the failing instruction, 0 if unknown
	Offset  int    // Byte offset of the failing instruction
	Message string // Error description
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("runtime error on line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("runtime error: %s", e.Message)
}

// convertDiagnostics turns diagnostics into public error values, or nil if
// there are none.
func convertDiagnostics(diags []diag.Diagnostic) error {
	var result *multierror.Error
	for _, d := range diags {
		result = multierror.Append(result, convertDiagnostic(d))
	}
	return result.ErrorOrNil()
}

func convertDiagnostic(d diag.Diagnostic) error {
	if d.Stage == diag.StageSyntax {
		return &ParseError{
			Filename: d.Pos.Filename,
			Line:     d.Pos.Line,
			Column:   d.Pos.Column,
			Message:  d.Message,
		}
	}
	return &CompileError{Filename: d.Pos.Filename, Line: d.Pos.Line, Message: d.Message}
}

// convertRuntimeError converts a VM error to a *RuntimeError.
func convertRuntimeError(err error) error {
	if re, ok := err.(*vm.RuntimeError); ok {
		return &RuntimeError{Line: re.Line, Offset: re.Offset, Message: re.Message}
	}
	return &RuntimeError{Message: err.Error()}
}
