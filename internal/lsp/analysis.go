package lsp

import (
	"strings"
	"unicode"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/exp/slices"

	"github.com/aabanakhtar-github/vortex-lang/internal/ast"
	"github.com/aabanakhtar-github/vortex-lang/internal/compiler"
	"github.com/aabanakhtar-github/vortex-lang/internal/diag"
	"github.com/aabanakhtar-github/vortex-lang/internal/parser"
	"github.com/aabanakhtar-github/vortex-lang/internal/semantic"
	"github.com/aabanakhtar-github/vortex-lang/internal/token"
)

// Analyze parses and compiles text into a scratch program and returns every
// syntax and compile error as an LSP diagnostic, followed by the lint
// warnings of the semantic pass. The result is never nil.
func Analyze(uri, text string) []protocol.Diagnostic {
	var errs diag.Collector
	tree := parser.ParseSource(text, uri, &errs)
	compiler.Compile(tree, uri, &errs)

	diagnostics := []protocol.Diagnostic{}
	for _, d := range errs.Diagnostics() {
		diagnostics = append(diagnostics, toProtocol(d))
	}
	for _, w := range semantic.Check(tree) {
		diagnostics = append(diagnostics, warningToProtocol(w))
	}
	return diagnostics
}

func toProtocol(d diag.Diagnostic) protocol.Diagnostic {
	return newDiagnostic(d.Pos, protocol.DiagnosticSeverityError, d.Stage.String(), d.Message)
}

func warningToProtocol(w *semantic.Warning) protocol.Diagnostic {
	return newDiagnostic(w.Pos, protocol.DiagnosticSeverityWarning, "lint", w.Message)
}

// newDiagnostic converts a 1-based source position into a one-character
// LSP range.
func newDiagnostic(pos token.Position, severity protocol.DiagnosticSeverity, stage, message string) protocol.Diagnostic {
	source := lsName + " (" + stage + ")"

	start := protocol.Position{}
	if pos.Line > 0 {
		start.Line = protocol.UInteger(pos.Line - 1)
	}
	if pos.Column > 0 {
		start.Character = protocol.UInteger(pos.Column - 1)
	}
	end := start
	end.Character++

	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// Complete returns completion items for the identifier fragment before pos:
// keywords, type names and the variables declared above the cursor.
func Complete(text string, pos protocol.Position) []protocol.CompletionItem {
	prefix := extractPrefix(text, pos)
	seen := make(map[string]bool)
	var items []protocol.CompletionItem

	add := func(label string, kind protocol.CompletionItemKind, detail string) {
		if seen[label] || !strings.HasPrefix(label, prefix) {
			return
		}
		seen[label] = true
		items = append(items, protocol.CompletionItem{
			Label:  label,
			Kind:   &kind,
			Detail: &detail,
		})
	}

	for _, kw := range token.Keywords() {
		if token.LookupIdent(kw).IsType() {
			add(kw, protocol.CompletionItemKindClass, "type")
		} else {
			add(kw, protocol.CompletionItemKindKeyword, "keyword")
		}
	}

	cursorLine := int(pos.Line) + 1
	tree := parser.ParseSource(text, "", nil)
	ast.Walk(tree, func(n ast.Node) bool {
		if decl, ok := n.(*ast.VariableDeclaration); ok && decl.Line() <= cursorLine {
			add(decl.Name, protocol.CompletionItemKindVariable, decl.TypeName.String())
		}
		return true
	})

	slices.SortFunc(items, func(a, b protocol.CompletionItem) int {
		return strings.Compare(a.Label, b.Label)
	})
	return items
}

// extractPrefix returns the identifier fragment before the cursor.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 {
		ch := rune(line[start-1])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}
	return line[start:col]
}
