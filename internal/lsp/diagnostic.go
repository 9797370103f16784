package lsp

import (
	"errors"

	"github.com/leapstack-labs/leapfmt/pkg/format"
	"github.com/leapstack-labs/leapfmt/pkg/parser"
)

const diagnosticSource = "leapfmt"

// Diagnostic codes.
const (
	CodeLexError         = "lex-error"
	CodeParseError       = "parse-error"
	CodeFormattingFault  = "formatting-fault"
	CodeConsistencyFault = "consistency-fault"
	CodeFormatError      = "format-error"
)

// diagnosticsFor converts a formatting error into diagnostics. A nil error
// yields an empty list, which clears earlier reports.
func diagnosticsFor(doc *Document, err error) []Diagnostic {
	if err == nil {
		return []Diagnostic{}
	}

	line, col, code := 0, 0, CodeFormatError
	var (
		lexErr   *parser.LexError
		parseErr *parser.ParseError
		ff       *format.FormattingFault
		cf       *format.ConsistencyFault
	)
	switch {
	case errors.As(err, &lexErr):
		line, col, code = lexErr.Pos.Line, lexErr.Pos.Column, CodeLexError
	case errors.As(err, &parseErr):
		line, col, code = parseErr.Pos.Line, parseErr.Pos.Column, CodeParseError
	case errors.As(err, &ff):
		line, col, code = ff.Line, ff.Column, CodeFormattingFault
	case errors.As(err, &cf):
		line, col, code = cf.Line, cf.Column, CodeConsistencyFault
	}

	return []Diagnostic{{
		Range:    pointRange(doc, line, col),
		Severity: DiagnosticSeverityError,
		Code:     code,
		Source:   diagnosticSource,
		Message:  err.Error(),
	}}
}

// pointRange covers the character at a 1-based line and 0-based column.
// Unknown positions (line 0) map to the start of the document.
func pointRange(doc *Document, line, col int) Range {
	if line <= 0 {
		return Range{}
	}
	start := doc.PositionToOffset(Position{Line: uint32(line - 1), Character: uint32(max(col, 0))}) //nolint:gosec // G115: positions come from the document
	end := start
	if end < len(doc.Content) && doc.Content[end] != '\n' {
		end++
	}
	return Range{Start: doc.OffsetToPosition(start), End: doc.OffsetToPosition(end)}
}
