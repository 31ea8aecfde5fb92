// SPDX-License-Identifier: Apache-2.0
package lsp

import (
	"github.com/alecthomas/participle/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ConvertParseError transforms an irtext parse error into an LSP diagnostic
// for IDE display. These surface syntax issues like missing braces, a
// malformed block terminator, or an unrecognized instruction keyword.
func ConvertParseError(err error) []protocol.Diagnostic {
	pe, ok := err.(participle.Error)
	if !ok {
		return []protocol.Diagnostic{
			{
				Range:    protocol.Range{},
				Severity: ptrSeverity(protocol.DiagnosticSeverityError),
				Source:   ptrString("oric-parser"),
				Message:  err.Error(),
			},
		}
	}

	pos := pe.Position()
	line := uint32(0)
	if pos.Line > 0 {
		line = uint32(pos.Line - 1)
	}
	col := uint32(0)
	if pos.Column > 0 {
		col = uint32(pos.Column - 1)
	}

	return []protocol.Diagnostic{
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: col},
				End:   protocol.Position{Line: line, Character: col + 1},
			},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("oric-parser"),
			Message:  pe.Message(),
		},
	}
}

// ConvertLowerError transforms a lowering error (an unknown block label or
// a malformed variable number) into an LSP diagnostic. Lowering errors carry
// no source position of their own, so the diagnostic spans the buffer's
// first character.
func ConvertLowerError(err error) []protocol.Diagnostic {
	return []protocol.Diagnostic{
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 1},
			},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("oric-lower"),
			Message:  err.Error(),
		},
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
