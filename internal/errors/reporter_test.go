// SPDX-License-Identifier: Apache-2.0
package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatError_IncludesCodeAndMessage(t *testing.T) {
	source := "fn f(\n  block entry:\n    return\n"
	reporter := NewErrorReporter("sample.oir", source)

	out := reporter.FormatError(CompilerError{
		Level:   Error,
		Code:    ErrorSyntax,
		Message: "unexpected end of input",
		Position: Position{
			Filename: "sample.oir",
			Line:     1,
			Column:   6,
		},
		Length: 1,
	})

	assert.Contains(t, out, "E0100")
	assert.Contains(t, out, "unexpected end of input")
	assert.Contains(t, out, "sample.oir:1:6")
}

func TestFormatError_IncludesSuggestionsAndNotes(t *testing.T) {
	source := "fn f() -> Int {\n}\n"
	reporter := NewErrorReporter("sample.oir", source)

	out := reporter.FormatError(CompilerError{
		Level:   Error,
		Code:    ErrorUnknownBlockLabel,
		Message: "no entry block",
		Position: Position{
			Filename: "sample.oir",
			Line:     1,
			Column:   1,
		},
		Length:      1,
		Suggestions: []Suggestion{{Message: "add a block", Replacement: "block entry:"}},
		Notes:       []string{"a function must declare at least one block"},
		HelpText:    "see the grammar for block syntax",
	})

	assert.Contains(t, out, "add a block")
	assert.Contains(t, out, "block entry:")
	assert.Contains(t, out, "a function must declare at least one block")
	assert.Contains(t, out, "see the grammar for block syntax")
}

func TestGetErrorDescription_KnownAndUnknownCodes(t *testing.T) {
	assert.Equal(t, "Syntax error in IR source", GetErrorDescription(ErrorSyntax))
	assert.Equal(t, "Unknown error code", GetErrorDescription("E9999"))
}
