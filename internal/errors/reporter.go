// Package errors renders Rust-style caret diagnostics for the textual IR
// parser. It is never imported by internal/arcir: the core pipeline
// returns no errors of its own (see ERROR HANDLING in the specification),
// this package exists purely to report malformed input text.
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel is the severity of a diagnostic.
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
	Help    ErrorLevel = "help"
)

// Position is a 1-indexed line/column location in a source file.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// CompilerError is a structured, positioned diagnostic with optional
// suggestions and notes.
type CompilerError struct {
	Level       ErrorLevel
	Code        string
	Message     string
	Position    Position
	Length      int
	Suggestions []Suggestion
	Notes       []string
	HelpText    string
}

// Suggestion is a proposed fix attached to a CompilerError.
type Suggestion struct {
	Message     string
	Replacement string
}

// ErrorReporter formats CompilerErrors against one source file's text.
type ErrorReporter struct {
	filename string
	lines    []string
}

// NewErrorReporter creates a reporter for filename/source.
func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{filename: filename, lines: strings.Split(source, "\n")}
}

// FormatError renders a CompilerError with Rust-like styling.
func (er *ErrorReporter) FormatError(err CompilerError) string {
	var result strings.Builder

	levelColor := er.getLevelColor(err.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if err.Code != "" {
		result.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(err.Level)), err.Code, err.Message))
	} else {
		result.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(err.Level)), err.Message))
	}

	width := er.getLineNumberWidth(err.Position.Line)
	indent := strings.Repeat(" ", width)

	result.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), er.filename, err.Position.Line, err.Position.Column))
	result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if err.Position.Line > 1 && err.Position.Line-1 < len(er.lines) {
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, err.Position.Line-1)), dim("│"), er.lines[err.Position.Line-2]))
	}

	if err.Position.Line <= len(er.lines) && err.Position.Line > 0 {
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", width, err.Position.Line)), dim("│"), er.lines[err.Position.Line-1]))
		marker := er.createMarker(err.Position.Column, err.Length, err.Level)
		result.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), marker))
	}

	if err.Position.Line < len(er.lines) {
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, err.Position.Line+1)), dim("│"), er.lines[err.Position.Line]))
	}

	for i, s := range err.Suggestions {
		cyan := color.New(color.FgCyan).SprintFunc()
		if i == 0 {
			result.WriteString(fmt.Sprintf("%s %s %s: %s\n", indent, cyan("help"), cyan("try"), s.Message))
		} else {
			result.WriteString(fmt.Sprintf("%s %s %s\n", indent, cyan("    "), s.Message))
		}
		if s.Replacement != "" {
			result.WriteString(fmt.Sprintf("%s %s %s\n", indent, cyan("│"), cyan(s.Replacement)))
		}
	}

	for _, note := range err.Notes {
		blue := color.New(color.FgBlue).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), blue("note:"), note))
	}

	if err.HelpText != "" {
		green := color.New(color.FgGreen).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), green("help:"), err.HelpText))
	}

	result.WriteString("\n")
	return result.String()
}

func (er *ErrorReporter) getLevelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func (er *ErrorReporter) createMarker(column, length int, level ErrorLevel) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", max(0, column-1))

	markerColor := color.New(color.FgRed, color.Bold).SprintFunc()
	if level == Warning {
		markerColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return spaces + markerColor(strings.Repeat("^", length))
}

func (er *ErrorReporter) getLineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
