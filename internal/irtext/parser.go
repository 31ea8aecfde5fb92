package irtext

import (
	"fmt"

	"github.com/alecthomas/participle/v2"

	irerrors "ori/internal/errors"
)

var parser = buildParser()

func buildParser() *participle.Parser[Program] {
	p, err := participle.Build[Program](
		participle.Lexer(IRLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(5),
	)
	if err != nil {
		panic(fmt.Sprintf("irtext: grammar failed to build: %s", err))
	}
	return p
}

// Parse parses source into a grammar tree. Use Lower to turn the result
// into an arcir.Function set.
func Parse(filename, source string) (*Program, error) {
	return parser.ParseString(filename, source)
}

// FormatParseError renders a participle parse error as a caret-style
// diagnostic against source, the way the CLI and REPL report a malformed
// .oir file (the language server uses lsp.ConvertParseError instead).
func FormatParseError(filename, source string, err error) string {
	pe, ok := err.(participle.Error)
	if !ok {
		return fmt.Sprintf("%s: %s\n", filename, err)
	}
	pos := pe.Position()
	reporter := irerrors.NewErrorReporter(filename, source)
	return reporter.FormatError(irerrors.CompilerError{
		Level:   irerrors.Error,
		Code:    irerrors.ErrorSyntax,
		Message: pe.Message(),
		Position: irerrors.Position{
			Filename: filename,
			Line:     pos.Line,
			Column:   pos.Column,
		},
		Length: 1,
	})
}
